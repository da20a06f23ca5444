// Package types defines the record types the daemon returns for
// containers, images, pods, and volumes. Every field is declared up front;
// unknown daemon-returned keys are deliberately ignored by decoding.
package types
