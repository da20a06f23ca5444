package client

import (
	"context"

	"github.com/podlink/podlink/pkg/types"
)

// Volumes is the facade over the daemon's volume store.
type Volumes struct {
	c *Client
}

// VolumeCreateOptions names and configures a new volume.
type VolumeCreateOptions struct {
	Name    string            `json:"volumeName"`
	Driver  string            `json:"driver,omitempty"`
	Labels  map[string]string `json:"labels,omitempty"`
	Options map[string]string `json:"options,omitempty"`
}

// Create creates a volume and returns its name.
func (vs *Volumes) Create(ctx context.Context, opts VolumeCreateOptions) (string, error) {
	var out struct {
		VolumeName string `json:"volumeName"`
	}
	if err := vs.c.call(ctx, "VolumeCreate", args{"options": opts}, &out); err != nil {
		return "", err
	}
	return out.VolumeName, nil
}

// Remove removes the named volumes (or all of them). It returns the names
// removed and the per-volume failures the daemon reported.
func (vs *Volumes) Remove(ctx context.Context, names []string, all, force bool) (successes, failures []string, err error) {
	var out struct {
		Successes []string `json:"successes"`
		Failures  []string `json:"failures"`
	}
	in := args{"options": args{"volumes": names, "all": all, "force": force}}
	if err := vs.c.call(ctx, "VolumeRemove", in, &out); err != nil {
		return nil, nil, err
	}
	return out.Successes, out.Failures, nil
}

// List returns volumes matching the given names, or every volume when all
// is set.
func (vs *Volumes) List(ctx context.Context, names []string, all bool) ([]types.Volume, error) {
	var out struct {
		Volumes []types.Volume `json:"volumes"`
	}
	if err := vs.c.call(ctx, "GetVolumes", args{"args": names, "all": all}, &out); err != nil {
		return nil, err
	}
	return out.Volumes, nil
}

// Prune removes unused volumes, returning the pruned names and any errors
// the daemon reported per volume.
func (vs *Volumes) Prune(ctx context.Context) (pruned, failed []string, err error) {
	var out struct {
		PrunedNames  []string `json:"prunedNames"`
		PrunedErrors []string `json:"prunedErrors"`
	}
	if err := vs.c.call(ctx, "VolumesPrune", nil, &out); err != nil {
		return nil, nil, err
	}
	return out.PrunedNames, out.PrunedErrors, nil
}
