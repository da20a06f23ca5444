package client

import (
	"context"
	"encoding/json"

	"github.com/podlink/podlink/pkg/types"
)

// Images is the facade over the daemon's image store.
type Images struct {
	c *Client
}

// Image is one image record plus the operations that act on it.
type Image struct {
	types.Image
	c *Client
}

// List returns all images in the store.
func (is *Images) List(ctx context.Context) ([]*Image, error) {
	var out struct {
		Images []types.Image `json:"images"`
	}
	if err := is.c.call(ctx, "ListImages", nil, &out); err != nil {
		return nil, err
	}
	list := make([]*Image, 0, len(out.Images))
	for _, rec := range out.Images {
		list = append(list, &Image{Image: rec, c: is.c})
	}
	return list, nil
}

// Get retrieves one image by id or name.
func (is *Images) Get(ctx context.Context, id string) (*Image, error) {
	var out struct {
		Image types.Image `json:"image"`
	}
	if err := is.c.refresh(ctx, "GetImage", args{"id": id}, &out); err != nil {
		return nil, err
	}
	return &Image{Image: out.Image, c: is.c}, nil
}

// Exists reports whether the image exists in local storage.
func (is *Images) Exists(ctx context.Context, name string) (bool, error) {
	var out struct {
		Exists int `json:"exists"`
	}
	if err := is.c.call(ctx, "ImageExists", args{"name": name}, &out); err != nil {
		return false, err
	}
	return out.Exists == 0, nil
}

// Pull copies an image from a registry into local storage and returns its
// id.
func (is *Images) Pull(ctx context.Context, name string) (string, error) {
	var out struct {
		Reply struct {
			ID string `json:"id"`
		} `json:"reply"`
	}
	if err := is.c.call(ctx, "PullImage", args{"name": name}, &out); err != nil {
		return "", err
	}
	return out.Reply.ID, nil
}

// Prune removes unused images, returning the pruned ids.
func (is *Images) Prune(ctx context.Context, all bool) ([]string, error) {
	var out struct {
		Pruned []string `json:"pruned"`
	}
	if err := is.c.call(ctx, "ImagesPrune", args{"all": all}, &out); err != nil {
		return nil, err
	}
	return out.Pruned, nil
}

// History returns the image's layer history.
func (img *Image) History(ctx context.Context) ([]types.ImageHistory, error) {
	var out struct {
		History []types.ImageHistory `json:"history"`
	}
	if err := img.c.call(ctx, "HistoryImage", args{"name": img.ID}, &out); err != nil {
		return nil, err
	}
	return out.History, nil
}

// Inspect returns the daemon's full inspect document for the image.
func (img *Image) Inspect(ctx context.Context) (json.RawMessage, error) {
	var out struct {
		Image string `json:"image"`
	}
	if err := img.c.call(ctx, "InspectImage", args{"name": img.ID}, &out); err != nil {
		return nil, err
	}
	return json.RawMessage(out.Image), nil
}

// Remove deletes the image, returning its id. force stops containers using
// the image first.
func (img *Image) Remove(ctx context.Context, force bool) (string, error) {
	var out struct {
		Image string `json:"image"`
	}
	if err := img.c.call(ctx, "RemoveImage", args{"name": img.ID, "force": force}, &out); err != nil {
		return "", err
	}
	return out.Image, nil
}

// Tag adds a tag to the image.
func (img *Image) Tag(ctx context.Context, tag string) (string, error) {
	var out struct {
		Image string `json:"image"`
	}
	if err := img.c.call(ctx, "TagImage", args{"name": img.ID, "tagged": tag}, &out); err != nil {
		return "", err
	}
	return out.Image, nil
}

// Export writes the image to dest on the daemon host.
func (img *Image) Export(ctx context.Context, dest string, compressed bool) (string, error) {
	var out struct {
		Image string `json:"image"`
	}
	in := args{"name": img.ID, "destination": dest, "compress": compressed}
	if err := img.c.call(ctx, "ExportImage", in, &out); err != nil {
		return "", err
	}
	return out.Image, nil
}
