package client

import (
	"context"

	"github.com/podlink/podlink/pkg/types"
)

// System accesses daemon-level information.
type System struct {
	c *Client
}

type versionReply struct {
	Version types.Version `json:"version"`
}

// Ping verifies the daemon answers on the bound interface.
func (sys *System) Ping(ctx context.Context) error {
	var out versionReply
	return sys.c.call(ctx, "GetVersion", nil, &out)
}

// Version returns daemon version details.
func (sys *System) Version(ctx context.Context) (*types.Version, error) {
	var out versionReply
	if err := sys.c.call(ctx, "GetVersion", nil, &out); err != nil {
		return nil, err
	}
	return &out.Version, nil
}

// Info returns daemon host details.
func (sys *System) Info(ctx context.Context) (*types.Info, error) {
	var out struct {
		Info types.Info `json:"info"`
	}
	if err := sys.c.call(ctx, "GetInfo", nil, &out); err != nil {
		return nil, err
	}
	return &out.Info, nil
}
