package client

import (
	"context"
	"encoding/json"
	"strings"
	"syscall"
	"time"

	"github.com/podlink/podlink/pkg/errdefs"
	"github.com/podlink/podlink/pkg/transport"
	"github.com/podlink/podlink/pkg/types"
)

// Containers is the facade over the daemon's container store.
type Containers struct {
	c *Client
}

// Container is one container record plus the operations that act on it.
// Mutating operations re-fetch the record afterwards so the visible state
// matches the daemon's.
type Container struct {
	types.Container
	c *Client
}

type containerReply struct {
	Container types.Container `json:"container"`
}

// List returns all containers in the store.
func (cs *Containers) List(ctx context.Context) ([]*Container, error) {
	var out struct {
		Containers []types.Container `json:"containers"`
	}
	if err := cs.c.call(ctx, "ListContainers", nil, &out); err != nil {
		return nil, err
	}
	list := make([]*Container, 0, len(out.Containers))
	for _, rec := range out.Containers {
		list = append(list, &Container{Container: rec, c: cs.c})
	}
	return list, nil
}

// Get retrieves one container by id or name.
func (cs *Containers) Get(ctx context.Context, id string) (*Container, error) {
	var out containerReply
	if err := cs.c.refresh(ctx, "GetContainer", args{"name": id}, &out); err != nil {
		return nil, err
	}
	return &Container{Container: out.Container, c: cs.c}, nil
}

// GetByStatus returns containers whose status is one of the given values.
func (cs *Containers) GetByStatus(ctx context.Context, statuses ...string) ([]*Container, error) {
	var out struct {
		Containers []types.Container `json:"containerS"`
	}
	if err := cs.c.call(ctx, "GetContainersByStatus", args{"status": statuses}, &out); err != nil {
		return nil, err
	}
	list := make([]*Container, 0, len(out.Containers))
	for _, rec := range out.Containers {
		list = append(list, &Container{Container: rec, c: cs.c})
	}
	return list, nil
}

// Exists reports whether the container exists in local storage.
func (cs *Containers) Exists(ctx context.Context, id string) (bool, error) {
	var out struct {
		Exists int `json:"exists"`
	}
	if err := cs.c.call(ctx, "ContainerExists", args{"name": id}, &out); err != nil {
		return false, err
	}
	return out.Exists == 0, nil
}

// DeleteStopped removes all stopped containers, returning their ids.
func (cs *Containers) DeleteStopped(ctx context.Context) ([]string, error) {
	var out struct {
		Containers []string `json:"containers"`
	}
	if err := cs.c.call(ctx, "DeleteStoppedContainers", nil, &out); err != nil {
		return nil, err
	}
	return out.Containers, nil
}

// ListMounts returns every mounted container mount point.
func (cs *Containers) ListMounts(ctx context.Context) ([]string, error) {
	var out struct {
		Mounts []string `json:"mounts"`
	}
	if err := cs.c.call(ctx, "ListContainerMounts", nil, &out); err != nil {
		return nil, err
	}
	return out.Mounts, nil
}

// Refresh re-fetches the container's record from the daemon, tolerating
// transient channel resets.
func (ctr *Container) Refresh(ctx context.Context) error {
	var out containerReply
	if err := ctr.c.refresh(ctx, "GetContainer", args{"name": ctr.ID}, &out); err != nil {
		return err
	}
	ctr.Container = out.Container
	return nil
}

// Kill sends sig to the container, then polls until it is no longer
// running. wait bounds the poll; zero waits indefinitely.
func (ctr *Container) Kill(ctx context.Context, sig syscall.Signal, wait time.Duration) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "KillContainer", args{"name": ctr.ID, "signal": int(sig)}, &out); err != nil {
		return err
	}
	return transport.PollUntil(ctx, "container "+ctr.ID+" stop", transport.DefaultPollInterval, wait,
		func(ctx context.Context) (bool, error) {
			if err := ctr.Refresh(ctx); err != nil {
				return false, err
			}
			return !ctr.Running && !strings.EqualFold(ctr.Status, "running"), nil
		})
}

// Stop stops the container, giving it timeout seconds before the daemon
// forces the matter, and refreshes the record.
func (ctr *Container) Stop(ctx context.Context, timeout int) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "StopContainer", args{"name": ctr.ID, "timeout": timeout}, &out); err != nil {
		return err
	}
	return ctr.Refresh(ctx)
}

// Start starts the container and refreshes the record.
func (ctr *Container) Start(ctx context.Context) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "StartContainer", args{"name": ctr.ID}, &out); err != nil {
		return err
	}
	return ctr.Refresh(ctx)
}

// Restart restarts the container with the given timeout and refreshes the
// record.
func (ctr *Container) Restart(ctx context.Context, timeout int) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "RestartContainer", args{"name": ctr.ID, "timeout": timeout}, &out); err != nil {
		return err
	}
	return ctr.Refresh(ctx)
}

// Remove removes the container, returning its id. force stops a running
// container first.
func (ctr *Container) Remove(ctx context.Context, force bool) (string, error) {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "RemoveContainer", args{"name": ctr.ID, "force": force}, &out); err != nil {
		return "", err
	}
	return out.Container, nil
}

// Pause pauses the container and refreshes the record.
func (ctr *Container) Pause(ctx context.Context) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "PauseContainer", args{"name": ctr.ID}, &out); err != nil {
		return err
	}
	return ctr.Refresh(ctx)
}

// Unpause unpauses the container and refreshes the record.
func (ctr *Container) Unpause(ctx context.Context) error {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "UnpauseContainer", args{"name": ctr.ID}, &out); err != nil {
		return err
	}
	return ctr.Refresh(ctx)
}

// Wait blocks until the container finishes and returns its exit code.
func (ctr *Container) Wait(ctx context.Context) (int, error) {
	var out struct {
		ExitCode int `json:"exitcode"`
	}
	if err := ctr.c.call(ctx, "WaitContainer", args{"name": ctr.ID}, &out); err != nil {
		return 0, err
	}
	return out.ExitCode, nil
}

// Processes lists the processes running in the container.
func (ctr *Container) Processes(ctx context.Context) ([]string, error) {
	var out struct {
		Container []string `json:"container"`
	}
	if err := ctr.c.call(ctx, "ListContainerProcesses", args{"name": ctr.ID}, &out); err != nil {
		return nil, err
	}
	return out.Container, nil
}

// Changes lists filesystem changes made by the container.
func (ctr *Container) Changes(ctx context.Context) (*types.ContainerChanges, error) {
	var out struct {
		Container types.ContainerChanges `json:"container"`
	}
	if err := ctr.c.call(ctx, "ListContainerChanges", args{"name": ctr.ID}, &out); err != nil {
		return nil, err
	}
	return &out.Container, nil
}

// Stats retrieves a resource usage sample for the container.
func (ctr *Container) Stats(ctx context.Context) (*types.ContainerStats, error) {
	var out struct {
		Container types.ContainerStats `json:"container"`
	}
	if err := ctr.c.call(ctx, "GetContainerStats", args{"name": ctr.ID}, &out); err != nil {
		return nil, err
	}
	return &out.Container, nil
}

// Logs returns the container's log lines.
func (ctr *Container) Logs(ctx context.Context) ([]string, error) {
	var out struct {
		Container []string `json:"container"`
	}
	if err := ctr.c.call(ctx, "GetContainerLogs", args{"name": ctr.ID}, &out); err != nil {
		return nil, err
	}
	return out.Container, nil
}

// Inspect returns the daemon's full inspect document for the container.
func (ctr *Container) Inspect(ctx context.Context) (json.RawMessage, error) {
	var out struct {
		Container string `json:"container"`
	}
	if err := ctr.c.call(ctx, "InspectContainer", args{"name": ctr.ID}, &out); err != nil {
		return nil, err
	}
	return json.RawMessage(out.Container), nil
}

// Export writes the container's filesystem to a tarball at target on the
// daemon host, returning the tarball path.
func (ctr *Container) Export(ctx context.Context, target string) (string, error) {
	var out struct {
		TarFile string `json:"tarfile"`
	}
	if err := ctr.c.call(ctx, "ExportContainer", args{"name": ctr.ID, "path": target}, &out); err != nil {
		return "", err
	}
	return out.TarFile, nil
}

// CommitOptions adjusts image creation from a container.
type CommitOptions struct {
	Author  string
	Message string
	Changes []string // CMD=..., ENTRYPOINT=..., LABEL=key=value, ...
	Pause   bool
}

// Commit creates an image from the container and returns the new image id.
func (ctr *Container) Commit(ctx context.Context, imageName string, opts CommitOptions) (string, error) {
	for _, change := range opts.Changes {
		if strings.HasPrefix(change, "LABEL=") && strings.Count(change, "=") < 2 {
			return "", errdefs.Configf("LABEL should have the format LABEL=label=value, not %q", change)
		}
	}
	var out struct {
		Reply struct {
			ID string `json:"id"`
		} `json:"reply"`
	}
	in := args{
		"name":       ctr.ID,
		"image_name": imageName,
		"changes":    opts.Changes,
		"author":     opts.Author,
		"message":    opts.Message,
		"pause":      opts.Pause,
	}
	if err := ctr.c.call(ctx, "Commit", in, &out); err != nil {
		return "", err
	}
	return out.Reply.ID, nil
}

// Mount mounts the container's filesystem on the daemon host and returns
// the mount path.
func (ctr *Container) Mount(ctx context.Context) (string, error) {
	var out struct {
		Path string `json:"path"`
	}
	if err := ctr.c.call(ctx, "MountContainer", args{"name": ctr.ID}, &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// Unmount unmounts the container's filesystem.
func (ctr *Container) Unmount(ctx context.Context, force bool) error {
	return ctr.c.call(ctx, "UnmountContainer", args{"name": ctr.ID, "force": force}, &struct{}{})
}
