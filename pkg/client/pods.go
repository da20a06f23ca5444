package client

import (
	"context"
	"encoding/json"
	"strings"
	"syscall"
	"time"

	"github.com/podlink/podlink/pkg/transport"
	"github.com/podlink/podlink/pkg/types"
)

// Pods is the facade over the daemon's pod store.
type Pods struct {
	c *Client
}

// Pod is one pod record plus the operations that act on its containers as
// a group.
type Pod struct {
	types.Pod
	c *Client
}

type podReply struct {
	Pod types.Pod `json:"pod"`
}

// List returns all pods.
func (ps *Pods) List(ctx context.Context) ([]*Pod, error) {
	var out struct {
		Pods []types.Pod `json:"pods"`
	}
	if err := ps.c.call(ctx, "ListPods", nil, &out); err != nil {
		return nil, err
	}
	list := make([]*Pod, 0, len(out.Pods))
	for _, rec := range out.Pods {
		list = append(list, &Pod{Pod: rec, c: ps.c})
	}
	return list, nil
}

// Get retrieves one pod by id or name.
func (ps *Pods) Get(ctx context.Context, id string) (*Pod, error) {
	var out podReply
	if err := ps.c.refresh(ctx, "GetPod", args{"name": id}, &out); err != nil {
		return nil, err
	}
	return &Pod{Pod: out.Pod, c: ps.c}, nil
}

// Exists reports whether the pod exists.
func (ps *Pods) Exists(ctx context.Context, id string) (bool, error) {
	var out struct {
		Exists int `json:"exists"`
	}
	if err := ps.c.call(ctx, "PodExists", args{"name": id}, &out); err != nil {
		return false, err
	}
	return out.Exists == 0, nil
}

// Create creates an empty named pod and returns it.
func (ps *Pods) Create(ctx context.Context, name string) (*Pod, error) {
	var out struct {
		Pod string `json:"pod"`
	}
	if err := ps.c.call(ctx, "CreatePod", args{"create": args{"name": name}}, &out); err != nil {
		return nil, err
	}
	return ps.Get(ctx, out.Pod)
}

// Refresh re-fetches the pod's record from the daemon.
func (p *Pod) Refresh(ctx context.Context) error {
	var out podReply
	if err := p.c.refresh(ctx, "GetPod", args{"name": p.ID}, &out); err != nil {
		return err
	}
	p.Pod = out.Pod
	return nil
}

// Kill sends sig to every container in the pod, then polls until the pod
// is no longer running. wait bounds the poll; zero waits indefinitely.
func (p *Pod) Kill(ctx context.Context, sig syscall.Signal, wait time.Duration) error {
	var out struct {
		Pod string `json:"pod"`
	}
	if err := p.c.call(ctx, "KillPod", args{"name": p.ID, "signal": int(sig)}, &out); err != nil {
		return err
	}
	return transport.PollUntil(ctx, "pod "+p.ID+" stop", transport.DefaultPollInterval, wait,
		func(ctx context.Context) (bool, error) {
			if err := p.Refresh(ctx); err != nil {
				return false, err
			}
			return !strings.EqualFold(p.Status, "running"), nil
		})
}

// Start starts all containers in the pod and refreshes the record.
func (p *Pod) Start(ctx context.Context) error {
	return p.mutate(ctx, "StartPod")
}

// Stop stops all containers in the pod and refreshes the record.
func (p *Pod) Stop(ctx context.Context) error {
	return p.mutate(ctx, "StopPod")
}

// Restart restarts all containers in the pod and refreshes the record.
func (p *Pod) Restart(ctx context.Context) error {
	return p.mutate(ctx, "RestartPod")
}

// Pause pauses all containers in the pod and refreshes the record.
func (p *Pod) Pause(ctx context.Context) error {
	return p.mutate(ctx, "PausePod")
}

// Unpause unpauses all containers in the pod and refreshes the record.
func (p *Pod) Unpause(ctx context.Context) error {
	return p.mutate(ctx, "UnpausePod")
}

func (p *Pod) mutate(ctx context.Context, method string) error {
	var out struct {
		Pod string `json:"pod"`
	}
	if err := p.c.call(ctx, method, args{"name": p.ID}, &out); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// Remove removes the pod and its containers, returning the pod id. force
// stops running containers first.
func (p *Pod) Remove(ctx context.Context, force bool) (string, error) {
	var out struct {
		Pod string `json:"pod"`
	}
	if err := p.c.call(ctx, "RemovePod", args{"name": p.ID, "force": force}, &out); err != nil {
		return "", err
	}
	return out.Pod, nil
}

// Top lists processes of all containers in the pod.
func (p *Pod) Top(ctx context.Context) ([]string, error) {
	var out struct {
		Pod []string `json:"pod"`
	}
	if err := p.c.call(ctx, "TopPod", args{"name": p.ID}, &out); err != nil {
		return nil, err
	}
	return out.Pod, nil
}

// Stats returns resource usage samples for every container in the pod.
func (p *Pod) Stats(ctx context.Context) ([]types.ContainerStats, error) {
	var out struct {
		Containers []types.ContainerStats `json:"containers"`
	}
	if err := p.c.call(ctx, "GetPodStats", args{"name": p.ID}, &out); err != nil {
		return nil, err
	}
	return out.Containers, nil
}

// Inspect returns the daemon's full inspect document for the pod.
func (p *Pod) Inspect(ctx context.Context) (json.RawMessage, error) {
	var out struct {
		Pod string `json:"pod"`
	}
	if err := p.c.call(ctx, "InspectPod", args{"name": p.ID}, &out); err != nil {
		return nil, err
	}
	return json.RawMessage(out.Pod), nil
}
