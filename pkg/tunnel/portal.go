package tunnel

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/podlink/podlink/pkg/log"
	"github.com/podlink/podlink/pkg/metrics"
)

// Portal caches open tunnels by destination key so repeated connections to
// the same remote daemon reuse one ssh session. It is injected into remote
// sessions rather than accessed as ambient global state.
type Portal struct {
	mu      sync.Mutex
	tunnels map[string]Forwarder
	logger  zerolog.Logger
}

// NewPortal creates an empty portal.
func NewPortal() *Portal {
	return &Portal{
		tunnels: make(map[string]Forwarder),
		logger:  log.WithComponent("portal"),
	}
}

// GetOrCreate returns the cached tunnel for key, or invokes factory to
// create one. The factory runs under the portal lock, so concurrent callers
// targeting the same key see exactly one creation; losers receive the
// winner's tunnel. A cached tunnel found dead is closed and replaced. The
// second return value reports whether the tunnel was reused.
func (p *Portal) GetOrCreate(key string, factory func() (Forwarder, error)) (Forwarder, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fwd, ok := p.tunnels[key]; ok {
		if fwd.Alive() {
			metrics.TunnelReuse.Inc()
			return fwd, true, nil
		}
		p.logger.Warn().Str("destination", key).Msg("cached tunnel is dead, replacing")
		_ = fwd.Close()
		delete(p.tunnels, key)
	}

	fwd, err := factory()
	if err != nil {
		return nil, false, err
	}
	p.tunnels[key] = fwd
	metrics.TunnelsCreated.Inc()
	p.logger.Debug().Str("destination", key).Msg("tunnel cached")
	return fwd, false, nil
}

// Len returns the number of cached tunnels.
func (p *Portal) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tunnels)
}

// Close closes every cached tunnel and empties the portal. Safe to call
// more than once.
func (p *Portal) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for key, fwd := range p.tunnels {
		if err := fwd.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.tunnels, key)
	}
	return errors.Join(errs...)
}
