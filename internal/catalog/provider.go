package catalog

import (
	"context"
	"sync"
	"sync/atomic"

	"sqlgateway/internal/logging"
)

// BuildFunc constructs a fresh snapshot from scratch.
type BuildFunc func(ctx context.Context) (*Snapshot, error)

// Provider owns the published catalog snapshot. A reload constructs a
// brand-new snapshot and atomically swaps the published reference; the
// previous snapshot is never mutated, so in-flight readers keep a
// consistent view.
type Provider struct {
	build  BuildFunc
	logger *logging.Logger

	mu     sync.Mutex // serializes concurrent reloads
	active atomic.Value
}

// NewProvider creates a provider around a snapshot build function.
func NewProvider(build BuildFunc, logger *logging.Logger) *Provider {
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	return &Provider{build: build, logger: logger}
}

// Init builds and publishes the first snapshot. Failure is fatal to
// startup: no snapshot is published.
func (p *Provider) Init(ctx context.Context) error {
	return p.Reload(ctx)
}

// Reload builds a new snapshot and swaps it in on success. On failure the
// previously published snapshot, if any, stays active.
func (p *Provider) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	snapshot, err := p.build(ctx)
	if err != nil {
		p.logger.Error("catalog rebuild failed", "error", err.Error())
		return err
	}
	p.active.Store(snapshot)
	p.logger.Info("catalog snapshot published", "version", snapshot.Version())
	return nil
}

// Snapshot returns the currently published snapshot, or nil before Init.
func (p *Provider) Snapshot() *Snapshot {
	if value := p.active.Load(); value != nil {
		return value.(*Snapshot)
	}
	return nil
}
