// Package syncrun is the Run Driver: it owns the single-flight-per-
// provider guarantee, wires a Reconciler's collaborators together, and
// turns a completed or aborted run into a RunOutcome the CLI layer can
// report on. It is the orchestration layer above reconcile, grounded in
// the teacher's SyncCoordinator (internal/sync/coordinator.go).
package syncrun

import (
	"context"
	"fmt"
	"sync"

	"gosynctasks/reconcile"
)

// RunOutcome is what a completed (or aborted) Run reports back.
type RunOutcome struct {
	Provider reconcile.ProviderID
	Stats    reconcile.Stats
	Log      string
	Aborted  bool
}

// Driver runs a Reconciler against one provider at a time, refusing a
// second concurrent run for a provider already in flight.
type Driver struct {
	reconciler *reconcile.Reconciler

	mu      sync.Mutex
	running map[reconcile.ProviderID]bool
}

// NewDriver wires a Driver around an already-assembled Reconciler. The
// caller is expected to have set Reconciler.NewBlankTask (typically via
// defaults.Bind) and Reconciler.Reporter before calling Run.
func NewDriver(reconciler *reconcile.Reconciler) *Driver {
	return &Driver{
		reconciler: reconciler,
		running:    make(map[reconcile.ProviderID]bool),
	}
}

// Run executes one sync for provider. If a run for the same provider is
// already in flight, Run returns immediately without starting a second
// one (mirrors SyncCoordinator.TriggerPushSync's CompareAndSwap guard,
// but synchronous rather than fire-and-forget so the CLI can await the
// result).
func (d *Driver) Run(ctx context.Context, provider reconcile.ProviderID) (RunOutcome, error) {
	if !d.claim(provider) {
		return RunOutcome{Provider: provider, Aborted: true}, fmt.Errorf("sync already in progress for provider %d", provider)
	}
	defer d.release(provider)

	stats, log, err := d.reconciler.Run(ctx, provider)
	if err != nil {
		return RunOutcome{Provider: provider, Stats: stats, Log: log, Aborted: true}, err
	}
	return RunOutcome{Provider: provider, Stats: stats, Log: log}, nil
}

func (d *Driver) claim(provider reconcile.ProviderID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running[provider] {
		return false
	}
	d.running[provider] = true
	return true
}

func (d *Driver) release(provider reconcile.ProviderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.running, provider)
}

// IsRunning reports whether a run for provider is currently in flight.
func (d *Driver) IsRunning(provider reconcile.ProviderID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running[provider]
}
