package report

import (
	"sync"

	"gosynctasks/internal/utils"
	"gosynctasks/reconcile"
)

type bgEvent struct {
	label      bool
	step, outOf int
	text       string
}

// Background is a reconcile.Reporter for unattended runs: it forwards
// Tick/Label through a buffered channel to a single consumer goroutine
// that logs at debug level through the shared utils.Logger, so the
// reconciler's hot loop never blocks on log I/O. Summary flushes the
// channel and then logs (or suppresses) the final run summary.
type Background struct {
	providerName    string
	suppressSummary bool
	logger          *utils.Logger

	events chan bgEvent
	wg     sync.WaitGroup
}

// NewBackground starts the consumer goroutine and returns a ready
// Background reporter. suppressSummary mirrors the
// defaults.Preferences.SuppressSummaryDialog setting.
func NewBackground(providerName string, suppressSummary bool) *Background {
	b := &Background{
		providerName:    providerName,
		suppressSummary: suppressSummary,
		logger:          utils.GetLogger(),
		events:          make(chan bgEvent, 64),
	}
	b.wg.Add(1)
	go b.drain()
	return b
}

func (b *Background) drain() {
	defer b.wg.Done()
	for ev := range b.events {
		if ev.label {
			b.logger.Debug("sync %s: %s", b.providerName, ev.text)
		} else {
			b.logger.Debug("sync %s: %d/%d", b.providerName, ev.step, ev.outOf)
		}
	}
}

// Tick implements reconcile.Reporter. It never blocks: a full buffer
// drops the tick rather than stall the sync run.
func (b *Background) Tick(step, outOf int) {
	select {
	case b.events <- bgEvent{step: step, outOf: outOf}:
	default:
	}
}

// Label implements reconcile.Reporter.
func (b *Background) Label(text string) {
	select {
	case b.events <- bgEvent{label: true, text: text}:
	default:
	}
}

// Summary implements reconcile.Reporter. It is always the last call a
// Reconciler makes against a given Reporter, so draining the channel
// here is safe.
func (b *Background) Summary(stats reconcile.Stats, log string) {
	close(b.events)
	b.wg.Wait()

	if b.suppressSummary {
		return
	}
	if text := reconcile.FormatSummary(b.providerName, stats, log); text != "" {
		b.logger.Info("%s", text)
	}
}
