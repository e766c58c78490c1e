package reconcile

import (
	"fmt"
	"strings"
)

// Stats holds the per-category counters accumulated over one run, per
// spec §4.3/§6. localCreatedTasks and localUpdatedTasks are disjoint by
// construction (tracked as sets during the run, see reconciler.go).
type Stats struct {
	LocalCreatedTasks int
	LocalUpdatedTasks int
	LocalDeletedTasks int

	MergedTasks int

	RemoteCreatedTasks int
	RemoteUpdatedTasks int
	RemoteDeletedTasks int
}

// IsZero reports whether no counter is nonzero, per the run-summary
// suppression rule in spec §6.
func (s Stats) IsZero() bool {
	return s.LocalCreatedTasks == 0 && s.LocalUpdatedTasks == 0 &&
		s.LocalDeletedTasks == 0 && s.MergedTasks == 0 &&
		s.RemoteCreatedTasks == 0 && s.RemoteUpdatedTasks == 0 &&
		s.RemoteDeletedTasks == 0
}

// FormatSummary renders the human-readable run summary described in
// spec §6: a header naming the provider, "on remote server" and
// "on astrid" log sections, then the counts. Returns "" when stats is
// all-zero, so callers can skip emitting anything.
func FormatSummary(providerName string, stats Stats, log string) string {
	if stats.IsZero() {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sync with %s\n\n", providerName)
	b.WriteString(log)
	b.WriteString("\n")

	if stats.LocalCreatedTasks+stats.LocalUpdatedTasks+stats.LocalDeletedTasks > 0 {
		b.WriteString("locally:\n")
		if stats.LocalCreatedTasks > 0 {
			fmt.Fprintf(&b, "  created: %d\n", stats.LocalCreatedTasks)
		}
		if stats.LocalUpdatedTasks > 0 {
			fmt.Fprintf(&b, "  updated: %d\n", stats.LocalUpdatedTasks)
		}
		if stats.LocalDeletedTasks > 0 {
			fmt.Fprintf(&b, "  deleted: %d\n", stats.LocalDeletedTasks)
		}
	}

	if stats.MergedTasks > 0 {
		fmt.Fprintf(&b, "\nmerged: %d\n", stats.MergedTasks)
	}

	if stats.RemoteCreatedTasks+stats.RemoteUpdatedTasks+stats.RemoteDeletedTasks > 0 {
		b.WriteString("\nremotely:\n")
		if stats.RemoteCreatedTasks > 0 {
			fmt.Fprintf(&b, "  created: %d\n", stats.RemoteCreatedTasks)
		}
		if stats.RemoteUpdatedTasks > 0 {
			fmt.Fprintf(&b, "  updated: %d\n", stats.RemoteUpdatedTasks)
		}
		if stats.RemoteDeletedTasks > 0 {
			fmt.Fprintf(&b, "  deleted: %d\n", stats.RemoteDeletedTasks)
		}
	}

	return b.String()
}
