// Package defaults fills in the fields a freshly materialized local
// task needs when phase 4 creates it from an unmapped remote task,
// using the user's sync preferences rather than hardcoded zero values.
package defaults

import (
	"time"

	"gosynctasks/reconcile"
)

// Preferences mirrors the sync-related entries of the user's saved
// preferences that the Defaults Policy consults. A nil pointer field
// means "no preference set"; Apply leaves the corresponding LocalTask
// field at its zero value in that case.
type Preferences struct {
	// DefaultReminderSeconds is applied as a LocalTask.Reminder when
	// set and the incoming task has none of its own.
	DefaultReminderSeconds *int `json:"default_reminder_seconds,omitempty"`
	// DefaultListID is read from configuration. LocalTask has no list
	// field, so Apply does not use it and new tasks get no default list.
	DefaultListID *reconcile.ListID `json:"default_list_id,omitempty"`
	// SuppressSummaryDialog, when true, tells the Run Driver's
	// Reporter not to surface the end-of-run Summary even when stats
	// is non-zero.
	SuppressSummaryDialog bool `json:"suppress_summary_dialog,omitempty"`
	// BackgroundMode selects the Background Reporter over the
	// Foreground one in the Run Driver.
	BackgroundMode bool `json:"background_mode,omitempty"`
}

// Apply fills blank (a newly allocated, otherwise-zero LocalTask) with
// the fields preferences specifies, and returns it. It never
// overwrites a field the caller already populated on blank; in
// practice the Reconciler always calls this with a genuinely blank
// task (see reconcile.Reconciler.NewBlankTask), but Apply is written
// to be safe to call on a partially-filled one too.
func Apply(prefs Preferences, blank reconcile.LocalTask) reconcile.LocalTask {
	task := blank

	if task.Reminder == 0 && prefs.DefaultReminderSeconds != nil {
		task.Reminder = time.Duration(*prefs.DefaultReminderSeconds) * time.Second
	}

	return task
}

// Bind returns a reconcile.Reconciler.NewBlankTask-shaped closure that
// applies prefs to a fresh, empty LocalTask. Wire it in as:
//
//	r.NewBlankTask = defaults.Bind(prefs)
func Bind(prefs Preferences) func() reconcile.LocalTask {
	return func() reconcile.LocalTask {
		return Apply(prefs, reconcile.LocalTask{})
	}
}
