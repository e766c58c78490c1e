// Package reconcile implements the two-way task synchronization engine:
// it reconciles a local task store against a remote task service through
// a persisted local/remote mapping table.
package reconcile

import "time"

// TaskID identifies a task in the local store. It is opaque to the
// engine and stable across the task's lifetime.
type TaskID int64

// TagID identifies a tag in the local store.
type TagID int64

// ProviderID identifies a remote task service the engine is syncing
// against. One engine instance handles exactly one provider per run.
type ProviderID int64

// ListID identifies a default destination list/project for newly
// created local tasks, used only by the defaults policy.
type ListID string

// Tag is a user-visible label. Tag name comparison for sync purposes
// is case-insensitive.
type Tag struct {
	ID   TagID
	Name string
}

// LocalTask is the local store's view of a task, read and written by
// the engine through LocalStore. Phase 4 writes name, notes, priority,
// due date, completion and deletion from the remote; Reminder is not
// synced and round-trips untouched.
type LocalTask struct {
	ID          TaskID
	Name        string
	Notes       string
	Priority    int
	DueDate     *time.Time
	Completed   *time.Time
	Deleted     bool
	Tags        []TagID
	Reminder    time.Duration
}

// TaskProxy is the wire-neutral shape exchanged with the RemoteAdapter.
// It is the only form in which remote state is expressed to the
// Reconciler; TaskProxy values are built per run and discarded.
type TaskProxy struct {
	ProviderID ProviderID
	RemoteID   string
	Name       string
	Notes      string
	Priority   int
	DueDate    *time.Time
	Completed  *time.Time
	Tags       []string
	IsDeleted  bool
}

// SyncMapping is the persisted correspondence between a local task and
// a provider's remote task.
//
// Invariants (enforced by MappingStore implementations):
//   - (ProviderID, RemoteID) is unique.
//   - (ProviderID, LocalTaskID) is unique.
//   - exists iff the local task has been successfully associated with
//     a remote task at least once.
type SyncMapping struct {
	LocalTaskID TaskID
	ProviderID  ProviderID
	RemoteID    string
	Updated     bool
}

// key identifies a mapping's position in the local-id index.
func (m SyncMapping) key() TaskID { return m.LocalTaskID }
