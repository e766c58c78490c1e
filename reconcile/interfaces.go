package reconcile

import "context"

// LocalStore is the local task/tag store façade the engine reads and
// writes through. Every mutable entity is owned by the implementation;
// the Reconciler holds only transient borrows during a run.
type LocalStore interface {
	FetchTaskForSync(id TaskID) (LocalTask, error)
	// SearchForTaskForSync looks up a local task by exact name for the
	// name-based rescue heuristic. Returns ok=false if none matches.
	SearchForTaskForSync(name string) (task LocalTask, ok bool, err error)
	SaveTask(task LocalTask) (TaskID, error)
	DeleteTask(id TaskID) error
	GetActiveTaskIdentifiers() ([]TaskID, error)
	GetAllTaskIdentifiers() ([]TaskID, error)
	ClearUpdatedTaskList(provider ProviderID) error
}

// TagStore manages the tag vocabulary and per-task tag membership.
type TagStore interface {
	GetAllTagsAsMap() (map[TagID]Tag, error)
	GetTaskTags(id TaskID) ([]TagID, error)
	CreateTag(name string) (TagID, error)
	AddTag(id TaskID, tag TagID) error
	RemoveTag(id TaskID, tag TagID) error
}

// MappingStore persists the SyncMapping table described in spec §3/§6.
type MappingStore interface {
	GetSyncMapping(provider ProviderID) ([]SyncMapping, error)
	// SaveSyncMapping upserts mapping. It returns an *errs.UniqueViolation
	// if doing so would violate the (provider,remoteID) or
	// (provider,localID) uniqueness invariant.
	SaveSyncMapping(mapping SyncMapping) error
	DeleteSyncMapping(mapping SyncMapping) error
}

// AlarmScheduler re-arms local reminders for a task after phase 4
// writes remote state into it. It is an external collaborator the
// engine does not implement; NoopAlarmScheduler is the default.
type AlarmScheduler interface {
	RearmAlarm(task LocalTask) error
}

// NoopAlarmScheduler discards all rearm requests.
type NoopAlarmScheduler struct{}

// RearmAlarm implements AlarmScheduler.
func (NoopAlarmScheduler) RearmAlarm(LocalTask) error { return nil }

// RemoteAdapter is the engine's sole coupling to a specific remote
// task service. All calls may block; callers should pass a context
// with an appropriate deadline/cancellation.
type RemoteAdapter interface {
	// FetchRemoteTasks returns the full remote task snapshot for this
	// run. Failure here is fatal for the run (phase 0).
	FetchRemoteTasks(ctx context.Context) ([]TaskProxy, error)
	// CreateTask creates a remote task and returns its assigned,
	// stable, unique remote id. The engine immediately follows with
	// PushTask on that id.
	CreateTask(ctx context.Context, task LocalTask) (remoteID string, err error)
	// PushTask writes full state to the remote. If mergedAgainst is
	// non-nil, the caller guarantees proxy was produced by merging
	// against it.
	PushTask(ctx context.Context, proxy TaskProxy, mergedAgainst *TaskProxy, mapping SyncMapping) error
	// RefetchTask reads the remote record again after a merged push,
	// to canonicalize what was actually stored remotely.
	RefetchTask(ctx context.Context, proxy TaskProxy) (TaskProxy, error)
	// DeleteTask deletes remotely. Idempotent: deleting an unknown
	// remote id must succeed.
	DeleteTask(ctx context.Context, mapping SyncMapping) error
}

// Reporter receives progress ticks, labels, and the final run summary.
// Tick and Label must not block the calling (worker) goroutine.
type Reporter interface {
	Tick(step, outOf int)
	Label(text string)
	Summary(stats Stats, log string)
}

// NoopReporter discards everything. Useful in tests and for callers
// that don't care about progress.
type NoopReporter struct{}

func (NoopReporter) Tick(int, int)          {}
func (NoopReporter) Label(string)           {}
func (NoopReporter) Summary(Stats, string)  {}
