// Package store provides a dependency-free, in-memory reference
// implementation of reconcile.LocalStore, reconcile.TagStore and
// reconcile.MappingStore, used by the reconcile test suite and by any
// caller that doesn't need persistence (e.g. a dry-run preview).
package store

import (
	"fmt"
	"sync"

	"gosynctasks/reconcile"
	"gosynctasks/reconcile/errs"
)

// Memory is a thread-safe, in-memory LocalStore + TagStore +
// MappingStore. The zero value is not usable; use New.
type Memory struct {
	mu sync.Mutex

	nextTaskID TaskIDGen
	tasks      map[reconcile.TaskID]reconcile.LocalTask
	active     map[reconcile.TaskID]struct{} // active ⊆ tasks' keys

	nextTagID TagIDGen
	tags      map[reconcile.TagID]reconcile.Tag
	taskTags  map[reconcile.TaskID]map[reconcile.TagID]struct{}

	mappings map[mappingKey]reconcile.SyncMapping
}

// TaskIDGen and TagIDGen are monotonically increasing id generators.
type TaskIDGen struct{ n int64 }

func (g *TaskIDGen) next() reconcile.TaskID { g.n++; return reconcile.TaskID(g.n) }

type TagIDGen struct{ n int64 }

func (g *TagIDGen) next() reconcile.TagID { g.n++; return reconcile.TagID(g.n) }

type mappingKey struct {
	provider reconcile.ProviderID
	local    reconcile.TaskID
}

// New returns an empty Memory store.
func New() *Memory {
	return &Memory{
		tasks:    make(map[reconcile.TaskID]reconcile.LocalTask),
		active:   make(map[reconcile.TaskID]struct{}),
		tags:     make(map[reconcile.TagID]reconcile.Tag),
		taskTags: make(map[reconcile.TaskID]map[reconcile.TagID]struct{}),
		mappings: make(map[mappingKey]reconcile.SyncMapping),
	}
}

// SeedTask inserts task directly (bypassing id generation quirks) and
// marks it active, returning the assigned id. Intended for test setup.
func (m *Memory) SeedTask(task reconcile.LocalTask) reconcile.TaskID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextTaskID.next()
	task.ID = id
	m.tasks[id] = task
	m.active[id] = struct{}{}
	return id
}

// SeedTag inserts tag directly, returning the assigned id.
func (m *Memory) SeedTag(name string) reconcile.TagID {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextTagID.next()
	m.tags[id] = reconcile.Tag{ID: id, Name: name}
	return id
}

// MarkDeleted soft-deletes task (removes it from the active set while
// leaving it in allTasks until a later hard-delete), mirroring how the
// local store treats a user's delete action before the next sync.
func (m *Memory) MarkDeleted(id reconcile.TaskID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, id)
}

// --- reconcile.LocalStore ---

func (m *Memory) FetchTaskForSync(id reconcile.TaskID) (reconcile.LocalTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return reconcile.LocalTask{}, fmt.Errorf("task %d not found", id)
	}
	return task, nil
}

func (m *Memory) SearchForTaskForSync(name string) (reconcile.LocalTask, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tasks {
		if t.Name == name {
			return t, true, nil
		}
	}
	return reconcile.LocalTask{}, false, nil
}

func (m *Memory) SaveTask(task reconcile.LocalTask) (reconcile.TaskID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == 0 {
		task.ID = m.nextTaskID.next()
	}
	m.tasks[task.ID] = task
	m.active[task.ID] = struct{}{}
	return task.ID, nil
}

func (m *Memory) DeleteTask(id reconcile.TaskID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	delete(m.active, id)
	delete(m.taskTags, id)
	return nil
}

func (m *Memory) GetActiveTaskIdentifiers() ([]reconcile.TaskID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]reconcile.TaskID, 0, len(m.active))
	for id := range m.active {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) GetAllTaskIdentifiers() ([]reconcile.TaskID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]reconcile.TaskID, 0, len(m.tasks))
	for id := range m.tasks {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Memory) ClearUpdatedTaskList(provider reconcile.ProviderID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, mapping := range m.mappings {
		if k.provider == provider {
			mapping.Updated = false
			m.mappings[k] = mapping
		}
	}
	return nil
}

// --- reconcile.TagStore ---

func (m *Memory) GetAllTagsAsMap() (map[reconcile.TagID]reconcile.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[reconcile.TagID]reconcile.Tag, len(m.tags))
	for k, v := range m.tags {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) GetTaskTags(id reconcile.TaskID) ([]reconcile.TagID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := m.taskTags[id]
	out := make([]reconcile.TagID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out, nil
}

func (m *Memory) CreateTag(name string) (reconcile.TagID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextTagID.next()
	m.tags[id] = reconcile.Tag{ID: id, Name: name}
	return id, nil
}

func (m *Memory) AddTag(id reconcile.TaskID, tag reconcile.TagID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.taskTags[id] == nil {
		m.taskTags[id] = make(map[reconcile.TagID]struct{})
	}
	m.taskTags[id][tag] = struct{}{}
	return nil
}

func (m *Memory) RemoveTag(id reconcile.TaskID, tag reconcile.TagID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.taskTags[id], tag)
	return nil
}

// --- reconcile.MappingStore ---

func (m *Memory) GetSyncMapping(provider reconcile.ProviderID) ([]reconcile.SyncMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []reconcile.SyncMapping
	for k, v := range m.mappings {
		if k.provider == provider {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *Memory) SaveSyncMapping(mapping reconcile.SyncMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, existing := range m.mappings {
		if k.provider != mapping.ProviderID {
			continue
		}
		if existing.RemoteID == mapping.RemoteID && k.local != mapping.LocalTaskID {
			return &errs.UniqueViolation{Operation: "SaveSyncMapping"}
		}
	}

	key := mappingKey{provider: mapping.ProviderID, local: mapping.LocalTaskID}
	m.mappings[key] = mapping
	return nil
}

func (m *Memory) DeleteSyncMapping(mapping reconcile.SyncMapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.mappings, mappingKey{provider: mapping.ProviderID, local: mapping.LocalTaskID})
	return nil
}
