package reconcile_test

import (
	"context"
	"fmt"
	"sync"

	"gosynctasks/reconcile"
)

// fakeAdapter is an in-memory RemoteAdapter used across the reconcile
// test suite. It keeps remote tasks keyed by a generated remote id and
// can be told to fail the next N calls to a given method, to exercise
// the per-task transient-failure paths.
type fakeAdapter struct {
	mu sync.Mutex

	nextID int
	tasks  map[string]reconcile.TaskProxy

	failCreateN int
	failPushN   int
	fetchErr    error

	pushed []reconcile.TaskProxy
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{tasks: make(map[string]reconcile.TaskProxy)}
}

// seed inserts a remote task directly under the given id, bypassing id
// generation, for scenario setup.
func (f *fakeAdapter) seed(id string, p reconcile.TaskProxy) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.RemoteID = id
	f.tasks[id] = p
}

func (f *fakeAdapter) get(id string) (reconcile.TaskProxy, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.tasks[id]
	return p, ok
}

func (f *fakeAdapter) FetchRemoteTasks(ctx context.Context) ([]reconcile.TaskProxy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]reconcile.TaskProxy, 0, len(f.tasks))
	for _, p := range f.tasks {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAdapter) CreateTask(ctx context.Context, task reconcile.LocalTask) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateN > 0 {
		f.failCreateN--
		return "", fmt.Errorf("simulated transient create failure")
	}
	f.nextID++
	id := fmt.Sprintf("remote-%d", f.nextID)
	f.tasks[id] = reconcile.TaskProxy{RemoteID: id, Name: task.Name}
	return id, nil
}

func (f *fakeAdapter) PushTask(ctx context.Context, proxy reconcile.TaskProxy, mergedAgainst *reconcile.TaskProxy, mapping reconcile.SyncMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPushN > 0 {
		f.failPushN--
		return fmt.Errorf("simulated transient push failure")
	}
	f.tasks[proxy.RemoteID] = proxy
	f.pushed = append(f.pushed, proxy)
	return nil
}

func (f *fakeAdapter) RefetchTask(ctx context.Context, proxy reconcile.TaskProxy) (reconcile.TaskProxy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.tasks[proxy.RemoteID]; ok {
		return p, nil
	}
	return proxy, nil
}

func (f *fakeAdapter) DeleteTask(ctx context.Context, mapping reconcile.SyncMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, mapping.RemoteID)
	return nil
}
