package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gosynctasks/backend"
	"gosynctasks/reconcile/errs"
)

// Reconciler executes the four-phase sync algorithm described in
// spec §4.3 against one provider's RemoteAdapter and the local stores.
// A Reconciler is stateless between runs; all mutable state lives in
// the syncData built for that run.
type Reconciler struct {
	Local    LocalStore
	Tags     TagStore
	Mappings MappingStore
	Adapter  RemoteAdapter
	Reporter Reporter
	Alarms   AlarmScheduler

	// NewBlankTask materializes a fresh local task for a remote create
	// with no matching local task, before remote fields are written
	// into it (spec §4.3 phase 4 step 1, §4.7 Defaults Policy). It
	// defaults to an empty LocalTask; callers that want preference
	// defaults applied should set this to defaults.Apply bound to
	// their loaded Preferences.
	NewBlankTask func() LocalTask
}

// NewReconciler wires the collaborators the engine needs. Reporter
// defaults to NoopReporter and Alarms to NoopAlarmScheduler when nil.
func NewReconciler(local LocalStore, tags TagStore, mappings MappingStore, adapter RemoteAdapter, reporter Reporter, alarms AlarmScheduler) *Reconciler {
	if reporter == nil {
		reporter = NoopReporter{}
	}
	if alarms == nil {
		alarms = NoopAlarmScheduler{}
	}
	return &Reconciler{Local: local, Tags: tags, Mappings: mappings, Adapter: adapter, Reporter: reporter, Alarms: alarms, NewBlankTask: applyDefaultsBlank}
}

// Run performs one end-to-end sync for provider, fetching remote tasks
// through the adapter, building the SyncData snapshot, and executing
// phases 1-4 strictly in order. Fetch and SyncData-construction errors
// abort the run and are returned. Adapter failures on a single task are
// logged to the returned log and do not abort; so are local store
// failures in phases 2 and 3. A local store failure in phase 1 or 4
// aborts the run and is returned as an errs.KindStore error.
//
// State machine (spec §4.8), realized as phase-ordering rather than an
// explicit per-task enum:
//   UNMAPPED_LOCAL + name-matches-remote -> MAPPED          (phase 1 rescue)
//   UNMAPPED_LOCAL + otherwise           -> MAPPED          (phase 1 create)
//   MAPPED + locally deleted             -> DELETED_LOCAL -> DONE (phase 2)
//   MAPPED + locally dirty               -> MAPPED          (phase 3 push)
//   UNMAPPED_REMOTE + isDeleted          -> DONE             (phase 4 short-circuit)
//   MAPPED + remote isDeleted            -> DELETED_REMOTE -> DONE (phase 4)
func (r *Reconciler) Run(ctx context.Context, provider ProviderID) (Stats, string, error) {
	if r.NewBlankTask == nil {
		r.NewBlankTask = applyDefaultsBlank
	}
	if r.Reporter == nil {
		r.Reporter = NoopReporter{}
	}
	if r.Alarms == nil {
		r.Alarms = NoopAlarmScheduler{}
	}
	remoteTasks, err := r.Adapter.FetchRemoteTasks(ctx)
	if err != nil {
		var backendErr *backend.BackendError
		if errors.As(err, &backendErr) && backendErr.IsUnauthorized() {
			return Stats{}, "", errs.Auth("FetchRemoteTasks", err)
		}
		return Stats{}, "", errs.Remote("FetchRemoteTasks", err)
	}

	data, err := buildSyncData(provider, remoteTasks, r.Local, r.Tags, r.Mappings)
	if err != nil {
		return Stats{}, "", err
	}

	var stats Stats
	var log strings.Builder
	log.WriteString(">> on remote server:\n")

	createdSet := make(map[TaskID]struct{})
	updatedSet := make(map[TaskID]struct{})

	if err := r.phaseCreate(ctx, data, &stats, &log); err != nil {
		return stats, log.String(), err
	}
	if ctx.Err() != nil {
		return stats, log.String(), ctx.Err()
	}

	r.phaseDelete(ctx, data, &stats, &log)
	if ctx.Err() != nil {
		return stats, log.String(), ctx.Err()
	}

	r.phaseUpdate(ctx, data, &stats, &log)
	if ctx.Err() != nil {
		return stats, log.String(), ctx.Err()
	}

	log.WriteString("\n>> on astrid:\n")
	if err := r.phaseRemoteApply(ctx, data, &stats, &log, createdSet, updatedSet); err != nil {
		return stats, log.String(), err
	}

	// Created and updated are kept disjoint as sets: a task phase 4
	// created or newly mapped counts as created only (spec §4.3/§9).
	for id := range createdSet {
		delete(updatedSet, id)
	}
	stats.LocalUpdatedTasks = len(updatedSet)
	stats.LocalCreatedTasks = len(createdSet)

	if err := r.Local.ClearUpdatedTaskList(provider); err != nil {
		return stats, log.String(), errs.Store("ClearUpdatedTaskList", err)
	}

	r.Reporter.Summary(stats, log.String())
	return stats, log.String(), nil
}

// phaseCreate is phase 1 (CREATE, local -> remote) of spec §4.3.
func (r *Reconciler) phaseCreate(ctx context.Context, data *syncData, stats *Stats, log *strings.Builder) error {
	total := len(data.newlyCreatedTasks)
	for i, localID := range data.newlyCreatedTasks {
		if ctx.Err() != nil {
			return nil
		}
		task, err := r.Local.FetchTaskForSync(localID)
		if err != nil {
			return errs.Store("FetchTaskForSync", err)
		}
		r.Reporter.Label("sending local task: " + task.Name)
		r.Reporter.Tick(i, total)

		if remoteTask, ok := data.newRemoteTasks[task.Name]; ok {
			mapping := SyncMapping{LocalTaskID: localID, ProviderID: data.provider, RemoteID: remoteTask.RemoteID}
			if err := r.Mappings.SaveSyncMapping(mapping); err != nil && !errs.IsUniqueViolation(err) {
				return errs.Store("SaveSyncMapping", err)
			}
			data.localChanges[localID] = mapping
			data.localIDToMapping[localID] = mapping
			data.remoteIDToMapping[remoteTask.RemoteID] = mapping
			data.mappedTasks[localID] = struct{}{}
			data.remoteChangeMap[localID] = remoteTask
			continue
		}

		remoteID, err := r.Adapter.CreateTask(ctx, task)
		if err != nil {
			log.WriteString(fmt.Sprintf("error sending '%s'\n", task.Name))
			continue
		}
		mapping := SyncMapping{LocalTaskID: localID, ProviderID: data.provider, RemoteID: remoteID}
		if err := r.Mappings.SaveSyncMapping(mapping); err != nil && !errs.IsUniqueViolation(err) {
			return errs.Store("SaveSyncMapping", err)
		}
		data.localIDToMapping[localID] = mapping
		data.remoteIDToMapping[remoteID] = mapping
		data.mappedTasks[localID] = struct{}{}

		proxy := r.buildProxy(data.provider, remoteID, task)
		if err := r.Adapter.PushTask(ctx, proxy, nil, mapping); err != nil {
			log.WriteString(fmt.Sprintf("error sending '%s'\n", task.Name))
			continue
		}

		log.WriteString(fmt.Sprintf("added '%s'\n", task.Name))
		stats.RemoteCreatedTasks++
	}
	return nil
}

// phaseDelete is phase 2 (DELETE, local -> remote) of spec §4.3.
func (r *Reconciler) phaseDelete(ctx context.Context, data *syncData, stats *Stats, log *strings.Builder) {
	total := len(data.deletedTasks)
	for i, localID := range data.deletedTasks {
		if ctx.Err() != nil {
			return
		}
		mapping, ok := data.localIDToMapping[localID]
		if !ok {
			continue
		}
		r.Reporter.Tick(i, total)

		if err := r.Adapter.DeleteTask(ctx, mapping); err != nil {
			log.WriteString(fmt.Sprintf("error deleting id #%d\n", localID))
			continue
		}
		if err := r.Mappings.DeleteSyncMapping(mapping); err != nil {
			log.WriteString(fmt.Sprintf("error deleting id #%d\n", localID))
			continue
		}

		delete(data.localChanges, localID)
		delete(data.localIDToMapping, localID)
		delete(data.remoteIDToMapping, mapping.RemoteID)
		delete(data.remoteChangeMap, localID)
		delete(data.mappedTasks, localID)
		delete(data.remoteByID, mapping.RemoteID)

		log.WriteString(fmt.Sprintf("deleted id #%d\n", localID))
		stats.RemoteDeletedTasks++
	}
}

// phaseUpdate is phase 3 (UPDATE, local -> remote, with merge) of
// spec §4.3.
func (r *Reconciler) phaseUpdate(ctx context.Context, data *syncData, stats *Stats, log *strings.Builder) {
	total := len(data.localChanges)
	i := 0
	for localID, mapping := range data.localChanges {
		if ctx.Err() != nil {
			return
		}
		task, err := r.Local.FetchTaskForSync(localID)
		if err != nil {
			log.WriteString(fmt.Sprintf("error sending id #%d\n", localID))
			i++
			continue
		}
		r.Reporter.Label("sending local task: " + task.Name)
		r.Reporter.Tick(i, total)
		i++

		local := r.buildProxy(data.provider, mapping.RemoteID, task)

		var conflict *TaskProxy
		if remoteTask, ok := data.remoteChangeMap[localID]; ok {
			merged := Merge(local, remoteTask)
			local = merged
			c := remoteTask
			conflict = &c
			stats.MergedTasks++
		}

		if err := r.Adapter.PushTask(ctx, local, conflict, mapping); err != nil {
			log.WriteString(fmt.Sprintf("error sending '%s'\n", task.Name))
			continue
		}

		if conflict != nil {
			log.WriteString(fmt.Sprintf("merged '%s'\n", task.Name))
			refetched, err := r.Adapter.RefetchTask(ctx, *conflict)
			if err == nil {
				if p, ok := data.remoteByID[conflict.RemoteID]; ok {
					*p = refetched
				}
			}
		} else {
			log.WriteString(fmt.Sprintf("updated '%s'\n", task.Name))
			stats.RemoteUpdatedTasks++
		}
	}
}

// phaseRemoteApply is phase 4 (REMOTE-APPLY, remote -> local) of
// spec §4.3.
func (r *Reconciler) phaseRemoteApply(ctx context.Context, data *syncData, stats *Stats, log *strings.Builder, created, updated map[TaskID]struct{}) error {
	total := len(data.remoteTasks)
	for i, proxyPtr := range data.remoteTasks {
		if ctx.Err() != nil {
			return nil
		}
		remoteTask := *proxyPtr
		if remoteTask.Name != "" {
			r.Reporter.Label("updating local tasks: " + remoteTask.Name)
		} else {
			r.Reporter.Label("updating local tasks")
		}
		r.Reporter.Tick(i, total)

		mapping, hasMapping := data.remoteIDToMapping[remoteTask.RemoteID]

		var localID TaskID
		var isNewLocal bool

		if !hasMapping {
			if remoteTask.IsDeleted {
				continue
			}
			if found, ok, err := r.Local.SearchForTaskForSync(remoteTask.Name); err == nil && ok {
				localID = found.ID
				if m, ok := data.localIDToMapping[localID]; ok {
					mapping = m
					hasMapping = true
				}
			} else {
				isNewLocal = true
			}
		} else {
			if remoteTask.IsDeleted {
				if err := r.Local.DeleteTask(mapping.LocalTaskID); err != nil {
					return errs.Store("DeleteTask", err)
				}
				if err := r.Mappings.DeleteSyncMapping(mapping); err != nil {
					return errs.Store("DeleteSyncMapping", err)
				}
				delete(data.localIDToMapping, mapping.LocalTaskID)
				delete(data.remoteIDToMapping, remoteTask.RemoteID)
				log.WriteString(fmt.Sprintf("deleted %s\n", remoteTask.Name))
				stats.LocalDeletedTasks++
				continue
			}
			localID = mapping.LocalTaskID
		}

		var task LocalTask
		var fieldsChanged bool
		if isNewLocal {
			task = r.NewBlankTask()
			fieldsChanged = true
		} else {
			var err error
			task, err = r.Local.FetchTaskForSync(localID)
			if err != nil {
				return errs.Store("FetchTaskForSync", err)
			}
			// A full remote snapshot repeats already-applied tasks on
			// every run; only a genuine field difference counts as a
			// local update, or the idempotence law (spec §8) breaks.
			fieldsChanged = !localTaskMatchesProxy(task, remoteTask)
		}

		if fieldsChanged {
			writeProxyToTask(&task, remoteTask)
			savedID, err := r.Local.SaveTask(task)
			if err != nil {
				return errs.Store("SaveTask", err)
			}
			localID = savedID
		}

		tagsChanged, err := r.reconcileTags(data, localID, remoteTask.Tags)
		if err != nil {
			return err
		}

		changed := fieldsChanged || tagsChanged
		if changed {
			switch {
			case isNewLocal:
				log.WriteString(fmt.Sprintf("added %s\n", remoteTask.Name))
			case !hasMapping:
				log.WriteString(fmt.Sprintf("merged %s\n", remoteTask.Name))
			default:
				log.WriteString(fmt.Sprintf("updated '%s'\n", remoteTask.Name))
			}
			updated[localID] = struct{}{}
		}

		if !hasMapping {
			if _, already := data.localIDToMapping[localID]; !already {
				newMapping := SyncMapping{LocalTaskID: localID, ProviderID: data.provider, RemoteID: remoteTask.RemoteID}
				if err := r.Mappings.SaveSyncMapping(newMapping); err != nil {
					if !errs.IsUniqueViolation(err) {
						return errs.Store("SaveSyncMapping", err)
					}
					// Swallowed per spec §7/§9: the next run's
					// name-based rescue or remote-id index resolves it.
				} else {
					data.localIDToMapping[localID] = newMapping
					data.remoteIDToMapping[remoteTask.RemoteID] = newMapping
				}
			}
			created[localID] = struct{}{}
		}

		if changed {
			if err := r.Alarms.RearmAlarm(task); err != nil {
				log.WriteString(fmt.Sprintf("warning: failed to rearm alarm for '%s'\n", remoteTask.Name))
			}
		}
	}
	return nil
}

// reconcileTags implements the tag reconciliation rule of spec §4.3
// step 4: lowercase each incoming tag name, create any tag missing
// from the index, compute add/remove sets, apply removals then
// additions. It reports whether the task's tag set actually changed,
// so a remote snapshot that repeats an already-applied tag set does
// not count as a local update.
func (r *Reconciler) reconcileTags(data *syncData, localID TaskID, remoteTagNames []string) (bool, error) {
	wantTagIDs := make(map[TagID]struct{}, len(remoteTagNames))
	for _, name := range remoteTagNames {
		lower := strings.ToLower(name)
		id, ok := data.tagsByLowercase[lower]
		if !ok {
			created, err := r.Tags.CreateTag(name)
			if err != nil {
				return false, errs.Store("CreateTag", err)
			}
			data.tagsByLowercase[lower] = created
			id = created
		}
		wantTagIDs[id] = struct{}{}
	}

	currentTagIDs, err := r.Tags.GetTaskTags(localID)
	if err != nil {
		return false, errs.Store("GetTaskTags", err)
	}
	current := make(map[TagID]struct{}, len(currentTagIDs))
	for _, id := range currentTagIDs {
		current[id] = struct{}{}
	}

	var changed bool
	for id := range current {
		if _, want := wantTagIDs[id]; !want {
			if err := r.Tags.RemoveTag(localID, id); err != nil {
				return false, errs.Store("RemoveTag", err)
			}
			changed = true
		}
	}
	for id := range wantTagIDs {
		if _, have := current[id]; !have {
			if err := r.Tags.AddTag(localID, id); err != nil {
				return false, errs.Store("AddTag", err)
			}
			changed = true
		}
	}
	return changed, nil
}

// buildProxy converts the local store's view of a task into the
// wire-neutral TaskProxy form, attaching its tags as strings.
func (r *Reconciler) buildProxy(provider ProviderID, remoteID string, task LocalTask) TaskProxy {
	var tagNames []string
	if r.Tags != nil {
		if allTags, err := r.Tags.GetAllTagsAsMap(); err == nil {
			for _, tagID := range task.Tags {
				if t, ok := allTags[tagID]; ok {
					tagNames = append(tagNames, t.Name)
				}
			}
		}
	}
	return TaskProxy{
		ProviderID: provider,
		RemoteID:   remoteID,
		Name:       task.Name,
		Notes:      task.Notes,
		Priority:   task.Priority,
		DueDate:    task.DueDate,
		Completed:  task.Completed,
		Tags:       tagNames,
		IsDeleted:  task.Deleted,
	}
}

// writeProxyToTask writes remote state into a local task in place, the
// Go analogue of TaskProxy#writeToTaskModel.
func writeProxyToTask(task *LocalTask, proxy TaskProxy) {
	task.Name = proxy.Name
	task.Notes = proxy.Notes
	task.Priority = proxy.Priority
	task.DueDate = proxy.DueDate
	task.Completed = proxy.Completed
	task.Deleted = proxy.IsDeleted
}

// localTaskMatchesProxy reports whether task already reflects every
// field a remote proxy would write into it, i.e. applying proxy would
// be a no-op. Tags are compared separately by reconcileTags.
func localTaskMatchesProxy(task LocalTask, proxy TaskProxy) bool {
	return task.Name == proxy.Name &&
		task.Notes == proxy.Notes &&
		task.Priority == proxy.Priority &&
		timePtrEqual(task.DueDate, proxy.DueDate) &&
		timePtrEqual(task.Completed, proxy.Completed) &&
		task.Deleted == proxy.IsDeleted
}

// timePtrEqual compares two possibly-nil *time.Time values.
func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// applyDefaultsBlank returns a blank LocalTask. It is the default
// NewBlankTask; the reconcile CLI command (cmd/gosynctasks) replaces it
// with defaults.Bind so preferences are applied.
func applyDefaultsBlank() LocalTask {
	return LocalTask{}
}
