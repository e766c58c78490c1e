package reconcile

import (
	"strings"

	"gosynctasks/reconcile/errs"
)

// syncData is the run-scoped snapshot described in spec §3. It is
// built once at the start of each run by buildSyncData and never
// shared across runs.
type syncData struct {
	provider ProviderID

	mappings []SyncMapping

	activeTasks map[TaskID]struct{}
	allTasks    map[TaskID]struct{}

	remoteIDToMapping map[string]SyncMapping
	localIDToMapping  map[TaskID]SyncMapping

	localChanges map[TaskID]SyncMapping // keyed by local id for stable, mutable membership
	mappedTasks  map[TaskID]struct{}

	remoteChangeMap map[TaskID]TaskProxy
	newRemoteTasks  map[string]TaskProxy

	tags               map[TagID]Tag
	tagsByLowercase    map[string]TagID

	newlyCreatedTasks []TaskID
	deletedTasks      []TaskID

	// remoteByID indexes the run's remote task snapshot by remote id so
	// phase 3 can replace a conflict proxy with its refetched form as
	// an index update rather than list surgery (see spec §9).
	remoteByID map[string]*TaskProxy
	remoteTasks []*TaskProxy
}

// buildSyncData constructs the snapshot. Construction order is fixed:
// mappings -> indices -> remoteChangeMap/newRemoteTasks -> work sets,
// per spec §4.2. Any store read failure is fatal for the run.
func buildSyncData(provider ProviderID, remoteTasks []TaskProxy, local LocalStore, tagStore TagStore, mappingStore MappingStore) (*syncData, error) {
	mappings, err := mappingStore.GetSyncMapping(provider)
	if err != nil {
		return nil, errs.Store("GetSyncMapping", err)
	}

	activeIDs, err := local.GetActiveTaskIdentifiers()
	if err != nil {
		return nil, errs.Store("GetActiveTaskIdentifiers", err)
	}
	allIDs, err := local.GetAllTaskIdentifiers()
	if err != nil {
		return nil, errs.Store("GetAllTaskIdentifiers", err)
	}
	tags, err := tagStore.GetAllTagsAsMap()
	if err != nil {
		return nil, errs.Store("GetAllTagsAsMap", err)
	}

	d := &syncData{
		provider:          provider,
		mappings:          mappings,
		activeTasks:       toSet(activeIDs),
		allTasks:          toSet(allIDs),
		remoteIDToMapping: make(map[string]SyncMapping, len(mappings)),
		localIDToMapping:  make(map[TaskID]SyncMapping, len(mappings)),
		localChanges:      make(map[TaskID]SyncMapping),
		mappedTasks:       make(map[TaskID]struct{}, len(mappings)),
		remoteChangeMap:   make(map[TaskID]TaskProxy),
		newRemoteTasks:    make(map[string]TaskProxy),
		tags:              tags,
		tagsByLowercase:   make(map[string]TagID, len(tags)),
		remoteByID:        make(map[string]*TaskProxy, len(remoteTasks)),
	}

	for _, m := range mappings {
		if m.Updated {
			d.localChanges[m.LocalTaskID] = m
		}
		d.remoteIDToMapping[m.RemoteID] = m
		d.localIDToMapping[m.LocalTaskID] = m
		d.mappedTasks[m.LocalTaskID] = struct{}{}
	}
	for _, t := range tags {
		d.tagsByLowercase[strings.ToLower(t.Name)] = t.ID
	}

	for i := range remoteTasks {
		rt := remoteTasks[i]
		p := new(TaskProxy)
		*p = rt
		d.remoteTasks = append(d.remoteTasks, p)
		d.remoteByID[rt.RemoteID] = p

		if m, ok := d.remoteIDToMapping[rt.RemoteID]; ok {
			d.remoteChangeMap[m.LocalTaskID] = rt
		} else if rt.Name != "" {
			d.newRemoteTasks[rt.Name] = rt
		}
	}

	for id := range d.activeTasks {
		if _, mapped := d.mappedTasks[id]; !mapped {
			d.newlyCreatedTasks = append(d.newlyCreatedTasks, id)
		}
	}
	for id := range d.mappedTasks {
		if _, all := d.allTasks[id]; !all {
			d.deletedTasks = append(d.deletedTasks, id)
		}
	}

	return d, nil
}

func toSet(ids []TaskID) map[TaskID]struct{} {
	s := make(map[TaskID]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}
