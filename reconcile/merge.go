package reconcile

import "strings"

// Merge resolves a conflict between a local and a remote TaskProxy,
// per spec §4.4. It is field-wise with a last-writer-wins-per-field
// heuristic that has no timestamps to compare (the wire format carries
// none), so it falls back to deterministic, content-based rules:
//
//   - scalars: remote wins unless the local value is "more complete"
//     (see per-field rules below) - never a value neither side had.
//   - tag sets are unioned, case-insensitively.
//   - completion/deletion flags: true wins.
//   - notes: the longer non-empty value wins.
//
// Merge is deterministic for a given (local, remote) pair and
// idempotent: Merge(Merge(l, r), r) == Merge(l, r). It never fails:
// MergeError is never raised, per spec §7.
func Merge(local, remote TaskProxy) TaskProxy {
	merged := remote

	if strings.TrimSpace(local.Name) != "" && remote.Name == "" {
		merged.Name = local.Name
	}

	merged.Notes = mergeNotes(local.Notes, remote.Notes)

	if local.Priority > 0 && (remote.Priority == 0 || local.Priority < remote.Priority) {
		merged.Priority = local.Priority
	}

	if local.DueDate != nil && (remote.DueDate == nil || local.DueDate.After(*remote.DueDate)) {
		merged.DueDate = local.DueDate
	}

	// Completion: true wins on either side.
	if local.Completed != nil && remote.Completed == nil {
		merged.Completed = local.Completed
	}

	merged.IsDeleted = local.IsDeleted || remote.IsDeleted

	merged.Tags = unionTagsCaseInsensitive(local.Tags, remote.Tags)

	return merged
}

// mergeNotes prefers the longer non-empty value; ties go to remote.
func mergeNotes(local, remote string) string {
	if local == "" {
		return remote
	}
	if remote == "" {
		return local
	}
	if len(local) > len(remote) {
		return local
	}
	return remote
}

// unionTagsCaseInsensitive merges two tag-name slices, deduplicating
// case-insensitively while preserving the first-seen casing.
func unionTagsCaseInsensitive(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	add := func(tags []string) {
		for _, t := range tags {
			key := strings.ToLower(t)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, t)
		}
	}
	add(a)
	add(b)
	return out
}
