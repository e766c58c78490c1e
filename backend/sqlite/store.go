// Package sqlite persists reconcile.LocalStore, reconcile.TagStore and
// reconcile.MappingStore to a local SQLite database, the durable
// counterpart to reconcile/store's in-memory reference implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gosynctasks/reconcile"
	"gosynctasks/reconcile/errs"
)

// Store is a SQLite-backed LocalStore + TagStore + MappingStore.
type Store struct {
	db *database
}

// Config selects where the database lives. An empty Path resolves to
// the XDG-compliant default.
type Config struct {
	Path string
}

// Open opens (creating and migrating if necessary) the store at cfg.Path.
func Open(cfg Config) (*Store, error) {
	db, err := openDatabase(cfg.Path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file in use.
func (s *Store) Path() string { return s.db.Path() }

func unixOrNull(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func nullToTime(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0).UTC()
	return &t
}

// --- reconcile.LocalStore ---

func (s *Store) FetchTaskForSync(id reconcile.TaskID) (reconcile.LocalTask, error) {
	row := s.db.QueryRow(`SELECT id, name, notes, priority, due_date, completed_at, deleted, reminder_seconds
		FROM tasks WHERE id = ?`, int64(id))

	var (
		task              reconcile.LocalTask
		rawID             int64
		notes             sql.NullString
		due, completed    sql.NullInt64
		deletedInt        int
		reminderSeconds   int64
	)
	if err := row.Scan(&rawID, &task.Name, &notes, &task.Priority, &due, &completed, &deletedInt, &reminderSeconds); err != nil {
		if err == sql.ErrNoRows {
			return reconcile.LocalTask{}, fmt.Errorf("task %d not found", id)
		}
		return reconcile.LocalTask{}, fmt.Errorf("fetch task %d: %w", id, err)
	}

	task.ID = reconcile.TaskID(rawID)
	task.Notes = notes.String
	task.DueDate = nullToTime(due)
	task.Completed = nullToTime(completed)
	task.Deleted = deletedInt != 0
	task.Reminder = time.Duration(reminderSeconds) * time.Second

	tags, err := s.GetTaskTags(task.ID)
	if err != nil {
		return reconcile.LocalTask{}, err
	}
	task.Tags = tags
	return task, nil
}

func (s *Store) SearchForTaskForSync(name string) (reconcile.LocalTask, bool, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM tasks WHERE name = ? AND active = 1 LIMIT 1`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return reconcile.LocalTask{}, false, nil
	}
	if err != nil {
		return reconcile.LocalTask{}, false, fmt.Errorf("search task by name: %w", err)
	}
	task, err := s.FetchTaskForSync(reconcile.TaskID(id))
	if err != nil {
		return reconcile.LocalTask{}, false, err
	}
	return task, true, nil
}

func (s *Store) SaveTask(task reconcile.LocalTask) (reconcile.TaskID, error) {
	now := time.Now().Unix()
	deletedInt := 0
	if task.Deleted {
		deletedInt = 1
	}

	if task.ID == 0 {
		res, err := s.db.Exec(`INSERT INTO tasks
			(name, notes, priority, due_date, completed_at, deleted, reminder_seconds, active, created_at, modified_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
			task.Name, task.Notes, task.Priority, unixOrNull(task.DueDate), unixOrNull(task.Completed),
			deletedInt, int64(task.Reminder/time.Second), now, now)
		if err != nil {
			return 0, fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("insert task: %w", err)
		}
		return reconcile.TaskID(id), nil
	}

	_, err := s.db.Exec(`UPDATE tasks SET name=?, notes=?, priority=?, due_date=?, completed_at=?,
		deleted=?, reminder_seconds=?, active=1, modified_at=? WHERE id=?`,
		task.Name, task.Notes, task.Priority, unixOrNull(task.DueDate), unixOrNull(task.Completed),
		deletedInt, int64(task.Reminder/time.Second), now, int64(task.ID))
	if err != nil {
		return 0, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return task.ID, nil
}

func (s *Store) DeleteTask(id reconcile.TaskID) error {
	if _, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, int64(id)); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return nil
}

// SoftDelete marks id inactive without purging it, so it still counts
// toward GetAllTaskIdentifiers but drops out of
// GetActiveTaskIdentifiers. Callers set the task's mapping Updated
// flag separately so the next run pushes the deletion.
func (s *Store) SoftDelete(id reconcile.TaskID) error {
	if _, err := s.db.Exec(`UPDATE tasks SET active = 0, deleted = 1, modified_at = ? WHERE id = ?`, time.Now().Unix(), int64(id)); err != nil {
		return fmt.Errorf("soft delete task %d: %w", id, err)
	}
	return nil
}

func (s *Store) GetActiveTaskIdentifiers() ([]reconcile.TaskID, error) {
	return s.queryIDs(`SELECT id FROM tasks WHERE active = 1`)
}

func (s *Store) GetAllTaskIdentifiers() ([]reconcile.TaskID, error) {
	return s.queryIDs(`SELECT id FROM tasks`)
}

func (s *Store) queryIDs(query string, args ...any) ([]reconcile.TaskID, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query task ids: %w", err)
	}
	defer rows.Close()

	var ids []reconcile.TaskID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, reconcile.TaskID(id))
	}
	return ids, rows.Err()
}

func (s *Store) ClearUpdatedTaskList(provider reconcile.ProviderID) error {
	if _, err := s.db.Exec(`UPDATE sync_mappings SET updated = 0 WHERE provider_id = ?`, int64(provider)); err != nil {
		return fmt.Errorf("clear updated flags for provider %d: %w", provider, err)
	}
	return nil
}

// --- reconcile.TagStore ---

func (s *Store) GetAllTagsAsMap() (map[reconcile.TagID]reconcile.Tag, error) {
	rows, err := s.db.Query(`SELECT id, name FROM tags`)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	out := make(map[reconcile.TagID]reconcile.Tag)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out[reconcile.TagID(id)] = reconcile.Tag{ID: reconcile.TagID(id), Name: name}
	}
	return out, rows.Err()
}

func (s *Store) GetTaskTags(id reconcile.TaskID) ([]reconcile.TagID, error) {
	rows, err := s.db.Query(`SELECT tag_id FROM task_tags WHERE task_id = ?`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("list tags for task %d: %w", id, err)
	}
	defer rows.Close()

	var tags []reconcile.TagID
	for rows.Next() {
		var tagID int64
		if err := rows.Scan(&tagID); err != nil {
			return nil, fmt.Errorf("scan task tag: %w", err)
		}
		tags = append(tags, reconcile.TagID(tagID))
	}
	return tags, rows.Err()
}

func (s *Store) CreateTag(name string) (reconcile.TagID, error) {
	res, err := s.db.Exec(`INSERT INTO tags (name, name_lower) VALUES (?, ?)
		ON CONFLICT(name_lower) DO UPDATE SET name_lower = excluded.name_lower`,
		name, strings.ToLower(name))
	if err != nil {
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil || id == 0 {
		var existing int64
		if scanErr := s.db.QueryRow(`SELECT id FROM tags WHERE name_lower = ?`, strings.ToLower(name)).Scan(&existing); scanErr != nil {
			return 0, fmt.Errorf("create tag %q: %w", name, scanErr)
		}
		return reconcile.TagID(existing), nil
	}
	return reconcile.TagID(id), nil
}

func (s *Store) AddTag(id reconcile.TaskID, tag reconcile.TagID) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO task_tags (task_id, tag_id) VALUES (?, ?)`, int64(id), int64(tag))
	if err != nil {
		return fmt.Errorf("add tag %d to task %d: %w", tag, id, err)
	}
	return nil
}

func (s *Store) RemoveTag(id reconcile.TaskID, tag reconcile.TagID) error {
	_, err := s.db.Exec(`DELETE FROM task_tags WHERE task_id = ? AND tag_id = ?`, int64(id), int64(tag))
	if err != nil {
		return fmt.Errorf("remove tag %d from task %d: %w", tag, id, err)
	}
	return nil
}

// --- reconcile.MappingStore ---

func (s *Store) GetSyncMapping(provider reconcile.ProviderID) ([]reconcile.SyncMapping, error) {
	rows, err := s.db.Query(`SELECT local_task_id, remote_id, updated FROM sync_mappings WHERE provider_id = ?`, int64(provider))
	if err != nil {
		return nil, fmt.Errorf("list mappings for provider %d: %w", provider, err)
	}
	defer rows.Close()

	var out []reconcile.SyncMapping
	for rows.Next() {
		var localID int64
		var remoteID string
		var updatedInt int
		if err := rows.Scan(&localID, &remoteID, &updatedInt); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, reconcile.SyncMapping{
			LocalTaskID: reconcile.TaskID(localID),
			ProviderID:  provider,
			RemoteID:    remoteID,
			Updated:     updatedInt != 0,
		})
	}
	return out, rows.Err()
}

func (s *Store) SaveSyncMapping(mapping reconcile.SyncMapping) error {
	updatedInt := 0
	if mapping.Updated {
		updatedInt = 1
	}
	_, err := s.db.Exec(`INSERT INTO sync_mappings (provider_id, local_task_id, remote_id, updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(provider_id, local_task_id) DO UPDATE SET remote_id = excluded.remote_id, updated = excluded.updated`,
		int64(mapping.ProviderID), int64(mapping.LocalTaskID), mapping.RemoteID, updatedInt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return &errs.UniqueViolation{Operation: "SaveSyncMapping"}
		}
		return fmt.Errorf("save mapping for task %d: %w", mapping.LocalTaskID, err)
	}
	return nil
}

func (s *Store) DeleteSyncMapping(mapping reconcile.SyncMapping) error {
	_, err := s.db.Exec(`DELETE FROM sync_mappings WHERE provider_id = ? AND local_task_id = ?`,
		int64(mapping.ProviderID), int64(mapping.LocalTaskID))
	if err != nil {
		return fmt.Errorf("delete mapping for task %d: %w", mapping.LocalTaskID, err)
	}
	return nil
}

func isUniqueConstraintErr(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
