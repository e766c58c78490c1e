package sqlite

// SchemaVersion identifies the current on-disk schema.
const SchemaVersion = 1

// TasksTableSQL stores the synchronization engine's view of a local
// task: the fields reconcile.LocalTask round-trips, plus bookkeeping
// reconcile itself never touches (created_at/modified_at).
const TasksTableSQL = `
CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    notes TEXT,
    priority INTEGER DEFAULT 0,
    due_date INTEGER,
    completed_at INTEGER,
    deleted INTEGER DEFAULT 0,
    reminder_seconds INTEGER DEFAULT 0,
    active INTEGER DEFAULT 1,
    created_at INTEGER,
    modified_at INTEGER
);
`

// TagsTableSQL stores the tag vocabulary. name_lower is the
// case-folded form used for the case-insensitive tag comparisons the
// engine requires.
const TagsTableSQL = `
CREATE TABLE IF NOT EXISTS tags (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    name_lower TEXT NOT NULL UNIQUE
);
`

// TaskTagsTableSQL is the task/tag membership join table.
const TaskTagsTableSQL = `
CREATE TABLE IF NOT EXISTS task_tags (
    task_id INTEGER NOT NULL,
    tag_id INTEGER NOT NULL,
    PRIMARY KEY (task_id, tag_id),
    FOREIGN KEY(task_id) REFERENCES tasks(id) ON DELETE CASCADE,
    FOREIGN KEY(tag_id) REFERENCES tags(id) ON DELETE CASCADE
);
`

// SyncMappingsTableSQL persists reconcile.SyncMapping. Both uniqueness
// invariants from the data model are enforced at the schema level.
const SyncMappingsTableSQL = `
CREATE TABLE IF NOT EXISTS sync_mappings (
    provider_id INTEGER NOT NULL,
    local_task_id INTEGER NOT NULL,
    remote_id TEXT NOT NULL,
    updated INTEGER DEFAULT 0,
    PRIMARY KEY (provider_id, local_task_id),
    UNIQUE (provider_id, remote_id),
    FOREIGN KEY(local_task_id) REFERENCES tasks(id) ON DELETE CASCADE
);
`

// SchemaVersionTableSQL tracks applied schema versions for migrations.
const SchemaVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at INTEGER NOT NULL
);
`

// TasksIndexesSQL indexes the columns the engine filters on.
const TasksIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_tasks_active ON tasks(active);
CREATE INDEX IF NOT EXISTS idx_tasks_name ON tasks(name);
`

// SyncMappingsIndexesSQL indexes the mapping lookup paths the engine
// uses per run (GetSyncMapping scans by provider; the engine also
// resolves by remote id within a provider).
const SyncMappingsIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_sync_mappings_provider ON sync_mappings(provider_id);
CREATE INDEX IF NOT EXISTS idx_sync_mappings_updated ON sync_mappings(provider_id, updated);
`

// AllTableSchemas returns all table creation statements in dependency
// order (referenced tables before their foreign keys).
func AllTableSchemas() []string {
	return []string{
		SchemaVersionTableSQL,
		TasksTableSQL,
		TagsTableSQL,
		TaskTagsTableSQL,
		SyncMappingsTableSQL,
	}
}

// AllIndexes returns all index creation statements.
func AllIndexes() []string {
	return []string{
		TasksIndexesSQL,
		SyncMappingsIndexesSQL,
	}
}

// PragmaStatements returns the pragmas applied on every connection.
func PragmaStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
}
