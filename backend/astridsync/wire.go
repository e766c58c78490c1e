package astridsync

// wireTask is the JSON shape exchanged with the server, the
// astridsync analogue of todoist's TodoistTask.
type wireTask struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Notes       string   `json:"notes,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueDate     *int64   `json:"due_date,omitempty"`   // unix seconds
	CompletedAt *int64   `json:"completed_at,omitempty"`
	Deleted     bool     `json:"deleted,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type listTasksResponse struct {
	Tasks []wireTask `json:"tasks"`
}

type createTaskRequest struct {
	Name           string   `json:"name"`
	Notes          string   `json:"notes,omitempty"`
	Priority       int      `json:"priority,omitempty"`
	DueDate        *int64   `json:"due_date,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IdempotencyKey string   `json:"idempotency_key"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type putTaskRequest struct {
	Name        string   `json:"name"`
	Notes       string   `json:"notes,omitempty"`
	Priority    int      `json:"priority,omitempty"`
	DueDate     *int64   `json:"due_date,omitempty"`
	CompletedAt *int64   `json:"completed_at,omitempty"`
	Deleted     bool     `json:"deleted,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	// IfMatchRemoteVersion carries the conflict-base remote state's
	// identity when this write follows a merge, so the server can, at
	// its discretion, detect a concurrent modification. astridsync
	// itself does not branch on this; it's forwarded for servers that
	// want optimistic concurrency.
	IfMatchRemoteVersion string `json:"if_match_remote_version,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}
