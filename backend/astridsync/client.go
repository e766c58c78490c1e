package astridsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"gosynctasks/backend"
)

// httpClient wraps HTTP communication with an astridsync server,
// mirroring todoist.APIClient's request/response shape but threading
// context.Context through every call, as reconcile.RemoteAdapter
// requires.
type httpClient struct {
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func newHTTPClient(cfg Config, apiToken string) *httpClient {
	return &httpClient{
		baseURL:  cfg.BaseURL,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: cfg.timeout(),
		},
	}
}

func (c *httpClient) doRequest(ctx context.Context, method, endpoint string, body any) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// decodeError reads an error response body and turns a non-2xx status
// into a *backend.BackendError. The adapter returns it unchanged;
// reconcile.Reconciler.Run classifies a FetchRemoteTasks failure into
// the engine's errs.Kind.
func decodeError(operation string, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	var parsed errorResponse
	message := string(body)
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		message = parsed.Message
	}
	return backend.NewBackendError(operation, resp.StatusCode, message).WithBody(string(body))
}

func (c *httpClient) listTasks(ctx context.Context) ([]wireTask, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError("FetchRemoteTasks", resp)
	}

	var parsed listTasksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Tasks, nil
}

func (c *httpClient) createTask(ctx context.Context, req createTaskRequest) (createTaskResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/tasks", req)
	if err != nil {
		return createTaskResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return createTaskResponse{}, decodeError("CreateTask", resp)
	}

	var parsed createTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return createTaskResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return parsed, nil
}

func (c *httpClient) putTask(ctx context.Context, remoteID string, req putTaskRequest) error {
	resp, err := c.doRequest(ctx, http.MethodPut, "/tasks/"+remoteID, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError("PushTask", resp)
	}
	return nil
}

func (c *httpClient) getTask(ctx context.Context, remoteID string) (wireTask, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/tasks/"+remoteID, nil)
	if err != nil {
		return wireTask{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return wireTask{}, decodeError("RefetchTask", resp)
	}

	var parsed wireTask
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return wireTask{}, fmt.Errorf("decode response: %w", err)
	}
	return parsed, nil
}

func (c *httpClient) deleteTask(ctx context.Context, remoteID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/tasks/"+remoteID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// Idempotent: a 404 here means the task is already gone, which is
	// the caller's desired end state.
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeError("DeleteTask", resp)
	}
	return nil
}
