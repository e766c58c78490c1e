package astridsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gosynctasks/internal/credentials"
	"gosynctasks/reconcile"
)

// Adapter implements reconcile.RemoteAdapter against one astridsync
// server. It is the engine's sole coupling to the wire protocol and
// to credential resolution.
type Adapter struct {
	cfg    Config
	client *httpClient
}

// New validates cfg, resolves the API token (keyring > env > config,
// per internal/credentials.Resolver), and returns a ready Adapter.
func New(cfg Config) (*Adapter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	token, err := resolveToken(cfg)
	if err != nil {
		return nil, err
	}

	return &Adapter{cfg: cfg, client: newHTTPClient(cfg, token)}, nil
}

// resolveToken follows the same keyring > environment > config
// priority every backend in this module uses.
func resolveToken(cfg Config) (string, error) {
	username := cfg.Username
	if username == "" {
		username = "token"
	}

	resolver := credentials.NewResolver()
	if creds, err := resolver.Resolve(cfg.Name, username, "", nil); err == nil && creds.Password != "" {
		return creds.Password, nil
	}

	if cfg.APIToken != "" {
		return cfg.APIToken, nil
	}

	return "", fmt.Errorf("astridsync API token not found for provider %q (tried: keyring, environment variables, config)\n"+
		"set it with: gosynctasks credentials set %s token --prompt", cfg.Name, cfg.Name)
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	sec := t.Unix()
	return &sec
}

func fromUnixPtr(sec *int64) *time.Time {
	if sec == nil {
		return nil
	}
	t := time.Unix(*sec, 0).UTC()
	return &t
}

func toProxy(provider reconcile.ProviderID, w wireTask) reconcile.TaskProxy {
	return reconcile.TaskProxy{
		ProviderID: provider,
		RemoteID:   w.ID,
		Name:       w.Name,
		Notes:      w.Notes,
		Priority:   w.Priority,
		DueDate:    fromUnixPtr(w.DueDate),
		Completed:  fromUnixPtr(w.CompletedAt),
		Tags:       w.Tags,
		IsDeleted:  w.Deleted,
	}
}

// FetchRemoteTasks implements reconcile.RemoteAdapter.
func (a *Adapter) FetchRemoteTasks(ctx context.Context) ([]reconcile.TaskProxy, error) {
	tasks, err := a.client.listTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]reconcile.TaskProxy, 0, len(tasks))
	for _, w := range tasks {
		out = append(out, toProxy(a.providerID(), w))
	}
	return out, nil
}

// CreateTask implements reconcile.RemoteAdapter. Each call sends a
// freshly generated idempotency key in a single request; the client
// does not retry, so a server can use the key only to de-duplicate a
// delivery of that same request.
func (a *Adapter) CreateTask(ctx context.Context, task reconcile.LocalTask) (string, error) {
	req := createTaskRequest{
		Name:           task.Name,
		Notes:          task.Notes,
		Priority:       task.Priority,
		DueDate:        unixPtr(task.DueDate),
		IdempotencyKey: uuid.NewString(),
	}
	resp, err := a.client.createTask(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.ID, nil
}

// PushTask implements reconcile.RemoteAdapter.
func (a *Adapter) PushTask(ctx context.Context, proxy reconcile.TaskProxy, mergedAgainst *reconcile.TaskProxy, mapping reconcile.SyncMapping) error {
	req := putTaskRequest{
		Name:        proxy.Name,
		Notes:       proxy.Notes,
		Priority:    proxy.Priority,
		DueDate:     unixPtr(proxy.DueDate),
		CompletedAt: unixPtr(proxy.Completed),
		Deleted:     proxy.IsDeleted,
		Tags:        proxy.Tags,
	}
	if mergedAgainst != nil {
		req.IfMatchRemoteVersion = mergedAgainst.RemoteID
	}
	return a.client.putTask(ctx, proxy.RemoteID, req)
}

// RefetchTask implements reconcile.RemoteAdapter.
func (a *Adapter) RefetchTask(ctx context.Context, proxy reconcile.TaskProxy) (reconcile.TaskProxy, error) {
	w, err := a.client.getTask(ctx, proxy.RemoteID)
	if err != nil {
		return reconcile.TaskProxy{}, err
	}
	return toProxy(a.providerID(), w), nil
}

// DeleteTask implements reconcile.RemoteAdapter.
func (a *Adapter) DeleteTask(ctx context.Context, mapping reconcile.SyncMapping) error {
	return a.client.deleteTask(ctx, mapping.RemoteID)
}

// providerID derives a stable ProviderID from the configured provider
// name, so callers don't have to maintain a separate numeric registry
// alongside their provider config.
func (a *Adapter) providerID() reconcile.ProviderID {
	return providerIDFromName(a.cfg.Name)
}

// providerIDFromName hashes name into a ProviderID using FNV-1a,
// stable across process restarts and config reorderings.
func providerIDFromName(name string) reconcile.ProviderID {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(name); i++ {
		h ^= uint64(name[i])
		h *= 1099511628211
	}
	return reconcile.ProviderID(h & 0x7fffffffffffffff)
}

// ProviderID exposes the derived id so the Run Driver can key its
// mapping-store lookups consistently with what the adapter reports.
func (a *Adapter) ProviderID() reconcile.ProviderID { return a.providerID() }
