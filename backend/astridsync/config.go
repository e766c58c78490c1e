// Package astridsync is a concrete reconcile.RemoteAdapter speaking a
// small REST task-sync protocol: list all tasks (a full snapshot, no
// cursor), create, put (full replace), and delete, each keyed by a
// server-assigned task id. It is the network edge of the sync engine:
// an HTTP client plus token resolution through internal/credentials.
package astridsync

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config describes one astridsync provider endpoint.
type Config struct {
	// Name identifies this provider for credential resolution and
	// logging (e.g. "work", "personal").
	Name string `validate:"required"`
	// BaseURL is the API root, e.g. "https://sync.example.com/api/v1".
	BaseURL string `validate:"required,url"`
	// Username is a credential-resolution hint; for token-only APIs
	// this is typically "token".
	Username string
	// APIToken is the config-file fallback credential, used only when
	// neither the keyring nor the environment has one (see
	// internal/credentials.Resolver priority order).
	APIToken string
	// Timeout bounds every HTTP call. Zero means 30s.
	Timeout time.Duration `validate:"gte=0"`
}

var validate = validator.New()

// Validate checks Config against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid astridsync config: %w", err)
	}
	return nil
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}
