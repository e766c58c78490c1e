package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"

	"gosynctasks/backend/astridsync"
	"gosynctasks/internal/utils"
	"gosynctasks/reconcile/defaults"

	_ "embed"
)

var configOnce sync.Once

var globalConfig *Config

var customConfigPath string // Custom config path set via --config flag

//go:embed config.sample.json
var sampleConfig []byte

const (
	CONFIG_DIR_PATH  = "gosynctasks"
	CONFIG_FILE_PATH = "config.json"
	CONFIG_DIR_PERM  = 0755
	CONFIG_FILE_PERM = 0644
)

// Config represents the application configuration: a provider catalog
// for the reconciliation engine plus the shared UI/date preferences.
type Config struct {
	UI         string `json:"ui" validate:"oneof=cli tui"`
	DateFormat string `json:"date_format,omitempty"` // Go time format string, defaults to "2006-01-02"

	// Providers configures the reconcile engine's remote adapters, one
	// astridsync endpoint per provider name.
	Providers map[string]astridsync.Config `json:"providers,omitempty"`
	// DefaultProvider names the entry in Providers that "reconcile"
	// runs against when --provider isn't given.
	DefaultProvider string `json:"default_provider,omitempty"`
	// Preferences holds the reconcile engine's Defaults Policy and
	// Reporter knobs: default reminder, default list, summary
	// suppression, background mode.
	Preferences defaults.Preferences `json:"preferences"`
}

// GetProvider returns the astridsync.Config for name, or the default
// provider's config when name is empty.
func (c *Config) GetProvider(name string) (astridsync.Config, error) {
	if name == "" {
		name = c.DefaultProvider
	}
	if name == "" {
		return astridsync.Config{}, fmt.Errorf("no provider specified and no default_provider configured")
	}
	cfg, ok := c.Providers[name]
	if !ok {
		return astridsync.Config{}, fmt.Errorf("provider %q not found in config", name)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg, nil
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("no providers configured")
	}

	for name, providerCfg := range c.Providers {
		if providerCfg.Name == "" {
			providerCfg.Name = name
		}
		if err := providerCfg.Validate(); err != nil {
			return fmt.Errorf("provider %q: %w", name, err)
		}
	}

	if c.DefaultProvider != "" {
		if _, exists := c.Providers[c.DefaultProvider]; !exists {
			return fmt.Errorf("default_provider %q not found in configured providers", c.DefaultProvider)
		}
	}

	return nil
}

func (c *Config) GetDateFormat() string {
	if c.DateFormat == "" {
		return "2006-01-02" // Default to yyyy-mm-dd
	}
	return c.DateFormat
}

// SetCustomConfigPath sets a custom config path to use instead of the
// default user config directory. If path is empty or ".", it uses
// "./gosynctasks/config.json" (current directory). If path is a
// directory, it looks for "config.json" inside it. If path is a file,
// it uses that file directly. This must be called before GetConfig()
// is called for the first time.
func SetCustomConfigPath(path string) {
	if path == "" || path == "." {
		customConfigPath = filepath.Join(".", CONFIG_DIR_PATH, CONFIG_FILE_PATH)
	} else {
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			customConfigPath = filepath.Join(path, CONFIG_FILE_PATH)
		} else {
			customConfigPath = path
		}
	}
}

func GetConfig() *Config {
	configOnce.Do(func() {
		cfg, err := loadUserOrSampleConfig()
		if err != nil {
			log.Fatal(err)
		}
		globalConfig = cfg
	})
	return globalConfig
}

func loadUserOrSampleConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		log.Fatalf("Config path couldn't be retrieved")
		return nil, err
	}
	configData, err := configDataFromPath(configPath)
	if err != nil {
		log.Fatalf("Config data couldn't be retrieved")
		return nil, err
	}
	return parseConfig(configData, configPath)
}

func GetConfigPath() (string, error) {
	if customConfigPath != "" {
		if _, err := os.Stat(customConfigPath); err == nil {
			return customConfigPath, nil
		}
		// Custom path was set but doesn't exist, still return it
		// (allows creation of config in custom location)
		return customConfigPath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, CONFIG_DIR_PATH, CONFIG_FILE_PATH), nil
}

func createConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), CONFIG_DIR_PERM)
}

func WriteConfigFile(configPath string, data []byte) error {
	return os.WriteFile(configPath, data, CONFIG_FILE_PERM)
}

func createConfigFromSample(configPath string) []byte {
	if err := createConfigDir(configPath); err != nil {
		log.Fatal(err)
	}
	configData := sampleConfig
	if err := WriteConfigFile(configPath, configData); err != nil {
		log.Fatal(err)
	}
	return configData
}

func parseConfig(configData []byte, configPath string) (*Config, error) {
	var configObj Config
	if err := json.Unmarshal(configData, &configObj); err != nil {
		log.Fatalf("Invalid JSON in config file %s: %v", configPath, err)
	}

	if err := configObj.Validate(); err != nil {
		log.Fatalf("Missing field(s) in JSON config file %s: %v", configPath, err)
	}
	return &configObj, nil
}

func configDataFromPath(configPath string) ([]byte, error) {
	configData, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		fmt.Println("No config exist at ", configPath)

		shouldCopySample := utils.PromptYesNo("Do you want to copy config sample to " + configPath + "?")
		if shouldCopySample {
			configData = createConfigFromSample(configPath)
		} else {
			configData = sampleConfig
		}
	}

	return configData, nil
}
