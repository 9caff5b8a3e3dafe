package tool

import (
	"fmt"
	"os"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/calibre-panel/types"
)

// EnvPrefix is the prefix of environment overrides, e.g. CALIBRE_PANEL_LISTEN.
const EnvPrefix = "CALIBRE_PANEL"

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	configMu      sync.RWMutex
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Listen:        ":8088",
		SettingsPath:  "calibre-settings.yaml",
		SharedFolders: []types.SharedFolder{}, // picker is empty until folders are configured
		ImportCommand: []string{"calibredb", "add", "--recurse", "--library-path", "{library}", "{source}"},
		UpdateCommand: []string{"sh", "-c", "wget -nv -O- https://download.calibre-ebook.com/linux-installer.sh | sh /dev/stdin"},
		JobTTLSeconds: 3600,
		AllowedNetworks: []string{
			"127.0.0.0/8",
			"::1/128",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
			"fc00::/7",
		},
		ActionRate:  1,
		ActionBurst: 2,
	}
}

// DefaultConfig returns the configuration written when no config file exists.
func DefaultConfig() types.AppConfig {
	return defaultConfig()
}

// LoadConfig reads path (or ConfigPath) and applies CALIBRE_PANEL_* environment overrides.
// A missing file is created with default values.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
			return cfg, fmt.Errorf("config file not found, and failed to generate default config: %w", writeErr)
		}
		DefaultLogger.Infof("Created new config file at %s", path)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	case info.IsDir():
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to read environment overrides: %w", err)
	}
	if cfg.JobTTLSeconds <= 0 {
		cfg.JobTTLSeconds = defaultConfig().JobTTLSeconds
	}
	if cfg.ActionBurst <= 0 {
		cfg.ActionBurst = 1
	}

	SetCurrentConfig(cfg)
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// SetCurrentConfig replaces the in-memory configuration.
func SetCurrentConfig(cfg types.AppConfig) {
	configMu.Lock()
	defer configMu.Unlock()
	CurrentConfig = cfg
}

// GetCurrentConfig returns a copy of the in-memory configuration.
func GetCurrentConfig() types.AppConfig {
	configMu.RLock()
	defer configMu.RUnlock()
	return CurrentConfig
}
