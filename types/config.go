package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Listen          string         `yaml:"listen" envconfig:"LISTEN"`
	SettingsPath    string         `yaml:"settings_path" envconfig:"SETTINGS_PATH"`
	SharedFolders   []SharedFolder `yaml:"shared_folders" ignored:"true"`
	ImportCommand   []string       `yaml:"import_command" envconfig:"IMPORT_COMMAND"`
	UpdateCommand   []string       `yaml:"update_command" envconfig:"UPDATE_COMMAND"`
	ApplyCommand    []string       `yaml:"apply_command,omitempty" envconfig:"APPLY_COMMAND"`
	JobTTLSeconds   int            `yaml:"job_ttl_seconds" envconfig:"JOB_TTL_SECONDS"`
	AllowedNetworks []string       `yaml:"allowed_networks" envconfig:"ALLOWED_NETWORKS"`
	TrustedProxies  []string       `yaml:"trusted_proxies,omitempty" envconfig:"TRUSTED_PROXIES"`
	AdminUser       string         `yaml:"admin_user,omitempty" envconfig:"ADMIN_USER"`
	AdminPassword   string         `yaml:"admin_password,omitempty" envconfig:"ADMIN_PASSWORD"`
	ActionRate      float64        `yaml:"action_rate" envconfig:"ACTION_RATE"` // action starts per second
	ActionBurst     int            `yaml:"action_burst" envconfig:"ACTION_BURST"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log              string
	UseConfigPath    string
	UseListen        string
	UseSettingsPath  string
	SkipAccessFilter bool // if true, accept requests from any network.
}
