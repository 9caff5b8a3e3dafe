package types

// SharedFolderNone is the picker value meaning "no shared folder selected".
const SharedFolderNone = "none"

const (
	DefaultPort      = 8080
	DefaultCoverSize = "600x800"
)

// Settings is the Calibre configuration record persisted by the settings service.
// Field names follow the form field names (data.sharedfolderref etc.).
type Settings struct {
	Enable          bool   `json:"enable" yaml:"enable"`
	SharedFolderRef string `json:"data.sharedfolderref" yaml:"sharedfolderref" binding:"required_if=Enable true"`
	Port            int    `json:"port" yaml:"port" binding:"min=1,max=65535"`
	Username        string `json:"username" yaml:"username"`
	Password        string `json:"password" yaml:"password"`
	CoverSize       string `json:"coversize" yaml:"coversize"`
	ShowTab         bool   `json:"showtab" yaml:"showtab"`
}

// DefaultSettings returns the record used before anything was saved.
func DefaultSettings() Settings {
	return Settings{
		Enable:          false,
		SharedFolderRef: SharedFolderNone,
		Port:            DefaultPort,
		ShowTab:         false,
	}
}

// EffectiveCoverSize returns the configured cover size or the default one when empty.
func (s Settings) EffectiveCoverSize() string {
	if s.CoverSize == "" {
		return DefaultCoverSize
	}
	return s.CoverSize
}

// HasSharedFolder reports whether ref points at a concrete shared folder.
func HasSharedFolder(ref string) bool {
	return ref != "" && ref != SharedFolderNone
}

// ImportParams is the sole parameter of the doImport action.
type ImportParams struct {
	SharedFolderRef string `json:"sharedfolderref"`
}

// SharedFolder is an entry offered by the shared folder picker.
type SharedFolder struct {
	Ref  string `json:"uuid" yaml:"ref"`
	Name string `json:"name" yaml:"name"`
	Path string `json:"path" yaml:"path"`
}
