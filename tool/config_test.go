package tool

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/calibre-panel/types"
)

func TestLoadConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)
	assert.Equal(t, cfg, GetCurrentConfig())

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Listen, again.Listen)
	assert.Equal(t, cfg.ImportCommand, again.ImportCommand)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `listen: ":9000"
settings_path: /etc/calibre/settings.yaml
shared_folders:
  - ref: 6c9e1d2a
    name: books
    path: /srv/books
job_ttl_seconds: 0
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("CALIBRE_PANEL_LISTEN", ":9100")
	t.Setenv("CALIBRE_PANEL_ALLOWED_NETWORKS", "10.1.0.0/16,127.0.0.1/32")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Listen)
	assert.Equal(t, "/etc/calibre/settings.yaml", cfg.SettingsPath)
	assert.Equal(t, []types.SharedFolder{{Ref: "6c9e1d2a", Name: "books", Path: "/srv/books"}}, cfg.SharedFolders)
	assert.Equal(t, []string{"10.1.0.0/16", "127.0.0.1/32"}, cfg.AllowedNetworks)
	assert.Equal(t, DefaultConfig().JobTTLSeconds, cfg.JobTTLSeconds)
	assert.Equal(t, DefaultConfig().UpdateCommand, cfg.UpdateCommand)
}

func TestLoadConfigRejectsDirectory(t *testing.T) {
	_, err := LoadConfig(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")
}

func TestApplyFlags(t *testing.T) {
	cfg := DefaultConfig()
	ApplyFlags(&cfg, types.Config{UseListen: ":1234", UseSettingsPath: "/tmp/s.yaml", SkipAccessFilter: true})

	assert.Equal(t, ":1234", cfg.Listen)
	assert.Equal(t, "/tmp/s.yaml", cfg.SettingsPath)
	assert.Empty(t, cfg.AllowedNetworks)
}

func TestRequestHostname(t *testing.T) {
	r := httptest.NewRequest("GET", "http://nas.local:8088/panel", nil)
	assert.Equal(t, "nas.local", RequestHostname(r, nil))

	r = httptest.NewRequest("GET", "http://[fd00::5]:8088/panel", nil)
	assert.Equal(t, "[fd00::5]", RequestHostname(r, nil))
}

func TestRequestHostnameForwardedHost(t *testing.T) {
	proxies, err := ParseNetworks([]string{"10.0.0.0/8", " "})
	require.NoError(t, err)
	require.Len(t, proxies, 1)

	r := httptest.NewRequest("GET", "http://nas.local:8088/panel", nil)
	r.Header.Set("X-Forwarded-Host", "books.example.org, proxy.lan")

	r.RemoteAddr = "192.168.1.20:40000"
	assert.Equal(t, "nas.local", RequestHostname(r, proxies), "untrusted peer")
	assert.Equal(t, "nas.local", RequestHostname(r, nil), "no proxies configured")

	r.RemoteAddr = "10.1.2.3:40000"
	assert.Equal(t, "books.example.org", RequestHostname(r, proxies))
}

func TestParseNetworksInvalid(t *testing.T) {
	_, err := ParseNetworks([]string{"10.0.0.0/33"})
	assert.Error(t, err)
	assert.False(t, InNetworks("not-an-ip", nil))
}

func TestFastReturnRPC(t *testing.T) {
	assert.Equal(t, types.RPCResponse{Response: 1}, FastReturnRPC(1, nil))
	assert.Equal(t, types.RPCResponse{Error: "boom"}, FastReturnRPC(1, errors.New("boom")))
}
