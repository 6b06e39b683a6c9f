package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			config: Config{
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "file"},
				Spotify: SpotifyConfig{
					ClientID:     "test-client-id",
					ClientSecret: "test-client-secret",
					Market:       "JP",
				},
			},
			wantErr: false,
		},
		{
			name: "spotify is optional",
			config: Config{
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "file"},
			},
			wantErr: false,
		},
		{
			name: "missing admin token",
			config: Config{
				Storage: StorageConfig{Type: "file"},
			},
			wantErr: true,
			errMsg:  "Token",
		},
		{
			name: "unsupported storage type",
			config: Config{
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "s3"},
			},
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name: "spotify client id without secret",
			config: Config{
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "file"},
				Spotify: SpotifyConfig{ClientID: "test-client-id"},
			},
			wantErr: true,
			errMsg:  "ClientSecret",
		},
		{
			name: "metrics path must be absolute",
			config: Config{
				Server:  ServerConfig{MetricsPath: "metrics"},
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "file"},
			},
			wantErr: true,
			errMsg:  "MetricsPath",
		},
		{
			name: "invalid market length",
			config: Config{
				Admin:   AdminConfig{Token: "test-admin-token"},
				Storage: StorageConfig{Type: "file"},
				Spotify: SpotifyConfig{Market: "JAPAN"},
			},
			wantErr: true,
			errMsg:  "Market",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ADMIN_TOKEN", "PLAYLISTS_DIR", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET"} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9090"
  hooks:
    on_started: ["echo started"]
admin:
  token: "secret"
storage:
  type: file
  settings:
    dir: /var/lib/box/playlists
messages:
  created: "made {name}"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"echo started"}, cfg.Server.Hooks.OnStarted)
	assert.Equal(t, "secret", cfg.Admin.Token)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Equal(t, "/var/lib/box/playlists", cfg.Storage.Settings["dir"])
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.False(t, cfg.Spotify.Enabled())

	// explicit template kept, the rest defaulted
	assert.Equal(t, "made {name}", cfg.GetMessage("created"))
	assert.Equal(t, "Playlist {name} could not be found!", cfg.GetMessage("not_found"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")

	_, err = Parse([]byte("admin: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestParse_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]byte("admin:\n  token: t\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/metrics", cfg.Server.MetricsPath)
	assert.Equal(t, "file", cfg.Storage.Type)
	assert.Nil(t, cfg.Storage.Settings)
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_TOKEN", "env-token")
	t.Setenv("PLAYLISTS_DIR", "/tmp/lists")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg, err := Parse([]byte("admin:\n  token: file-token\n"))
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.Admin.Token)
	assert.Equal(t, "/tmp/lists", cfg.Storage.Settings["dir"])
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.True(t, cfg.Spotify.Enabled())
}

func TestConfig_GetMessage(t *testing.T) {
	clearEnv(t)
	cfg, err := Parse([]byte("admin:\n  token: t\nmessages:\n  default_error: oops\n"))
	require.NoError(t, err)

	tests := []struct {
		code     string
		expected string
	}{
		{code: "deleted", expected: "Successfully deleted playlist {name}!"},
		{code: "no_matches", expected: "None of the given items were found in playlist {name}."},
		{code: "empty_snapshot", expected: "There is nothing in the queue to save!"},
		{code: "no_such_code", expected: "oops"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, cfg.GetMessage(tt.code))
		})
	}
}
