// Package config provides configuration loading from YAML files.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Admin    AdminConfig    `yaml:"admin"`
	Storage  StorageConfig  `yaml:"storage"`
	Spotify  SpotifyConfig  `yaml:"spotify"`
	Messages MessagesConfig `yaml:"messages"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr        string      `yaml:"addr" default:":8080"`
	MetricsPath string      `yaml:"metrics_path" default:"/metrics" validate:"omitempty,startswith=/"`
	Hooks       HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// StorageConfig selects the playlist storage backend.
// Settings are decoded by the backend itself.
type StorageConfig struct {
	Type     string         `yaml:"type" default:"file" validate:"oneof=file"`
	Settings map[string]any `yaml:"settings"`
}

// SpotifyConfig represents Spotify API configuration.
// Import is disabled when no credentials are set.
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id" validate:"required_with=ClientSecret"`
	ClientSecret string `yaml:"client_secret" validate:"required_with=ClientID"`
	Market       string `yaml:"market" validate:"omitempty,len=2" default:"JP"`
}

// Enabled reports whether Spotify credentials are configured.
func (s SpotifyConfig) Enabled() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// MessagesConfig represents user-facing reply templates.
// {name}, {count} and {detail} are replaced when a reply is rendered.
type MessagesConfig struct {
	Created              string `yaml:"created" default:"Successfully created playlist {name}!"`
	Deleted              string `yaml:"deleted" default:"Successfully deleted playlist {name}!"`
	Appended             string `yaml:"appended" default:"Successfully added {count} items to playlist {name}!"`
	Removed              string `yaml:"removed" default:"Successfully removed {count} items from playlist {name}!"`
	Saved                string `yaml:"saved" default:"Successfully saved the queue to playlist {name} ({count} items)!"`
	Imported             string `yaml:"imported" default:"Successfully imported {count} items into playlist {name}!"`
	Listed               string `yaml:"listed" default:"Available playlists ({count}):"`
	ListEmpty            string `yaml:"list_empty" default:"There are no playlists in the playlists folder!"`
	Shown                string `yaml:"shown" default:"Playlist {name} ({count} items):"`
	Help                 string `yaml:"help" default:"Playlist management commands:"`
	AlreadyExists        string `yaml:"already_exists" default:"Playlist {name} already exists!"`
	NotFound             string `yaml:"not_found" default:"Playlist {name} could not be found!"`
	DirectoryUnavailable string `yaml:"directory_unavailable" default:"Playlists folder does not exist and could not be created!"`
	ListFailed           string `yaml:"list_failed" default:"Failed to load available playlists!"`
	IOFailure            string `yaml:"io_failure" default:"Unable to update playlist {name}: {detail}"`
	NoMatches            string `yaml:"no_matches" default:"None of the given items were found in playlist {name}."`
	EmptySnapshot        string `yaml:"empty_snapshot" default:"There is nothing in the queue to save!"`
	InvalidName          string `yaml:"invalid_name" default:"{detail} is not a valid playlist name."`
	NoItems              string `yaml:"no_items" default:"No items were given."`
	InvalidArgs          string `yaml:"invalid_args" default:"Usage: {detail}"`
	UnknownAction        string `yaml:"unknown_action" default:"Unknown playlist command: {detail}"`
	ImportDisabled       string `yaml:"import_disabled" default:"Importing is not configured."`
	ImportFailed         string `yaml:"import_failed" default:"Could not read the source playlist: {detail}"`
	DefaultError         string `yaml:"default_error" default:"Something went wrong."`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	if v := os.Getenv("PLAYLISTS_DIR"); v != "" {
		if c.Storage.Settings == nil {
			c.Storage.Settings = make(map[string]any)
		}
		c.Storage.Settings["dir"] = v
	}
}

// GetMessage returns the reply template for the given code.
func (c *Config) GetMessage(code string) string {
	m := c.Messages
	switch code {
	case "created":
		return m.Created
	case "deleted":
		return m.Deleted
	case "appended":
		return m.Appended
	case "removed":
		return m.Removed
	case "saved":
		return m.Saved
	case "imported":
		return m.Imported
	case "listed":
		return m.Listed
	case "list_empty":
		return m.ListEmpty
	case "shown":
		return m.Shown
	case "help":
		return m.Help
	case "already_exists":
		return m.AlreadyExists
	case "not_found":
		return m.NotFound
	case "directory_unavailable":
		return m.DirectoryUnavailable
	case "list_failed":
		return m.ListFailed
	case "io_failure":
		return m.IOFailure
	case "no_matches":
		return m.NoMatches
	case "empty_snapshot":
		return m.EmptySnapshot
	case "invalid_name":
		return m.InvalidName
	case "no_items":
		return m.NoItems
	case "invalid_args":
		return m.InvalidArgs
	case "unknown_action":
		return m.UnknownAction
	case "import_disabled":
		return m.ImportDisabled
	case "import_failed":
		return m.ImportFailed
	default:
		return m.DefaultError
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
