package library

import (
	"io/fs"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/infra/config"
)

// FileStoreSettings holds the settings of the "file" storage type.
type FileStoreSettings struct {
	Dir       string `mapstructure:"dir" default:"Playlists" validate:"required"`
	Extension string `mapstructure:"extension" default:".txt" validate:"required,startswith=."`
	FileMode  uint32 `mapstructure:"file_mode" default:"420" validate:"gt=0,lte=511"`
}

// NewFromConfig creates a Store from the storage configuration.
func NewFromConfig(cfg config.StorageConfig) (*Store, error) {
	switch cfg.Type {
	case "", "file":
	default:
		return nil, errors.Newf("unsupported storage type: %s", cfg.Type)
	}

	var settings FileStoreSettings
	if err := mapstructure.WeakDecode(cfg.Settings, &settings); err != nil {
		return nil, errors.Wrap(err, "failed to decode storage settings")
	}
	if err := defaults.Set(&settings); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(settings); err != nil {
		zlog.Error().Msgf("storage settings validation failed: %v", err)
		return nil, errors.Wrap(err, "validation failed")
	}
	zlog.Debug().Msgf("store settings: %+v", settings)

	return New(Options{
		Dir:       settings.Dir,
		Extension: settings.Extension,
		FileMode:  fs.FileMode(settings.FileMode),
	}), nil
}
