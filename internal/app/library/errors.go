package library

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/19box-playlist/internal/domain/playlist"
)

// Errors
var (
	ErrAlreadyExists        = errors.New("playlist already exists")
	ErrNotFound             = errors.New("playlist not found")
	ErrDirectoryUnavailable = errors.New("playlists directory unavailable")
	ErrIOFailure            = errors.New("playlist I/O failure")
	ErrNoMatchesRemoved     = errors.New("no matching items to remove")
	ErrEmptySnapshot        = errors.New("cannot save an empty playlist")
	ErrNoItems              = errors.New("no items given")

	// ErrInvalidName is re-exported so callers only need this package.
	ErrInvalidName = playlist.ErrInvalidName
)

// ioFailure wraps a filesystem error and marks it as ErrIOFailure.
func ioFailure(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrIOFailure)
}
