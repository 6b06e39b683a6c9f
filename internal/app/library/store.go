// Package library provides the file-backed playlist store.
package library

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19box-playlist/internal/domain/playlist"
)

const (
	DefaultDir       = "Playlists"
	DefaultExtension = ".txt"

	defaultFileMode fs.FileMode = 0o644
	defaultDirMode  fs.FileMode = 0o755
)

// Options configures a Store.
type Options struct {
	Dir       string      // Playlists directory
	Extension string      // File extension including the dot
	FileMode  fs.FileMode // Permission bits for new playlist files
	FS        FileSystem  // Defaults to OSFileSystem
}

// Store owns the playlists directory. Every read-modify-write on a playlist
// runs under that playlist's lock; different playlists do not block each other.
type Store struct {
	dir      string
	ext      string
	fileMode fs.FileMode
	fs       FileSystem
	locks    *nameLocks
}

// New creates a new Store. The directory is not touched until first use.
func New(opts Options) *Store {
	if opts.Dir == "" {
		opts.Dir = DefaultDir
	}
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if !strings.HasPrefix(opts.Extension, ".") {
		opts.Extension = "." + opts.Extension
	}
	if opts.FileMode == 0 {
		opts.FileMode = defaultFileMode
	}
	if opts.FS == nil {
		opts.FS = OSFileSystem{}
	}
	return &Store{
		dir:      opts.Dir,
		ext:      opts.Extension,
		fileMode: opts.FileMode,
		fs:       opts.FS,
		locks:    newNameLocks(),
	}
}

// Dir returns the playlists directory.
func (s *Store) Dir() string {
	return s.dir
}

// EnsureDirectory creates the playlists directory if it is missing and
// reports whether it is usable afterwards.
func (s *Store) EnsureDirectory() bool {
	info, err := s.fs.Stat(s.dir)
	if err == nil {
		if !info.IsDir() {
			zlog.Warn().Msgf("store: playlists path is not a directory: dir=%s", s.dir)
			return false
		}
		return true
	}
	if !errors.Is(err, fs.ErrNotExist) {
		zlog.Warn().Err(err).Msgf("store: cannot stat playlists directory: dir=%s", s.dir)
		return false
	}

	if err := s.fs.MkdirAll(s.dir, defaultDirMode); err != nil {
		zlog.Warn().Err(err).Msgf("store: cannot create playlists directory: dir=%s", s.dir)
		return false
	}
	zlog.Info().Msgf("store: created playlists directory: dir=%s", s.dir)
	return s.dirUsable()
}

// Exists reports whether a playlist with the given name exists.
func (s *Store) Exists(name string) bool {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return false
	}
	return s.existsLocked(n)
}

// Create creates an empty playlist. It never overwrites an existing one.
func (s *Store) Create(name string) error {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(n)
	defer unlock()

	return s.createLocked(n)
}

// Delete removes a playlist.
func (s *Store) Delete(name string) error {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(n)
	defer unlock()

	if err := s.fs.Remove(s.path(n)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrNotFound, "playlist %s", n)
		}
		zlog.Warn().Err(err).Msgf("store: delete failed: name=%s", n)
		return ioFailure(err, "failed to delete playlist %s", n)
	}
	zlog.Debug().Msgf("store: deleted playlist: name=%s", n)
	return nil
}

// Read loads a playlist. It returns ErrNotFound when there is none.
func (s *Store) Read(name string) (*playlist.Playlist, error) {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(n)
	defer unlock()

	return s.readLocked(n)
}

// ListNames returns the playlist names in the directory, sorted. A missing
// directory yields an empty list; an unreadable one yields an error marked
// ErrDirectoryUnavailable.
func (s *Store) ListNames() ([]string, error) {
	entries, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		zlog.Warn().Err(err).Msgf("store: cannot list playlists: dir=%s", s.dir)
		return nil, errors.Mark(
			errors.Wrapf(err, "failed to list playlists in %s", s.dir),
			ErrDirectoryUnavailable,
		)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if name, ok := s.nameOf(entry.Name()); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Write overwrites an existing playlist with already-serialized content.
func (s *Store) Write(name, content string) error {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(n)
	defer unlock()

	return s.writeLocked(n, content)
}

// Append adds items to the end of a playlist and returns how many were added.
// Duplicates are allowed.
func (s *Store) Append(name string, items []playlist.Item) (int, error) {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	added := normalizeItems(items)
	if len(added) == 0 {
		return 0, errors.Wrapf(ErrNoItems, "append to playlist %s", n)
	}

	unlock := s.locks.lock(n)
	defer unlock()

	p, err := s.readLocked(n)
	if err != nil {
		return 0, err
	}

	combined := make([]playlist.Item, 0, len(p.Items)+len(added))
	combined = append(combined, p.Items...)
	combined = append(combined, added...)

	if err := s.writeLocked(n, playlist.Serialize(combined, p.Shuffle)); err != nil {
		return 0, err
	}
	zlog.Debug().Msgf("store: appended items: name=%s added=%d total=%d", n, len(added), len(combined))
	return len(added), nil
}

// Remove drops every item equal to one of the targets and returns how many
// were removed. When nothing matches the file is left untouched and
// ErrNoMatchesRemoved is returned.
func (s *Store) Remove(name string, targets []playlist.Item) (int, error) {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	normalized := normalizeItems(targets)
	if len(normalized) == 0 {
		return 0, errors.Wrapf(ErrNoItems, "remove from playlist %s", n)
	}
	drop := make(map[playlist.Item]struct{}, len(normalized))
	for _, item := range normalized {
		drop[item] = struct{}{}
	}

	unlock := s.locks.lock(n)
	defer unlock()

	p, err := s.readLocked(n)
	if err != nil {
		return 0, err
	}

	kept := make([]playlist.Item, 0, len(p.Items))
	removed := 0
	for _, item := range p.Items {
		if _, ok := drop[item]; ok {
			removed++
			continue
		}
		kept = append(kept, item)
	}
	if removed == 0 {
		return 0, errors.Wrapf(ErrNoMatchesRemoved, "playlist %s", n)
	}

	if err := s.writeLocked(n, playlist.Serialize(kept, p.Shuffle)); err != nil {
		return 0, err
	}
	zlog.Debug().Msgf("store: removed items: name=%s removed=%d remaining=%d", n, removed, len(kept))
	return removed, nil
}

// SaveSnapshot stores items as a new playlist and returns how many were
// written. Items are normalized like appended ones and those that would not
// read back are dropped. The name must be unused. An empty snapshot is
// rejected before any file is created; if the write fails the new file is
// removed again.
func (s *Store) SaveSnapshot(name string, items []playlist.Item) (int, error) {
	n, err := playlist.NormalizeName(name)
	if err != nil {
		return 0, err
	}

	unlock := s.locks.lock(n)
	defer unlock()

	if s.existsLocked(n) {
		return 0, errors.Wrapf(ErrAlreadyExists, "playlist %s", n)
	}

	lines := normalizeItems(items)
	if len(lines) == 0 {
		return 0, errors.Wrapf(ErrEmptySnapshot, "playlist %s", n)
	}

	if err := s.createLocked(n); err != nil {
		return 0, err
	}
	if err := s.writeLocked(n, playlist.Serialize(lines, false)); err != nil {
		if rmErr := s.fs.Remove(s.path(n)); rmErr != nil {
			zlog.Warn().Err(rmErr).Msgf("store: cannot clean up after failed save: name=%s", n)
		}
		return 0, err
	}
	zlog.Debug().Msgf("store: saved snapshot: name=%s items=%d", n, len(lines))
	return len(lines), nil
}

// nameOf returns the playlist name stored in file. Hidden files, such as
// in-flight temp files, are not playlists.
func (s *Store) nameOf(file string) (string, bool) {
	if !strings.HasSuffix(file, s.ext) {
		return "", false
	}
	name := strings.TrimSuffix(file, s.ext)
	if name == "" || strings.HasPrefix(name, ".") {
		return "", false
	}
	// Files named outside the store, such as "road trip.txt", cannot be
	// reached through a normalized name.
	if n, err := playlist.NormalizeName(name); err != nil || n != name {
		return "", false
	}
	return name, true
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+s.ext)
}

func (s *Store) dirUsable() bool {
	info, err := s.fs.Stat(s.dir)
	return err == nil && info.IsDir()
}

func (s *Store) existsLocked(name string) bool {
	info, err := s.fs.Stat(s.path(name))
	return err == nil && !info.IsDir()
}

func (s *Store) createLocked(name string) error {
	if err := s.fs.CreateExclusive(s.path(name), s.fileMode); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errors.Wrapf(ErrAlreadyExists, "playlist %s", name)
		}
		return s.failure(err, "create", name)
	}
	zlog.Debug().Msgf("store: created playlist: name=%s", name)
	return nil
}

func (s *Store) readLocked(name string) (*playlist.Playlist, error) {
	f, err := s.fs.Open(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "playlist %s", name)
		}
		return nil, s.failure(err, "open", name)
	}
	defer func() {
		_ = f.Close()
	}()

	p, err := playlist.Parse(name, f)
	if err != nil {
		return nil, s.failure(err, "read", name)
	}
	return p, nil
}

func (s *Store) writeLocked(name, content string) error {
	if !s.existsLocked(name) {
		if !s.dirUsable() {
			return errors.Wrapf(ErrDirectoryUnavailable, "write playlist %s", name)
		}
		return errors.Wrapf(ErrNotFound, "playlist %s", name)
	}
	if err := s.fs.WriteFileAtomic(s.path(name), []byte(content), s.fileMode); err != nil {
		return s.failure(err, "write", name)
	}
	zlog.Debug().Msgf("store: wrote playlist: name=%s bytes=%d", name, len(content))
	return nil
}

// failure classifies a filesystem error. A missing parent directory is
// reported as ErrDirectoryUnavailable, everything else as ErrIOFailure.
func (s *Store) failure(err error, op, name string) error {
	if errors.Is(err, fs.ErrNotExist) && !s.dirUsable() {
		return errors.Wrapf(ErrDirectoryUnavailable, "%s playlist %s", op, name)
	}
	zlog.Warn().Err(err).Msgf("store: %s failed: name=%s", op, name)
	return ioFailure(err, "failed to %s playlist %s", op, name)
}

func normalizeItems(items []playlist.Item) []playlist.Item {
	result := make([]playlist.Item, 0, len(items))
	for _, item := range items {
		if normalized, ok := playlist.NormalizeItem(string(item)); ok {
			result = append(result, normalized)
		}
	}
	return result
}
