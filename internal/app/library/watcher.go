package library

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	zlog "github.com/rs/zerolog/log"
)

// ChangeOp classifies a change to a playlist file.
type ChangeOp string

const (
	ChangeCreated  ChangeOp = "created"
	ChangeModified ChangeOp = "modified"
	ChangeRemoved  ChangeOp = "removed"
)

// Change is a playlist file change seen in the playlists directory.
// Changes made by the store itself are reported too. Rewrites replace the
// file by rename, so they surface as modifications of a known playlist.
type Change struct {
	Name string
	Op   ChangeOp
}

// knownNames tracks the playlists a watcher has seen so that a file
// replaced in place is told apart from a new one.
type knownNames map[string]struct{}

func newKnownNames(names []string) knownNames {
	k := make(knownNames, len(names))
	for _, name := range names {
		k[name] = struct{}{}
	}
	return k
}

// resolve updates the set and turns a Create of a known name into a
// modification.
func (k knownNames) resolve(c Change) Change {
	_, known := k[c.Name]
	switch c.Op {
	case ChangeCreated:
		if known {
			c.Op = ChangeModified
		}
		k[c.Name] = struct{}{}
	case ChangeModified:
		k[c.Name] = struct{}{}
	case ChangeRemoved:
		delete(k, c.Name)
	}
	return c
}

// Watch reports playlist file changes to onChange until ctx is done.
// onChange runs on the watcher goroutine. The directory must exist.
func (s *Store) Watch(ctx context.Context, onChange func(Change)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return errors.Mark(
			errors.Wrapf(err, "failed to watch %s", s.dir),
			ErrDirectoryUnavailable,
		)
	}
	// Listed after Add so no file slips in between.
	names, err := s.ListNames()
	if err != nil {
		_ = watcher.Close()
		return err
	}
	known := newKnownNames(names)
	zlog.Info().Msgf("store: watching playlists directory: dir=%s playlists=%d", s.dir, len(names))

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				zlog.Debug().Msgf("store: watcher stopped: dir=%s", s.dir)
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if c, ok := s.classify(event); ok {
					c = known.resolve(c)
					zlog.Debug().Msgf("store: playlist changed: name=%s op=%s", c.Name, c.Op)
					onChange(c)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				zlog.Warn().Err(err).Msgf("store: watcher error: dir=%s", s.dir)
			}
		}
	}()
	return nil
}

// WatchWhenReady starts Watch as soon as the playlists directory exists,
// checking every interval until ctx is done. It does not create the
// directory; commands do that on first use.
func (s *Store) WatchWhenReady(ctx context.Context, interval time.Duration, onChange func(Change)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		waiting := false
		for {
			if s.dirUsable() {
				err := s.Watch(ctx, onChange)
				if err == nil {
					return
				}
				zlog.Warn().Err(err).Msgf("store: cannot watch playlists directory yet: dir=%s", s.dir)
			} else if !waiting {
				waiting = true
				zlog.Info().Msgf("store: waiting for playlists directory: dir=%s", s.dir)
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// classify maps a raw event to a playlist change. Chmod events and files
// that are not playlists are dropped.
func (s *Store) classify(event fsnotify.Event) (Change, bool) {
	name, ok := s.nameOf(filepath.Base(event.Name))
	if !ok {
		return Change{}, false
	}
	switch {
	case event.Op&fsnotify.Create != 0:
		return Change{Name: name, Op: ChangeCreated}, true
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return Change{Name: name, Op: ChangeRemoved}, true
	case event.Op&fsnotify.Write != 0:
		return Change{Name: name, Op: ChangeModified}, true
	}
	return Change{}, false
}
