// Package snapshot turns a view of the playback queue into playlist items.
package snapshot

import (
	"github.com/osa030/19box-playlist/internal/domain/playlist"
	"github.com/osa030/19box-playlist/internal/domain/track"
)

// QueueView is a read-only view of the playback queue. Snapshot must return
// one consistent view of the current track and the pending tracks.
type QueueView interface {
	Snapshot() (current *track.QueuedTrack, pending []track.QueuedTrack)
}

// Build returns the current track (if any) followed by the pending tracks in
// queue order, each reduced to its URL. Entries without a URL are skipped.
// The result is never nil.
func Build(current *track.QueuedTrack, pending []track.QueuedTrack) []playlist.Item {
	items := make([]playlist.Item, 0, len(pending)+1)
	if current != nil && current.URL() != "" {
		items = append(items, playlist.Item(current.URL()))
	}
	for _, q := range pending {
		if q.URL() == "" {
			continue
		}
		items = append(items, playlist.Item(q.URL()))
	}
	return items
}

// Capture reads the view once and builds the snapshot from it.
func Capture(view QueueView) []playlist.Item {
	if view == nil {
		return []playlist.Item{}
	}
	current, pending := view.Snapshot()
	return Build(current, pending)
}
