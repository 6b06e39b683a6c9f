// Package track provides the Track domain entity as seen by the playback engine.
package track

import "time"

// Track represents the track info the playback engine exposes.
type Track struct {
	ID       string        // Source-specific identifier
	Title    string        // Track title
	Author   string        // Artist or uploader
	URI      string        // Playable URI
	Duration time.Duration // Track duration
	Source   string        // Source name (e.g. "youtube", "spotify", "http")
}

// Requester represents the person who requested the track.
type Requester struct {
	ID   string // External user ID
	Name string // Display name
}

// QueuedTrack represents a track in the playback queue.
type QueuedTrack struct {
	Track     Track     // Track info
	Requester Requester // Requester info
	AddedAt   time.Time // Time when added to queue
}

// URL returns the reference stored when the track is saved to a playlist.
func (q QueuedTrack) URL() string {
	return q.Track.URI
}

// QueueState is a point-in-time copy of the playback queue.
// Current is nil when nothing is playing.
type QueueState struct {
	Current *QueuedTrack
	Pending []QueuedTrack
}

// Snapshot returns copies of the current track and the pending queue.
func (s QueueState) Snapshot() (*QueuedTrack, []QueuedTrack) {
	var current *QueuedTrack
	if s.Current != nil {
		c := *s.Current
		current = &c
	}
	pending := make([]QueuedTrack, len(s.Pending))
	copy(pending, s.Pending)
	return current, pending
}

// Len returns the number of tracks in the state, including the current one.
func (s QueueState) Len() int {
	n := len(s.Pending)
	if s.Current != nil {
		n++
	}
	return n
}
