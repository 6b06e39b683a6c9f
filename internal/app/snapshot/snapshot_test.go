package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osa030/19box-playlist/internal/domain/playlist"
	"github.com/osa030/19box-playlist/internal/domain/track"
)

func queued(uri string) track.QueuedTrack {
	return track.QueuedTrack{Track: track.Track{URI: uri}}
}

func TestBuild(t *testing.T) {
	now := queued("http://now")

	tests := []struct {
		name     string
		current  *track.QueuedTrack
		pending  []track.QueuedTrack
		expected []playlist.Item
	}{
		{
			name:     "current then pending",
			current:  &now,
			pending:  []track.QueuedTrack{queued("http://p1"), queued("http://p2")},
			expected: []playlist.Item{"http://now", "http://p1", "http://p2"},
		},
		{
			name:     "nothing playing",
			pending:  []track.QueuedTrack{queued("http://p1")},
			expected: []playlist.Item{"http://p1"},
		},
		{
			name:     "only current",
			current:  &now,
			expected: []playlist.Item{"http://now"},
		},
		{
			name:     "empty",
			expected: []playlist.Item{},
		},
		{
			name:     "entries without url skipped",
			pending:  []track.QueuedTrack{queued(""), queued("http://p1")},
			expected: []playlist.Item{"http://p1"},
		},
		{
			name:     "duplicates kept and not normalized",
			current:  &now,
			pending:  []track.QueuedTrack{queued("http://now"), queued("<http://x>")},
			expected: []playlist.Item{"http://now", "http://now", "<http://x>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Build(tt.current, tt.pending))
		})
	}
}

func TestCapture(t *testing.T) {
	now := queued("http://now")
	state := track.QueueState{
		Current: &now,
		Pending: []track.QueuedTrack{queued("http://p1"), queued("http://p2")},
	}

	items := Capture(state)
	assert.Equal(t, []playlist.Item{"http://now", "http://p1", "http://p2"}, items)

	// The result is independent of the view.
	state.Pending[0] = queued("http://changed")
	assert.Equal(t, playlist.Item("http://p1"), items[1])

	assert.Equal(t, []playlist.Item{}, Capture(nil))
}
