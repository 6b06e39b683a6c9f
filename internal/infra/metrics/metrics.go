// Package metrics defines the Prometheus metrics of the playlist server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Command metrics
var (
	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "box19_playlist_commands_total",
			Help: "Total number of playlist commands by action and outcome",
		},
		[]string{"action", "status"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "box19_playlist_command_duration_seconds",
			Help:    "Playlist command duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"action"},
	)
)

// Store metrics
var (
	PlaylistsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "box19_playlist_playlists",
			Help: "Number of playlists in the playlists directory",
		},
	)

	DirectoryChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "box19_playlist_directory_changes_total",
			Help: "Changes to playlist files seen by the directory watcher",
		},
		[]string{"op"},
	)
)

// CommandRecorder records command outcomes.
type CommandRecorder struct{}

// ObserveCommand implements command.Recorder.
func (CommandRecorder) ObserveCommand(action, status string, elapsed time.Duration) {
	CommandsTotal.WithLabelValues(action, status).Inc()
	CommandDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
