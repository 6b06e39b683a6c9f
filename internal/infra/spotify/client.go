// Package spotify provides a read-only client for the Spotify API.
package spotify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/osa030/19box-playlist/internal/domain/track"
)

// Errors
var (
	ErrInvalidPlaylistURL = errors.New("invalid playlist URL")
)

const pageLimit = 100 // Spotify API max per page

// Client is a Spotify API client.
type Client struct {
	client     *spotify.Client
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Config represents Spotify client configuration.
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
	TokenURL     string // Defaults to the Spotify accounts service
	BaseURL      string // Defaults to the Spotify Web API
}

// New creates a new Spotify client using the client credentials flow.
// Only public playlists can be read.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("spotify credentials are required")
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	var opts []spotify.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.BaseURL))
	}
	client := spotify.New(creds.Client(ctx), opts...)

	market := cfg.Market
	if market == "" {
		market = "JP"
	}

	return &Client{
		client:     client,
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}, nil
}

// GetPlaylistTracks retrieves all tracks from a playlist. Episodes and local
// files are skipped.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.Wrapf(ErrInvalidPlaylistURL, "%q", playlistURL)
	}

	tracks := make([]track.Track, 0)
	offset := 0

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				spotify.Limit(pageLimit),
				spotify.Offset(offset),
				spotify.Market(c.market),
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist items")
		}

		for _, item := range page.Items {
			// Only process tracks (exclude episodes)
			if item.Track.Track != nil && item.Track.Track.ID != "" {
				tracks = append(tracks, c.convertTrack(item.Track.Track))
			}
		}

		if len(page.Items) < pageLimit {
			break
		}
		offset += pageLimit
	}

	zlog.Debug().Msgf("spotify: fetched playlist tracks: playlist=%s tracks=%d", playlistID, len(tracks))
	return tracks, nil
}

// GetPlaylistTrackURLs returns the open.spotify.com URL of every track in a
// playlist, in playlist order.
func (c *Client) GetPlaylistTrackURLs(ctx context.Context, playlistURL string) ([]string, error) {
	tracks, err := c.GetPlaylistTracks(ctx, playlistURL)
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(tracks))
	for _, t := range tracks {
		urls = append(urls, t.URI)
	}
	return urls, nil
}

// convertTrack converts a Spotify FullTrack to domain Track.
func (c *Client) convertTrack(t *spotify.FullTrack) track.Track {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}

	return track.Track{
		ID:       string(t.ID),
		Title:    t.Name,
		Author:   strings.Join(artists, ", "),
		URI:      GetTrackURL(string(t.ID)),
		Duration: time.Duration(t.Duration) * time.Millisecond,
		Source:   "spotify",
	}
}

// GetTrackURL returns the Spotify URL for a track.
func GetTrackURL(trackID string) string {
	return fmt.Sprintf("https://open.spotify.com/track/%s", trackID)
}

// retry retries an operation with linear backoff.
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			zlog.Debug().Msgf("spotify: retrying request: attempt=%d err=%v", i+1, err)
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "max retries exceeded")
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractPlaylistID extracts the playlist ID from a Spotify playlist URL or URI.
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	// Handle Spotify URI format: spotify:playlist:PLAYLIST_ID
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	// Handle URL format: https://open.spotify.com/playlist/PLAYLIST_ID or https://open.spotify.com/intl-XX/playlist/PLAYLIST_ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	// Other URLs cannot be playlist IDs
	if strings.Contains(input, "://") || strings.Contains(input, "/") {
		return ""
	}

	// Assume it's already a playlist ID
	return input
}
