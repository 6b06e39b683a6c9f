// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/19box-playlist/internal/api/connect"
	"github.com/osa030/19box-playlist/internal/app/command"
	"github.com/osa030/19box-playlist/internal/app/library"
	"github.com/osa030/19box-playlist/internal/infra/config"
	"github.com/osa030/19box-playlist/internal/infra/logger"
	"github.com/osa030/19box-playlist/internal/infra/metrics"
	"github.com/osa030/19box-playlist/internal/infra/spotify"
)

const watchRetryInterval = 30 * time.Second

var (
	app        = kingpin.New("19box-playlist-server", "19box playlist server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-actions command
	listActionsCmd = app.Command("list-actions", "List playlist commands and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	selected := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Handle list-actions command
	if selected == listActionsCmd.FullCommand() {
		printActions()
		return
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = "file"
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logCloser.Close()
	}()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create playlist store
	store, err := library.NewFromConfig(cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "failed to create playlist store")
	}
	if !store.EnsureDirectory() {
		// Not fatal: every command reports the condition until it is fixed.
		zlog.Warn().Msgf("Playlists directory is not usable yet: dir=%s", store.Dir())
	}
	watchPlaylists(ctx, store)

	// Create command dispatcher
	opts := []command.Option{command.WithRecorder(metrics.CommandRecorder{})}
	if cfg.Spotify.Enabled() {
		spotifyClient, err := spotify.New(ctx, spotify.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			Market:       cfg.Spotify.Market,
		})
		if err != nil {
			return errors.Wrap(err, "failed to create Spotify client")
		}
		opts = append(opts, command.WithTrackSource(spotifyClient))
		zlog.Info().Msg("Spotify import enabled")
	} else {
		zlog.Info().Msg("Spotify credentials not configured, import disabled")
	}
	dispatcher := command.New(store, cfg, opts...)

	// Register services
	mux := http.NewServeMux()
	playlistPath, playlistHandler := apiconnect.NewPlaylistServiceHandler(
		apiconnect.NewPlaylistService(dispatcher),
		connect.WithInterceptors(apiconnect.NewAdminAuthInterceptor(cfg)),
	)
	mux.Handle(playlistPath, playlistHandler)
	mux.Handle(cfg.Server.MetricsPath, metrics.Handler())

	// Create server with h2c (HTTP/2 cleartext) support
	serverAddr := cfg.Server.Addr
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server startup errors
	serverErrCh := make(chan error, 1)
	serverStartedCh := make(chan struct{})

	go func() {
		zlog.Info().Msgf("Starting server: addr=%s playlists=%s", serverAddr, store.Dir())
		close(serverStartedCh)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	// Wait for server to start listening
	<-serverStartedCh
	time.Sleep(100 * time.Millisecond)

	executeHooks(cfg.Server.Hooks.OnStarted, "on_started")

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")

	executeHooks(cfg.Server.Hooks.OnStopped, "on_stopped")

	return nil
}

// watchPlaylists keeps the playlist gauge current while files change.
// Watching starts once the playlists directory exists.
func watchPlaylists(ctx context.Context, store *library.Store) {
	refresh := func() {
		if names, err := store.ListNames(); err == nil {
			metrics.PlaylistsTotal.Set(float64(len(names)))
		}
	}
	refresh()

	store.WatchWhenReady(ctx, watchRetryInterval, func(c library.Change) {
		metrics.DirectoryChangesTotal.WithLabelValues(string(c.Op)).Inc()
		if c.Op != library.ChangeModified {
			zlog.Info().Msgf("Playlist %s: name=%s", c.Op, c.Name)
			refresh()
		}
	})
}

// printActions prints the playlist commands.
func printActions() {
	// The table does not depend on the store or messages.
	d := command.New(nil, nil)
	fmt.Println("Playlist Commands:")
	for _, a := range d.Actions() {
		aliases := "-"
		if len(a.Aliases) > 0 {
			aliases = strings.Join(a.Aliases, ", ")
		}
		fmt.Printf("  %-40s - %s [aliases: %s]\n", a.Usage, a.Description, aliases)
	}
}

// executeHooks runs a list of shell commands.
func executeHooks(hooks []string, stage string) {
	if len(hooks) == 0 {
		return
	}

	zlog.Info().Msgf("Executing %s hooks (%d commands)", stage, len(hooks))

	for _, hook := range hooks {
		zlog.Info().Msgf("Executing hook: %s", hook)
		// Use sh -c to allow shell features like redirection or pipes
		cmd := exec.Command("sh", "-c", hook)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			zlog.Error().Err(err).Msgf("Failed to execute hook: %s", hook)
		}
	}
}
