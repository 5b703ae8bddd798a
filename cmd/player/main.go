// Package main provides the player CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/cadenzafm/cadenza/internal/app/favorites"
	"github.com/cadenzafm/cadenza/internal/app/playback"
	"github.com/cadenzafm/cadenza/internal/app/playlists"
	"github.com/cadenzafm/cadenza/internal/infra/api"
	"github.com/cadenzafm/cadenza/internal/infra/auth"
	"github.com/cadenzafm/cadenza/internal/infra/config"
	"github.com/cadenzafm/cadenza/internal/infra/logger"
	"github.com/cadenzafm/cadenza/internal/infra/media"
)

var (
	app        = kingpin.New("cadenza", "cadenza streaming player")
	configPath = app.Flag("config", "Path to config file").Default("config/player.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stderr)").String()

	// playlists command
	playlistsCmd = app.Command("playlists", "List your playlists")

	// play command
	playCmd = app.Command("play", "Play a playlist from the top")
	playID  = playCmd.Arg("playlist-id", "Playlist ID").Required().Int()

	// search command
	searchCmd   = app.Command("search", "Search tracks")
	searchQuery = searchCmd.Arg("query", "Search query").Required().String()

	// like command
	likeCmd = app.Command("like", "Toggle the liked state of a track")
	likeID  = likeCmd.Arg("track-id", "Track ID").Required().Int()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stderr",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Debug().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}
	if !*verbose && *logfile == "" {
		loggerConfig.Level = cfg.Log.Level
		if cfg.Log.File != "" {
			loggerConfig.Output = cfg.Log.File
			loggerConfig.File = cfg.Log.File
		}
		if err := logger.Init(loggerConfig); err != nil {
			zlog.Fatal().Msgf("Failed to initialize logger: %v", err)
		}
	}

	if err := run(command, cfg); err != nil {
		zlog.Error().Msgf("Player error: %v", err)
		os.Exit(1)
	}
}

// run wires the client stack and dispatches the command. A separate
// function ensures defer statements run even on an error return.
func run(command string, cfg *config.Config) error {
	ctx := context.Background()

	client, err := api.New(api.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout(),
	})
	if err != nil {
		return err
	}

	session := auth.NewSession(client)
	coordinator := playlists.NewCoordinator(client)
	likes := favorites.NewCache(client)
	session.OnInvalidate(coordinator.Invalidate)
	session.OnInvalidate(likes.Invalidate)

	if err := authenticate(ctx, cfg, session); err != nil {
		return err
	}

	switch command {
	case playlistsCmd.FullCommand():
		return listPlaylists(ctx, coordinator)
	case playCmd.FullCommand():
		return play(ctx, cfg, coordinator, *playID)
	case searchCmd.FullCommand():
		return search(ctx, cfg, client, likes, *searchQuery)
	case likeCmd.FullCommand():
		return toggleLike(ctx, client, likes, *likeID)
	}
	return nil
}

// authenticate resumes a stored token when one is configured, falling
// back to an email and password login.
func authenticate(ctx context.Context, cfg *config.Config, session *auth.Session) error {
	if cfg.API.Token != "" {
		user, err := session.Resume(ctx, cfg.API.Token)
		if err == nil {
			zlog.Debug().Msgf("Resumed session for %s", user.Username)
			return nil
		}
		zlog.Warn().Msgf("Stored token rejected, falling back to login: %v", err)
	}
	if cfg.API.Email == "" || cfg.API.Password == "" {
		return auth.ErrNotAuthenticated
	}
	_, err := session.Login(ctx, cfg.API.Email, cfg.API.Password)
	return err
}

func listPlaylists(ctx context.Context, coordinator *playlists.Coordinator) error {
	if err := coordinator.Refresh(ctx); err != nil {
		return err
	}
	for _, p := range coordinator.Playlists() {
		fmt.Printf("%6d  %-40s %s (%d tracks)\n", p.ID, p.Title, p.Privacy, p.TrackCount)
	}
	return nil
}

func play(ctx context.Context, cfg *config.Config, coordinator *playlists.Coordinator, playlistID int) error {
	if err := coordinator.SelectPlaylist(ctx, playlistID); err != nil {
		return err
	}
	selected := coordinator.Selected()
	if selected == nil || len(selected.Tracks) == 0 {
		return fmt.Errorf("playlist %d has no tracks", playlistID)
	}

	opts, err := media.OptionsFromSettings(cfg.Media.Settings)
	if err != nil {
		return fmt.Errorf("invalid media settings: %w", err)
	}

	engine := playback.NewEngine()
	defer engine.Close()
	adapter := media.NewTimedAdapter(engine, opts)
	defer adapter.Close()
	engine.AttachAdapter(adapter)
	engine.SetVolume(cfg.Playback.Volume)

	if err := engine.PlayTrack(selected.Tracks[0], selected.Tracks); err != nil {
		return err
	}
	fmt.Printf("Playing %q (%d tracks)\n", selected.Title, len(selected.Tracks))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sigCh:
			fmt.Println("\nStopping playback")
			return nil
		case ev := <-engine.Events():
			switch ev.Type {
			case playback.EventTrackChanged:
				if ev.Track != nil {
					fmt.Printf("♪ %s by %s\n", ev.Track.Title, ev.Track.DisplayArtist())
				}
			case playback.EventStateChanged:
				zlog.Debug().Msgf("Playback state: %s", ev.State)
				if ev.State == playback.StateEnded {
					fmt.Println("Playlist finished")
					return nil
				}
				if ev.State == playback.StateErrored {
					return engine.Err()
				}
			}
		}
	}
}

func search(ctx context.Context, cfg *config.Config, client *api.Client, likes *favorites.Cache, query string) error {
	tracks, err := client.SearchTracks(ctx, query, cfg.Playback.SearchLimit)
	if err != nil {
		return err
	}
	likes.Seed(tracks)
	for _, t := range tracks {
		mark := " "
		if likes.IsLiked(t.ID, t.Favorited) {
			mark = "♥"
		}
		fmt.Printf("%6d %s %-40s %-24s %s\n", t.ID, mark, t.Title, t.DisplayArtist(), formatDuration(t.Duration))
	}
	return nil
}

func toggleLike(ctx context.Context, client *api.Client, likes *favorites.Cache, trackID int) error {
	t, err := client.GetTrack(ctx, trackID)
	if err != nil {
		return err
	}
	if err := likes.Toggle(ctx, trackID, t.Favorited); err != nil {
		return err
	}
	if likes.IsLiked(trackID, t.Favorited) {
		fmt.Printf("Liked %q\n", t.Title)
	} else {
		fmt.Printf("Unliked %q\n", t.Title)
	}
	return nil
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "--:--"
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
