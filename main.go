package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"wanderlust/cmd"
	"wanderlust/internal/db"
	"wanderlust/internal/search"
	"wanderlust/internal/session"
	"wanderlust/internal/store"
	"wanderlust/internal/ui"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	// Parse CLI flags
	config, err := cmd.ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if config.ShowVersion {
		fmt.Println("wanderlust", version)
		return
	}

	logger, logFile, err := cmd.NewLogger(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger.Info("starting wanderlust", "version", version, "db", config.DBPath, "model", config.Model)

	// Open database
	database, err := db.Open(config.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()

	trips := store.New(db.NewTripDocument(database), store.WithLogger(logger))
	// On failure the store logs the error and starts with an empty collection.
	_ = trips.Load(ctx)

	lookup := newLookup(config, logger)
	history := db.NewSearchHistory(database)
	sess := session.New(trips, lookup,
		session.WithLogger(logger),
		session.WithRecorder(history),
	)

	// Create and run Bubble Tea app
	app := ui.New(sess, history,
		ui.WithLogger(logger),
		ui.WithLookupEnabled(config.APIKey != ""),
		ui.WithPrefsPath(filepath.Join(config.DataDir, "ui_prefs.json")),
	)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

func newLookup(config *cmd.Config, logger *slog.Logger) session.Lookup {
	if config.APIKey == "" {
		reason := "no GEMINI_API_KEY set"
		if !config.LookupEnabled {
			reason = "destination lookups disabled in onboarding settings"
		}
		logger.Warn("destination lookup disabled", "reason", reason)
		return search.Disabled{Reason: reason}
	}

	client := search.NewGeminiClient(config.APIKey,
		search.WithModel(config.Model),
		search.WithTimeout(config.LookupTimeout),
		search.WithLogger(logger),
	)
	cached, err := search.NewCache(client, config.CacheSize)
	if err != nil {
		logger.Warn("lookup cache unavailable", "error", err)
		return client
	}
	return cached
}
