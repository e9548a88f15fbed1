package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger opens the log file for appending and returns a text logger at the
// configured level. The terminal belongs to the TUI, so nothing is written to
// stderr. The returned closer releases the file.
func NewLogger(config *Config) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(config.LogPath), 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(config.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: config.LogLevel})
	return slog.New(handler), f, nil
}
