package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"wanderlust/internal/search"
)

const (
	dataDirName     = ".wanderlust"
	defaultDBName   = "wanderlust.db"
	defaultLogName  = "wanderlust.log"
	defaultTimeout  = 30 * time.Second
	defaultCacheLen = 32
)

// Config holds CLI configuration.
type Config struct {
	DataDir       string
	DBPath        string
	LogPath       string
	LogLevel      slog.Level
	APIKey        string
	Model         string
	LookupTimeout time.Duration
	CacheSize     int
	LookupEnabled bool
	ShowVersion   bool
}

// ParseFlags parses command-line flags (without the program name) and
// returns configuration.
func ParseFlags(args []string) (*Config, error) {
	config := &Config{}

	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	var logLevel string
	fs := pflag.NewFlagSet("wanderlust", pflag.ContinueOnError)
	fs.StringVar(&config.DBPath, "db", "", "Path to SQLite database file (default: ~/.wanderlust/wanderlust.db)")
	fs.StringVar(&config.APIKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env var)")
	fs.StringVar(&config.Model, "model", "", "Gemini model name (or set WANDERLUST_MODEL env var)")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (or set WANDERLUST_LOG_LEVEL)")
	fs.StringVar(&config.LogPath, "log-file", "", "Path to log file (default: alongside the database)")
	fs.DurationVar(&config.LookupTimeout, "lookup-timeout", defaultTimeout, "Timeout for a single destination lookup")
	fs.IntVar(&config.CacheSize, "cache-size", defaultCacheLen, "Number of destination lookups kept in memory")
	fs.BoolVarP(&config.ShowVersion, "version", "v", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if config.ShowVersion {
		return config, nil
	}

	if config.APIKey == "" {
		config.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if config.Model == "" {
		config.Model = os.Getenv("WANDERLUST_MODEL")
	}
	if config.Model == "" {
		config.Model = search.DefaultModel
	}
	if logLevel == "" {
		logLevel = os.Getenv("WANDERLUST_LOG_LEVEL")
	}
	if logLevel == "" {
		logLevel = "info"
	}
	if err := config.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	if config.LookupTimeout <= 0 {
		return nil, fmt.Errorf("lookup timeout must be positive, got %s", config.LookupTimeout)
	}
	if config.CacheSize <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", config.CacheSize)
	}

	// Set default DB path if not specified
	if config.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		config.DataDir = filepath.Join(home, dataDirName)
		config.DBPath = filepath.Join(config.DataDir, defaultDBName)
	} else {
		config.DataDir = filepath.Dir(config.DBPath)
	}
	if err := os.MkdirAll(config.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if config.LogPath == "" {
		config.LogPath = filepath.Join(config.DataDir, defaultLogName)
	}

	settings, err := loadOnboardingSettings(config.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load onboarding settings: %w", err)
	}

	if shouldRunOnboarding(settings) {
		settings, err = runOnboarding(config.DataDir, config.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		}
	}

	config.LookupEnabled = settings.LookupEnabled || !settings.Completed
	if config.APIKey == "" && config.LookupEnabled {
		secureKey, err := loadSecureAPIKey(config.DataDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load secure API key: %w", err)
		}
		config.APIKey = strings.TrimSpace(secureKey)
	}
	if config.APIKey != "" {
		config.LookupEnabled = true
	}

	return config, nil
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
