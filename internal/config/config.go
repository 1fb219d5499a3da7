package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// History size bounds match the range offered by the preferences form
	MinHistoryItems     = 5
	MaxHistoryItems     = 50
	DefaultHistoryItems = 20
)

// Config holds all application configuration
type Config struct {
	// TMDB
	TMDBBaseURL  string
	TMDBImageURL string
	Languages    []string // include_image_language codes, "null" is always appended
	HTTPTimeout  time.Duration

	// Download destinations
	DownloadPath       string
	DownloadPathBackup string // empty means no replication

	// Preferences
	MaxHistoryItems       int
	PreviewCacheTTL       time.Duration
	DownloadRetentionDays int

	// Server
	ServerPort   string
	OTLPEndpoint string

	// Paths
	CredentialsFile string // $CONFIG_DIR/credentials.json
	DatabaseFile    string // $CONFIG_DIR/postarr.db

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Load .env file if it exists (ignore if not found)
	_ = viper.ReadInConfig()

	viper.SetDefault("TMDB_BASE_URL", "https://api.themoviedb.org/3")
	viper.SetDefault("TMDB_IMAGE_URL", "https://image.tmdb.org/t/p")
	viper.SetDefault("TMDB_LANGUAGES", "en")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("MAX_HISTORY_ITEMS", DefaultHistoryItems)
	viper.SetDefault("PREVIEW_CACHE_MINUTES", 15)
	viper.SetDefault("DOWNLOAD_RETENTION_DAYS", 30)
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "postarr")
	} else {
		absPath, err := filepath.Abs(configDir)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for CONFIG_DIR: %w", err)
		}
		configDir = absPath
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	downloadPath := viper.GetString("DOWNLOAD_PATH")
	if downloadPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		downloadPath = filepath.Join(homeDir, "Downloads", "TMDB")
	}

	config := &Config{
		TMDBBaseURL:  strings.TrimSuffix(viper.GetString("TMDB_BASE_URL"), "/"),
		TMDBImageURL: strings.TrimSuffix(viper.GetString("TMDB_IMAGE_URL"), "/"),
		Languages:    ParseLanguages(viper.GetString("TMDB_LANGUAGES")),
		HTTPTimeout:  time.Duration(viper.GetInt("HTTP_TIMEOUT_SECONDS")) * time.Second,

		DownloadPath:       downloadPath,
		DownloadPathBackup: strings.TrimSpace(viper.GetString("DOWNLOAD_PATH_BACKUP")),

		MaxHistoryItems:       ClampHistorySize(viper.GetInt("MAX_HISTORY_ITEMS")),
		PreviewCacheTTL:       time.Duration(viper.GetInt("PREVIEW_CACHE_MINUTES")) * time.Minute,
		DownloadRetentionDays: viper.GetInt("DOWNLOAD_RETENTION_DAYS"),

		ServerPort:   viper.GetString("SERVER_PORT"),
		OTLPEndpoint: viper.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),

		CredentialsFile: filepath.Join(configDir, "credentials.json"),
		DatabaseFile:    filepath.Join(configDir, "postarr.db"),

		LogLevel: viper.GetString("LOG_LEVEL"),
	}

	if config.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if config.DownloadRetentionDays <= 0 {
		return nil, fmt.Errorf("DOWNLOAD_RETENTION_DAYS must be positive")
	}
	if config.PreviewCacheTTL <= 0 {
		return nil, fmt.Errorf("PREVIEW_CACHE_MINUTES must be positive")
	}

	return config, nil
}

// ParseLanguages splits a comma separated language list, dropping blanks and
// any explicit "null" (it is always added when the images request is built).
func ParseLanguages(raw string) []string {
	var languages []string
	for _, part := range strings.Split(raw, ",") {
		lang := strings.TrimSpace(part)
		if lang == "" || strings.EqualFold(lang, "null") {
			continue
		}
		languages = append(languages, lang)
	}
	return languages
}

// ClampHistorySize maps an unset value to the default and keeps the rest in range
func ClampHistorySize(n int) int {
	switch {
	case n == 0:
		return DefaultHistoryItems
	case n < MinHistoryItems:
		return MinHistoryItems
	case n > MaxHistoryItems:
		return MaxHistoryItems
	}
	return n
}
