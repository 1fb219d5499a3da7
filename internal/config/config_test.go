package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLanguages(t *testing.T) {
	assert.Equal(t, []string{"en", "fr"}, ParseLanguages("en, fr"))
	assert.Equal(t, []string{"de"}, ParseLanguages(" ,de,null,NULL,"))
	assert.Nil(t, ParseLanguages(""))
}

func TestClampHistorySize(t *testing.T) {
	assert.Equal(t, DefaultHistoryItems, ClampHistorySize(0))
	assert.Equal(t, MinHistoryItems, ClampHistorySize(1))
	assert.Equal(t, MaxHistoryItems, ClampHistorySize(500))
	assert.Equal(t, 12, ClampHistorySize(12))
}

func TestLoadFromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("DOWNLOAD_PATH", filepath.Join(dir, "art"))
	t.Setenv("DOWNLOAD_PATH_BACKUP", " ")
	t.Setenv("TMDB_LANGUAGES", "en,es")
	t.Setenv("TMDB_BASE_URL", "http://tmdb.local/3/")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://tmdb.local/3", cfg.TMDBBaseURL)
	assert.Equal(t, []string{"en", "es"}, cfg.Languages)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, filepath.Join(dir, "art"), cfg.DownloadPath)
	assert.Empty(t, cfg.DownloadPathBackup)
	assert.Equal(t, filepath.Join(dir, "postarr.db"), cfg.DatabaseFile)
	assert.Equal(t, filepath.Join(dir, "credentials.json"), cfg.CredentialsFile)
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	for _, name := range []string{"HTTP_TIMEOUT_SECONDS", "PREVIEW_CACHE_MINUTES", "DOWNLOAD_RETENTION_DAYS"} {
		for _, value := range []string{"0", "-5"} {
			t.Run(name+"="+value, func(t *testing.T) {
				dir := t.TempDir()
				t.Setenv("CONFIG_DIR", dir)
				t.Setenv("DOWNLOAD_PATH", filepath.Join(dir, "art"))
				t.Setenv(name, value)

				_, err := Load()
				assert.ErrorContains(t, err, name+" must be positive")
			})
		}
	}
}
