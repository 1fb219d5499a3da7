package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/services/tmdb"
	"github.com/amaumene/postarr/internal/services/tmdb/tmdbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchValidatesInput(t *testing.T) {
	h := newHarness(t)

	_, err := h.search.Search(context.Background(), "   ", models.MediaKindMovie, tmdbtest.APIKey)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	_, err = h.search.Search(context.Background(), "batman", models.MediaKindMovie, " ")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	assert.Empty(t, h.srv.Queries())
}

func TestSearchRecordsTrimmedHistory(t *testing.T) {
	h := newHarness(t)

	_, err := h.search.Search(context.Background(), "  batman  ", models.MediaKindMovie, tmdbtest.APIKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"batman"}, h.srv.Queries())

	history, err := h.search.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "batman", history[0].SearchText)
	assert.Equal(t, models.MediaKindMovie, history[0].Kind)

	require.NoError(t, h.search.RemoveHistory(history[0].ID))
	history, err = h.search.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSearchFailureSkipsHistory(t *testing.T) {
	h := newHarness(t)
	h.srv.FailNext()

	_, err := h.search.Search(context.Background(), "batman", models.MediaKindMovie, tmdbtest.APIKey)
	assert.ErrorIs(t, err, tmdb.ErrRequestFailed)

	history, err := h.search.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestGalleryTreatsFailureAsEmpty(t *testing.T) {
	h := newHarness(t)

	images := h.gallery.Images(context.Background(), 999, models.MediaKindMovie, tmdbtest.APIKey)
	assert.Empty(t, images.Posters)
	assert.Empty(t, images.Backdrops)

	_, ok := h.gallery.Top(context.Background(), 999, models.MediaKindMovie, models.ImageKindPoster, tmdbtest.APIKey)
	assert.False(t, ok)

	top, ok := h.gallery.Top(context.Background(), 268, models.MediaKindMovie, models.ImageKindBackdrop, tmdbtest.APIKey)
	require.True(t, ok)
	assert.Equal(t, "/backdrop.png", top.FilePath)
	assert.Equal(t, []string{"en,null"}, h.srv.Languages())
}

func TestGalleryPreview(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, h.srv.Thumbnails["/poster-small.png"], h.gallery.Preview(context.Background(), "/poster-small.png"))
	assert.Equal(t, []string{"w342 /poster-small.png"}, h.srv.Fetches()[:1])
	assert.Nil(t, h.gallery.Preview(context.Background(), "/nope.png"))
}

func TestPruneDownloadLog(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.CreateDownload(&models.DownloadRecord{SourcePath: "/a.jpg", Status: models.DownloadStatusCompleted}))

	cleanup := NewCleanupController(h.db, 30, h.download.logger)
	require.NoError(t, cleanup.PruneDownloadLog(context.Background()))
	records, err := h.db.GetDownloads()
	require.NoError(t, err)
	assert.Len(t, records, 1)

	cleanup.now = func() time.Time { return time.Now().AddDate(0, 0, 31) }
	require.NoError(t, cleanup.PruneDownloadLog(context.Background()))
	records, err = h.db.GetDownloads()
	require.NoError(t, err)
	assert.Empty(t, records)
}
