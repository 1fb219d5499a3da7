package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amaumene/postarr/internal/config"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/services/tmdb/tmdbtest"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL, imageURL string) *Client {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	client, err := NewClient(&config.Config{
		TMDBBaseURL:     baseURL,
		TMDBImageURL:    imageURL,
		HTTPTimeout:     5 * time.Second,
		PreviewCacheTTL: time.Minute,
	}, logger)
	require.NoError(t, err)
	return client
}

func TestSearchReturnsResults(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	items, err := client.Search(context.Background(), "batman", models.MediaKindMovie, tmdbtest.APIKey)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 268, items[0].ID)
	assert.Equal(t, "Batman", items[0].DisplayTitle())
	assert.Equal(t, "1989", items[0].DisplayYear())
	assert.Nil(t, items[1].PosterPath)
}

func TestSearchEncodesQuery(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	_, err := client.Search(context.Background(), "fast & furious: tokyo drift?", models.MediaKindMovie, tmdbtest.APIKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"fast & furious: tokyo drift?"}, srv.Queries())
}

func TestSearchFailuresShareOneTaxonomy(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	srv.FailNext()
	_, err := client.Search(context.Background(), "batman", models.MediaKindMovie, tmdbtest.APIKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "search failed:")

	_, err = client.Search(context.Background(), "batman", models.MediaKindMovie, "wrong")
	assert.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "search", reqErr.Op)
}

func TestSearchRejectsUndecodableBody(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer bad.Close()
	client := newTestClient(t, bad.URL, bad.URL)

	_, err := client.Search(context.Background(), "batman", models.MediaKindMovie, "k")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestSearchTransportFailure(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", "http://127.0.0.1:1")

	_, err := client.Search(context.Background(), "batman", models.MediaKindMovie, "k")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestGetImagesSortsLargestFirst(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	images, err := client.GetImages(context.Background(), 268, models.MediaKindMovie, []string{"en", "fr"}, tmdbtest.APIKey)
	require.NoError(t, err)
	require.Len(t, images.Posters, 3)
	for i := 1; i < len(images.Posters); i++ {
		assert.GreaterOrEqual(t, images.Posters[i-1].Area(), images.Posters[i].Area())
	}
	assert.Equal(t, "/poster-large.png", images.Posters[0].FilePath)
	assert.Len(t, images.Backdrops, 1)
	assert.Equal(t, []string{"en,fr,null"}, srv.Languages())
}

func TestGetImagesFailure(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	_, err := client.GetImages(context.Background(), 999, models.MediaKindMovie, nil, tmdbtest.APIKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "images failed:")
}

func TestLanguageFilter(t *testing.T) {
	assert.Equal(t, "null", LanguageFilter(nil))
	assert.Equal(t, "en,null", LanguageFilter([]string{"en"}))

	langs := []string{"de", "ja"}
	assert.Equal(t, "de,ja,null", LanguageFilter(langs))
	assert.Equal(t, []string{"de", "ja"}, langs)
}

func TestLoadImageBytes(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())
	ctx := context.Background()

	data := client.LoadImageBytes(ctx, "/poster-small.png", models.PreviewSize)
	assert.Equal(t, srv.Thumbnails["/poster-small.png"], data)
	assert.NotEqual(t, srv.Images["/poster-small.png"], data)

	assert.Nil(t, client.LoadImageBytes(ctx, "/missing.png", models.PreviewSize))

	// served from cache once the CDN stops answering
	srv.Close()
	assert.Equal(t, srv.Thumbnails["/poster-small.png"], client.LoadImageBytes(ctx, "/poster-small.png", models.PreviewSize))
	assert.Nil(t, client.LoadImageBytes(ctx, "/poster-large.png", models.PreviewSize))
}

func TestFetchImageReportsCause(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	data, err := client.FetchImage(context.Background(), "/backdrop.png", models.SizeOriginal)
	require.NoError(t, err)
	assert.Equal(t, srv.Images["/backdrop.png"], data)

	_, err = client.FetchImage(context.Background(), "/missing.png", models.SizeOriginal)
	assert.ErrorContains(t, err, "status 404")

	assert.Equal(t, []string{"original /backdrop.png", "original /missing.png"}, srv.Fetches())
}

func TestFetchImageRejectsOversizedBody(t *testing.T) {
	srv := tmdbtest.NewServer()
	defer srv.Close()
	client := newTestClient(t, srv.BaseURL(), srv.ImageURL())

	original := maxImageSize
	t.Cleanup(func() { maxImageSize = original })

	exact := srv.Images["/backdrop.png"]
	maxImageSize = int64(len(exact))
	data, err := client.FetchImage(context.Background(), "/backdrop.png", models.SizeOriginal)
	require.NoError(t, err)
	assert.Equal(t, exact, data)

	maxImageSize = int64(len(exact) - 1)
	data, err = client.FetchImage(context.Background(), "/backdrop.png", models.SizeOriginal)
	assert.ErrorContains(t, err, "exceeds")
	assert.Nil(t, data)

	assert.Nil(t, client.LoadImageBytes(context.Background(), "/backdrop.png", models.SizeOriginal))
}

func TestImageURL(t *testing.T) {
	client := newTestClient(t, "https://api.themoviedb.org/3", "https://image.tmdb.org/t/p/")
	assert.Equal(t, "https://image.tmdb.org/t/p/original/abc.jpg", client.ImageURL("/abc.jpg", models.SizeOriginal))
}
