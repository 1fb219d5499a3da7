package controllers

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/postarr/internal/config"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/notify"
	"github.com/amaumene/postarr/internal/services/tmdb"
	"github.com/amaumene/postarr/internal/services/tmdb/tmdbtest"
	"github.com/amaumene/postarr/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type harness struct {
	srv      *tmdbtest.Server
	client   *tmdb.Client
	db       *models.Database
	notes    *notify.Recorder
	search   *SearchController
	gallery  *GalleryController
	download *DownloadController
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := tmdbtest.NewServer()
	t.Cleanup(srv.Close)

	client, err := tmdb.NewClient(&config.Config{
		TMDBBaseURL:  srv.BaseURL(),
		TMDBImageURL: srv.ImageURL(),
		HTTPTimeout:  5 * time.Second,
	}, logger)
	require.NoError(t, err)

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	notes := &notify.Recorder{}
	return &harness{
		srv:      srv,
		client:   client,
		db:       db,
		notes:    notes,
		search:   NewSearchController(client, db, config.DefaultHistoryItems, logger),
		gallery:  NewGalleryController(client, []string{"en"}, logger),
		download: NewDownloadController(client, storage.NewWriter(logger), db, notes, logger),
	}
}

// files lists every regular file under root, relative to it
func files(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, _ := filepath.Rel(root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return out
}
