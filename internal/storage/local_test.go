package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestCandidateName(t *testing.T) {
	assert.Equal(t, "poster.jpg", CandidateName("poster.jpg", 0))
	assert.Equal(t, "poster_1.jpg", CandidateName("poster.jpg", 1))
	assert.Equal(t, "backdrop_12.jpg", CandidateName("backdrop.jpg", 12))
	assert.Equal(t, "cover_2", CandidateName("cover", 2))
}

func TestWriteUniqueNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	dir := NewLocalDirectory(root)
	w := NewWriter(quietLogger())
	ctx := context.Background()

	first, err := w.WriteUnique(ctx, dir, "movies/Batman (1989) {tmdb-268}", "poster.jpg", []byte("one"))
	require.NoError(t, err)
	second, err := w.WriteUnique(ctx, dir, "movies/Batman (1989) {tmdb-268}", "poster.jpg", []byte("two"))
	require.NoError(t, err)
	third, err := w.WriteUnique(ctx, dir, "movies/Batman (1989) {tmdb-268}", "poster.jpg", []byte("three"))
	require.NoError(t, err)

	folder := filepath.Join(root, "movies", "Batman (1989) {tmdb-268}")
	assert.Equal(t, filepath.Join(folder, "poster.jpg"), first)
	assert.Equal(t, filepath.Join(folder, "poster_1.jpg"), second)
	assert.Equal(t, filepath.Join(folder, "poster_2.jpg"), third)

	original, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "one", string(original))
	assert.Equal(t, int64(0), dir.ActiveLeases())
}

func TestWriteUniqueConcurrentWritersGetDistinctNames(t *testing.T) {
	root := t.TempDir()
	dir := NewLocalDirectory(root)
	w := NewWriter(quietLogger())

	const writers = 16
	paths := make(chan string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := w.WriteUnique(context.Background(), dir, "shows/x", "poster.jpg", []byte("data"))
			if assert.NoError(t, err) {
				paths <- p
			}
		}()
	}
	wg.Wait()
	close(paths)

	seen := map[string]bool{}
	for p := range paths {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}
	assert.Len(t, seen, writers)

	entries, err := os.ReadDir(filepath.Join(root, "shows", "x"))
	require.NoError(t, err)
	assert.Len(t, entries, writers)
}

func TestWriteUniqueFailsWhenRootIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewWriter(quietLogger()).WriteUnique(context.Background(), NewLocalDirectory(blocker), "movies/x", "poster.jpg", []byte("data"))
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestAcquireRejectsEmptyRoot(t *testing.T) {
	err := NewLocalDirectory(" ").Acquire(context.Background())
	assert.ErrorIs(t, err, ErrWriteFailed)
}
