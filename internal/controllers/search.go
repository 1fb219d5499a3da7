package controllers

import (
	"context"
	"errors"
	"strings"

	"github.com/amaumene/postarr/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	// ErrEmptyQuery is returned for a query that is blank after trimming
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrMissingAPIKey is returned when no TMDB API key is configured
	ErrMissingAPIKey = errors.New("TMDB API key is not configured")
)

// MediaSearcher queries TMDB for media items
type MediaSearcher interface {
	Search(ctx context.Context, query string, kind models.MediaKind, apiKey string) ([]models.MediaItem, error)
}

// HistoryStore persists recent searches
type HistoryStore interface {
	AddSearchHistory(searchText string, kind models.MediaKind, maxItems int) (*models.SearchHistoryItem, error)
	GetSearchHistory() ([]*models.SearchHistoryItem, error)
	RemoveSearchHistory(id string) error
	ClearSearchHistory() error
}

// SearchController validates searches, runs them and keeps the history
type SearchController struct {
	searcher   MediaSearcher
	history    HistoryStore
	maxHistory int
	logger     *logrus.Logger
}

// NewSearchController creates a new search controller
func NewSearchController(searcher MediaSearcher, history HistoryStore, maxHistory int, logger *logrus.Logger) *SearchController {
	return &SearchController{
		searcher:   searcher,
		history:    history,
		maxHistory: maxHistory,
		logger:     logger,
	}
}

// Search trims and validates the query, searches TMDB, and on success
// records the query in the history. A history write failure is logged only.
func (c *SearchController) Search(ctx context.Context, query string, kind models.MediaKind, apiKey string) ([]models.MediaItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c.logger.WithFields(logrus.Fields{
		"query": query,
		"kind":  kind,
	}).Info("Starting media search")

	items, err := c.searcher.Search(ctx, query, kind, apiKey)
	if err != nil {
		return nil, err
	}

	if c.history != nil {
		if _, err := c.history.AddSearchHistory(query, kind, c.maxHistory); err != nil {
			c.logger.WithError(err).Warn("Failed to save search history")
		}
	}

	c.logger.WithField("results", len(items)).Info("Search completed")
	return items, nil
}

// History returns recent searches, newest first
func (c *SearchController) History() ([]*models.SearchHistoryItem, error) {
	return c.history.GetSearchHistory()
}

// RemoveHistory deletes one history entry
func (c *SearchController) RemoveHistory(id string) error {
	return c.history.RemoveSearchHistory(id)
}

// ClearHistory deletes every history entry
func (c *SearchController) ClearHistory() error {
	return c.history.ClearSearchHistory()
}
