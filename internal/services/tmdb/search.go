package tmdb

import (
	"context"
	"net/url"

	"github.com/amaumene/postarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Search queries /search/{kind} and returns the first page of results.
// Query and key are expected to be validated by the caller.
func (c *Client) Search(ctx context.Context, query string, kind models.MediaKind, apiKey string) ([]models.MediaItem, error) {
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("query", query)

	var response models.SearchResponse
	if err := c.getJSON(ctx, "search", "/search/"+string(kind), params, &response); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"kind":    kind,
		"results": len(response.Results),
		"total":   response.TotalResults,
	}).Debug("TMDB search completed")

	return response.Results, nil
}
