package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/observability"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// LanguageFilter builds the include_image_language value. The literal null
// is always appended so untagged artwork is returned as well.
func LanguageFilter(languages []string) string {
	return strings.Join(append(append([]string{}, languages...), "null"), ",")
}

// GetImages lists posters and backdrops for an item, each sorted largest first
func (c *Client) GetImages(ctx context.Context, id int, kind models.MediaKind, languages []string, apiKey string) (*models.ImagesResponse, error) {
	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("include_image_language", LanguageFilter(languages))

	path := fmt.Sprintf("/%s/%s/images", kind, strconv.Itoa(id))

	var response models.ImagesResponse
	if err := c.getJSON(ctx, "images", path, params, &response); err != nil {
		return nil, err
	}

	models.SortByArea(response.Posters)
	models.SortByArea(response.Backdrops)

	c.logger.WithFields(logrus.Fields{
		"id":        id,
		"kind":      kind,
		"posters":   len(response.Posters),
		"backdrops": len(response.Backdrops),
	}).Debug("TMDB images fetched")

	return &response, nil
}

// ImageURL is the CDN address of path at the given tier
func (c *Client) ImageURL(path string, tier models.SizeTier) string {
	return c.imageBaseURL + "/" + string(tier) + path
}

// FetchImage downloads the raw bytes of path at a tier
func (c *Client) FetchImage(ctx context.Context, path string, tier models.SizeTier) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "tmdb.image", trace.WithAttributes(
		attribute.String("tmdb.path", path),
		attribute.String("tmdb.tier", string(tier)),
	))
	defer span.End()

	start := time.Now()
	data, err := c.fetchImage(ctx, path, tier)
	observability.TMDBRequestDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.TMDBRequestsTotal.WithLabelValues("image", "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	observability.TMDBRequestsTotal.WithLabelValues("image", "ok").Inc()
	span.SetAttributes(attribute.Int("tmdb.bytes", len(data)))
	return data, nil
}

func (c *Client) fetchImage(ctx context.Context, path string, tier models.SizeTier) ([]byte, error) {
	imageURL := c.ImageURL(path, tier)
	if _, err := url.Parse(imageURL); err != nil {
		return nil, fmt.Errorf("invalid image URL: %w", err)
	}

	c.logger.WithField("url", imageURL).Debug("Fetching image")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create image request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > maxImageSize {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image fetch returned no data")
	}

	return data, nil
}

// LoadImageBytes is the best-effort thumbnail load: any failure yields nil
// and the caller shows a placeholder. Successful loads are cached.
func (c *Client) LoadImageBytes(ctx context.Context, path string, tier models.SizeTier) []byte {
	key := string(tier) + path
	if cached, ok := c.previews.Get(key); ok {
		observability.PreviewCacheHits.Inc()
		return cached.([]byte)
	}

	data, err := c.FetchImage(ctx, path, tier)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Debug("Preview unavailable")
		return nil
	}

	c.previews.SetDefault(key, data)
	return data
}
