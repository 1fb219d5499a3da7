// Package tmdb talks to The Movie Database API and its image CDN.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/amaumene/postarr/internal/config"
	"github.com/amaumene/postarr/internal/observability"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const userAgent = "postarr/1.0"

// maxImageSize caps a single image download (TMDB originals stay well below).
// Larger bodies are rejected, never truncated.
var maxImageSize int64 = 50 * 1024 * 1024

// Client wraps direct TMDB HTTP calls
type Client struct {
	baseURL      string
	imageBaseURL string
	httpClient   *http.Client
	previews     *cache.Cache
	tracer       trace.Tracer
	logger       *logrus.Logger
}

// NewClient creates a TMDB client from configuration
func NewClient(cfg *config.Config, logger *logrus.Logger) (*Client, error) {
	if cfg.TMDBBaseURL == "" {
		return nil, fmt.Errorf("TMDB base URL is required")
	}
	if cfg.TMDBImageURL == "" {
		return nil, fmt.Errorf("TMDB image URL is required")
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.TMDBBaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.TMDBImageURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		previews:     cache.New(cfg.PreviewCacheTTL, 2*cfg.PreviewCacheTTL),
		tracer:       observability.Tracer(),
		logger:       logger,
	}, nil
}

// getJSON performs a GET against the API and decodes the body into result
func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, result interface{}) error {
	ctx, span := c.tracer.Start(ctx, "tmdb."+op, trace.WithAttributes(attribute.String("tmdb.path", path)))
	defer span.End()

	start := time.Now()
	err := c.doJSON(ctx, path, params, result)
	observability.TMDBRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.TMDBRequestsTotal.WithLabelValues(op, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return requestFailed(op, err)
	}
	observability.TMDBRequestsTotal.WithLabelValues(op, "ok").Inc()
	return nil
}

func (c *Client) doJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	apiURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	apiURL.RawQuery = params.Encode()

	// api_key is a secret, keep it out of the logs
	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"params": redact(params),
	}).Debug("Making TMDB API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        string(body),
		}).Debug("TMDB API returned non-OK status")
		return fmt.Errorf("TMDB API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func redact(params url.Values) string {
	safe := url.Values{}
	for k, v := range params {
		if k == "api_key" {
			continue
		}
		safe[k] = v
	}
	return safe.Encode()
}
