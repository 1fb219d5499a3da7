package controllers

import (
	"context"

	"github.com/amaumene/postarr/internal/models"
	"github.com/sirupsen/logrus"
)

// ImageCatalog lists artwork variants and loads previews
type ImageCatalog interface {
	GetImages(ctx context.Context, id int, kind models.MediaKind, languages []string, apiKey string) (*models.ImagesResponse, error)
	LoadImageBytes(ctx context.Context, path string, tier models.SizeTier) []byte
}

// GalleryController backs the artwork browser
type GalleryController struct {
	catalog   ImageCatalog
	languages []string
	logger    *logrus.Logger
}

// NewGalleryController creates a gallery using the configured language filters
func NewGalleryController(catalog ImageCatalog, languages []string, logger *logrus.Logger) *GalleryController {
	return &GalleryController{
		catalog:   catalog,
		languages: languages,
		logger:    logger,
	}
}

// Images returns the item's artwork largest first. A failed lookup is not
// an error for the caller: it just means no images are available.
func (c *GalleryController) Images(ctx context.Context, id int, kind models.MediaKind, apiKey string) *models.ImagesResponse {
	images, err := c.catalog.GetImages(ctx, id, kind, c.languages, apiKey)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"id":   id,
			"kind": kind,
		}).Warn("No images available")
		return &models.ImagesResponse{ID: id, Posters: []models.ImageVariant{}, Backdrops: []models.ImageVariant{}}
	}
	return images
}

// Preview loads a gallery thumbnail; nil means show a placeholder
func (c *GalleryController) Preview(ctx context.Context, path string) []byte {
	return c.catalog.LoadImageBytes(ctx, path, models.PreviewSize)
}

// Top returns the largest variant of a kind, if any
func (c *GalleryController) Top(ctx context.Context, id int, kind models.MediaKind, imageKind models.ImageKind, apiKey string) (models.ImageVariant, bool) {
	variants := c.Images(ctx, id, kind, apiKey).Variants(imageKind)
	if len(variants) == 0 {
		return models.ImageVariant{}, false
	}
	return variants[0], true
}
