package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/models"
	"github.com/sirupsen/logrus"
)

// ImagesHandler serves artwork listings and thumbnails
type ImagesHandler struct {
	galleryCtrl *controllers.GalleryController
	apiKey      KeyFunc
	logger      *logrus.Logger
}

// NewImagesHandler creates a new images handler
func NewImagesHandler(galleryCtrl *controllers.GalleryController, apiKey KeyFunc, logger *logrus.Logger) *ImagesHandler {
	return &ImagesHandler{
		galleryCtrl: galleryCtrl,
		apiKey:      apiKey,
		logger:      logger,
	}
}

// ServeHTTP handles GET /api/images?id=&kind=. Lookup failures answer with
// empty lists rather than an error.
func (h *ImagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.Atoi(r.URL.Query().Get("id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, errors.New("id must be a positive integer"))
		return
	}
	kind, err := models.ParseMediaKind(defaultString(r.URL.Query().Get("kind"), string(models.MediaKindMovie)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	key, err := h.apiKey()
	if err != nil || key == "" {
		writeError(w, http.StatusBadRequest, controllers.ErrMissingAPIKey)
		return
	}

	writeJSON(w, http.StatusOK, h.galleryCtrl.Images(r.Context(), id, kind, key))
}

// ServePreview handles GET /api/preview?path=, the w342 thumbnail of an image
func (h *ImagesHandler) ServePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" || path[0] != '/' {
		writeError(w, http.StatusBadRequest, errors.New("path must start with /"))
		return
	}

	data := h.galleryCtrl.Preview(r.Context(), path)
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "max-age=3600")
	w.Write(data)
}
