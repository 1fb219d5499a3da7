package handlers

import (
	"errors"
	"net/http"

	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// SearchHandler serves TMDB searches
type SearchHandler struct {
	searchCtrl *controllers.SearchController
	apiKey     KeyFunc
	logger     *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchCtrl *controllers.SearchController, apiKey KeyFunc, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchCtrl: searchCtrl,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// SearchResponse wraps results with the label the UI shows above them
type SearchResponse struct {
	Summary string             `json:"summary"`
	Results []models.MediaItem `json:"results"`
}

// ServeHTTP handles GET /api/search?query=&kind=
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("query")
	kind, err := models.ParseMediaKind(defaultString(r.URL.Query().Get("kind"), string(models.MediaKindMovie)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	key, _ := h.apiKey()
	items, err := h.searchCtrl.Search(r.Context(), query, kind, key)
	switch {
	case errors.Is(err, controllers.ErrEmptyQuery), errors.Is(err, controllers.ErrMissingAPIKey):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		h.logger.WithError(err).Warn("Search request failed")
		writeError(w, http.StatusBadGateway, err)
		return
	}

	if items == nil {
		items = []models.MediaItem{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{
		Summary: utils.SearchSummary(query, kind),
		Results: items,
	})
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
