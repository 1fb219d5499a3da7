package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/amaumene/postarr/internal/controllers"
	"github.com/amaumene/postarr/internal/models"
	"github.com/amaumene/postarr/internal/utils"
	"github.com/sirupsen/logrus"
)

// DownloadHandler runs artwork downloads
type DownloadHandler struct {
	downloadCtrl *controllers.DownloadController
	destination  models.DownloadDestination
	logger       *logrus.Logger
}

// NewDownloadHandler creates a handler writing to the configured destination
func NewDownloadHandler(downloadCtrl *controllers.DownloadController, destination models.DownloadDestination, logger *logrus.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloadCtrl: downloadCtrl,
		destination:  destination,
		logger:       logger,
	}
}

// DownloadPayload is the body of POST /api/download. SourcePath defaults
// to the item's own poster or backdrop.
type DownloadPayload struct {
	SourcePath string           `json:"source_path"`
	Kind       string           `json:"kind"`
	Item       models.MediaItem `json:"item"`
	ImageKind  string           `json:"image_kind"`
	Flip       bool             `json:"flip"`
}

// DownloadResponse reports where the artwork was written
type DownloadResponse struct {
	Status      models.DownloadStatus `json:"status"`
	PrimaryPath string                `json:"primary_path,omitempty"`
	BackupPath  string                `json:"backup_path,omitempty"`
	Bytes       int                   `json:"bytes"`
	Error       string                `json:"error,omitempty"`
}

// ServeHTTP handles the download endpoint: 200 when every destination was
// written, 502 otherwise
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload DownloadPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.logger.WithError(err).Debug("Failed to decode download payload")
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	req, err := payload.request()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// downloads run to completion even if the client disconnects
	result, err := h.downloadCtrl.Download(context.WithoutCancel(r.Context()), req, h.destination)
	response := DownloadResponse{
		Status:      result.Status,
		PrimaryPath: result.PrimaryPath,
		BackupPath:  result.BackupPath,
		Bytes:       result.Bytes,
	}
	if err != nil {
		response.Error = err.Error()
		writeJSON(w, http.StatusBadGateway, response)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func (p DownloadPayload) request() (models.DownloadRequest, error) {
	kind, err := models.ParseMediaKind(p.Kind)
	if err != nil {
		return models.DownloadRequest{}, err
	}
	imageKind, err := models.ParseImageKind(defaultString(p.ImageKind, string(models.ImageKindPoster)))
	if err != nil {
		return models.DownloadRequest{}, err
	}
	if p.Item.ID <= 0 {
		return models.DownloadRequest{}, errors.New("item id is required")
	}

	source := strings.TrimSpace(p.SourcePath)
	if source == "" {
		path, ok := p.Item.ArtworkPath(imageKind)
		if !ok {
			return models.DownloadRequest{}, errors.New("item has no " + string(imageKind))
		}
		source = path
	}

	return models.DownloadRequest{
		SourcePath: source,
		Subfolder:  utils.PlexSubfolder(kind, p.Item),
		Filename:   imageKind.Filename(),
		Flip:       p.Flip,
	}, nil
}
