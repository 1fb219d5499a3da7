package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/amaumene/postarr/internal/models"
	"github.com/sirupsen/logrus"
)

// DownloadLister reads the download log
type DownloadLister interface {
	GetDownloads() ([]*models.DownloadRecord, error)
}

// StatusHandler handles status requests
type StatusHandler struct {
	downloads DownloadLister
	logger    *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(downloads DownloadLister, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		downloads: downloads,
		logger:    logger,
	}
}

// StatusResponse summarises the download log
type StatusResponse struct {
	TotalDownloads int                      `json:"total_downloads"`
	Completed      int                      `json:"completed"`
	Failed         int                      `json:"failed"`
	Partial        int                      `json:"partial"`
	BytesWritten   int64                    `json:"bytes_written"`
	LastDownload   *time.Time               `json:"last_download,omitempty"`
	Recent         []*models.DownloadRecord `json:"recent"`
}

const recentDownloads = 10

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, err := h.downloads.GetDownloads()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get downloads")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{
		TotalDownloads: len(records),
		Recent:         []*models.DownloadRecord{},
	}

	for i, record := range records {
		switch record.Status {
		case models.DownloadStatusCompleted:
			response.Completed++
		case models.DownloadStatusFailed:
			response.Failed++
		case models.DownloadStatusPartial:
			response.Partial++
		}
		if record.PrimaryPath != "" {
			response.BytesWritten += int64(record.Bytes)
		}
		if i < recentDownloads {
			response.Recent = append(response.Recent, record)
		}
	}

	// records come newest first
	if len(records) > 0 {
		last := records[0].CreatedAt
		response.LastDownload = &last
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
