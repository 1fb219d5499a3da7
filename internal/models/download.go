package models

import (
	"strings"
	"time"
)

// DownloadDestination is where artwork is written; Backup may be empty
type DownloadDestination struct {
	Primary string
	Backup  string
}

// HasBackup reports whether every write must be mirrored to Backup
func (d DownloadDestination) HasBackup() bool {
	return strings.TrimSpace(d.Backup) != ""
}

// DownloadRequest describes a single artwork download
type DownloadRequest struct {
	SourcePath string // TMDB file path, e.g. /abc.jpg
	Subfolder  string // e.g. movies/Batman (1989) {tmdb-268}, colons already replaced
	Filename   string // poster.jpg or backdrop.jpg
	Flip       bool
}

// DownloadRecord is the persisted log entry of a download attempt
type DownloadRecord struct {
	ID uint64 `boltholdKey:"ID"`

	SourcePath string
	Subfolder  string
	Filename   string
	Flip       bool

	PrimaryPath string // final path written under the primary root, if any
	BackupPath  string // final path written under the backup root, if any

	Status        DownloadStatus `boltholdIndex:"Status"`
	FailureReason string
	Bytes         int

	CreatedAt time.Time
}
