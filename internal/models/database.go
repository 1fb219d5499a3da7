package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
	now   func() time.Time
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store, now: time.Now}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Search history operations

// AddSearchHistory records a search at the front of the history. An earlier
// entry for the same kind whose text matches case-insensitively is replaced,
// and the history is trimmed to maxItems newest entries.
func (db *Database) AddSearchHistory(searchText string, kind MediaKind, maxItems int) (*SearchHistoryItem, error) {
	text := strings.TrimSpace(searchText)
	if text == "" {
		return nil, nil
	}

	item := &SearchHistoryItem{
		ID:         uuid.NewString(),
		SearchText: text,
		Kind:       kind,
		Timestamp:  db.now(),
	}

	err := db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		var sameKind []*SearchHistoryItem
		if err := db.store.TxFind(tx, &sameKind, bolthold.Where("Kind").Eq(kind)); err != nil {
			return err
		}
		for _, existing := range sameKind {
			if strings.EqualFold(existing.SearchText, text) {
				if err := db.store.TxDelete(tx, existing.ID, &SearchHistoryItem{}); err != nil {
					return err
				}
			}
		}

		if err := db.store.TxInsert(tx, item.ID, item); err != nil {
			return err
		}

		var all []*SearchHistoryItem
		if err := db.store.TxFind(tx, &all, nil); err != nil {
			return err
		}
		sortHistory(all)
		for _, stale := range overflow(all, maxItems) {
			if err := db.store.TxDelete(tx, stale.ID, &SearchHistoryItem{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add search history: %w", err)
	}

	return item, nil
}

// GetSearchHistory returns the history newest first
func (db *Database) GetSearchHistory() ([]*SearchHistoryItem, error) {
	var items []*SearchHistoryItem
	if err := db.store.Find(&items, nil); err != nil {
		return nil, err
	}
	sortHistory(items)
	return items, nil
}

// GetSearchHistoryItem retrieves a history entry by ID
func (db *Database) GetSearchHistoryItem(id string) (*SearchHistoryItem, error) {
	var item SearchHistoryItem
	if err := db.store.Get(id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveSearchHistory deletes a single history entry
func (db *Database) RemoveSearchHistory(id string) error {
	return db.store.Delete(id, &SearchHistoryItem{})
}

// ClearSearchHistory deletes every history entry
func (db *Database) ClearSearchHistory() error {
	return db.store.DeleteMatching(&SearchHistoryItem{}, nil)
}

func sortHistory(items []*SearchHistoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}

func overflow(items []*SearchHistoryItem, maxItems int) []*SearchHistoryItem {
	if maxItems <= 0 || len(items) <= maxItems {
		return nil
	}
	return items[maxItems:]
}

// Download log operations

// CreateDownload records a download attempt
func (db *Database) CreateDownload(record *DownloadRecord) error {
	record.CreatedAt = db.now()
	return db.store.Insert(bolthold.NextSequence(), record)
}

// GetDownloads retrieves the download log, newest first
func (db *Database) GetDownloads() ([]*DownloadRecord, error) {
	var records []*DownloadRecord
	if err := db.store.Find(&records, nil); err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// GetDownloadsByStatus retrieves all download records with a given status
func (db *Database) GetDownloadsByStatus(status DownloadStatus) ([]*DownloadRecord, error) {
	var records []*DownloadRecord
	err := db.store.Find(&records, bolthold.Where("Status").Eq(status))
	return records, err
}

// DeleteDownloadsBefore removes log entries created before cutoff and
// returns how many were removed
func (db *Database) DeleteDownloadsBefore(cutoff time.Time) (int, error) {
	var records []*DownloadRecord
	if err := db.store.Find(&records, nil); err != nil {
		return 0, err
	}

	removed := 0
	for _, record := range records {
		if !record.CreatedAt.Before(cutoff) {
			continue
		}
		if err := db.store.Delete(record.ID, &DownloadRecord{}); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
