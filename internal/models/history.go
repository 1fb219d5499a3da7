package models

import "time"

// SearchHistoryItem records a successful search so it can be repeated
type SearchHistoryItem struct {
	ID         string    `boltholdKey:"ID" json:"id"`
	SearchText string    `json:"search_text"`
	Kind       MediaKind `boltholdIndex:"Kind" json:"media_type"`
	Timestamp  time.Time `json:"timestamp"`
}
