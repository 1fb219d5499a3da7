package models

import "fmt"

// UnknownTitle is shown when a result carries neither title nor name
const UnknownTitle = "Unknown Title"

// MediaItem is a single TMDB search result (show, movie or collection)
type MediaItem struct {
	ID           int     `json:"id"`
	Title        *string `json:"title"`
	Name         *string `json:"name"` // TV shows and collections use name instead of title
	Overview     string  `json:"overview"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	ReleaseDate  *string `json:"release_date"`
	FirstAirDate *string `json:"first_air_date"` // TV shows only
}

// DisplayTitle falls back from title to name to UnknownTitle
func (m MediaItem) DisplayTitle() string {
	if m.Title != nil {
		return *m.Title
	}
	if m.Name != nil {
		return *m.Name
	}
	return UnknownTitle
}

// DisplayYear is the first four characters of whichever date is present
func (m MediaItem) DisplayYear() string {
	date := ""
	if m.ReleaseDate != nil {
		date = *m.ReleaseDate
	} else if m.FirstAirDate != nil {
		date = *m.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// FormattedTitle is "Title (Year)", or just the title when no year is known
func (m MediaItem) FormattedTitle() string {
	if year := m.DisplayYear(); year != "" {
		return fmt.Sprintf("%s (%s)", m.DisplayTitle(), year)
	}
	return m.DisplayTitle()
}

// PlexTitle embeds the TMDB id so Plex can match the folder: "Title (Year) {tmdb-ID}"
func (m MediaItem) PlexTitle() string {
	return fmt.Sprintf("%s {tmdb-%d}", m.FormattedTitle(), m.ID)
}

// ArtworkPath returns the item's default poster or backdrop path, if any
func (m MediaItem) ArtworkPath(kind ImageKind) (string, bool) {
	p := m.PosterPath
	if kind == ImageKindBackdrop {
		p = m.BackdropPath
	}
	if p == nil || *p == "" {
		return "", false
	}
	return *p, true
}

// SearchResponse is the TMDB search envelope
type SearchResponse struct {
	Page         int         `json:"page"`
	Results      []MediaItem `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}
