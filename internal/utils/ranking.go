package utils

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/amaumene/postarr/internal/models"
)

// RankByTitle sorts search results by how close their display title is to
// the query (case-insensitive edit distance). Ties keep TMDB's relevance order.
func RankByTitle(query string, items []models.MediaItem) []models.MediaItem {
	sorted := make([]models.MediaItem, len(items))
	copy(sorted, items)

	q := strings.ToLower(strings.TrimSpace(query))
	distance := make(map[int]int, len(sorted))
	for _, item := range sorted {
		distance[item.ID] = levenshtein.ComputeDistance(q, strings.ToLower(item.DisplayTitle()))
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return distance[sorted[i].ID] < distance[sorted[j].ID]
	})

	return sorted
}

// BestMatch returns the result closest to the query
func BestMatch(query string, items []models.MediaItem) (models.MediaItem, bool) {
	if len(items) == 0 {
		return models.MediaItem{}, false
	}
	return RankByTitle(query, items)[0], true
}
