package utils

import (
	"fmt"
	"path"
	"strings"

	"github.com/amaumene/postarr/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ReplaceColons swaps ":" for " -" since many filesystems reject colons
func ReplaceColons(s string) string {
	return strings.ReplaceAll(s, ":", " -")
}

// PlexSubfolder builds the destination subfolder for an item's artwork:
// "{shows|movies}/{Title (Year) {tmdb-ID}}" or "collections/{Title}".
func PlexSubfolder(kind models.MediaKind, item models.MediaItem) string {
	title := item.PlexTitle()
	if kind == models.MediaKindCollection {
		title = item.DisplayTitle()
	}
	// path separators inside a title would create extra directory levels
	title = strings.ReplaceAll(title, "/", "-")
	return ReplaceColons(path.Join(kind.FolderPrefix(), title))
}

// ClipboardText renders an item for copying: the TMDB id, the formatted
// title, or (by default) the Plex title with colons replaced.
func ClipboardText(item models.MediaItem, idOnly, nameOnly bool) string {
	switch {
	case idOnly:
		return fmt.Sprintf("%d", item.ID)
	case nameOnly:
		return item.FormattedTitle()
	default:
		return ReplaceColons(item.PlexTitle())
	}
}

// SearchSummary labels a search the way the main window title does:
// "'Batman Begins' (Movies)"
func SearchSummary(query string, kind models.MediaKind) string {
	// a Caser is stateful, so one per call
	caser := cases.Title(language.Und)
	return fmt.Sprintf("'%s' (%s)", caser.String(strings.TrimSpace(query)), kind.DisplayName())
}
