package models

import "fmt"

// MediaKind selects the TMDB search/images namespace
type MediaKind string

const (
	MediaKindTV         MediaKind = "tv"
	MediaKindMovie      MediaKind = "movie"
	MediaKindCollection MediaKind = "collection"
)

// MediaKinds lists every supported kind in display order
var MediaKinds = []MediaKind{MediaKindTV, MediaKindMovie, MediaKindCollection}

// ParseMediaKind accepts the TMDB names plus the plural folder/display forms
func ParseMediaKind(s string) (MediaKind, error) {
	switch s {
	case "tv", "show", "shows":
		return MediaKindTV, nil
	case "movie", "movies":
		return MediaKindMovie, nil
	case "collection", "collections":
		return MediaKindCollection, nil
	}
	return "", fmt.Errorf("unknown media kind %q", s)
}

// FolderPrefix is the top-level directory artwork of this kind is filed under
func (k MediaKind) FolderPrefix() string {
	switch k {
	case MediaKindMovie:
		return "movies"
	case MediaKindCollection:
		return "collections"
	default:
		return "shows"
	}
}

// DisplayName is the plural label shown next to a search
func (k MediaKind) DisplayName() string {
	switch k {
	case MediaKindMovie:
		return "Movies"
	case MediaKindCollection:
		return "Collections"
	default:
		return "Shows"
	}
}

// ImageKind is the artwork family a variant belongs to
type ImageKind string

const (
	ImageKindPoster   ImageKind = "poster"
	ImageKindBackdrop ImageKind = "backdrop"
)

// ParseImageKind validates an image kind name
func ParseImageKind(s string) (ImageKind, error) {
	switch ImageKind(s) {
	case ImageKindPoster, ImageKindBackdrop:
		return ImageKind(s), nil
	}
	return "", fmt.Errorf("unknown image kind %q", s)
}

// Filename is the fixed Plex artwork filename for the kind
func (k ImageKind) Filename() string {
	if k == ImageKindBackdrop {
		return "backdrop.jpg"
	}
	return "poster.jpg"
}

// SizeTier is a pre-scaled bucket served by the TMDB image CDN
type SizeTier string

const (
	SizeW92      SizeTier = "w92"
	SizeW154     SizeTier = "w154"
	SizeW185     SizeTier = "w185"
	SizeW342     SizeTier = "w342"
	SizeW500     SizeTier = "w500"
	SizeW780     SizeTier = "w780"
	SizeOriginal SizeTier = "original"
)

// PreviewSize is the tier used for gallery thumbnails
const PreviewSize = SizeW342

// ParseSizeTier validates a tier name
func ParseSizeTier(s string) (SizeTier, error) {
	switch t := SizeTier(s); t {
	case SizeW92, SizeW154, SizeW185, SizeW342, SizeW500, SizeW780, SizeOriginal:
		return t, nil
	}
	return "", fmt.Errorf("unknown size tier %q", s)
}

// DownloadStatus is the outcome recorded for a download attempt
type DownloadStatus string

const (
	DownloadStatusCompleted DownloadStatus = "completed"
	DownloadStatusFailed    DownloadStatus = "failed"
	DownloadStatusPartial   DownloadStatus = "partial" // primary written, backup failed
)
