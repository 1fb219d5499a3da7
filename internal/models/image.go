package models

import "sort"

// ImageVariant is one poster or backdrop candidate; FilePath is its identity
type ImageVariant struct {
	AspectRatio float64 `json:"aspect_ratio"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FilePath    string  `json:"file_path"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
}

// Area is the pixel count used to order variants
func (v ImageVariant) Area() int {
	return v.Width * v.Height
}

// ImagesResponse is the TMDB images lookup for a single item
type ImagesResponse struct {
	ID        int            `json:"id"`
	Posters   []ImageVariant `json:"posters"`
	Backdrops []ImageVariant `json:"backdrops"`
}

// Variants returns the list matching the image kind
func (r ImagesResponse) Variants(kind ImageKind) []ImageVariant {
	if kind == ImageKindBackdrop {
		return r.Backdrops
	}
	return r.Posters
}

// SortByArea orders variants largest first; equal areas keep response order
func SortByArea(variants []ImageVariant) {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Area() > variants[j].Area()
	})
}
