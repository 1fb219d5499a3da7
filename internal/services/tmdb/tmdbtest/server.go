// Package tmdbtest serves a canned TMDB API and image CDN for tests.
package tmdbtest

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// APIKey is the only key the fake accepts
const APIKey = "test-key"

// Server is a fake TMDB. API routes live under /3, images under /t/p.
type Server struct {
	*httptest.Server

	// Images maps a file path (e.g. /poster-large.png) to the bytes served
	// at the original tier
	Images map[string][]byte

	// Thumbnails maps a file path to the bytes served at every scaled tier
	Thumbnails map[string][]byte

	// ImageIDs are the movie ids that have an images listing
	ImageIDs map[int]bool

	mu       sync.Mutex
	queries  []string
	langs    []string
	fetches  []string
	failNext bool
}

// NewServer starts a fake with a Batman search result and two posters
func NewServer() *Server {
	s := &Server{
		Images: map[string][]byte{
			"/poster-large.png": Pixels(4, 6),
			"/poster-small.png": Pixels(2, 3),
			"/backdrop.png":     Pixels(8, 4),
		},
		Thumbnails: map[string][]byte{
			"/poster-large.png": Pixels(1, 2),
			"/poster-small.png": Pixels(1, 1),
			"/backdrop.png":     Pixels(2, 1),
		},
		ImageIDs: map[int]bool{268: true},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/3/search/", s.handleSearch)
	mux.HandleFunc("/3/movie/", s.handleImages)
	mux.HandleFunc("/t/p/", s.handleImage)
	s.Server = httptest.NewServer(mux)
	return s
}

// BaseURL is the API root to configure a client with
func (s *Server) BaseURL() string { return s.URL + "/3" }

// ImageURL is the CDN root to configure a client with
func (s *Server) ImageURL() string { return s.URL + "/t/p" }

// Queries returns the decoded query parameter of every search received
func (s *Server) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// Languages returns the include_image_language values received
func (s *Server) Languages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.langs...)
}

// Fetches returns every CDN request received as "tier path"
func (s *Server) Fetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetches...)
}

// FailNext makes the next API call answer 500
func (s *Server) FailNext() {
	s.mu.Lock()
	s.failNext = true
	s.mu.Unlock()
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	fail := s.failNext
	s.failNext = false
	s.mu.Unlock()

	if fail {
		http.Error(w, `{"status_message":"boom"}`, http.StatusInternalServerError)
		return false
	}
	if r.URL.Query().Get("api_key") != APIKey {
		http.Error(w, `{"status_message":"Invalid API key"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if !s.check(w, r) {
		return
	}
	query := r.URL.Query().Get("query")
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	kind := strings.TrimPrefix(r.URL.Path, "/3/search/")
	var body string
	switch {
	case kind == "movie" && strings.EqualFold(query, "batman"):
		body = `{"page":1,"total_pages":1,"total_results":2,"results":[
			{"id":268,"title":"Batman","overview":"Gotham.","poster_path":"/poster-large.png","backdrop_path":"/backdrop.png","release_date":"1989-06-23"},
			{"id":272,"title":"Batman Begins","release_date":"2005-06-10","poster_path":null}]}`
	case kind == "tv":
		body = `{"page":1,"total_pages":1,"total_results":1,"results":[
			{"id":1399,"name":"Game of Thrones","first_air_date":"2011-04-17"}]}`
	default:
		body = `{"page":1,"total_pages":0,"total_results":0,"results":[]}`
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/3/movie/"), "/images")
	id, err := strconv.Atoi(rest)
	if err != nil || !s.ImageIDs[id] || !strings.HasSuffix(r.URL.Path, "/images") {
		http.NotFound(w, r)
		return
	}
	if !s.check(w, r) {
		return
	}
	s.mu.Lock()
	s.langs = append(s.langs, r.URL.Query().Get("include_image_language"))
	s.mu.Unlock()

	// deliberately out of order
	resp := map[string]interface{}{
		"id": id,
		"posters": []map[string]interface{}{
			{"file_path": "/poster-small.png", "width": 2, "height": 3, "aspect_ratio": 0.667},
			{"file_path": "/poster-large.png", "width": 4, "height": 6, "aspect_ratio": 0.667},
			{"file_path": "/poster-mid.png", "width": 3, "height": 4, "aspect_ratio": 0.75},
		},
		"backdrops": []map[string]interface{}{
			{"file_path": "/backdrop.png", "width": 8, "height": 4, "aspect_ratio": 2},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/t/p/")
	slash := strings.Index(rest, "/")
	if slash < 0 {
		http.NotFound(w, r)
		return
	}
	tier, path := rest[:slash], rest[slash:]
	s.mu.Lock()
	s.fetches = append(s.fetches, tier+" "+path)
	s.mu.Unlock()

	images := s.Thumbnails
	if tier == "original" {
		images = s.Images
	}
	data, ok := images[path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(data)
}

// Pixels encodes a small opaque PNG with a horizontal gradient
func Pixels(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 20), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
