package testing

import (
	"encoding/json"
	"fmt"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

// PageRequest records one /me/tracks call.
type PageRequest struct {
	Limit  int
	Offset int
}

// LibraryServer is a fake Spotify Web API serving a synthetic liked-songs library of Total tracks.
//
// Track i is "Song i" by "Artist i" with URI spotify:track:i. Its album art lives at /art/i.png and is a
// solid color whose hue is (i*37) mod 360. Set FailStatus to make /me/tracks answer with that status
// once Offset reaches FailAtOffset.
type LibraryServer struct {
	*httptest.Server

	mu           sync.Mutex
	Total        int
	FailStatus   int
	FailAtOffset int
	Requests     []PageRequest
	Playlists    []map[string]any
	t            *testing.T
}

// NewLibraryServer starts a LibraryServer and closes it when the test ends.
func NewLibraryServer(t *testing.T, total int) *LibraryServer {
	t.Helper()
	ls := &LibraryServer{Total: total, t: t}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me/tracks", ls.handleTracks)
	mux.HandleFunc("GET /me", ls.handleMe)
	mux.HandleFunc("GET /me/playlists", ls.handlePlaylists)
	mux.HandleFunc("GET /art/{file}", ls.handleArt)

	ls.Server = httptest.NewServer(mux)
	t.Cleanup(ls.Close)
	return ls
}

// RequestCount returns how many /me/tracks calls were made.
func (ls *LibraryServer) RequestCount() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.Requests)
}

// SetFailure makes /me/tracks answer status once offset >= atOffset. A zero status disables failures.
func (ls *LibraryServer) SetFailure(status, atOffset int) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	ls.FailStatus, ls.FailAtOffset = status, atOffset
}

// ArtURL returns the album art URL for track i.
func (ls *LibraryServer) ArtURL(i int) string {
	return fmt.Sprintf("%s/art/%d.png", ls.URL, i)
}

// Hue returns the hue of track i's album art.
func Hue(i int) float64 {
	return float64((i * 37) % 360)
}

func (ls *LibraryServer) handleTracks(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	ls.mu.Lock()
	ls.Requests = append(ls.Requests, PageRequest{Limit: limit, Offset: offset})
	total, failStatus, failAt := ls.Total, ls.FailStatus, ls.FailAtOffset
	ls.mu.Unlock()

	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		http.Error(w, `{"error":{"status":401,"message":"No token provided"}}`, http.StatusUnauthorized)
		return
	}
	if failStatus != 0 && offset >= failAt {
		w.WriteHeader(failStatus)
		fmt.Fprintf(w, `{"error":{"status":%d,"message":"injected failure"}}`, failStatus)
		return
	}

	items := []map[string]any{}
	for i := offset; i < min(offset+limit, total); i++ {
		items = append(items, map[string]any{
			"added_at": "2024-01-01T00:00:00Z",
			"track": map[string]any{
				"id":   strconv.Itoa(i),
				"name": fmt.Sprintf("Song %d", i),
				"uri":  fmt.Sprintf("spotify:track:%d", i),
				"artists": []map[string]any{
					{"name": fmt.Sprintf("Artist %d", i)},
					{"name": "Featured"},
				},
				"album": map[string]any{
					"name": fmt.Sprintf("Album %d", i),
					"images": []map[string]any{
						{"url": ls.URL + "/large.png", "width": 640, "height": 640},
						{"url": ls.ArtURL(i), "width": 64, "height": 64},
						{"url": ls.URL + "/medium.png", "width": 300, "height": 300},
					},
				},
			},
		})
	}

	writeJSON(w, map[string]any{
		"items":  items,
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"next":   nil,
	})
}

func (ls *LibraryServer) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"id": "tester", "display_name": "Test User", "email": "test@example.com", "product": "premium"})
}

func (ls *LibraryServer) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	ls.mu.Lock()
	playlists := ls.Playlists
	ls.mu.Unlock()
	if playlists == nil {
		playlists = []map[string]any{}
	}
	writeJSON(w, map[string]any{"items": playlists, "total": len(playlists), "next": nil})
}

func (ls *LibraryServer) handleArt(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(strings.TrimSuffix(r.PathValue("file"), ".png"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	c := colorful.Hsv(Hue(i), 1, 1)
	r8, g8, b8 := c.RGB255()
	w.Header().Set("Content-Type", "image/png")
	w.Write(MustPNG(ls.t, SolidImage(color.RGBA{r8, g8, b8, 255}, 8, 8)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
