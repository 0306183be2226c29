package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tessera/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	pos   int
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title + " " + i.track.Artists }
func (i trackItem) Title() string       { return fmt.Sprintf("%d. %s", i.pos, i.track.Title) }
func (i trackItem) Description() string {
	if i.track.Artists == "" {
		return "Unknown Artist"
	}
	return i.track.Artists
}

func trackItems(tracks []models.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{pos: i + 1, track: t}
	}
	return items
}

// trackURL turns a spotify:track:<id> URI into an open.spotify.com link.
func trackURL(uri string) string {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" {
		return ""
	}
	return fmt.Sprintf("https://open.spotify.com/%s/%s", parts[1], parts[2])
}
