package tasks

import (
	"fmt"

	"github.com/desertthunder/tessera/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchImages Phase = iota
	ComposeCollage
	SaveCollage
	FetchPlaylists
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchImages:
		return "fetch_images"
	case ComposeCollage:
		return "compose_collage"
	case SaveCollage:
		return "save_collage"
	case FetchPlaylists:
		return "fetch_playlists"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

// sendProgress sends an update without blocking. A nil or full channel drops it.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadingImagesUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading images (%d/%d)...", step, total),
	}
}

func composingUpdate(images int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ComposeCollage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Composing %d images...", images),
	}
}

func savedCollageUpdate(c *models.Collage) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveCollage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Saved collage to %s", c.Path()),
		Data:    c,
	}
}

func fetchingPlaylistsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching %d playlists...", total),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
