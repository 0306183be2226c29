package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tessera/internal/catalog"
	"github.com/desertthunder/tessera/internal/formatter"
	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadCatalog fetches the first page (from cache when fresh), then --pages more or --all.
func (r *Runner) loadCatalog(ctx context.Context, cmd *cli.Command) (*catalog.Loader, error) {
	if err := r.requireSession(ctx); err != nil {
		return nil, err
	}

	loader, _ := r.newLoader(0)
	load := func(ctx context.Context) error {
		if err := loader.FetchInitial(ctx); err != nil {
			return err
		}
		if cmd.Bool("all") {
			return loader.LoadAll(ctx)
		}
		for range max(cmd.Int("pages"), 1) - 1 {
			if loader.State().Snapshot().Complete() {
				break
			}
			if err := loader.LoadMore(ctx); err != nil {
				return err
			}
		}
		return nil
	}

	if err := r.spin(ctx, "Loading liked songs...", load); err != nil {
		return nil, fmt.Errorf("failed to load liked songs: %w", err)
	}
	return loader, nil
}

// TracksList prints the loaded liked songs.
func (r *Runner) TracksList(ctx context.Context, cmd *cli.Command) error {
	loader, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	tracks := loader.State().Tracks()
	snap := loader.State().Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			State  models.LoadState `json:"state"`
			Tracks []models.Track   `json:"tracks"`
		}{snap, tracks}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Liked Songs (%s)", progressLabel(snap)))
	for i, t := range tracks {
		artists := t.Artists
		if artists == "" {
			artists = "Unknown Artist"
		}
		r.writePlain("%4d. %s - %s\n", i+1, artists, t.Title)
	}
	if !snap.Complete() {
		r.writePlainln("Use --pages N or --all to load more.")
	}
	return nil
}

// TracksExport writes the loaded liked songs in the requested format.
func (r *Runner) TracksExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	loader, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	tracks := loader.State().Tracks()
	if len(tracks) == 0 {
		return fmt.Errorf("%w: no liked songs to export", shared.ErrInvalidInput)
	}

	files, err := formatter.WriteExport(ctx, formatter.LikedSongs(tracks), format, cmd.String("output"), r.imageFetcher())
	if err != nil {
		return fmt.Errorf("failed to export liked songs: %w", err)
	}

	r.logger.Info("exported liked songs", "tracks", len(tracks), "format", format)
	r.writePlain("✓ Exported %d liked songs\n", len(tracks))
	for _, f := range files {
		r.writePlain("  %s\n", f)
	}
	return nil
}

func progressLabel(s models.LoadState) string {
	if s.Total == nil {
		return fmt.Sprintf("%d loaded", s.LoadedCount)
	}
	return fmt.Sprintf("%d of %d", s.LoadedCount, *s.Total)
}
