package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tessera/internal/formatter"
	"github.com/desertthunder/tessera/internal/models"
	"github.com/desertthunder/tessera/internal/tasks"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist the user owns or follows.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	var playlists []models.Playlist
	err := r.spin(ctx, "Fetching playlists...", func(ctx context.Context) error {
		var err error
		playlists, err = r.spotify.GetPlaylists(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch playlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%-24s %4d tracks  %s (by %s)\n", p.ID, p.TrackCount, p.Name, p.Owner)
	}
	return nil
}

// PlaylistsShow prints one playlist with its tracks.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	var export *models.PlaylistExport
	err := r.spin(ctx, "Fetching playlist...", func(ctx context.Context) error {
		var err error
		export, err = r.spotify.ExportPlaylist(ctx, cmd.String("id"))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(export, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(export)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// PlaylistsExport exports the selected (or all) playlists through the worker pool.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	ids := cmd.StringSlice("id")
	if len(ids) == 0 {
		playlists, err := r.spotify.GetPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch playlists: %w", err)
		}
		ids = lo.Map(playlists, func(p models.Playlist, _ int) string { return p.ID })
	}
	if len(ids) == 0 {
		return r.writePlain("No playlists to export\n")
	}

	engine := tasks.NewExportEngine(r.spotify, r.imageFetcher(), r.logger)
	progress := make(chan tasks.ProgressUpdate, len(ids)*2+1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	var result *tasks.BulkExportResult
	err := r.spin(ctx, fmt.Sprintf("Exporting %d playlists...", len(ids)), func(ctx context.Context) error {
		var err error
		result, err = engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
			Format:     cmd.String("format"),
			OutputDir:  cmd.String("output"),
			NumWorkers: cmd.Int("workers"),
			RateLimit:  cmd.Float("rate"),
		})
		return err
	})
	close(progress)
	wg.Wait()

	if result == nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlain("✓ Exported %d of %d playlists to %s\n", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %v\n", res.PlaylistName, res.Error)
		}
	}
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return err
}
