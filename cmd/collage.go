package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/tessera/internal/repositories"
	"github.com/desertthunder/tessera/internal/shared"
	"github.com/desertthunder/tessera/internal/tasks"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// collageDefaults resolves size and hue shift from preferences, falling back to the
// config file for anything the user never set.
func (r *Runner) collageDefaults() tasks.CollageOpts {
	prefs := repositories.NewPreferences(r.store)
	opts := tasks.CollageOpts{OutputDir: r.config.Collage.OutputDir}

	w, h, err := prefs.CollageSize()
	if err != nil {
		r.logger.Warn("failed to read collage size preference", "error", err)
	}
	hue, err := prefs.HueShift()
	if err != nil {
		r.logger.Warn("failed to read color shift preference", "error", err)
	}
	opts.Width, opts.Height, opts.HueShift = w, h, hue

	if _, ok, _ := r.store.Get(repositories.PrefCollageWidth); !ok && r.config.Collage.Width > 0 {
		opts.Width = r.config.Collage.Width
	}
	if _, ok, _ := r.store.Get(repositories.PrefCollageHeight); !ok && r.config.Collage.Height > 0 {
		opts.Height = r.config.Collage.Height
	}
	if _, ok, _ := r.store.Get(repositories.PrefColorShift); !ok && r.config.Collage.HueShift != 0 {
		opts.HueShift = r.config.Collage.HueShift
	}
	return opts
}

func (r *Runner) collageEngine() *tasks.CollageEngine {
	var recorder tasks.CollageRecorder
	if r.collages != nil {
		recorder = r.collages
	}
	return tasks.NewCollageEngine(r.imageFetcher(), recorder, r.logger)
}

// CollageGenerate loads liked songs and writes a color-sorted album-art collage.
func (r *Runner) CollageGenerate(ctx context.Context, cmd *cli.Command) error {
	loader, err := r.loadCatalog(ctx, cmd)
	if err != nil {
		return err
	}

	opts := r.collageDefaults()
	if cmd.IsSet("width") {
		opts.Width = cmd.Int("width")
	}
	if cmd.IsSet("height") {
		opts.Height = cmd.Int("height")
	}
	if cmd.IsSet("hue-shift") {
		opts.HueShift = cmd.Float("hue-shift")
	}
	if out := cmd.String("output"); out != "" {
		opts.OutputDir = out
	}
	opts.Unique = cmd.Bool("unique")

	tracks := loader.State().Tracks()
	progress := make(chan tasks.ProgressUpdate, 8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range progress {
			r.logger.Debug(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
		}
	}()

	var result *tasks.CollageResult
	err = r.spin(ctx, fmt.Sprintf("Building collage from %d songs...", len(tracks)), func(ctx context.Context) error {
		var err error
		result, err = r.collageEngine().Generate(ctx, progress, tracks, opts)
		return err
	})
	close(progress)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("failed to generate collage: %w", err)
	}

	c := result.Collage
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"id":        c.ID(),
			"path":      c.Path(),
			"width":     c.Width(),
			"height":    c.Height(),
			"tiles":     c.Tiles(),
			"hue_shift": c.HueShift(),
			"skipped":   result.Skipped,
			"size":      result.Size,
		}, true)
	}

	r.writePlain("✓ Collage saved to %s\n", c.Path())
	r.writePlain("  %dx%d, %d tiles (%dx%d grid, %dpx), %s\n",
		c.Width(), c.Height(), c.Tiles(), result.Layout.Columns, result.Layout.Rows, result.Layout.TileSize,
		humanize.Bytes(uint64(result.Size)))
	if result.Skipped > 0 {
		r.writePlain("  %d images skipped\n", result.Skipped)
	}
	return nil
}

// CollageList prints previously generated collages, newest first.
func (r *Runner) CollageList(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}
	if r.collages == nil {
		return fmt.Errorf("%w: collage history needs the database", shared.ErrServiceUnavailable)
	}

	collages, err := r.collages.List(map[string]any{"limit": cmd.Int("limit")})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, 0, len(collages))
		for _, c := range collages {
			out = append(out, map[string]any{
				"id":         c.ID(),
				"path":       c.Path(),
				"width":      c.Width(),
				"height":     c.Height(),
				"tiles":      c.Tiles(),
				"hue_shift":  c.HueShift(),
				"created_at": c.CreatedAt(),
			})
		}
		return r.writeJSON(out, true)
	}

	if len(collages) == 0 {
		return r.writePlain("No collages yet. Run `tessera collage generate`.\n")
	}

	now := r.clock.Now()
	r.writePlainHeader(fmt.Sprintf("Collages (%d)", len(collages)))
	for _, c := range collages {
		r.writePlain("%s  %dx%d  %3d tiles  %-14s %s\n",
			shortID(c.ID()), c.Width(), c.Height(), c.Tiles(), humanize.RelTime(c.CreatedAt(), now, "ago", "from now"), c.Path())
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
