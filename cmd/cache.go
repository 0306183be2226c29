package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"
)

// CacheStatus reports the age, size and expiry of the liked-songs cache.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}

	cache := r.catalogCache()
	cached, err := cache.Load()
	if err != nil {
		return fmt.Errorf("failed to read catalog cache: %w", err)
	}
	if cached == nil {
		return r.writePlain("No cached liked songs (TTL %s)\n", cache.TTL())
	}

	now := r.clock.Now()
	expires := cached.FetchedAt.Add(cache.TTL())

	r.writePlain("Cached liked songs: %s of %s\n", humanize.Comma(int64(len(cached.Tracks))), humanize.Comma(int64(cached.Total)))
	r.writePlain("Fetched: %s (%s)\n", humanize.RelTime(cached.FetchedAt, now, "ago", "from now"), cached.FetchedAt.Format(time.RFC1123))
	r.writePlain("Expires: %s\n", humanize.RelTime(expires, now, "ago", "from now"))
	if !cached.Complete() {
		r.writePlain("Partial: %d tracks not cached\n", cached.Total-len(cached.Tracks))
	}
	return nil
}

// CacheClear removes the cached catalog so the next load goes to the network.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.openStore(); err != nil {
		return err
	}
	if err := r.catalogCache().Clear(); err != nil {
		return fmt.Errorf("failed to clear catalog cache: %w", err)
	}
	r.logger.Info("catalog cache cleared")
	return r.writePlain("✓ Cache cleared\n")
}
