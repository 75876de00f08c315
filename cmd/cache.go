package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/spt/internal/formatter"
	"github.com/desertthunder/spt/internal/repositories"
	"github.com/desertthunder/spt/internal/shared"
)

// requireCache opens the track cache even when caching is disabled for playback.
func (r *Runner) requireCache() (*repositories.TrackRepository, error) {
	if r.tracks == nil {
		r.openCache()
	}
	if r.tracks == nil {
		return nil, fmt.Errorf("%w: track cache unavailable, run 'spt setup'", shared.ErrServiceUnavailable)
	}
	return r.tracks, nil
}

// CacheStats summarizes the local track cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.requireCache()
	if err != nil {
		return err
	}

	stats, err := repo.Stats(ctx)
	if err != nil {
		return err
	}

	r.writePlainln("Tracks:    %s", humanize.Comma(int64(stats.Tracks)))
	r.writePlainln("Plays:     %s", humanize.Comma(int64(stats.TotalSeen)))
	if !stats.LastSeenAt.IsZero() {
		r.writePlainln("Last seen: %s", humanize.Time(stats.LastSeenAt))
	}
	if path, err := r.currentConfig().DatabasePath(); err == nil {
		if info, err := os.Stat(path); err == nil {
			r.writePlainln("Size:      %s (%s)", humanize.Bytes(uint64(info.Size())), path)
		}
	}
	return nil
}

// CacheList prints cached tracks through the track template.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.requireCache()
	if err != nil {
		return err
	}

	opts := repositories.ListOptions{Query: cmd.String("query"), Limit: int(cmd.Int("limit"))}
	switch strings.ToLower(cmd.String("order")) {
	case "", "sequence":
		opts.Order = repositories.OrderSequence
	case "recent":
		opts.Order = repositories.OrderRecent
	case "seen":
		opts.Order = repositories.OrderSeen
	default:
		return fmt.Errorf("%w: order must be one of sequence, recent, seen", shared.ErrInvalidArgument)
	}

	cached, err := repo.List(ctx, opts)
	if err != nil {
		return err
	}
	if len(cached) == 0 {
		return r.writePlainln("No cached tracks found")
	}

	template := formatOr(cmd, trackFormat)
	icons := r.icons()
	for _, t := range cached {
		line := formatter.Render(template, formatter.FromTrack(t.Track()), icons)
		r.writePlainln("%s  %s plays, last %s", line, humanize.Comma(int64(t.SeenCount)), humanize.Time(t.LastSeenAt))
	}
	return nil
}

// CacheClear removes every cached track.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.requireCache()
	if err != nil {
		return err
	}

	n, err := repo.Purge(ctx)
	if err != nil {
		return err
	}
	return r.writePlainln("✓ Removed %s cached tracks", humanize.Comma(n))
}
