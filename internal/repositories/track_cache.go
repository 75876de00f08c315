package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/spt/internal/models"
)

// TrackCacheAdapter implements tasks.TrackCacher using TrackRepository.
//
// Local files and unavailable tracks carry no URI and are skipped. One failing row does not
// stop the rest; every failure is returned joined.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// CacheTracks records every track as seen.
func (a *TrackCacheAdapter) CacheTracks(ctx context.Context, tracks []models.Track) error {
	var errs []error
	for _, track := range tracks {
		if track.URI == "" || track.IsLocal {
			continue
		}
		if err := a.repo.Upsert(ctx, track); err != nil {
			errs = append(errs, fmt.Errorf("failed to cache %s: %w", track.URI, err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return errors.Join(errs...)
}
