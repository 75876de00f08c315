package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// CachedTrack is a track row in the local cache.
type CachedTrack struct {
	ID         string
	Sequence   int
	URI        string
	Name       string
	Artists    string
	Album      string
	DurationMs int
	SeenCount  int
	LastSeenAt time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
}

// Duration returns the track length.
func (t CachedTrack) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Track converts the row back to a catalog track, enough to render or replay it.
func (t CachedTrack) Track() models.Track {
	kind, id, _ := models.ParseURI(t.URI)
	tr := models.Track{
		ID:         id,
		Name:       t.Name,
		URI:        t.URI,
		DurationMs: t.DurationMs,
		Album:      models.SimplifiedAlbum{Name: t.Album},
	}
	if kind != models.KindTrack {
		tr.ID = ""
	}
	for name := range strings.SplitSeq(t.Artists, ", ") {
		if name != "" {
			tr.Artists = append(tr.Artists, models.SimplifiedArtist{Name: name})
		}
	}
	return tr
}

// Order selects the sort order of [TrackRepository.List].
type Order int

const (
	OrderSequence Order = iota // Insertion order
	OrderRecent                // Most recently seen first
	OrderSeen                  // Most often seen first
)

// ListOptions filters [TrackRepository.List]. Zero values mean no filter.
type ListOptions struct {
	Query string // Case-insensitive substring of name, artists or album
	Limit int
	Order Order
}

// TrackStats summarizes the cache.
type TrackStats struct {
	Tracks     int
	TotalSeen  int
	LastSeenAt time.Time
}

// ErrTrackNotFound is returned when no live row matches.
var ErrTrackNotFound = fmt.Errorf("track %w", shared.ErrNotFound)

const trackColumns = `id, sequence, uri, name, artists, album, duration_ms, seen_count, last_seen_at, created_at, updated_at, deleted_at`

// TrackRepository persists [CachedTrack] rows with soft delete support.
type TrackRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db, now: time.Now}
}

// Upsert records that track was seen. A new URI is inserted with a fresh id and sequence;
// a known one gets its metadata refreshed, its counter incremented and is undeleted.
func (r *TrackRepository) Upsert(ctx context.Context, track models.Track) error {
	if track.URI == "" {
		return fmt.Errorf("%w: track uri", shared.ErrMissingArgument)
	}

	now := r.now()
	artists := joinArtists(track.Artists)

	result, err := r.db.ExecContext(ctx, `
		UPDATE tracks
		SET name = ?, artists = ?, album = ?, duration_ms = ?, seen_count = seen_count + 1,
		    last_seen_at = ?, updated_at = ?, deleted_at = NULL
		WHERE uri = ?
	`, track.Name, artists, track.Album.Name, track.DurationMs, now, now, track.URI)
	if err != nil {
		return fmt.Errorf("failed to update track: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	sequence, err := NextSequence(ctx, r.db, "tracks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tracks (id, sequence, uri, name, artists, album, duration_ms, seen_count, last_seen_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
	`, shared.GenerateID(), sequence, track.URI, track.Name, artists, track.Album.Name, track.DurationMs, now, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

// Get retrieves a track by ID, excluding soft-deleted tracks
func (r *TrackRepository) Get(ctx context.Context, id string) (*CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ? AND deleted_at IS NULL`
	return scanTrack(r.db.QueryRowContext(ctx, query, id))
}

// GetByURI retrieves a track by its Spotify URI, excluding soft-deleted tracks
func (r *TrackRepository) GetByURI(ctx context.Context, uri string) (*CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE uri = ? AND deleted_at IS NULL`
	return scanTrack(r.db.QueryRowContext(ctx, query, uri))
}

// Delete soft-deletes a track by ID
func (r *TrackRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE tracks
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete track: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}
	return nil
}

// Purge permanently removes every row, deleted or not, and returns how many were removed.
func (r *TrackRepository) Purge(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tracks`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge tracks: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

// List retrieves live tracks matching opts.
func (r *TrackRepository) List(ctx context.Context, opts ListOptions) ([]*CachedTrack, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE deleted_at IS NULL`
	args := []any{}

	if q := strings.TrimSpace(opts.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query += " AND (LOWER(name) LIKE ? OR LOWER(artists) LIKE ? OR LOWER(album) LIKE ?)"
		args = append(args, like, like, like)
	}

	switch opts.Order {
	case OrderRecent:
		query += " ORDER BY last_seen_at DESC, sequence DESC"
	case OrderSeen:
		query += " ORDER BY seen_count DESC, sequence ASC"
	default:
		query += " ORDER BY sequence ASC"
	}

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*CachedTrack
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tracks, nil
}

// Stats counts live tracks and their views.
func (r *TrackRepository) Stats(ctx context.Context) (TrackStats, error) {
	var (
		stats    TrackStats
		lastSeen sql.NullString
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(seen_count), 0), MAX(last_seen_at)
		FROM tracks
		WHERE deleted_at IS NULL
	`).Scan(&stats.Tracks, &stats.TotalSeen, &lastSeen)
	if err != nil {
		return TrackStats{}, fmt.Errorf("failed to query track stats: %w", err)
	}

	if lastSeen.Valid {
		if t, ok := parseTimestamp(lastSeen.String); ok {
			stats.LastSeenAt = t
		}
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanTrack scans a single row into a [CachedTrack]
func scanTrack(row scanner) (*CachedTrack, error) {
	var (
		t         CachedTrack
		lastSeen  sql.NullTime
		deletedAt sql.NullTime
	)

	err := row.Scan(&t.ID, &t.Sequence, &t.URI, &t.Name, &t.Artists, &t.Album, &t.DurationMs,
		&t.SeenCount, &lastSeen, &t.CreatedAt, &t.UpdatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	if lastSeen.Valid {
		t.LastSeenAt = lastSeen.Time
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Time
	}
	return &t, nil
}

// parseTimestamp reads the text form go-sqlite3 uses for aggregated TIMESTAMP values.
func parseTimestamp(s string) (time.Time, bool) {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02T15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func joinArtists(artists []models.SimplifiedArtist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}
