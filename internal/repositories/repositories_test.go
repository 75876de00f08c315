package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

// fixedClock returns a clock that advances one second per call.
func fixedClock() func() time.Time {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func testTrack(id, name, artist string) models.Track {
	return models.Track{
		ID:         id,
		Name:       name,
		URI:        models.BuildURI(models.KindTrack, id),
		Artists:    []models.SimplifiedArtist{{Name: artist}},
		Album:      models.SimplifiedAlbum{Name: "Discovery"},
		DurationMs: 320000,
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(ctx, db, "tracks")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(ctx, db, "missing"); err == nil {
		t.Error("expected error for table without sequence")
	}
}

func TestTrackRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert inserts", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		if err := repo.Upsert(ctx, testTrack("t1", "One More Time", "Daft Punk")); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}

		got, err := repo.GetByURI(ctx, "spotify:track:t1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.ID == "" {
			t.Error("expected generated ID")
		}
		if got.Name != "One More Time" {
			t.Errorf("expected name One More Time, got %s", got.Name)
		}
		if got.Artists != "Daft Punk" {
			t.Errorf("expected artists Daft Punk, got %s", got.Artists)
		}
		if got.SeenCount != 1 {
			t.Errorf("expected seen count 1, got %d", got.SeenCount)
		}
		if got.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", got.Sequence)
		}
		if got.Duration() != 320*time.Second {
			t.Errorf("expected duration 5m20s, got %v", got.Duration())
		}
	})

	t.Run("Upsert increments seen count", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		repo.now = fixedClock()
		track := testTrack("t1", "One More Time", "Daft Punk")

		for range 3 {
			if err := repo.Upsert(ctx, track); err != nil {
				t.Fatalf("failed to upsert track: %v", err)
			}
		}
		track.Name = "One More Time (Radio Edit)"
		if err := repo.Upsert(ctx, track); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}

		got, err := repo.GetByURI(ctx, track.URI)
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.SeenCount != 4 {
			t.Errorf("expected seen count 4, got %d", got.SeenCount)
		}
		if got.Name != "One More Time (Radio Edit)" {
			t.Errorf("expected refreshed name, got %s", got.Name)
		}
		if got.Sequence != 1 {
			t.Errorf("expected sequence to stay 1, got %d", got.Sequence)
		}
		if !got.LastSeenAt.After(got.CreatedAt) {
			t.Errorf("expected last seen %v after created %v", got.LastSeenAt, got.CreatedAt)
		}
	})

	t.Run("Upsert requires a URI", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		err := NewTrackRepository(db).Upsert(ctx, models.Track{Name: "Local"})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		if err := repo.Upsert(ctx, testTrack("t1", "Aerodynamic", "Daft Punk")); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		byURI, err := repo.GetByURI(ctx, "spotify:track:t1")
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}

		byID, err := repo.Get(ctx, byURI.ID)
		if err != nil {
			t.Fatalf("failed to get track by id: %v", err)
		}
		if byID.URI != byURI.URI {
			t.Errorf("expected URI %s, got %s", byURI.URI, byID.URI)
		}

		if _, err := repo.Get(ctx, "nonexistent-id"); !errors.Is(err, ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if _, err := repo.Get(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		track := testTrack("t1", "Digital Love", "Daft Punk")
		if err := repo.Upsert(ctx, track); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}
		cached, _ := repo.GetByURI(ctx, track.URI)

		if err := repo.Delete(ctx, cached.ID); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}
		if _, err := repo.Get(ctx, cached.ID); err == nil {
			t.Error("expected error when getting deleted track")
		}
		if err := repo.Delete(ctx, cached.ID); !errors.Is(err, ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound on second delete, got %v", err)
		}

		if err := repo.Upsert(ctx, track); err != nil {
			t.Fatalf("failed to upsert deleted track: %v", err)
		}
		restored, err := repo.Get(ctx, cached.ID)
		if err != nil {
			t.Fatalf("expected upsert to restore track: %v", err)
		}
		if restored.SeenCount != 2 {
			t.Errorf("expected seen count 2, got %d", restored.SeenCount)
		}
	})

	t.Run("List", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		repo.now = fixedClock()
		seed := []models.Track{
			testTrack("t1", "Around the World", "Daft Punk"),
			testTrack("t2", "Windowlicker", "Aphex Twin"),
			testTrack("t3", "Da Funk", "Daft Punk"),
		}
		for _, tr := range seed {
			if err := repo.Upsert(ctx, tr); err != nil {
				t.Fatalf("failed to upsert track: %v", err)
			}
		}
		if err := repo.Upsert(ctx, seed[1]); err != nil {
			t.Fatalf("failed to upsert track: %v", err)
		}

		tests := []struct {
			name string
			opts ListOptions
			want []string
		}{
			{"sequence", ListOptions{}, []string{"Around the World", "Windowlicker", "Da Funk"}},
			{"recent", ListOptions{Order: OrderRecent}, []string{"Windowlicker", "Da Funk", "Around the World"}},
			{"seen", ListOptions{Order: OrderSeen}, []string{"Windowlicker", "Around the World", "Da Funk"}},
			{"query by artist", ListOptions{Query: "daft"}, []string{"Around the World", "Da Funk"}},
			{"query by name", ListOptions{Query: "WINDOW"}, []string{"Windowlicker"}},
			{"limit", ListOptions{Limit: 1}, []string{"Around the World"}},
			{"no match", ListOptions{Query: "zzz"}, nil},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.List(ctx, tt.opts)
				if err != nil {
					t.Fatalf("failed to list tracks: %v", err)
				}
				if len(got) != len(tt.want) {
					t.Fatalf("expected %d tracks, got %d", len(tt.want), len(got))
				}
				for i, name := range tt.want {
					if got[i].Name != name {
						t.Errorf("expected track %d to be %s, got %s", i, name, got[i].Name)
					}
				}
			})
		}
	})

	t.Run("Stats and Purge", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		stats, err := repo.Stats(ctx)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}
		if stats.Tracks != 0 || stats.TotalSeen != 0 || !stats.LastSeenAt.IsZero() {
			t.Errorf("expected empty stats, got %+v", stats)
		}

		for _, tr := range []models.Track{testTrack("t1", "A", "X"), testTrack("t2", "B", "Y"), testTrack("t1", "A", "X")} {
			if err := repo.Upsert(ctx, tr); err != nil {
				t.Fatalf("failed to upsert track: %v", err)
			}
		}

		stats, err = repo.Stats(ctx)
		if err != nil {
			t.Fatalf("failed to get stats: %v", err)
		}
		if stats.Tracks != 2 {
			t.Errorf("expected 2 tracks, got %d", stats.Tracks)
		}
		if stats.TotalSeen != 3 {
			t.Errorf("expected 3 views, got %d", stats.TotalSeen)
		}

		removed, err := repo.Purge(ctx)
		if err != nil {
			t.Fatalf("failed to purge: %v", err)
		}
		if removed != 2 {
			t.Errorf("expected 2 rows removed, got %d", removed)
		}
	})

	t.Run("closed database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)
		db.Close()

		if err := repo.Upsert(ctx, testTrack("t1", "A", "X")); err == nil {
			t.Error("expected error from Upsert")
		}
		if _, err := repo.List(ctx, ListOptions{}); err == nil {
			t.Error("expected error from List")
		}
		if _, err := repo.Stats(ctx); err == nil {
			t.Error("expected error from Stats")
		}
		if _, err := repo.Purge(ctx); err == nil {
			t.Error("expected error from Purge")
		}
		if err := repo.Delete(ctx, "x"); err == nil {
			t.Error("expected error from Delete")
		}
	})
}

func TestCachedTrack(t *testing.T) {
	cached := CachedTrack{
		URI:        "spotify:track:t1",
		Name:       "Voyager",
		Artists:    "Daft Punk, Someone Else",
		Album:      "Discovery",
		DurationMs: 227000,
	}

	tr := cached.Track()
	if tr.ID != "t1" {
		t.Errorf("expected id t1, got %s", tr.ID)
	}
	if len(tr.Artists) != 2 || tr.Artists[1].Name != "Someone Else" {
		t.Errorf("expected two artists, got %+v", tr.Artists)
	}
	if tr.Album.Name != "Discovery" {
		t.Errorf("expected album Discovery, got %s", tr.Album.Name)
	}
}

func TestTrackCacheAdapter(t *testing.T) {
	ctx := context.Background()

	t.Run("caches and skips local tracks", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTrackRepository(db)
		adapter := NewTrackCacheAdapter(repo)
		local := models.Track{Name: "Bootleg", IsLocal: true, URI: "spotify:local:x"}

		err := adapter.CacheTracks(ctx, []models.Track{
			testTrack("t1", "A", "X"),
			{Name: "No URI"},
			local,
			testTrack("t2", "B", "Y"),
		})
		if err != nil {
			t.Fatalf("failed to cache tracks: %v", err)
		}

		stats, _ := repo.Stats(ctx)
		if stats.Tracks != 2 {
			t.Errorf("expected 2 cached tracks, got %d", stats.Tracks)
		}
	})

	t.Run("joins failures", func(t *testing.T) {
		db := setupTestDB(t)
		adapter := NewTrackCacheAdapter(NewTrackRepository(db))
		db.Close()

		err := adapter.CacheTracks(ctx, []models.Track{testTrack("t1", "A", "X"), testTrack("t2", "B", "Y")})
		if err == nil {
			t.Fatal("expected error from closed database")
		}
	})
}
