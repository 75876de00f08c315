package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/desertthunder/spt/internal/models"
)

// WriteTracksCSV writes tracks with columns: URI, Track, Artist, Album, Duration (seconds).
func WriteTracksCSV(w io.Writer, tracks []models.Track) error {
	writer := csv.NewWriter(w)

	headers := []string{"URI", "Track", "Artist", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range tracks {
		record := []string{
			uriOf(t.URI, models.KindTrack, t.ID),
			t.Name,
			JoinArtists(t.Artists),
			t.Album.Name,
			strconv.Itoa(t.DurationMs / 1000),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

// WriteLines renders each entry's fields through template and writes one line per entry.
func WriteLines(w io.Writer, template string, entries [][]Field, icons Icons) error {
	for _, fields := range entries {
		if _, err := fmt.Fprintln(w, Render(template, fields, icons)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
