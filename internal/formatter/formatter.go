// package formatter renders fetched entities through %-token text templates and exports track lists
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

// Kind identifies which template token a [Field] fills.
type Kind int

const (
	Album Kind = iota
	Artist
	Playlist
	Track
	Show
	URI
	Device
	Volume
	Position
	Flags
	Playing
)

// tokens is indexed by [Kind].
var tokens = [...]string{"%b", "%a", "%p", "%t", "%h", "%u", "%d", "%v", "%r", "%f", "%s"}

// Token returns the placeholder replaced by fields of this kind.
func (k Kind) Token() string {
	if int(k) < 0 || int(k) >= len(tokens) {
		return ""
	}
	return tokens[k]
}

// Field is one value available to a template.
//
// Text is used by the string kinds. Volume uses Number, Flags uses Repeat, Shuffle and Liked,
// and Playing uses Playing. Position carries pre-rendered text from [Progress].
type Field struct {
	Kind    Kind
	Text    string
	Number  int
	Repeat  models.RepeatState
	Shuffle bool
	Liked   bool
	Playing bool
}

// Icons are the glyphs used for flags and the playing indicator.
type Icons struct {
	Playing       string
	Paused        string
	Shuffle       string
	RepeatTrack   string
	RepeatContext string
	Liked         string
}

// IconsFrom copies the icon settings out of the behavior config.
func IconsFrom(b shared.BehaviorConfig) Icons {
	return Icons{
		Playing:       b.PlayingIcon,
		Paused:        b.PausedIcon,
		Shuffle:       b.ShuffleIcon,
		RepeatTrack:   b.RepeatTrackIcon,
		RepeatContext: b.RepeatContextIcon,
		Liked:         b.LikedIcon,
	}
}

// DefaultIcons returns the icons of the embedded default config.
func DefaultIcons() Icons {
	return IconsFrom(shared.DefaultConfig().Behavior)
}

// Value renders the field for substitution.
func (f Field) Value(icons Icons) string {
	switch f.Kind {
	case Volume:
		return strconv.Itoa(f.Number)
	case Flags:
		var repeat string
		switch f.Repeat {
		case models.RepeatTrack:
			repeat = icons.RepeatTrack
		case models.RepeatContext:
			repeat = icons.RepeatContext
		}

		parts := make([]string, 0, 3)
		for _, p := range []string{iconIf(f.Shuffle, icons.Shuffle), repeat, iconIf(f.Liked, icons.Liked)} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		return strings.Join(parts, " ")
	case Playing:
		if f.Playing {
			return icons.Playing
		}
		return icons.Paused
	default:
		return f.Text
	}
}

func iconIf(on bool, icon string) string {
	if on {
		return icon
	}
	return ""
}

// Render substitutes fields into template in the order given, replaces every token left over
// with "None", and trims surrounding whitespace.
func Render(template string, fields []Field, icons Icons) string {
	out := template
	for _, f := range fields {
		token := f.Kind.Token()
		if token == "" {
			continue
		}
		out = strings.ReplaceAll(out, token, f.Value(icons))
	}
	for _, token := range tokens {
		out = strings.ReplaceAll(out, token, "None")
	}
	return strings.TrimSpace(out)
}

// Progress renders elapsed and total as m:ss/m:ss.
func Progress(elapsed, total time.Duration) string {
	return clock(elapsed) + "/" + clock(total)
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// JoinArtists joins artist names with ", ".
func JoinArtists(artists []models.SimplifiedArtist) string {
	names := make([]string, len(artists))
	for i, a := range artists {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

// FromTrack returns album, artists, title and, when the track has an id, its URI.
func FromTrack(t models.Track) []Field {
	fields := []Field{
		{Kind: Album, Text: t.Album.Name},
		{Kind: Artist, Text: JoinArtists(t.Artists)},
		{Kind: Track, Text: t.Name},
	}
	if t.ID != "" {
		fields = append(fields, Field{Kind: URI, Text: uriOf(t.URI, models.KindTrack, t.ID)})
	}
	return fields
}

// FromAlbum returns the album name, its artists and URI.
func FromAlbum(a models.SimplifiedAlbum) []Field {
	return []Field{
		{Kind: Album, Text: a.Name},
		{Kind: Artist, Text: JoinArtists(a.Artists)},
		{Kind: URI, Text: uriOf(a.URI, models.KindAlbum, a.ID)},
	}
}

// FromArtist returns the artist name and URI.
func FromArtist(a models.Artist) []Field {
	return []Field{
		{Kind: Artist, Text: a.Name},
		{Kind: URI, Text: uriOf(a.URI, models.KindArtist, a.ID)},
	}
}

// FromPlaylist returns the playlist name and URI.
func FromPlaylist(p models.Playlist) []Field {
	return []Field{
		{Kind: Playlist, Text: p.Name},
		{Kind: URI, Text: uriOf(p.URI, models.KindPlaylist, p.ID)},
	}
}

// FromShow renders the publisher as the artist.
func FromShow(s models.Show) []Field {
	return []Field{
		{Kind: Artist, Text: s.Publisher},
		{Kind: Show, Text: s.Name},
		{Kind: URI, Text: uriOf(s.URI, models.KindShow, s.ID)},
	}
}

// FromEpisode renders the episode name as the track and its show's publisher as the artist.
func FromEpisode(e models.Episode) []Field {
	var fields []Field
	if e.Show != nil {
		fields = append(fields,
			Field{Kind: Show, Text: e.Show.Name},
			Field{Kind: Artist, Text: e.Show.Publisher},
		)
	}
	return append(fields,
		Field{Kind: Track, Text: e.Name},
		Field{Kind: URI, Text: uriOf(e.URI, models.KindEpisode, e.ID)},
	)
}

// FromPlayback returns the fields of the playing item followed by position, flags, device,
// volume and the playing indicator.
func FromPlayback(pb models.Playback, liked bool) []Field {
	var fields []Field
	if pb.Item != nil {
		switch {
		case pb.Item.Track != nil:
			fields = FromTrack(*pb.Item.Track)
		case pb.Item.Episode != nil:
			fields = FromEpisode(*pb.Item.Episode)
		}
		fields = append(fields, Field{Kind: Position, Text: Progress(pb.Progress(), pb.Item.Duration())})
	}

	return append(fields,
		Field{Kind: Flags, Repeat: pb.RepeatState, Shuffle: pb.ShuffleState, Liked: liked},
		Field{Kind: Device, Text: pb.Device.Name},
		Field{Kind: Volume, Number: pb.Device.VolumePercent},
		Field{Kind: Playing, Playing: pb.IsPlaying},
	)
}

// FromDevice returns the device name.
func FromDevice(d models.Device) []Field {
	return []Field{{Kind: Device, Text: d.Name}, {Kind: Volume, Number: d.VolumePercent}}
}

func uriOf(uri string, kind models.Kind, id string) string {
	if uri != "" || id == "" {
		return uri
	}
	return models.BuildURI(kind, id)
}
