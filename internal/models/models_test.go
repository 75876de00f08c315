package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		kind    Kind
		id      string
		wantErr bool
	}{
		{name: "track", uri: "spotify:track:4uLU6hMCjMI75M1A2tKUQC", kind: KindTrack, id: "4uLU6hMCjMI75M1A2tKUQC"},
		{name: "show", uri: "spotify:show:abc", kind: KindShow, id: "abc"},
		{name: "legacy user playlist", uri: "spotify:user:bob:playlist:xyz", kind: KindPlaylist, id: "xyz"},
		{name: "not spotify", uri: "https://open.spotify.com/track/abc", wantErr: true},
		{name: "unknown kind", uri: "spotify:concert:abc", wantErr: true},
		{name: "empty id", uri: "spotify:track:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, id, err := ParseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if kind != tt.kind || id != tt.id {
				t.Errorf("expected %s/%s, got %s/%s", tt.kind, tt.id, kind, id)
			}
		})
	}
}

func TestURIHelpers(t *testing.T) {
	if got := BuildURI(KindAlbum, "a1"); got != "spotify:album:a1" {
		t.Errorf("expected spotify:album:a1, got %s", got)
	}
	if got := ShareURL(KindTrack, "t1"); got != "https://open.spotify.com/track/t1" {
		t.Errorf("expected share url, got %s", got)
	}
	if !KindEpisode.Playable() || KindAlbum.Playable() {
		t.Error("expected only tracks and episodes to be playable")
	}
	if !KindShow.Context() || KindTrack.Context() {
		t.Error("expected shows but not tracks to be contexts")
	}
}

func TestPlayableItem(t *testing.T) {
	t.Run("decodes track", func(t *testing.T) {
		var p Playback
		data := `{"is_playing":true,"progress_ms":1500,"repeat_state":"context",
			"item":{"type":"track","id":"t1","name":"Song","duration_ms":200000}}`
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Item == nil || p.Item.Track == nil {
			t.Fatal("expected track item")
		}
		if p.Item.Name() != "Song" {
			t.Errorf("expected Song, got %s", p.Item.Name())
		}
		if p.Item.Duration() != 200*time.Second {
			t.Errorf("expected 200s, got %v", p.Item.Duration())
		}
		if p.RepeatState != RepeatContext {
			t.Errorf("expected context repeat, got %s", p.RepeatState)
		}
	})

	t.Run("decodes episode", func(t *testing.T) {
		var item PlayableItem
		data := `{"type":"episode","id":"e1","name":"Ep","show":{"name":"Pod","publisher":"Pub"}}`
		if err := json.Unmarshal([]byte(data), &item); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Episode == nil || item.Track != nil {
			t.Fatal("expected only the episode variant")
		}
		if item.ID() != "e1" {
			t.Errorf("expected e1, got %s", item.ID())
		}
	})

	t.Run("null item", func(t *testing.T) {
		var p Playback
		if err := json.Unmarshal([]byte(`{"item":null}`), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Item != nil {
			t.Error("expected nil item")
		}
	})

	t.Run("unsupported type", func(t *testing.T) {
		var item PlayableItem
		if err := json.Unmarshal([]byte(`{"type":"ad"}`), &item); err == nil {
			t.Error("expected error for unsupported type")
		}
	})
}

func TestRepeatStateString(t *testing.T) {
	if RepeatOff.String() != "Off" || RepeatTrack.String() != "Track" || RepeatContext.String() != "Context" {
		t.Error("unexpected repeat state names")
	}
}
