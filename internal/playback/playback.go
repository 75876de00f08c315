// Package playback holds the pure helpers behind playback intents: input validation,
// seek arithmetic, random selection and the optimistic local patches applied before a refetch.
package playback

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spt/internal/models"
	"github.com/desertthunder/spt/internal/shared"
)

const (
	MinVolume      = 0
	MaxVolume      = 100
	MinSearchLimit = 1
	MaxSearchLimit = 50
)

// ValidateVolume rejects percentages outside 0..100.
func ValidateVolume(percent int) error {
	if percent < MinVolume || percent > MaxVolume {
		return fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidArgument)
	}
	return nil
}

// ValidateSearchLimit rejects limits outside 1..50.
func ValidateSearchLimit(limit int) error {
	if limit < MinSearchLimit || limit > MaxSearchLimit {
		return fmt.Errorf("%w: limit must be between 1 and 50", shared.ErrInvalidArgument)
	}
	return nil
}

// ParseVolume parses and validates a volume argument.
func ParseVolume(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: volume must be between 0 and 100", shared.ErrInvalidArgument)
	}
	return v, ValidateVolume(v)
}

// ParseSearchLimit parses and validates a limit argument.
func ParseSearchLimit(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: limit must be between 1 and 50", shared.ErrInvalidArgument)
	}
	return v, ValidateSearchLimit(v)
}

// SeekTarget is where a seek lands. When Next is set the target is past the end of the
// item and the caller skips to the next track instead of seeking.
type SeekTarget struct {
	Position time.Duration
	Next     bool
}

// ComputeSeekTarget interprets raw as seconds: "+n" moves forward, "-n" moves back (stopping at 0),
// and a bare "n" is an absolute position.
func ComputeSeekTarget(raw string, position, duration time.Duration) (SeekTarget, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeekTarget{}, fmt.Errorf("%w: seek position", shared.ErrMissingArgument)
	}

	sign := raw[0]
	digits := raw
	if sign == '+' || sign == '-' {
		digits = raw[1:]
	}

	secs, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return SeekTarget{}, fmt.Errorf("%w: seek position %q is not a whole number of seconds", shared.ErrInvalidArgument, raw)
	}
	offset := time.Duration(secs) * time.Second

	var target time.Duration
	switch sign {
	case '+':
		target = position + offset
	case '-':
		target = max(position-offset, 0)
	default:
		target = offset
	}

	return SeekTarget{Position: target, Next: target > duration}, nil
}

// RandomOffset picks a uniform position in [0,total).
func RandomOffset(total int) (int, error) {
	if total <= 0 {
		return 0, fmt.Errorf("%w: nothing to choose from", shared.ErrEmptyCollection)
	}
	return rand.IntN(total), nil
}

// NextRepeat cycles Off, Context, Track, Off.
func NextRepeat(r models.RepeatState) models.RepeatState {
	switch r {
	case models.RepeatOff:
		return models.RepeatContext
	case models.RepeatContext:
		return models.RepeatTrack
	default:
		return models.RepeatOff
	}
}

// PatchVolume sets the device volume.
func PatchVolume(pb models.Playback, percent int) models.Playback {
	pb.Device.VolumePercent = percent
	return pb
}

// PatchShuffle sets the shuffle flag.
func PatchShuffle(pb models.Playback, shuffle bool) models.Playback {
	pb.ShuffleState = shuffle
	return pb
}

// PatchRepeat sets the repeat mode.
func PatchRepeat(pb models.Playback, r models.RepeatState) models.Playback {
	pb.RepeatState = r
	return pb
}

// ResetProgress moves the position to the start of the item.
func ResetProgress(pb models.Playback) models.Playback {
	pb.ProgressMs = 0
	return pb
}
