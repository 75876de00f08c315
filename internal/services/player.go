package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/spt/internal/models"
)

func deviceQuery(deviceID string) url.Values {
	q := url.Values{}
	if deviceID != "" {
		q.Set("device_id", deviceID)
	}
	return q
}

// CurrentPlayback returns the player state, or nil when nothing is active.
func (s *SpotifyService) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	q := url.Values{"additional_types": {"episode"}}

	var pb *models.Playback
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", q, nil, &pb); err != nil {
		return nil, err
	}
	return pb, nil
}

// Devices lists the account's available Connect devices.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var response struct {
		Devices []models.Device `json:"devices"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// StartPlayback starts req on deviceID. An empty request resumes.
func (s *SpotifyService) StartPlayback(ctx context.Context, deviceID string, req models.PlayRequest) error {
	var body any
	if !req.Empty() {
		body = req
	}
	return s.doRequest(ctx, http.MethodPut, "/me/player/play", deviceQuery(deviceID), body, nil)
}

// Pause pauses playback.
func (s *SpotifyService) Pause(ctx context.Context, deviceID string) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", deviceQuery(deviceID), nil, nil)
}

// Next skips to the next item.
func (s *SpotifyService) Next(ctx context.Context, deviceID string) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/next", deviceQuery(deviceID), nil, nil)
}

// Previous skips to the previous item.
func (s *SpotifyService) Previous(ctx context.Context, deviceID string) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/previous", deviceQuery(deviceID), nil, nil)
}

// Seek moves the playback position.
func (s *SpotifyService) Seek(ctx context.Context, deviceID string, positionMs int) error {
	q := deviceQuery(deviceID)
	q.Set("position_ms", strconv.Itoa(positionMs))
	return s.doRequest(ctx, http.MethodPut, "/me/player/seek", q, nil, nil)
}

// SetVolume sets the device volume percentage.
func (s *SpotifyService) SetVolume(ctx context.Context, deviceID string, percent int) error {
	q := deviceQuery(deviceID)
	q.Set("volume_percent", strconv.Itoa(percent))
	return s.doRequest(ctx, http.MethodPut, "/me/player/volume", q, nil, nil)
}

// SetShuffle turns shuffle on or off.
func (s *SpotifyService) SetShuffle(ctx context.Context, deviceID string, state bool) error {
	q := deviceQuery(deviceID)
	q.Set("state", strconv.FormatBool(state))
	return s.doRequest(ctx, http.MethodPut, "/me/player/shuffle", q, nil, nil)
}

// SetRepeat sets the repeat mode.
func (s *SpotifyService) SetRepeat(ctx context.Context, deviceID string, state models.RepeatState) error {
	q := deviceQuery(deviceID)
	q.Set("state", string(state))
	return s.doRequest(ctx, http.MethodPut, "/me/player/repeat", q, nil, nil)
}

// TransferPlayback moves playback to deviceID.
func (s *SpotifyService) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	body := struct {
		DeviceIDs []string `json:"device_ids"`
		Play      bool     `json:"play"`
	}{DeviceIDs: []string{deviceID}, Play: play}
	return s.doRequest(ctx, http.MethodPut, "/me/player", nil, body, nil)
}

// AddToQueue appends a track or episode to the queue.
func (s *SpotifyService) AddToQueue(ctx context.Context, deviceID, uri string) error {
	q := deviceQuery(deviceID)
	q.Set("uri", uri)
	return s.doRequest(ctx, http.MethodPost, "/me/player/queue", q, nil, nil)
}
