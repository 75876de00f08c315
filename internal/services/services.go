package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/desertthunder/spt/internal/shared"
)

// MaxIDsPerRequest is the most ids the API accepts in one library or containment call.
const MaxIDsPerRequest = 50

// StatusError is a non-2xx response from the API.
//
// It unwraps to the matching sentinel from [shared]: 401 to [shared.ErrTokenExpired],
// 403 to [shared.ErrNotAuthenticated], 404 to [shared.ErrNotFound], 429 to [shared.ErrRateLimited],
// 5xx to [shared.ErrServiceUnavailable] and anything else to [shared.ErrAPIRequest].
type StatusError struct {
	Status     int
	Message    string
	RetryAfter int
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("spotify API error: status %d", e.Status)
	}
	return fmt.Sprintf("spotify API error: status %d: %s", e.Status, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case e.Status == http.StatusForbidden:
		return shared.ErrNotAuthenticated
	case e.Status == http.StatusNotFound:
		return shared.ErrNotFound
	case e.Status == http.StatusTooManyRequests:
		return shared.ErrRateLimited
	case e.Status >= 500:
		return shared.ErrServiceUnavailable
	default:
		return shared.ErrAPIRequest
	}
}

// IsStatus reports whether err is a [StatusError] with the given status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

func newStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode}

	if v := resp.Header.Get("Retry-After"); v != "" {
		se.RetryAfter, _ = strconv.Atoi(v)
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error.Message != "" {
		se.Message = payload.Error.Message
	} else {
		se.Message = strings.TrimSpace(string(data))
	}
	return se
}
