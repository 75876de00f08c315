package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/spt/internal/shared"
)

func newTokenServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("expected form body, got %v", err)
		}
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"error":"invalid_grant"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, `{"access_token":"access","token_type":"Bearer","refresh_token":"refresh","expires_in":3600}`)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func oauthConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: "http://example.invalid/authorize", TokenURL: tokenURL},
		RedirectURL:  "http://127.0.0.1:8888/callback",
	}
}

func TestOAuthHandler(t *testing.T) {
	tokens := newTokenServer(t, http.StatusOK)

	t.Run("exchanges code", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "state-1", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=state-1&code=good-code", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Errorf("expected success page, got %s", rec.Body.String())
		}

		result := <-h.Result()
		if err := result.Error(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Token.AccessToken != "access" {
			t.Errorf("expected access token access, got %s", result.Token.AccessToken)
		}
		if result.Token.RefreshToken != "refresh" {
			t.Errorf("expected refresh token refresh, got %s", result.Token.RefreshToken)
		}
	})

	t.Run("rejects wrong state", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "state-1", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=other&code=good-code", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("reports denied access", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "s", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&error=access_denied", nil))

		result := <-h.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("reports failed exchange", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "s", "")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=bad-code", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		result := <-h.Result()
		if !errors.Is(result.Error(), shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", result.Error())
		}
	})

	t.Run("processes one callback", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "s", "")
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good-code", nil))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=s&code=good-code", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400 on replay, got %d", rec.Code)
		}
	})

	t.Run("uses configured path", func(t *testing.T) {
		h := NewOAuthHandler(oauthConfig(tokens.URL), "s", "/auth/spotify")
		if routes := h.Routes(); len(routes) != 1 || routes[0] != "/auth/spotify" {
			t.Errorf("expected [/auth/spotify], got %v", routes)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("method routes", func(t *testing.T) {
		r := NewBasicRouter()
		r.Handle("get", "/ping", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			io.WriteString(w, "pong")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Body.String() != "pong" {
			t.Errorf("expected pong, got %s", rec.Body.String())
		}

		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status 405, got %d", rec.Code)
		}

		if got := r.Patterns(); len(got) != 1 || got[0] != "GET /ping" {
			t.Errorf("expected [GET /ping], got %v", got)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(mark("first"), mark("second"))
		r.Handle(http.MethodGet, "/", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			order = append(order, "handler")
		}))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		want := []string{"first", "second", "handler"}
		if strings.Join(order, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, order)
		}
	})

	t.Run("recoverer", func(t *testing.T) {
		r := NewBasicRouter()
		r.Use(Recoverer)
		r.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
	})

	t.Run("request logger omits query", func(t *testing.T) {
		var buf bytes.Buffer
		logger := shared.NewLogger(&buf)
		shared.SetLogLevel(logger, log.DebugLevel)

		r := NewBasicRouter()
		r.Use(RequestLogger(logger))
		r.Handle(http.MethodGet, "/callback", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/callback?code=secret", nil))

		out := buf.String()
		if !strings.Contains(out, "/callback") || !strings.Contains(out, "418") {
			t.Errorf("expected path and status in log, got %s", out)
		}
		if strings.Contains(out, "secret") {
			t.Errorf("expected query to be omitted, got %s", out)
		}
	})
}

func TestCallbackServer(t *testing.T) {
	tokens := newTokenServer(t, http.StatusOK)

	t.Run("returns token from callback", func(t *testing.T) {
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: 5 * time.Second}
		if err := srv.Listen(); err != nil {
			t.Fatalf("failed to listen: %v", err)
		}
		h := NewOAuthHandler(oauthConfig(tokens.URL), "s", "")

		go func() {
			resp, err := http.Get(srv.URL() + "/callback?state=s&code=good-code")
			if err == nil {
				resp.Body.Close()
			}
		}()

		result, err := srv.Wait(context.Background(), h)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Token.AccessToken != "access" {
			t.Errorf("expected access token access, got %s", result.Token.AccessToken)
		}
	})

	t.Run("times out", func(t *testing.T) {
		srv := &CallbackServer{Addr: "127.0.0.1:0", Timeout: 50 * time.Millisecond}
		_, err := srv.Wait(context.Background(), NewOAuthHandler(oauthConfig(tokens.URL), "s", ""))
		if !errors.Is(err, ErrCallbackTimeout) {
			t.Errorf("expected ErrCallbackTimeout, got %v", err)
		}
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		srv := &CallbackServer{Addr: "127.0.0.1:0"}
		_, err := srv.Wait(ctx, NewOAuthHandler(oauthConfig(tokens.URL), "s", ""))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
