// package server contains the router, middleware and OAuth callback listener used by the CLI
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// ErrCallbackTimeout is returned when no authorization callback arrives in time.
var ErrCallbackTimeout = errors.New("timed out waiting for authorization callback")

// CallbackServer serves an [OAuthHandler] until it produces a result.
type CallbackServer struct {
	Addr    string
	Timeout time.Duration
	Logger  *log.Logger

	listener net.Listener
}

// Listen binds the listen address. Call before opening the browser so the callback cannot race
// the listener.
func (s *CallbackServer) Listen() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}
	s.listener = ln
	return nil
}

// URL returns the base URL the server is reachable at.
func (s *CallbackServer) URL() string {
	if s.listener == nil {
		return "http://" + s.Addr
	}
	return "http://" + s.listener.Addr().String()
}

// Wait serves handler until it sends a result, ctx ends or the timeout elapses, then shuts the
// server down.
func (s *CallbackServer) Wait(ctx context.Context, handler *OAuthHandler) (OAuthResult, error) {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return OAuthResult{}, err
		}
	}

	router := NewBasicRouter()
	if s.Logger != nil {
		router.Use(RequestLogger(s.Logger))
	}
	router.Use(Recoverer)
	router.Handler(handler)

	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-handler.Result():
		return result, result.Error()
	case err := <-serveErr:
		return OAuthResult{}, fmt.Errorf("callback server failed: %w", err)
	case <-timer.C:
		return OAuthResult{}, ErrCallbackTimeout
	case <-ctx.Done():
		return OAuthResult{}, ctx.Err()
	}
}
