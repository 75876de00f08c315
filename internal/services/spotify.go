// Spotify Web API client
//
// Response types live in [models]; endpoints follow https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/spt/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// DefaultRedirectURI is used when the config leaves redirect_uri empty.
	DefaultRedirectURI = "http://127.0.0.1:8888/callback"
)

// Scopes requested during authorization.
var Scopes = []string{
	"playlist-read-collaborative",
	"playlist-read-private",
	"playlist-modify-private",
	"playlist-modify-public",
	"user-follow-read",
	"user-follow-modify",
	"user-library-modify",
	"user-library-read",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"user-read-playback-state",
	"user-read-playback-position",
	"user-read-private",
	"user-read-recently-played",
}

// TokenRefreshCallback receives every new token issued by the token source.
type TokenRefreshCallback func(token *oauth2.Token)

// SpotifyService is a typed client for the Spotify Web API.
//
// Requests are authorized through an [oauth2.TokenSource] that refreshes expired tokens and reports
// new ones to the registered [TokenRefreshCallback]. Requests are paced by a [rate.Limiter].
type SpotifyService struct {
	config         *oauth2.Config
	baseURL        string
	limiter        *rate.Limiter
	logger         *log.Logger
	onTokenRefresh TokenRefreshCallback

	mu         sync.RWMutex
	token      *oauth2.Token
	source     *refreshableTokenSource
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = DefaultRedirectURI
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		logger:  shared.NewLogger(io.Discard),
	}, nil
}

// Name returns the service name.
func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetLogger replaces the request logger.
func (s *SpotifyService) SetLogger(l *log.Logger) {
	s.logger = l
}

// SetTokenRefreshCallback registers fn to receive refreshed tokens. Must be called before Authenticate.
func (s *SpotifyService) SetTokenRefreshCallback(fn TokenRefreshCallback) {
	s.onTokenRefresh = fn
}

// Config returns the OAuth2 configuration used for the authorization code flow.
func (s *SpotifyService) Config() *oauth2.Config {
	return s.config
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Authenticate installs a token. credentials holds either "access_token" (with optional
// "refresh_token") or an "auth_code" to exchange.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		s.SetToken(&oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
		return nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		s.SetToken(token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrMissingCredentials)
}

// SetToken installs token and rebuilds the authorized HTTP client.
//
// Installing a token does not trigger the refresh callback; only tokens issued later do.
func (s *SpotifyService) SetToken(token *oauth2.Token) {
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(context.Background(), token),
		callback: s.onTokenRefresh,
		last:     token.AccessToken,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.source = source
	s.httpClient = oauth2.NewClient(context.Background(), oauth2.ReuseTokenSource(token, source))
}

// Token returns the most recent token, or nil before authentication.
func (s *SpotifyService) Token() *oauth2.Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.source != nil {
		if current := s.source.latest(); current != nil {
			return current
		}
	}
	return s.token
}

// RefreshToken exchanges the stored refresh token for a new access token.
func (s *SpotifyService) RefreshToken(ctx context.Context) error {
	current := s.Token()
	if current == nil {
		return shared.ErrNotAuthenticated
	}
	if current.RefreshToken == "" {
		return fmt.Errorf("%w: no refresh token stored", shared.ErrRefreshFailed)
	}

	fresh, err := s.config.TokenSource(ctx, &oauth2.Token{RefreshToken: current.RefreshToken}).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	s.SetToken(fresh)
	if s.onTokenRefresh != nil {
		s.onTokenRefresh(fresh)
	}
	return nil
}

func (s *SpotifyService) client() (*http.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.httpClient == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.httpClient, nil
}

// doRequest performs an authenticated request against the API. A nil body sends no payload;
// a nil result discards the response.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	httpClient, err := s.client()
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	s.logger.Debug("spotify request", "method", method, "endpoint", endpoint)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(resp)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports every token that differs
// from the last one seen.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback TokenRefreshCallback

	mu      sync.Mutex
	last    string
	current *oauth2.Token
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.current = token
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}

func (r *refreshableTokenSource) latest() *oauth2.Token {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
