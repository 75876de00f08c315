package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Behavior    BehaviorConfig    `toml:"behavior"`
	Search      SearchConfig      `toml:"search"`
	Player      PlayerConfig      `toml:"player"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and the last issued token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry"`
}

// BehaviorConfig holds the icons used when rendering playback flags and state.
type BehaviorConfig struct {
	PlayingIcon       string `toml:"playing_icon"`
	PausedIcon        string `toml:"paused_icon"`
	ShuffleIcon       string `toml:"shuffle_icon"`
	RepeatTrackIcon   string `toml:"repeat_track_icon"`
	RepeatContextIcon string `toml:"repeat_context_icon"`
	LikedIcon         string `toml:"liked_icon"`
}

// SearchConfig holds result limits: small for multi-category search, large for single-category pages.
type SearchConfig struct {
	SmallLimit int `toml:"small_limit"`
	LargeLimit int `toml:"large_limit"`
}

// PlayerConfig holds playback preferences.
type PlayerConfig struct {
	DeviceID    string `toml:"device_id"`
	SeekDelayMS int    `toml:"seek_delay_ms"`
	TickMS      int    `toml:"tick_ms"`
	VolumeStep  int    `toml:"volume_step"`
	SeekStep    int    `toml:"seek_step"`
	Format      string `toml:"format"`
	CacheTracks bool   `toml:"cache_tracks"`
}

// DatabaseConfig contains database connection settings.
//
// An empty path resolves to [DefaultDatabasePath].
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LogConfig controls log verbosity and destination.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Validate checks numeric settings that the dispatch engine relies on.
func (c *Config) Validate() error {
	if c.Search.SmallLimit < 1 || c.Search.SmallLimit > 50 {
		return fmt.Errorf("%w: search.small_limit must be between 1 and 50", ErrInvalidConfig)
	}
	if c.Search.LargeLimit < 1 || c.Search.LargeLimit > 50 {
		return fmt.Errorf("%w: search.large_limit must be between 1 and 50", ErrInvalidConfig)
	}
	if c.Player.SeekDelayMS < 0 {
		return fmt.Errorf("%w: player.seek_delay_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

// SeekDelay returns the configured pause between a seek and the playback refetch.
func (p PlayerConfig) SeekDelay() time.Duration {
	return time.Duration(p.SeekDelayMS) * time.Millisecond
}

// Tick returns the TUI playback polling interval, at least 250ms.
func (p PlayerConfig) Tick() time.Duration {
	if p.TickMS < 250 {
		return 250 * time.Millisecond
	}
	return time.Duration(p.TickMS) * time.Millisecond
}

// Map returns the credential map accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the stored [oauth2.Token], or nil when no access token has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update copies token fields into the config. A token without a refresh token keeps the stored one.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", ErrInvalidArgument)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}
