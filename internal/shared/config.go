package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvPrefix prefixes every environment override (e.g. TUNESYNC_DISCOGS_TOKEN).
const EnvPrefix = "TUNESYNC_"

// Config represents the application configuration loaded from a TOML file.
//
// A Config is built once at startup and handed to constructors by value or pointer; nothing mutates it afterwards.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Sync        SyncConfig        `toml:"sync"`
	Tags        TagsConfig        `toml:"tags"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
	Discogs DiscogsConfig `toml:"discogs"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	TokenPath    string `toml:"token_path"`
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL    string `toml:"proxy_url"`
	HeadersPath string `toml:"headers_path"`
}

// DiscogsConfig contains the Discogs personal access token.
type DiscogsConfig struct {
	Token     string  `toml:"token"`
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"requests_per_second"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// SyncConfig holds the retry, pacing and selection settings of a reconciliation run.
type SyncConfig struct {
	MaxRetries          int  `toml:"max_retries"`
	InitialDelaySeconds int  `toml:"initial_delay_seconds"`
	PacingSeconds       int  `toml:"pacing_seconds"`
	ChunkPauseSeconds   int  `toml:"chunk_pause_seconds"`
	ChunkSize           int  `toml:"chunk_size"`
	MaxMatches          int  `toml:"max_matches"`
	SearchLimit         int  `toml:"search_limit"`
	AutoFirst           bool `toml:"auto_first"`
}

// TagsConfig holds the overwrite policy for catalog tagging.
type TagsConfig struct {
	MediaPath      string `toml:"media_path"`
	OverwriteGenre bool   `toml:"overwrite_genre"`
	OverwriteYear  bool   `toml:"overwrite_year"`
	EmbedCover     bool   `toml:"embed_cover"`
	OverwriteCover bool   `toml:"overwrite_cover"`
	RenameFile     bool   `toml:"rename_file"`
}

// LogConfig controls the logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// InitialDelay returns the starting backoff delay.
func (s SyncConfig) InitialDelay() time.Duration {
	return time.Duration(s.InitialDelaySeconds) * time.Second
}

// Pacing returns the pause inserted after every successful mutation.
func (s SyncConfig) Pacing() time.Duration {
	return time.Duration(s.PacingSeconds) * time.Second
}

// ChunkPause returns the pause between removal batches.
func (s SyncConfig) ChunkPause() time.Duration {
	return time.Duration(s.ChunkPauseSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// ResolveConfig builds the effective configuration.
//
// Order: embedded defaults, then the TOML file at path (when it exists), then variables from envFile (when it exists) and the process environment.
// Variables already set in the process environment win over the .env file.
func ResolveConfig(path, envFile string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, envFile, err)
		}
	}

	if err := config.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SPOTIFY_CLIENT_ID":     &c.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &c.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":  &c.Credentials.Spotify.RedirectURI,
		"SPOTIFY_TOKEN_PATH":    &c.Credentials.Spotify.TokenPath,
		"YOUTUBE_PROXY_URL":     &c.Credentials.YouTube.ProxyURL,
		"YOUTUBE_HEADERS_PATH":  &c.Credentials.YouTube.HeadersPath,
		"DISCOGS_TOKEN":         &c.Credentials.Discogs.Token,
		"DATABASE_PATH":         &c.Database.Path,
		"MEDIA_PATH":            &c.Tags.MediaPath,
		"LOG_LEVEL":             &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_RETRIES":   &c.Sync.MaxRetries,
		"INITIAL_DELAY": &c.Sync.InitialDelaySeconds,
		"PACING":        &c.Sync.PacingSeconds,
	}
	for key, dst := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, EnvPrefix, key, v)
		}
		*dst = n
	}

	if v, ok := lookup(EnvPrefix + "AUTO_FIRST"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sAUTO_FIRST=%q is not a boolean", ErrInvalidConfig, EnvPrefix, v)
		}
		c.Sync.AutoFirst = b
	}
	return nil
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

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// RequireSpotify checks that the Spotify client credentials are present.
func (c *Config) RequireSpotify() error {
	s := c.Credentials.Spotify
	if unset(s.ClientID) || unset(s.ClientSecret) {
		return fmt.Errorf("%w: spotify client_id and client_secret must be set", ErrMissingCredentials)
	}
	return nil
}

// unset reports whether a credential is empty or still holds a "your_..." placeholder.
func unset(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.HasPrefix(v, "your_")
}

// RequireYouTube checks that the proxy URL and headers file are configured.
func (c *Config) RequireYouTube() error {
	y := c.Credentials.YouTube
	if y.ProxyURL == "" || y.HeadersPath == "" {
		return fmt.Errorf("%w: youtube proxy_url and headers_path must be set", ErrMissingCredentials)
	}
	return nil
}

// RequireDiscogs checks that a Discogs token is configured.
func (c *Config) RequireDiscogs() error {
	if unset(c.Credentials.Discogs.Token) {
		return fmt.Errorf("%w: discogs token must be set", ErrMissingCredentials)
	}
	return nil
}
