// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for relay.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/relay-tui/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete relay configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Server    ServerConfig    `toml:"server" json:"server"`
	User      UserConfig      `toml:"user" json:"user"`
	Transport TransportConfig `toml:"transport" json:"transport"`
	Upload    UploadConfig    `toml:"upload" json:"upload"`
	Recording RecordingConfig `toml:"recording" json:"recording"`
	UI        UIConfig        `toml:"ui" json:"ui"`
	Log       LogConfig       `toml:"log" json:"log"`
	Journal   JournalConfig   `toml:"journal" json:"journal"`
}

// ServerConfig locates the chat server and carries the session credentials.
type ServerConfig struct {
	// BaseURL is the HTTP origin, e.g. https://chat.example.com
	BaseURL string `toml:"base_url" json:"base_url"`
	// WSURL overrides the websocket origin. Derived from BaseURL when empty.
	WSURL string `toml:"ws_url" json:"ws_url"`

	// Path templates; %s is replaced with the escaped room ID.
	ChatPath         string `toml:"chat_path" json:"chat_path"`
	NotificationPath string `toml:"notification_path" json:"notification_path"`
	UploadPath       string `toml:"upload_path" json:"upload_path"`

	// SessionCookie is sent as the "sessionid" cookie on every request.
	SessionCookie string `toml:"session_cookie" json:"session_cookie"`
	// CSRFToken is sent as X-CSRFToken on uploads.
	CSRFToken string `toml:"csrf_token" json:"csrf_token"`
}

// UserConfig identifies the local user. Messages whose author matches
// Username are rendered as own messages.
type UserConfig struct {
	Username string `toml:"username" json:"username"`
}

// TransportConfig tunes the websocket channels.
type TransportConfig struct {
	HandshakeTimeoutSecs int     `toml:"handshake_timeout_secs" json:"handshake_timeout_secs"`
	WriteWaitSecs        int     `toml:"write_wait_secs" json:"write_wait_secs"`
	PongWaitSecs         int     `toml:"pong_wait_secs" json:"pong_wait_secs"`
	PingPeriodSecs       int     `toml:"ping_period_secs" json:"ping_period_secs"`
	MaxMessageBytes      int64   `toml:"max_message_bytes" json:"max_message_bytes"`
	SendRatePerSec       float64 `toml:"send_rate_per_sec" json:"send_rate_per_sec"`
	SendBurst            int     `toml:"send_burst" json:"send_burst"`

	// Reconnect enables exponential-backoff redial of a closed channel.
	// Off by default: a closed channel stays closed for the session.
	Reconnect         bool `toml:"reconnect" json:"reconnect"`
	ReconnectBaseMs   int  `toml:"reconnect_base_ms" json:"reconnect_base_ms"`
	ReconnectMaxSecs  int  `toml:"reconnect_max_secs" json:"reconnect_max_secs"`
	ReconnectAttempts int  `toml:"reconnect_attempts" json:"reconnect_attempts"`
}

// UploadConfig tunes the out-of-band file upload.
type UploadConfig struct {
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	MaxSizeMB   int `toml:"max_size_mb" json:"max_size_mb"`
}

// RecordingConfig describes the voice capture device.
type RecordingConfig struct {
	// Command is the capture program and its arguments. It must write the
	// encoded audio stream to stdout until terminated.
	Command []string `toml:"command" json:"command"`
	// MediaType is the content type of the finalized artifact.
	MediaType string `toml:"media_type" json:"media_type"`
	// FileName is the upload file name of the finalized artifact.
	FileName        string `toml:"file_name" json:"file_name"`
	MaxDurationSecs int    `toml:"max_duration_secs" json:"max_duration_secs"`
	ChunkBytes      int    `toml:"chunk_bytes" json:"chunk_bytes"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme"`
	// ParentExcerptRunes bounds the reply excerpt length
	ParentExcerptRunes int `toml:"parent_excerpt_runes" json:"parent_excerpt_runes"`
	// CatchUpReceipts sends read receipts for messages that arrived while
	// the terminal was unfocused, once focus returns
	CatchUpReceipts bool `toml:"catch_up_receipts" json:"catch_up_receipts"`
	AltScreen       bool `toml:"alt_screen" json:"alt_screen"`
	HighlightMs     int  `toml:"highlight_ms" json:"highlight_ms"`
	// MaxMessages bounds the local message view; the oldest messages are
	// dropped past it. -1 keeps every message.
	MaxMessages int `toml:"max_messages" json:"max_messages"`
}

// LogConfig controls the rotated log file.
type LogConfig struct {
	Level      string `toml:"level" json:"level"`
	File       string `toml:"file" json:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" json:"max_age_days"`
	Compress   bool   `toml:"compress" json:"compress"`
}

// JournalConfig controls the diagnostic frame journal.
type JournalConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Path    string `toml:"path" json:"path"`
	// Retain is the number of most recent frames kept; 0 keeps everything.
	Retain int `toml:"retain" json:"retain"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Server: ServerConfig{
			BaseURL:          "http://127.0.0.1:8000",
			ChatPath:         "/ws/chat/%s/",
			NotificationPath: "/ws/notifications/",
			UploadPath:       "/api/upload/%s/",
		},
		Transport: TransportConfig{
			HandshakeTimeoutSecs: 10,
			WriteWaitSecs:        10,
			PongWaitSecs:         60,
			PingPeriodSecs:       54,
			MaxMessageBytes:      512 * 1024,
			SendRatePerSec:       10,
			SendBurst:            20,
			Reconnect:            false,
			ReconnectBaseMs:      500,
			ReconnectMaxSecs:     30,
			ReconnectAttempts:    8,
		},
		Upload: UploadConfig{
			TimeoutSecs: 60,
			MaxSizeMB:   25,
		},
		Recording: RecordingConfig{
			Command: []string{
				"ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default",
				"-c:a", "libopus", "-f", "webm", "-",
			},
			MediaType:       "audio/webm",
			FileName:        "voice_message.webm",
			MaxDurationSecs: 300,
			ChunkBytes:      4096,
		},
		UI: UIConfig{
			Theme:              "auto",
			ParentExcerptRunes: 50,
			CatchUpReceipts:    false,
			AltScreen:          true,
			HighlightMs:        2000,
			MaxMessages:        1000,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Journal: JournalConfig{
			Enabled: false,
			Retain:  10000,
		},
	}
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// WSBase returns the websocket origin, derived from BaseURL when WSURL is
// unset (http becomes ws, https becomes wss).
func (s ServerConfig) WSBase() string {
	if s.WSURL != "" {
		return strings.TrimRight(s.WSURL, "/")
	}
	base := strings.TrimRight(s.BaseURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}

// ChatURL returns the chat channel endpoint for room.
func (s ServerConfig) ChatURL(room string) string {
	return s.WSBase() + expandPath(s.ChatPath, room)
}

// NotificationURL returns the notification channel endpoint.
func (s ServerConfig) NotificationURL() string {
	return s.WSBase() + s.NotificationPath
}

// UploadURL returns the upload endpoint for room.
func (s ServerConfig) UploadURL(room string) string {
	return strings.TrimRight(s.BaseURL, "/") + expandPath(s.UploadPath, room)
}

func expandPath(tmpl, room string) string {
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, url.PathEscape(room))
}

// HandshakeTimeout returns the websocket dial timeout.
func (t TransportConfig) HandshakeTimeout() time.Duration {
	return time.Duration(t.HandshakeTimeoutSecs) * time.Second
}

// WriteWait returns the per-frame write deadline.
func (t TransportConfig) WriteWait() time.Duration {
	return time.Duration(t.WriteWaitSecs) * time.Second
}

// PongWait returns how long the peer may stay silent.
func (t TransportConfig) PongWait() time.Duration {
	return time.Duration(t.PongWaitSecs) * time.Second
}

// PingPeriod returns the keepalive interval.
func (t TransportConfig) PingPeriod() time.Duration {
	return time.Duration(t.PingPeriodSecs) * time.Second
}

// ReconnectBase returns the first backoff delay.
func (t TransportConfig) ReconnectBase() time.Duration {
	return time.Duration(t.ReconnectBaseMs) * time.Millisecond
}

// ReconnectMax returns the backoff ceiling.
func (t TransportConfig) ReconnectMax() time.Duration {
	return time.Duration(t.ReconnectMaxSecs) * time.Second
}

// Timeout returns the upload request timeout.
func (u UploadConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSecs) * time.Second
}

// MaxBytes returns the upload size limit in bytes.
func (u UploadConfig) MaxBytes() int64 {
	return int64(u.MaxSizeMB) * 1024 * 1024
}

// MaxDuration returns the recording length limit.
func (r RecordingConfig) MaxDuration() time.Duration {
	return time.Duration(r.MaxDurationSecs) * time.Second
}

// Highlight returns how long a jumped-to message stays highlighted.
func (u UIConfig) Highlight() time.Duration {
	return time.Duration(u.HighlightMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the relay configuration directory path. RELAY_HOME
// overrides the default of ~/.relay.
func ConfigDir() (string, error) {
	if dir := os.Getenv("RELAY_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".relay"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens config files to 0600.
// SECURITY: The file holds the session cookie and CSRF token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped. With no arguments ".env" is tried.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from the config directory.
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			err := LoadTOML(cfg, tomlPath)
			if err == nil {
				return finalize(cfg)
			}
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			cfg = Default()
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			err := LoadJSON(cfg, jsonPath)
			if err == nil {
				return finalize(cfg)
			}
			if loadErr == nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			}
			cfg = Default()
		}
	}

	cfg, err := finalize(cfg)
	if err != nil {
		return nil, err
	}
	// Defaults are usable; the load error is informational.
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file with full
// validation. Files ending in .json are decoded as JSON, everything else
// as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finalize(cfg)
}

func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
// SECURITY: Checks and fixes file permissions on load.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
// SECURITY: Written 0600, atomically.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# relay configuration file")
	fmt.Fprintln(&buf, "# Generated by relay - edit with care")
	fmt.Fprintln(&buf)

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if err := checkURL(c.Server.BaseURL, "http", "https"); err != nil {
		add("server.base_url", "%v", err)
	}
	if c.Server.WSURL != "" {
		if err := checkURL(c.Server.WSURL, "ws", "wss"); err != nil {
			add("server.ws_url", "%v", err)
		}
	}
	for field, p := range map[string]string{
		"server.chat_path":         c.Server.ChatPath,
		"server.notification_path": c.Server.NotificationPath,
		"server.upload_path":       c.Server.UploadPath,
	} {
		if !strings.HasPrefix(p, "/") {
			add(field, "must start with '/', got %q", p)
		}
	}
	if strings.Count(c.Server.ChatPath, "%s") != 1 {
		add("server.chat_path", "must contain exactly one %%s room placeholder")
	}
	if strings.Count(c.Server.UploadPath, "%s") != 1 {
		add("server.upload_path", "must contain exactly one %%s room placeholder")
	}

	// Transport
	t := c.Transport
	if t.WriteWaitSecs <= 0 {
		add("transport.write_wait_secs", "must be positive")
	}
	if t.PongWaitSecs <= 0 {
		add("transport.pong_wait_secs", "must be positive")
	}
	if t.PingPeriodSecs <= 0 || t.PingPeriodSecs >= t.PongWaitSecs {
		add("transport.ping_period_secs", "must be positive and less than pong_wait_secs (%d)", t.PongWaitSecs)
	}
	if t.MaxMessageBytes <= 0 {
		add("transport.max_message_bytes", "must be positive")
	}
	if t.SendRatePerSec <= 0 {
		add("transport.send_rate_per_sec", "must be positive")
	}
	if t.SendBurst < 1 {
		add("transport.send_burst", "must be at least 1")
	}
	if t.Reconnect {
		if t.ReconnectBaseMs <= 0 {
			add("transport.reconnect_base_ms", "must be positive when reconnect is enabled")
		}
		if t.ReconnectAttempts < 1 {
			add("transport.reconnect_attempts", "must be at least 1 when reconnect is enabled")
		}
	}

	// Upload
	if c.Upload.TimeoutSecs <= 0 {
		add("upload.timeout_secs", "must be positive")
	}
	if c.Upload.MaxSizeMB <= 0 {
		add("upload.max_size_mb", "must be positive")
	}

	// Recording
	if len(c.Recording.Command) == 0 || strings.TrimSpace(c.Recording.Command[0]) == "" {
		add("recording.command", "must name a capture program")
	}
	if !strings.Contains(c.Recording.MediaType, "/") {
		add("recording.media_type", "invalid media type %q", c.Recording.MediaType)
	}
	if c.Recording.FileName == "" || strings.ContainsAny(c.Recording.FileName, `/\`) {
		add("recording.file_name", "must be a bare file name")
	}
	if c.Recording.ChunkBytes <= 0 {
		add("recording.chunk_bytes", "must be positive")
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme)
	}
	if c.UI.ParentExcerptRunes <= 0 {
		add("ui.parent_excerpt_runes", "must be positive")
	}
	if c.UI.MaxMessages < -1 {
		add("ui.max_messages", "must be positive, or -1 to keep every message")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled":
	default:
		add("log.level", "invalid level '%s', must be one of: trace, debug, info, warn, error, disabled", c.Log.Level)
	}

	// Journal
	if c.Journal.Enabled && c.Journal.Path == "" {
		add("journal.path", "required when the journal is enabled")
	}
	if c.Journal.Retain < 0 {
		add("journal.retain", "cannot be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func checkURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			if u.Host == "" {
				return errors.New("URL has no host")
			}
			return nil
		}
	}
	return fmt.Errorf("URL scheme must be one of %s, got %q", strings.Join(schemes, ", "), u.Scheme)
}

// SetDefaults fills zero values that Validate would otherwise reject, and
// resolves paths under the config directory.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Server.BaseURL == "" {
		c.Server.BaseURL = d.Server.BaseURL
	}
	if c.Server.ChatPath == "" {
		c.Server.ChatPath = d.Server.ChatPath
	}
	if c.Server.NotificationPath == "" {
		c.Server.NotificationPath = d.Server.NotificationPath
	}
	if c.Server.UploadPath == "" {
		c.Server.UploadPath = d.Server.UploadPath
	}

	if c.Transport.HandshakeTimeoutSecs == 0 {
		c.Transport.HandshakeTimeoutSecs = d.Transport.HandshakeTimeoutSecs
	}
	if c.Transport.SendBurst == 0 {
		c.Transport.SendBurst = d.Transport.SendBurst
	}
	if c.Transport.ReconnectMaxSecs == 0 {
		c.Transport.ReconnectMaxSecs = d.Transport.ReconnectMaxSecs
	}

	if len(c.Recording.Command) == 0 {
		c.Recording.Command = d.Recording.Command
	}
	if c.Recording.MediaType == "" {
		c.Recording.MediaType = d.Recording.MediaType
	}
	if c.Recording.FileName == "" {
		c.Recording.FileName = d.Recording.FileName
	}
	if c.Recording.ChunkBytes == 0 {
		c.Recording.ChunkBytes = d.Recording.ChunkBytes
	}

	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.ParentExcerptRunes == 0 {
		c.UI.ParentExcerptRunes = d.UI.ParentExcerptRunes
	}
	if c.UI.HighlightMs == 0 {
		c.UI.HighlightMs = d.UI.HighlightMs
	}
	if c.UI.MaxMessages == 0 {
		c.UI.MaxMessages = d.UI.MaxMessages
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}

	dir, err := ConfigDir()
	if err != nil {
		return
	}
	if c.Log.File == "" {
		c.Log.File = filepath.Join(dir, "logs", "relay.log")
	}
	if c.Journal.Path == "" {
		c.Journal.Path = filepath.Join(dir, "journal.db")
	}
}

// Migrate upgrades older config files to the current schema.
func (c *Config) Migrate() error {
	switch c.Version {
	case "", "0":
		// Version 0 stored a single websocket URL in base_url.
		if strings.HasPrefix(c.Server.BaseURL, "ws") && c.Server.WSURL == "" {
			c.Server.WSURL = c.Server.BaseURL
			c.Server.BaseURL = "http" + strings.TrimPrefix(c.Server.BaseURL, "ws")
		}
		c.Version = CurrentVersion
	case CurrentVersion:
	default:
		return fmt.Errorf("unsupported config version %q", c.Version)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - RELAY_SERVER: overrides server.base_url
//   - RELAY_WS_URL: overrides server.ws_url
//   - RELAY_USER: overrides user.username
//   - RELAY_SESSION_COOKIE: overrides server.session_cookie
//   - RELAY_CSRF_TOKEN: overrides server.csrf_token
//   - RELAY_RECONNECT: "1" or "true" enables transport.reconnect
//   - RELAY_CATCH_UP_RECEIPTS: "1" or "true" enables ui.catch_up_receipts
//   - RELAY_LOG_LEVEL: overrides log.level
//   - RELAY_LOG_FILE: overrides log.file
//   - RELAY_JOURNAL: "1" or "true" enables the frame journal
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("RELAY_SERVER"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("RELAY_WS_URL"); v != "" {
		c.Server.WSURL = v
	}
	if v := os.Getenv("RELAY_USER"); v != "" {
		c.User.Username = v
	}
	if v := os.Getenv("RELAY_SESSION_COOKIE"); v != "" {
		c.Server.SessionCookie = v
	}
	if v := os.Getenv("RELAY_CSRF_TOKEN"); v != "" {
		c.Server.CSRFToken = v
	}
	if v := os.Getenv("RELAY_RECONNECT"); v != "" {
		c.Transport.Reconnect = parseBool(v)
	}
	if v := os.Getenv("RELAY_CATCH_UP_RECEIPTS"); v != "" {
		c.UI.CatchUpReceipts = parseBool(v)
	}
	if v := os.Getenv("RELAY_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RELAY_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("RELAY_JOURNAL"); v != "" {
		c.Journal.Enabled = parseBool(v)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its dotted TOML key
// (e.g. "transport.reconnect").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a configuration value by its dotted TOML key. String values
// are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup walks the struct tree matching each key segment against toml tags.
func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i], "."))
		}
		idx := fieldIndexByTag(v.Type(), part)
		if idx < 0 {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		v = v.Field(idx)
	}
	return v, nil
}

func fieldIndexByTag(t reflect.Type, name string) int {
	name = strings.ReplaceAll(strings.ToLower(name), "-", "_")
	for i := 0; i < t.NumField(); i++ {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("toml"), ",")
		if tag == name {
			return i
		}
	}
	return -1
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(strVal))
			return nil
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(strings.Fields(strVal)))
				return nil
			}
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Recording.Command != nil {
		clone.Recording.Command = append([]string(nil), c.Recording.Command...)
	}
	return &clone
}

// Redacted returns a copy with credentials masked.
// SECURITY: Used for every printed or logged rendition of the config.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Server.SessionCookie != "" {
		safe.Server.SessionCookie = "[REDACTED]"
	}
	if safe.Server.CSRFToken != "" {
		safe.Server.CSRFToken = "[REDACTED]"
	}
	return safe
}

// String returns the redacted configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c.Redacted(), "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
