package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Display modes.
const (
	ModeQueue = "queue"
	ModeLab   = "lab"
)

// Announcement sinks.
const (
	SinkBrowser = "browser"
	SinkExec    = "exec"
	SinkNone    = "none"
)

// Backend contains the queue service connection settings.
type Backend struct {
	BaseURL               string `toml:"base_url"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Display contains the launch configuration of the calling display.
type Display struct {
	Rooms               []string `toml:"rooms"`
	QueueType           int      `toml:"queue_type"`
	Mode                string   `toml:"mode"`
	PollIntervalSeconds int      `toml:"poll_interval_seconds"`
	HospitalName        string   `toml:"hospital_name"`
	BlinkSeconds        int      `toml:"blink_seconds"`
}

// Announce contains speech and tone output settings.
type Announce struct {
	Sink            string  `toml:"sink"`
	Locale          string  `toml:"locale"`
	Rate            float64 `toml:"rate"`
	CallTemplate    string  `toml:"call_template"`
	LabTemplate     string  `toml:"lab_template"`
	SpeechCommand   string  `toml:"speech_command"`
	ToneCommand     string  `toml:"tone_command"`
	ToneFrequencyHz int     `toml:"tone_frequency_hz"`
	ToneDurationMS  int     `toml:"tone_duration_ms"`
	ToneGain        float64 `toml:"tone_gain"`
	AutoEnable      bool    `toml:"auto_enable"`
}

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Calls          bool   `toml:"calls"`
	Outages        bool   `toml:"outages"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	FileLevel     string `toml:"file_level"`
	RetentionDays int    `toml:"retention_days"`
	KeepRuns      int    `toml:"keep_runs"`
}

// Config encapsulates all configuration values for the queue display.
//
// Configuration sections by subsystem:
//   - Backend: queue service base URL and request timeout
//   - Display: rooms, queue type, mode, poll cadence, header text
//   - Announce: speech/tone sink selection and templates
//   - Paths: log directory and HTTP API bind address
//   - Notifications: ntfy forwarding of calls and outages
//   - Logging: log format, level, and retention
type Config struct {
	Backend       Backend       `toml:"backend"`
	Display       Display       `toml:"display"`
	Announce      Announce      `toml:"announce"`
	Paths         Paths         `toml:"paths"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/queuedisplay/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("queuedisplay.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// PollInterval returns the poll cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Display.PollIntervalSeconds) * time.Second
}

// BlinkDuration returns how long a newly called ticket stays highlighted.
func (c *Config) BlinkDuration() time.Duration {
	return time.Duration(c.Display.BlinkSeconds) * time.Second
}

// RequestTimeout returns the per-request backend timeout. Zero means the
// HTTP client default (no timeout).
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Backend.RequestTimeoutSeconds) * time.Second
}

// SocketPath returns the IPC socket location inside the log directory.
func (c *Config) SocketPath() string {
	return filepath.Join(c.Paths.LogDir, "queuedisplay.sock")
}

// LockPath returns the daemon lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.LogDir, "queuedisplay.lock")
}

// PIDPath returns the daemon pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.LogDir, "queuedisplay.pid")
}

// ParseRooms splits a comma-separated room list, dropping blanks and
// duplicates while preserving order.
func ParseRooms(value string) []string {
	return normalizeRooms(strings.Split(value, ","))
}

// ParseQueueType converts a queue type parameter, falling back to the
// default when the value is absent or invalid.
func ParseQueueType(value string) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return DefaultQueueType
	}
	return parsed
}

func normalizeRooms(rooms []string) []string {
	out := make([]string, 0, len(rooms))
	seen := make(map[string]struct{}, len(rooms))
	for _, room := range rooms {
		trimmed := strings.TrimSpace(room)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
