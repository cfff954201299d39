package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/door-guard/internal/domain/access"
	"github.com/oshokin/door-guard/internal/logger"
)

// Config holds everything the device loop needs.
type Config struct {
	// WiFiSSID is the network the device joins. The session itself is managed by the host.
	WiFiSSID string `yaml:"wifi_ssid"`
	// WiFiPassword is the network credential.
	WiFiPassword string `yaml:"wifi_password"`
	// BotToken is the Telegram bot token.
	BotToken string `yaml:"bot_token"`
	// ChatID is the Telegram chat that receives alerts.
	ChatID string `yaml:"chat_id"`
	// TelegramAPIURL is the Bot API root.
	TelegramAPIURL string `yaml:"telegram_api_url"`
	// NotifyTimeout bounds one notification.
	NotifyTimeout time.Duration `yaml:"notify_timeout"`

	// PollInterval is the pause at the end of every main-loop iteration.
	PollInterval time.Duration `yaml:"poll_interval"`
	// UnlockDwell is how long the door stays open after a grant.
	UnlockDwell time.Duration `yaml:"unlock_dwell"`
	// AlertTick is the dark pause between intruder flashes.
	AlertTick time.Duration `yaml:"alert_tick"`
	// RelayWindow is how long the USB relay stays on after a swipe.
	RelayWindow time.Duration `yaml:"relay_window"`

	// LockAngle is the servo angle that bolts the door.
	LockAngle int `yaml:"lock_angle"`
	// UnlockAngle is the servo angle that releases the door. Nil means
	// DefaultUnlockAngle; 0 is a valid angle.
	UnlockAngle *int `yaml:"unlock_angle,omitempty"`

	// Identities maps vision sensor classes to names.
	Identities map[int]string `yaml:"identities"`

	// StatusAddress enables the gRPC status service when set, e.g. ":50070".
	StatusAddress string `yaml:"status_addr"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Device selects the peripheral backend.
	Device Device `yaml:"device"`
}

// Device selects and configures the peripheral backend.
type Device struct {
	// Backend is the driver set; only "sim" ships with door-guard.
	Backend string `yaml:"backend"`
	// Scenario is the YAML script replayed by the sim backend.
	Scenario string `yaml:"scenario"`
}

const (
	// DefaultConfigFilename is read when no path is given.
	DefaultConfigFilename = "door-guard-settings.yaml"

	// DefaultPollInterval is the main-loop cadence.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultUnlockDwell keeps the door open after a grant.
	DefaultUnlockDwell = 5 * time.Second
	// DefaultAlertTick is the pause between intruder flashes.
	DefaultAlertTick = 200 * time.Millisecond
	// DefaultRelayWindow keeps the relay on after a swipe.
	DefaultRelayWindow = 5 * time.Second
	// DefaultNotifyTimeout bounds one notification.
	DefaultNotifyTimeout = 10 * time.Second
	// DefaultTelegramAPIURL is the public Bot API.
	DefaultTelegramAPIURL = "https://api.telegram.org"
	// DefaultUnlockAngle releases the door.
	DefaultUnlockAngle = 90
	// BackendSim is the software peripheral set.
	BackendSim = "sim"

	// DefaultFilePermissions is used when saving settings; they contain secrets.
	DefaultFilePermissions = 0o600

	maxServoAngle = 180
)

// Environment variables, named as on the original CircuitPython device.
const (
	EnvWiFiSSID     = "CIRCUITPY_WIFI_SSID"
	EnvWiFiPassword = "CIRCUITPY_WIFI_PASSWORD"
	EnvBotToken     = "botToken"
	EnvChatID       = "chat_id"
	EnvLogLevel     = "DOOR_GUARD_LOG_LEVEL"
)

var (
	// ErrConfiguration marks settings the device cannot start with.
	ErrConfiguration = errors.New("invalid configuration")
	// errConfigIsNotSet is returned when Save gets a nil config.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Load reads settings from path, applies environment overrides and validates.
// An empty path reads DefaultConfigFilename if it exists and otherwise relies
// on the environment alone.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

// Read is Load without validation or defaults, for tools such as the status
// client that need a single key and not the device credentials.
func Read(path string) (*Config, error) {
	return read(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg, err := read(path, lookup)
	if err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func read(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := new(Config)

	optional := path == ""
	if optional {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))

	switch {
	case err == nil:
		if err := decode(path, contents, cfg); err != nil {
			return nil, err
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Environment only.
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	applyEnv(cfg, lookup)

	return cfg, nil
}

// decode picks the format from the file extension.
func decode(path string, contents []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return decodeCircuitSettings(contents, cfg)
	}

	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("unmarshal settings: %w", err)
	}

	return nil
}

// applyEnv lets the environment override file values.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	overrides := []struct {
		key    string
		target *string
	}{
		{EnvWiFiSSID, &cfg.WiFiSSID},
		{EnvWiFiPassword, &cfg.WiFiPassword},
		{EnvBotToken, &cfg.BotToken},
		{EnvChatID, &cfg.ChatID},
		{EnvLogLevel, &cfg.LogLevel},
	}

	for _, o := range overrides {
		if value, ok := lookup(o.key); ok && strings.TrimSpace(value) != "" {
			*o.target = strings.TrimSpace(value)
		}
	}
}

// Save writes settings to path as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults in place.
//
//nolint:cyclop // A flat list of checks reads better than helpers.
func Validate(cfg *Config) error {
	required := []struct {
		key   string
		value string
	}{
		{"wifi_ssid", cfg.WiFiSSID},
		{"wifi_password", cfg.WiFiPassword},
		{"bot_token", cfg.BotToken},
		{"chat_id", cfg.ChatID},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrConfiguration, r.key)
		}
	}

	applyDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.TelegramAPIURL); err != nil {
		return fmt.Errorf("%w: telegram_api_url: %w", ErrConfiguration, err)
	}

	if !validAngle(cfg.LockAngle) || !validAngle(*cfg.UnlockAngle) {
		return fmt.Errorf("%w: servo angles must be within 0..%d", ErrConfiguration, maxServoAngle)
	}

	if cfg.LockAngle == *cfg.UnlockAngle {
		return fmt.Errorf("%w: lock_angle and unlock_angle must differ", ErrConfiguration)
	}

	if cfg.StatusAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", cfg.StatusAddress); err != nil {
			return fmt.Errorf("%w: status_addr: %w", ErrConfiguration, err)
		}
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrConfiguration, cfg.LogLevel)
	}

	if cfg.Device.Backend != BackendSim {
		return fmt.Errorf("%w: unsupported device backend %q", ErrConfiguration, cfg.Device.Backend)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.UnlockDwell <= 0 {
		cfg.UnlockDwell = DefaultUnlockDwell
	}

	if cfg.AlertTick <= 0 {
		cfg.AlertTick = DefaultAlertTick
	}

	if cfg.RelayWindow <= 0 {
		cfg.RelayWindow = DefaultRelayWindow
	}

	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}

	if cfg.TelegramAPIURL == "" {
		cfg.TelegramAPIURL = DefaultTelegramAPIURL
	}

	if cfg.UnlockAngle == nil {
		unlock := DefaultUnlockAngle
		cfg.UnlockAngle = &unlock
	}

	if len(cfg.Identities) == 0 {
		cfg.Identities = access.DefaultIdentities()
	}

	if cfg.Device.Backend == "" {
		cfg.Device.Backend = BackendSim
	}
}

func validAngle(degrees int) bool {
	return degrees >= 0 && degrees <= maxServoAngle
}
