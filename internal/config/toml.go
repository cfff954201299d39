package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// circuitSettings mirrors a CircuitPython settings.toml, so the file from the
// original device can be reused as is.
type circuitSettings struct {
	WiFiSSID     string `toml:"CIRCUITPY_WIFI_SSID"`
	WiFiPassword string `toml:"CIRCUITPY_WIFI_PASSWORD"`
	BotToken     string `toml:"botToken"`
	// ChatID may be written as a number or a string.
	ChatID         any               `toml:"chat_id"`
	TelegramAPIURL string            `toml:"telegram_api_url"`
	StatusAddress  string            `toml:"status_addr"`
	LogLevel       string            `toml:"log_level"`
	Scenario       string            `toml:"scenario"`
	Backend        string            `toml:"backend"`
	Identities     map[string]string `toml:"identities"`
	// Durations are strings such as "500ms".
	PollInterval  time.Duration `toml:"poll_interval"`
	UnlockDwell   time.Duration `toml:"unlock_dwell"`
	AlertTick     time.Duration `toml:"alert_tick"`
	RelayWindow   time.Duration `toml:"relay_window"`
	NotifyTimeout time.Duration `toml:"notify_timeout"`
	LockAngle     int           `toml:"lock_angle"`
	UnlockAngle   *int          `toml:"unlock_angle"`
}

func decodeCircuitSettings(contents []byte, cfg *Config) error {
	var settings circuitSettings

	meta, err := toml.Decode(string(contents), &settings)
	if err != nil {
		return fmt.Errorf("unmarshal settings.toml: %w", err)
	}

	cfg.WiFiSSID = settings.WiFiSSID
	cfg.WiFiPassword = settings.WiFiPassword
	cfg.BotToken = settings.BotToken
	cfg.TelegramAPIURL = settings.TelegramAPIURL
	cfg.StatusAddress = settings.StatusAddress
	cfg.LogLevel = settings.LogLevel
	cfg.Device.Scenario = settings.Scenario
	cfg.Device.Backend = settings.Backend
	cfg.PollInterval = settings.PollInterval
	cfg.UnlockDwell = settings.UnlockDwell
	cfg.AlertTick = settings.AlertTick
	cfg.RelayWindow = settings.RelayWindow
	cfg.NotifyTimeout = settings.NotifyTimeout
	cfg.LockAngle = settings.LockAngle
	cfg.UnlockAngle = settings.UnlockAngle

	if meta.IsDefined("chat_id") {
		cfg.ChatID = fmt.Sprint(settings.ChatID)
	}

	if len(settings.Identities) == 0 {
		return nil
	}

	cfg.Identities = make(map[int]string, len(settings.Identities))

	for key, name := range settings.Identities {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("%w: identity key %q is not a number", ErrConfiguration, key)
		}

		cfg.Identities[id] = name
	}

	return nil
}
