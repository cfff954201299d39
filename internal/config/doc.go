// Package config loads, validates and saves door-guard settings.
//
// Settings come from a YAML file or a CircuitPython-style settings.toml,
// then the environment variables CIRCUITPY_WIFI_SSID,
// CIRCUITPY_WIFI_PASSWORD, botToken and chat_id override the file. The four
// credentials are required; anything missing is an ErrConfiguration.
package config
