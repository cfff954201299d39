// Package notify sends short text alerts to a Telegram chat.
//
// Delivery is best-effort: callers log a failed Send and carry on.
package notify
