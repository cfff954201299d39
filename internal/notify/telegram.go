package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/oshokin/door-guard/internal/logger"
)

// ErrNotificationFailure wraps every delivery error.
var ErrNotificationFailure = errors.New("notification failed")

var (
	errTokenRequired  = errors.New("bot token must be provided")
	errChatIDRequired = errors.New("chat id must be provided")
)

const (
	// DefaultAPIURL is the Telegram Bot API root.
	DefaultAPIURL = "https://api.telegram.org"
	// DefaultTimeout bounds one send, including the rate-limit wait.
	DefaultTimeout = 10 * time.Second
	// defaultInterval keeps below the Bot API limit of one message per second per chat.
	defaultInterval = time.Second
)

// Notifier sends a text message.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Telegram posts messages through the Bot API sendMessage method.
type Telegram struct {
	baseURL string
	chatID  string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// Option configures the Telegram notifier.
type Option func(*Telegram)

// WithAPIURL overrides the Bot API root, e.g. for a local proxy.
func WithAPIURL(apiURL string) Option {
	return func(t *Telegram) {
		if apiURL != "" {
			t.baseURL = strings.TrimRight(apiURL, "/")
		}
	}
}

// WithTimeout sets the per-send timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Telegram) {
		if timeout > 0 {
			t.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Telegram) {
		if client != nil {
			t.client = client
		}
	}
}

// WithRateLimit sets the minimum spacing between messages; 0 disables throttling.
func WithRateLimit(interval time.Duration) Option {
	return func(t *Telegram) {
		if interval <= 0 {
			t.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}

		t.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewTelegram creates a notifier for the bot token and chat.
func NewTelegram(token, chatID string, opts ...Option) (*Telegram, error) {
	if token == "" {
		return nil, errTokenRequired
	}

	if chatID == "" {
		return nil, errChatIDRequired
	}

	t := &Telegram{
		baseURL: DefaultAPIURL,
		chatID:  chatID,
		client:  new(http.Client),
		limiter: rate.NewLimiter(rate.Every(defaultInterval), 1),
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.baseURL = t.baseURL + "/bot" + token

	return t, nil
}

// Send delivers text to the chat. Any failure is wrapped in ErrNotificationFailure.
func (t *Telegram) Send(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: throttled: %w", ErrNotificationFailure, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, t.messageURL(text), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrNotificationFailure, err)
	}

	response, err := t.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotificationFailure, redact(err))
	}

	defer func() {
		_, _ = io.Copy(io.Discard, response.Body)
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: unexpected status %s", ErrNotificationFailure, response.Status)
	}

	logger.DebugKV(ctx, "Notification sent", "text", text)

	return nil
}

// messageURL builds {base}/sendMessage?chat_id={id}&text={text}.
func (t *Telegram) messageURL(text string) string {
	query := url.Values{}
	query.Set("chat_id", t.chatID)
	query.Set("text", text)

	return t.baseURL + "/sendMessage?" + query.Encode()
}

// redact drops the request URL from transport errors so the bot token never reaches the logs.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}

	return err
}
