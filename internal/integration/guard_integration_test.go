package integration

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/door-guard/internal/api/grpc/status"
	"github.com/oshokin/door-guard/internal/config"
	"github.com/oshokin/door-guard/internal/service/guard"
)

const testScenario = `frames:
  - ids: [1]
  - ids: []
  - ids: [0]
gestures:
  - none
  - up
`

// telegramStub records the texts sent to the Bot API.
type telegramStub struct {
	mu       sync.Mutex
	messages []string
}

func (s *telegramStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.messages = append(s.messages, r.URL.Query().Get("text"))
	s.mu.Unlock()

	_, _ = w.Write([]byte(`{"ok":true}`))
}

func (s *telegramStub) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.messages...)
}

func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// TestGuard_RunsScenarioAndServesStatus drives the whole process against a sim scenario.
func TestGuard_RunsScenarioAndServesStatus(t *testing.T) {
	t.Parallel()

	stub := new(telegramStub)
	telegram := httptest.NewServer(stub)
	defer telegram.Close()

	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(testScenario), 0o600))

	addr := freeAddress(t)
	cfgPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(cfgPath, &config.Config{
		WiFiSSID:       "home",
		WiFiPassword:   "secret",
		BotToken:       "123:abc",
		ChatID:         "42",
		TelegramAPIURL: telegram.URL,
		PollInterval:   20 * time.Millisecond,
		UnlockDwell:    100 * time.Millisecond,
		AlertTick:      20 * time.Millisecond,
		RelayWindow:    10 * time.Second,
		StatusAddress:  addr,
		Device:         config.Device{Scenario: scenarioPath},
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- guard.Run(ctx, &guard.Options{ConfigPath: cfgPath})
	}()

	require.Eventually(t, func() bool {
		return len(stub.sent()) == 2
	}, 10*time.Second, 20*time.Millisecond)

	require.Equal(t, []string{
		"Ayah is home!!",
		"Intruder Alert: Unrecognized face detected!",
	}, stub.sent())

	client, err := api.Dial(addr, api.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() { _ = client.Close() }()

	require.Eventually(t, func() bool {
		state, err := client.GetStatus(ctx)
		if err != nil {
			return false
		}

		fields := state.GetFields()

		return fields[api.FieldCycles].GetNumberValue() >= 3 &&
			fields[api.FieldEpisodes].GetNumberValue() == 1
	}, 5*time.Second, 20*time.Millisecond)

	state, err := client.GetStatus(ctx)
	require.NoError(t, err)

	fields := state.GetFields()
	require.Equal(t, "locked", fields[api.FieldLock].GetStringValue())
	require.Equal(t, "Ayah", fields[api.FieldLastGranted].GetStringValue())
	require.True(t, fields[api.FieldRelayOn].GetBoolValue())
	require.False(t, fields[api.FieldIntruderActive].GetBoolValue())

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("door-guard did not stop")
	}
}

// TestGuard_RejectsIncompleteSettings fails before touching any device.
func TestGuard_RejectsIncompleteSettings(t *testing.T) {
	t.Parallel()

	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("wifi_ssid: home\n"), 0o600))

	err := guard.Run(context.Background(), &guard.Options{ConfigPath: cfgPath})
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrConfiguration))
}
