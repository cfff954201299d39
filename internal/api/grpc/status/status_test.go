package status

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/oshokin/door-guard/internal/domain/access"
	repository "github.com/oshokin/door-guard/internal/repository/status"
)

var errBoardGone = errors.New("board gone")

type failingSource struct{}

func (failingSource) Load(context.Context) (*access.Snapshot, error) {
	return nil, errBoardGone
}

// startBufconn serves the status service in memory and returns a connected client.
func startBufconn(t *testing.T, source Source) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	srv := grpc.NewServer()
	RegisterStatusServiceServer(srv, NewServer(source))

	go func() {
		_ = srv.Serve(lis)
	}()

	t.Cleanup(srv.Stop)

	client, err := Dial(
		"passthrough:///bufnet",
		WithCallTimeout(3*time.Second),
		WithDialOptions(grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		})),
	)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestGetStatus_Roundtrip publishes a snapshot and reads it back over gRPC.
func TestGetStatus_Roundtrip(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepository()
	granted := time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)

	require.NoError(t, repo.Update(context.Background(), func(s *access.Snapshot) {
		s.Lock = access.Unlocked
		s.LastGranted = "Mama"
		s.LastGrantedAt = granted
		s.RelayOn = true
		s.Episodes = 2
		s.Cycles = 41
	}))

	client := startBufconn(t, repo)

	response, err := client.GetStatus(context.Background())
	require.NoError(t, err)

	fields := response.AsMap()
	require.Equal(t, "unlocked", fields[FieldLock])
	require.Equal(t, "Mama", fields[FieldLastGranted])
	require.Equal(t, "2026-10-17T08:30:00Z", fields[FieldLastGrantedAt])
	require.Equal(t, true, fields[FieldRelayOn])
	require.Equal(t, false, fields[FieldIntruderActive])
	require.InDelta(t, 2, fields[FieldEpisodes], 0)
	require.InDelta(t, 41, fields[FieldCycles], 0)
	require.Empty(t, fields[FieldRelayDeadline])
	require.NotEmpty(t, fields[FieldUpdatedAt])
}

// TestGetStatus_SourceError maps a failing source to Unavailable.
func TestGetStatus_SourceError(t *testing.T) {
	t.Parallel()

	_, err := NewServer(failingSource{}).GetStatus(context.Background(), new(emptypb.Empty))
	require.Equal(t, codes.Unavailable, grpcstatus.Code(err))

	client := startBufconn(t, failingSource{})

	_, err = client.GetStatus(context.Background())
	require.Error(t, err)
	require.Equal(t, codes.Unavailable, grpcstatus.Code(err))
}

// TestDial_ValidatesAddress rejects an empty address.
func TestDial_ValidatesAddress(t *testing.T) {
	t.Parallel()

	c, err := Dial("")
	require.Error(t, err)
	require.Nil(t, c)
	require.NoError(t, c.Close())
}

// TestClient_callContext checks timeout versus cancel-only behavior.
func TestClient_callContext(t *testing.T) {
	t.Parallel()

	c := &Client{callTimeout: 0}

	ctx, cancel := c.callContext(context.Background())
	cancel()

	_, ok := ctx.Deadline()
	require.False(t, ok)

	c.callTimeout = 10 * time.Millisecond

	ctx, cancel = c.callContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(10*time.Millisecond), deadline, 30*time.Millisecond)
}
