package status

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/door-guard/internal/domain/access"
)

// Snapshot field names in the Struct response.
const (
	FieldLock           = "lock"
	FieldLastGranted    = "last_granted"
	FieldLastGrantedAt  = "last_granted_at"
	FieldIntruderActive = "intruder_active"
	FieldEpisodeID      = "episode_id"
	FieldEpisodes       = "episodes"
	FieldRelayOn        = "relay_on"
	FieldRelayDeadline  = "relay_deadline"
	FieldCycles         = "cycles"
	FieldUpdatedAt      = "updated_at"
)

// Source provides the current snapshot.
type Source interface {
	Load(ctx context.Context) (*access.Snapshot, error)
}

// Server implements StatusServiceServer.
type Server struct {
	// source is read on every request.
	source Source
}

// NewServer wires the snapshot source into a gRPC handler.
func NewServer(source Source) *Server {
	return &Server{source: source}
}

// GetStatus returns the current device snapshot.
func (s *Server) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snapshot, err := s.source.Load(ctx)
	if err != nil {
		return nil, grpcstatus.Error(codes.Unavailable, "status unavailable")
	}

	response, err := toStruct(snapshot)
	if err != nil {
		return nil, grpcstatus.Error(codes.Internal, "encode status")
	}

	return response, nil
}

// toStruct converts the snapshot into JSON-compatible values.
func toStruct(s *access.Snapshot) (*structpb.Struct, error) {
	if s == nil {
		return structpb.NewStruct(nil)
	}

	return structpb.NewStruct(map[string]any{
		FieldLock:           s.Lock.String(),
		FieldLastGranted:    s.LastGranted,
		FieldLastGrantedAt:  formatTime(s.LastGrantedAt),
		FieldIntruderActive: s.IntruderActive,
		FieldEpisodeID:      s.EpisodeID,
		FieldEpisodes:       float64(s.Episodes),
		FieldRelayOn:        s.RelayOn,
		FieldRelayDeadline:  formatTime(s.RelayDeadline),
		FieldCycles:         float64(s.Cycles),
		FieldUpdatedAt:      formatTime(s.UpdatedAt),
	})
}

// formatTime renders RFC 3339 in UTC, or an empty string for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}
