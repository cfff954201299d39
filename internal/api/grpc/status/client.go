package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultCallTimeout bounds one GetStatus call.
const DefaultCallTimeout = 5 * time.Second

var errAddressRequired = errors.New("address must be provided")

// Client queries a running door-guard.
type Client struct {
	// conn is the underlying gRPC connection.
	conn *grpc.ClientConn
	// callTimeout is applied to every call.
	callTimeout time.Duration
	// dialOptions are appended to the defaults.
	dialOptions []grpc.DialOption
}

// Option configures the client.
type Option func(*Client)

// WithCallTimeout sets the per-call timeout.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithDialOptions adds gRPC dial options, e.g. a custom dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *Client) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// Dial creates a client for address. The connection is plaintext; the
// status service is meant for the local network only.
func Dial(address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	client := &Client{callTimeout: DefaultCallTimeout}

	for _, opt := range opts {
		opt(client)
	}

	dialOptions := append(
		[]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())},
		client.dialOptions...,
	)

	conn, err := grpc.NewClient(address, dialOptions...)
	if err != nil {
		return nil, fmt.Errorf("dial door-guard: %w", err)
	}

	client.conn = conn

	return client, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetStatus fetches the device snapshot.
func (c *Client) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	response := new(structpb.Struct)
	if err := c.conn.Invoke(callCtx, GetStatusMethod, new(emptypb.Empty), response); err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return response, nil
}

// callContext applies the call timeout when set.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
