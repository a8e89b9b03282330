package rpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Requester sends one request and waits for exactly one reply.
type Requester interface {
	Send(ctx context.Context, pattern string, req, reply any) error
}

// Client is a connection to one backend service.
type Client struct {
	service string
	conn    *grpc.ClientConn
}

// Dial connects to a backend service at target. The connection is
// established lazily; Send blocks until the service is reachable or the
// context is done.
func Dial(target, service string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	return &Client{service: service, conn: conn}, nil
}

// Send issues a request for the given pattern and decodes the single reply
// into reply. Handler failures come back as errors carrying the original
// message text.
func (c *Client) Send(ctx context.Context, pattern string, req, reply any) error {
	return c.conn.Invoke(ctx, fmt.Sprintf("/%s/%s", c.service, pattern), req, reply)
}

// Close tears down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }
