package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func startServer(t *testing.T, service string, register func(*Server)) *Client {
	lis := bufconn.Listen(bufSize)

	srv := NewServer(service, zaptest.NewLogger(t))
	register(srv)

	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := Dial("passthrough:///bufnet", service,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestSend_RoundTrip(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("echo", func(_ context.Context, data json.RawMessage) (any, error) {
			var payload map[string]any
			if err := json.Unmarshal(data, &payload); err != nil {
				return nil, err
			}
			return payload, nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reply map[string]any
	err := client.Send(ctx, "echo", map[string]any{"title": "New Task", "completed": false}, &reply)

	require.NoError(t, err)
	assert.Equal(t, "New Task", reply["title"])
	assert.Equal(t, false, reply["completed"])
}

func TestSend_RawReplyRelayedVerbatim(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("fixed", func(context.Context, json.RawMessage) (any, error) {
			return json.RawMessage(`{"id":6,"title":"New Task"}`), nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	err := client.Send(ctx, "fixed", struct{}{}, &raw)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":6,"title":"New Task"}`, string(raw))
}

func TestSend_EmptyPayload(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("inspect", func(_ context.Context, data json.RawMessage) (any, error) {
			return map[string]string{"received": string(data)}, nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var reply map[string]string
	require.NoError(t, client.Send(ctx, "inspect", struct{}{}, &reply))
	assert.Equal(t, "{}", reply["received"])
}

func TestSend_NullReply(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("nothing", func(context.Context, json.RawMessage) (any, error) {
			return nil, nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	require.NoError(t, client.Send(ctx, "nothing", struct{}{}, &raw))
	assert.Equal(t, "null", string(raw))
}

func TestSend_HandlerErrorMessagePreserved(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("fail", func(context.Context, json.RawMessage) (any, error) {
			return nil, errors.New("store exploded")
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	err := client.Send(ctx, "fail", struct{}{}, &raw)

	require.Error(t, err)
	assert.Equal(t, "store exploded", status.Convert(err).Message())
}

func TestSend_UnknownPattern(t *testing.T) {
	client := startServer(t, "echoservice", func(srv *Server) {
		srv.Handle("known", func(context.Context, json.RawMessage) (any, error) {
			return nil, nil
		})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var raw json.RawMessage
	err := client.Send(ctx, "unknown_pattern", struct{}{}, &raw)

	require.Error(t, err)
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
