package grpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/nadzzz/owlskill/internal/config"
	"github.com/nadzzz/owlskill/internal/skill"
	"github.com/nadzzz/owlskill/internal/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func launchEnvelope(appID string) *skill.RequestEnvelope {
	return &skill.RequestEnvelope{
		Version: "1.0",
		Context: &skill.Context{System: skill.System{Application: skill.Application{ApplicationID: appID}}},
		Request: skill.Request{Type: skill.LaunchRequest, RequestID: "req-1", Locale: "en-US"},
	}
}

// startServer serves the transport on an in-memory listener and returns a
// client connection to it.
func startServer(t *testing.T, verifier skill.Verifier, handler transport.Handler) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	tr := New(config.GRPCConfig{}, verifier)
	assert.Equal(t, "grpc", tr.Name())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tr.Serve(ctx, lis, handler) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("Serve did not return after cancel")
		}
	})
	return conn
}

func TestInvoke(t *testing.T) {
	var got *skill.RequestEnvelope
	conn := startServer(t, skill.Verifier{ApplicationID: "amzn1.ask.skill.owl"},
		func(_ context.Context, env *skill.RequestEnvelope) (*skill.ResponseEnvelope, error) {
			got = env
			return &skill.ResponseEnvelope{
				Version:  "1.0",
				Response: skill.NewResponseBuilder().Speak("hello").Response(),
			}, nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := Invoke(ctx, conn, launchEnvelope("amzn1.ask.skill.owl"))
	require.NoError(t, err)
	require.NotNil(t, resp.Response)
	assert.Equal(t, "hello", resp.Response.OutputSpeech.Text)
	require.NotNil(t, got)
	assert.Equal(t, "req-1", got.Request.RequestID)

	_, err = Invoke(ctx, conn, launchEnvelope("amzn1.ask.skill.other"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestInvokeHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"internal", errors.New("boom"), codes.Internal},
		{"invalid", skill.ErrInvalidRequest, codes.InvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conn := startServer(t, skill.Verifier{},
				func(context.Context, *skill.RequestEnvelope) (*skill.ResponseEnvelope, error) {
					return nil, tc.err
				})

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := Invoke(ctx, conn, launchEnvelope(""))
			assert.Equal(t, tc.want, status.Code(err))
		})
	}
}

func TestHealthService(t *testing.T) {
	conn := startServer(t, skill.Verifier{},
		func(context.Context, *skill.RequestEnvelope) (*skill.ResponseEnvelope, error) {
			return &skill.ResponseEnvelope{}, nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
