// Package grpc implements the gRPC transport for owlskill.
//
// This transport exposes the owlskill.v1.Skill service, whose single unary
// method Invoke takes a request envelope and returns the response envelope.
// Messages travel as JSON under the "json" content-subtype, so callers need
// no generated stubs. The standard gRPC health service is registered next to it.
package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/nadzzz/owlskill/internal/config"
	"github.com/nadzzz/owlskill/internal/skill"
	"github.com/nadzzz/owlskill/internal/transport"
)

const (
	// ServiceName is the fully qualified gRPC service name.
	ServiceName = "owlskill.v1.Skill"

	// InvokeMethod is the full method name of Skill.Invoke.
	InvokeMethod = "/" + ServiceName + "/Invoke"

	// ContentSubtype selects the JSON codec on a call.
	ContentSubtype = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec marshals messages with encoding/json.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return ContentSubtype }

// SkillServer is the server API of owlskill.v1.Skill.
type SkillServer interface {
	Invoke(ctx context.Context, env *skill.RequestEnvelope) (*skill.ResponseEnvelope, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SkillServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "owlskill/v1/skill.proto",
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(skill.RequestEnvelope)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SkillServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: InvokeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(SkillServer).Invoke(ctx, req.(*skill.RequestEnvelope))
	}
	return interceptor(ctx, in, info, handler)
}

// Invoke calls owlskill.v1.Skill/Invoke on conn.
func Invoke(ctx context.Context, conn grpc.ClientConnInterface, env *skill.RequestEnvelope, opts ...grpc.CallOption) (*skill.ResponseEnvelope, error) {
	out := new(skill.ResponseEnvelope)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(ContentSubtype)}, opts...)
	if err := conn.Invoke(ctx, InvokeMethod, env, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// service adapts a transport.Handler to SkillServer.
type service struct {
	verifier skill.Verifier
	handler  transport.Handler
}

func (s *service) Invoke(ctx context.Context, env *skill.RequestEnvelope) (*skill.ResponseEnvelope, error) {
	if err := s.verifier.Verify(env); err != nil {
		slog.Warn("grpc request rejected", "error", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	resp, err := s.handler(ctx, env)
	if err != nil {
		if errors.Is(err, skill.ErrInvalidRequest) {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		slog.Error("grpc skill request failed", "request_id", env.Request.RequestID, "error", err)
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp, nil
}

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	verifier skill.Verifier

	mu     sync.Mutex
	server *grpc.Server
	health *health.Server
}

// New creates a new gRPC transport.
func New(cfg config.GRPCConfig, verifier skill.Verifier) *Transport {
	return &Transport{port: cfg.Port, verifier: verifier}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server on the configured port.
func (t *Transport) Listen(ctx context.Context, handler transport.Handler) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, handler)
}

// Serve accepts connections on lis until ctx is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, handler transport.Handler) error {
	srv := grpc.NewServer()
	srv.RegisterService(&serviceDesc, &service{verifier: t.verifier, handler: handler})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	t.mu.Lock()
	t.server = srv
	t.health = hs
	t.mu.Unlock()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			slog.Info("grpc transport shutting down")
			hs.Shutdown()
			srv.GracefulStop()
		case <-done:
		}
	}()

	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.mu.Lock()
	srv, hs := t.server, t.health
	t.mu.Unlock()
	if hs != nil {
		hs.Shutdown()
	}
	if srv != nil {
		srv.GracefulStop()
	}
	return nil
}
