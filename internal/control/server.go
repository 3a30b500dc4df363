package control

import (
	"context"
	"net"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	apperr "github.com/GriffinCanCode/sepia/internal/errors"
	"github.com/GriffinCanCode/sepia/internal/trace"
)

// Server reports SERVING while the capture loop runs and NOT_SERVING
// before it starts and after it stops. It implements recorder.Lifecycle.
type Server struct {
	grpc   *grpc.Server
	health *health.Server

	mu      sync.RWMutex
	lastErr error
}

// New creates a control server with trace interceptors installed.
func New() *Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(trace.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(trace.StreamServerInterceptor()),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    KeepaliveTime,
			Timeout: KeepaliveTimeout,
		}),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{grpc: gs, health: hs}
}

// Health returns the health service, for in-process checks.
func (s *Server) Health() healthpb.HealthServer { return s.health }

// Started marks the recorder as serving.
func (s *Server) Started() {
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
}

// Stopped marks the recorder as not serving and records why it stopped.
func (s *Server) Stopped(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()

	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	if err != nil {
		st := status.Convert(err)
		trace.Logger(context.Background()).Warn("recorder stopped with error",
			"grpc_code", st.Code().String(),
			"code", apperr.CodeOf(err).String(),
			"error", err)
	}
}

// LastError returns the error the recorder stopped with, if any.
func (s *Server) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Serve listens on addr until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return apperr.Wrapf(err, apperr.CodeSetup, "listen on %s", addr)
	}
	return s.ServeListener(ctx, lis)
}

// ServeListener serves on lis until ctx is cancelled, then stops gracefully.
func (s *Server) ServeListener(ctx context.Context, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		trace.Logger(ctx).Info("control listening", "addr", lis.Addr().String())
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(ShutdownTimeout):
		s.grpc.Stop()
	}
	return nil
}
