package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

const (
	defaultPort           = 50051
	defaultMaxRecvMsgSize = 1 << 20
	defaultIdleTimeout    = 5 * time.Minute
)

type Option func(*Options)

type Options struct {
	port              int
	listener          net.Listener
	logger            *zap.Logger
	reflection        bool
	enableLogging     bool
	maxRecvMsgSize    int
	idleTimeout       time.Duration
	unaryInterceptors []grpc.UnaryServerInterceptor
}

func WithPort(port int) Option {
	return func(o *Options) { o.port = port }
}

// WithListener serves on lis instead of listening on the configured port.
func WithListener(lis net.Listener) Option {
	return func(o *Options) { o.listener = lis }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(o *Options) { o.reflection = enabled }
}

func WithLogging(enabled bool) Option {
	return func(o *Options) { o.enableLogging = enabled }
}

// WithMaxRecvMsgSize caps inbound messages. Widget events are small.
func WithMaxRecvMsgSize(n int) Option {
	return func(o *Options) { o.maxRecvMsgSize = n }
}

// WithIdleTimeout closes client connections idle for longer than d.
func WithIdleTimeout(d time.Duration) Option {
	return func(o *Options) { o.idleTimeout = d }
}

// WithUnaryInterceptors appends interceptors after logging and recovery.
func WithUnaryInterceptors(interceptors ...grpc.UnaryServerInterceptor) Option {
	return func(o *Options) { o.unaryInterceptors = append(o.unaryInterceptors, interceptors...) }
}

type Server struct {
	grpcServer   *grpc.Server
	lis          net.Listener
	logger       *zap.Logger
	healthServer *health.Server
}

// New builds the server and binds its listener. Nothing is served until
// Start is called.
func New(opts ...Option) (*Server, error) {
	options := &Options{
		port:           defaultPort,
		maxRecvMsgSize: defaultMaxRecvMsgSize,
		idleTimeout:    defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	lis, err := listen(options)
	if err != nil {
		return nil, err
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptorChain(options, logger)...),
		grpc.MaxRecvMsgSize(options.maxRecvMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{MaxConnectionIdle: options.idleTimeout}),
	)
	if options.reflection {
		reflection.Register(grpcServer)
	}

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	return &Server{
		grpcServer:   grpcServer,
		lis:          lis,
		logger:       logger.Named("grpc-server"),
		healthServer: healthServer,
	}, nil
}

func listen(o *Options) (net.Listener, error) {
	if o.listener != nil {
		return o.listener, nil
	}
	if o.port < 1 || o.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 1 and 65535", o.port)
	}
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", o.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", o.port, err)
	}
	return lis, nil
}

// interceptorChain puts logging outermost so recovered panics are still
// logged with their final status.
func interceptorChain(o *Options, logger *zap.Logger) []grpc.UnaryServerInterceptor {
	var chain []grpc.UnaryServerInterceptor
	if o.enableLogging {
		chain = append(chain, LoggingInterceptor(logger))
	}
	chain = append(chain, RecoveryInterceptor(logger))
	return append(chain, o.unaryInterceptors...)
}

// RegisterServiceWithHealth registers a service and reports it as serving.
func (s *Server) RegisterServiceWithHealth(serviceName string, register func(s *grpc.Server)) {
	register(s.grpcServer)
	if serviceName == "" {
		return
	}
	s.healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("registered service with health check", zap.String("service", serviceName))
}

// SetServiceHealth updates the health status of a specific service.
func (s *Server) SetServiceHealth(serviceName string, st healthpb.HealthCheckResponse_ServingStatus) {
	s.healthServer.SetServingStatus(serviceName, st)
	s.logger.Info("updated service health",
		zap.String("service", serviceName),
		zap.String("status", st.String()))
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	addr := s.lis.Addr().String()
	go func() {
		if err := s.grpcServer.Serve(s.lis); err != nil {
			s.logger.Error("gRPC server failed", zap.Error(err))
		}
	}()
	s.logger.Info("gRPC server started", zap.String("addr", addr))
}

// Shutdown marks every service not serving, then drains in-flight calls
// until ctx expires and stops hard after that.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("forced shutdown due to timeout")
		s.grpcServer.Stop()
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
