package server

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/oneshot/lib/transform"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/errgroup"
	"net"
	"net/http"
	"time"
)

var Logger = logger.GetLogger(common.LoggerServer)

// metricsShutdownTimeout bounds the graceful stop of the /metrics endpoint
const metricsShutdownTimeout = 2 * time.Second

// Server ties a transport to the configured transform chain and the metrics endpoint
type Server struct {
	config    common.ServerConfig
	transport transport.IServerTransport
}

// NewServer creates a new oneshot server.
// The transform named in config is wrapped in the logging and metrics middlewares,
// followed by the given middlewares (outermost first).
//
// Usage:
//
//	s, err := server.NewServer(config, tcp.NewTCPServerTransport())
//	if err != nil {
//		return err
//	}
//	return s.Serve(ctx) // returns nil once ctx is cancelled
func NewServer(config common.ServerConfig, t transport.IServerTransport, mws ...transform.Middleware) (*Server, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	if err := common.InitLoggers(config.LogLevel); err != nil {
		return nil, err
	}

	fn, err := transform.Lookup(config.Transform)
	if err != nil {
		return nil, err
	}

	chain := append([]transform.Middleware{
		transform.Logging(Logger),
		transform.Metrics(config.Transform),
	}, mws...)
	t.RegisterHandler(transform.Chain(fn, chain...))

	Logger.Infof("Created oneshot server")
	Logger.Infof("%s", config.String())

	return &Server{
		config:    config,
		transport: t,
	}, nil
}

// Serve runs the transport (and the metrics endpoint, if configured) until ctx is
// cancelled or one of them fails. A fatal transport error is returned as is.
func (s *Server) Serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.transport.Listen(ctx, s.config)
	})

	if s.config.MetricsEndpoint != "" {
		metricsServer := common.NewMetricsServer(s.config.MetricsEndpoint)

		g.Go(func() error {
			Logger.Infof("Serving metrics on %s/metrics", s.config.MetricsEndpoint)
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics endpoint failed: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Addr returns the address the transport is bound to, nil before it is bound
func (s *Server) Addr() net.Addr {
	return s.transport.Addr()
}
