package observability

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"github.com/benz9527/xrbtree/lib/xlog"
)

// MetricsServer exposes the prometheus scrape endpoint at /metrics.
type MetricsServer struct {
	server   *http.Server
	listener net.Listener
}

func NewMetricsServer(addr string, handler http.Handler, logger xlog.XLogger) (*MetricsServer, error) {
	if handler == nil {
		return nil, ErrNilMetricsHandler
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error(serveErr, "metrics server stopped", zap.String("addr", addr))
		}
	}()
	logger.Info("metrics server started", zap.String("addr", listener.Addr().String()))
	return &MetricsServer{server: srv, listener: listener}, nil
}

func (s *MetricsServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *MetricsServer) Close(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
