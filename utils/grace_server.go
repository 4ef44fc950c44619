package utils

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const (
	DEFAULT_READ_TIMEOUT     = 60 * time.Second
	DEFAULT_WRITE_TIMEOUT    = DEFAULT_READ_TIMEOUT
	DEFAULT_SHUTDOWN_TIMEOUT = 30 * time.Second
)

// Server wraps http.Server to support graceful shutdown followed by resource cleanup.
type Server struct {
	*http.Server

	log        *zap.Logger
	listener   net.Listener
	signalChan chan os.Signal
	onShutdown []func() error
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		Server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  DEFAULT_READ_TIMEOUT,
			WriteTimeout: DEFAULT_WRITE_TIMEOUT,
		},
		log:        log,
		signalChan: make(chan os.Signal, 1),
	}
}

// OnShutdown registers cleanup run after the HTTP server has drained, in registration order.
func (srv *Server) OnShutdown(fn func() error) {
	srv.onShutdown = append(srv.onShutdown, fn)
}

// ListenAndServe serves on tcp until SIGINT/SIGTERM or ctx is done, then shuts down gracefully.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	addr := srv.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		srv.runShutdownHooks()
		return fmt.Errorf("net.Listen error: %w", err)
	}
	srv.listener = ln
	return srv.serve(ctx)
}

func (srv *Server) serve(ctx context.Context) error {
	signal.Notify(srv.signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(srv.signalChan)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Server.Serve(srv.listener)
	}()

	var serveErr error
	select {
	case sig := <-srv.signalChan:
		srv.log.Info("received signal, graceful shutting down HTTP server", zap.String("signal", sig.String()))
	case <-ctx.Done():
		srv.log.Info("context done, graceful shutting down HTTP server")
	case serveErr = <-errCh:
	}

	srv.shutdownHTTPServer()
	if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		return serveErr
	}
	return nil
}

func (srv *Server) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DEFAULT_SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		srv.log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		srv.log.Info("HTTP server shutdown success")
	}
	srv.runShutdownHooks()
}

func (srv *Server) runShutdownHooks() {
	for _, fn := range srv.onShutdown {
		if err := fn(); err != nil {
			srv.log.Warn("shutdown hook failed", zap.Error(err))
		}
	}
}
