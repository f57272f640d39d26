package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/contractexplorer/internal/server"
)

// ErrProductionBuild is returned by Serve in builds made with the production
// tag.
var ErrProductionBuild = errors.New("the contract explorer is only available in development builds")

// Serve starts the explorer HTTP server and blocks until ctx is cancelled or
// the server fails.
func (a *App) Serve(ctx context.Context) error {
	if !server.Enabled {
		return ErrProductionBuild
	}

	a.logger.Debug("Configuring explorer server.")
	res := a.Reload(ctx)
	a.logger.Info("Contracts ready.", "loaded", len(res.Loaded), "failed", len(res.Failed))

	ln, err := net.Listen("tcp", a.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.config.Listen, err)
	}

	a.httpServer = &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🔭 Contract explorer starting", "address", fmt.Sprintf("http://%s", ln.Addr()))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return a.closeHTTPServer()
	case err, ok := <-errCh:
		if ok {
			a.logger.Error("Explorer server failed unexpectedly", "error", err)
			return err
		}
		return nil
	}
}

func (a *App) closeHTTPServer() error {
	a.logger.Debug("Closing explorer server...")

	if a.httpServer == nil {
		a.logger.Debug("Explorer server was not running.")
		return nil
	}
	srv := a.httpServer
	a.httpServer = nil

	// Create a context with a timeout for the shutdown process.
	ctx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
	defer cancel()

	a.logger.Info("🔭 Shutting down explorer server...")
	if err := srv.Shutdown(ctx); err != nil {
		a.logger.Error("Explorer server shutdown failed", "error", err)
		return err
	}

	a.logger.Debug("Explorer server shut down gracefully.")
	return nil
}
