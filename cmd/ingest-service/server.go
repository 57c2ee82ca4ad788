package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// serve runs the HTTP server and the worker until ctx is done. On shutdown
// the server is drained first while the worker keeps consuming, then the
// worker is stopped.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, startWorker func(context.Context) error, shutdownTimeout time.Duration, logger *slog.Logger) error {
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	g, gctx := errgroup.WithContext(ctx)

	// Request contexts end with gctx, so a producer blocked on a full
	// queue gives up instead of holding Shutdown open.
	srv.BaseContext = func(net.Listener) context.Context { return gctx }

	g.Go(func() error {
		logger.Info("Starting HTTP server",
			slog.String("address", ln.Addr().String()),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return startWorker(workerCtx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		stopWorker()
		if err != nil {
			logger.Error("Server forced to shutdown",
				slog.Any("error", err),
			)
			return err
		}
		return nil
	})

	return g.Wait()
}
