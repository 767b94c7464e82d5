package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hilthontt/ragtp/internal/infrastructure/logging"
)

// Run binds srv.Addr, logs the bound port and serves until ctx is done,
// then drains in-flight requests for at most shutdownTimeout.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger logging.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	shutdown := make(chan error, 1)

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info(logging.General, logging.Shutdown, "shutting down server", map[logging.ExtraKey]any{
			logging.Addr: ln.Addr().String(),
		})

		shutdown <- srv.Shutdown(shutdownCtx)
	}()

	logger.Info(logging.General, logging.Startup, "Server started", map[logging.ExtraKey]any{
		logging.Port: ln.Addr().(*net.TCPAddr).Port,
		logging.Addr: ln.Addr().String(),
	})

	err = srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdown; err != nil {
		return err
	}

	logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		logging.Addr: ln.Addr().String(),
	})

	return nil
}
