package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/taskflow/internal/logger"
	"github.com/julianstephens/taskflow/internal/server"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	Addr string `help:"Listen address (defaults to server_addr from the settings file)."`
}

func (c *ServeCmd) Run(ctx *Context) error {
	if err := ctx.load(); err != nil {
		return err
	}
	defer ctx.Store.Close()

	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.ServerAddr
	}

	srv := server.New(ctx.Service, ctx.UserID)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()
	ctx.printf("Serving on %s (Ctrl+C to stop)\n", addr)

	select {
	case err := <-errCh:
		return err
	case <-sigCtx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
