// Command server runs the cloud relay: it accepts renderer and controller
// sockets on /ws, forwards input and state between them per room, and
// serves the controller page and the audit log views.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/badenpong/cloud-relay/internal/auditlog"
	"github.com/badenpong/cloud-relay/internal/config"
	"github.com/badenpong/cloud-relay/internal/httpapi"
	"github.com/badenpong/cloud-relay/internal/hub"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load() // optional .env for local runs
	cfg := config.FromEnv()

	logger := newLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logs := auditlog.New(cfg.MaxLogs)
	h := hub.NewHub(ctx, logger, logs)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: httpapi.SetupRoutes(h, cfg, logs, logger),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("relay listening",
			zap.String("addr", cfg.Addr),
			zap.String("default_room", cfg.DefaultRoom))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		h.Inbox() <- hub.ShutdownHub{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("relay exited", zap.Error(err))
	}
	logger.Info("relay stopped")
}

func newLogger(env string) *zap.Logger {
	if env == "dev" {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return l
}
