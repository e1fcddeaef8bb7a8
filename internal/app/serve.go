package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"astroaspects/internal/api"
	"astroaspects/internal/engine"
	"astroaspects/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the chart HTTP API until the context is cancelled or a signal arrives.
func (a *App) Serve(ctx context.Context, listen string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if listen == "" {
		listen = a.Config.HTTP.Listen
	}
	if a.Config.HTTP.Mode != "" {
		gin.SetMode(a.Config.HTTP.Mode)
	}

	return a.withEngine(ctx, func(eng *engine.Engine, _ storage.Repository) error {
		srv := &http.Server{
			Addr:         listen,
			Handler:      api.NewRouter(eng, a.Config.Engine, a.Logger),
			ReadTimeout:  a.Config.HTTP.ReadTimeout,
			WriteTimeout: a.Config.HTTP.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.Logger.Info().Str("listen", listen).Msg("http api listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		err := g.Wait()
		a.Logger.Info().Msg("http api stopped")
		return err
	})
}
