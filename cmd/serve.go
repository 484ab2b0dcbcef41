package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "care-tasks.com/care-tasks/internal/configs"
	httpapi "care-tasks.com/care-tasks/internal/http"
	middleware "care-tasks.com/care-tasks/internal/http/middlewares"
	"care-tasks.com/care-tasks/internal/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Prepares the schema and serves the team, task and attendance API",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cfg.RequireJWTSecret(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.guard.EnsureReady(ctx); err != nil {
			return err
		}

		var counter ratelimit.Counter = ratelimit.NewMemoryCounter()
		if a.cfg.RedisEnabled() {
			redisClient, err := config.NewRedisClient(a.cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer redisClient.Close()
			counter = ratelimit.NewRedisCounter(redisClient, a.cfg.RedisRateLimitPrefix)
		}

		handler := httpapi.NewHandler(a.roster, a.tasks, a.executions, a.attendance, a.cfg.ImportMaxBytes)

		e := echo.New()
		e.HideBanner = true
		e.HTTPErrorHandler = httpapi.ErrorHandler(e, a.logger)
		httpapi.Register(e, handler,
			middleware.RateLimiter(counter, a.cfg.RateLimit, time.Minute, a.logger),
			middleware.Identity([]byte(a.cfg.JWTSecret), a.roster),
		)

		go func() {
			a.logger.Info("HTTP server listening", zap.String("addr", a.cfg.AppURL))
			if err := e.Start(a.cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("server stopped", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()

		echoCtx, cancel := context.WithTimeout(context.Background(), time.Duration(a.cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := e.Shutdown(echoCtx); err != nil {
			a.logger.Warn("HTTP server shutdown", zap.Error(err))
		}

		a.logger.Info("HTTP server shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
