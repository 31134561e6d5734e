package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	// Import generated docs for swagger.
	_ "github.com/farewatch/farewatch/docs"

	farehttp "github.com/farewatch/farewatch/internal/adapter/http"
	"github.com/farewatch/farewatch/internal/adapter/http/middleware"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fare watch service",
	Long: `Serve starts the long-running service: the HTTP API with the search
trigger endpoint, the Telegram webhook for chat commands, and the Swagger
documentation endpoint.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.close()

		return runServer(app)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServer(app *app) error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = app.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = app.cfg.Server.WriteTimeout

	middleware.Setup(e, app.log.Logger)

	handler := farehttp.NewWatchHandler(farehttp.HandlerConfig{
		Watcher:       app.watcher,
		Notifier:      app.notifier,
		DefaultPlan:   app.plan,
		DefaultChatID: app.cfg.Telegram.ChatID,
		RunTimeout:    app.cfg.Watch.RunTimeout,
		Logger:        app.log.WithComponent("http"),
	})
	farehttp.RegisterRoutes(e, handler)

	addr := fmt.Sprintf(":%d", app.cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		app.log.Info().
			Str("address", addr).
			Str("route", app.plan.Route()).
			Msg("Starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	app.log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		app.log.Error().Err(err).Msg("Error during server shutdown")
		return err
	}

	app.log.Info().Msg("Server stopped")
	return nil
}
