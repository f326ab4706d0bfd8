package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"aliados/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		activity, goals := rt.engine.Sizes()
		rt.log.Info("datasets ready", map[string]interface{}{"activity_rows": activity, "goal_rows": goals})

		srv, err := server.New(rt.cfg, rt.log)
		if err != nil {
			return err
		}

		deps := server.Deps{
			Engine:   rt.engine,
			Auth:     rt.authn,
			Logins:   rt.recorder,
			Gatherer: rt.registry,
		}
		if rt.database != nil {
			deps.Database = rt.database
		}
		if err := srv.RegisterRoutes(ctx, deps); err != nil {
			return err
		}

		flushed := make(chan struct{})
		if rt.flusher != nil {
			go func() {
				rt.flusher.Start(ctx)
				close(flushed)
			}()
		} else {
			close(flushed)
		}

		// Graceful shutdown
		go func() {
			if err := srv.Start(); err != nil {
				rt.log.Error("server error", map[string]interface{}{"error": err.Error()})
				cancel()
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case <-ctx.Done():
		}

		rt.log.Info("shutting down server", nil)
		cancel()
		<-flushed
		if err := srv.Shutdown(); err != nil {
			return err
		}
		rt.log.Info("server exited", nil)
		return nil
	},
}
