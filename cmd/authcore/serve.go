package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/app"
	apphttp "github.com/dropDatabas3/authcore/internal/http"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg)
			if err != nil {
				logger.L().Error("startup failed", logger.Err(err))
				return err
			}
			defer a.Close()

			srv := apphttp.NewServer(apphttp.ServerConfig{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     cfg.ReadTimeout(),
				WriteTimeout:    cfg.WriteTimeout(),
				ShutdownTimeout: cfg.ShutdownTimeout(),
			}, a.Handler)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "dirección de escucha (pisa SERVER_ADDR/PORT)")
	return cmd
}
