// Command authcore es el servidor de autorización y sus comandos de operación.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/app"
	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

type globalFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "authcore",
		Short:         "Servidor OAuth2 (authorization code + PKCE, refresh rotation, JWKS)",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("AUTHCORE_CONFIG"), "ruta a config.yaml (env AUTHCORE_CONFIG)")
	root.PersistentFlags().StringVar(&g.envFile, "env-file", ".env", "archivo .env opcional")

	root.AddCommand(
		newServeCmd(g),
		newMigrateCmd(g),
		newKeysCmd(g),
		newUsersCmd(g),
		newClientsCmd(g),
	)
	return root
}

// load lee .env (si existe), la config y arranca el logger.
func (g *globalFlags) load() (*config.Config, error) {
	if g.envFile != "" {
		if _, err := os.Stat(g.envFile); err == nil {
			if err := godotenv.Load(g.envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", g.envFile, err)
			}
		}
	}
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	env := "dev"
	if cfg.IsProduction() {
		env = "prod"
	}
	logger.Init(logger.Config{
		Env:         env,
		Level:       cfg.Log.Level,
		ServiceName: "authcore",
		Version:     app.Version,
	})
	return cfg, nil
}
