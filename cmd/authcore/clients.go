package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/app"
	"github.com/dropDatabas3/authcore/internal/client"
	"github.com/dropDatabas3/authcore/internal/config"
)

func newClientsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Administración de clients (postgres)",
	}
	cmd.AddCommand(newClientsUpsertCmd(g))
	return cmd
}

func newClientsUpsertCmd(g *globalFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Crea o actualiza los clients de un YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverPostgres {
				return errNeedsPostgres
			}
			if file == "" {
				file = cfg.Clients.File
			}
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			list, err := client.LoadFile(file, app.ClientDefaults(cfg))
			if err != nil {
				return err
			}

			s, err := app.OpenPostgres(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer s.Close()

			repo := s.Clients()
			for _, c := range list {
				if err := repo.Upsert(cmd.Context(), c); err != nil {
					return fmt.Errorf("upsert %s: %w", c.ID, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "upserted %s (%d redirect uris)\n", c.ID, len(c.RedirectURIs))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML de clients (default clients.file)")
	return cmd
}
