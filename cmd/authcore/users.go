package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/authcore/internal/app"
	"github.com/dropDatabas3/authcore/internal/config"
	"github.com/dropDatabas3/authcore/internal/domain/repository"
	"github.com/dropDatabas3/authcore/internal/security/password"
)

func newUsersCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administración de usuarios (postgres)",
	}
	cmd.AddCommand(newUsersCreateCmd(g))
	return cmd
}

func newUsersCreateCmd(g *globalFlags) *cobra.Command {
	var (
		email string
		pass  string
		roles []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un usuario con password y roles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverPostgres {
				return errNeedsPostgres
			}
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if err := password.DefaultPolicy.Check(pass); err != nil {
				return err
			}
			phc, err := password.Hash(password.Default, pass)
			if err != nil {
				return err
			}

			s, err := app.OpenPostgres(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := s.Users().Create(cmd.Context(), repository.CreateUserInput{
				Email:        email,
				PasswordHash: phc,
				Roles:        append([]string{repository.RoleUser}, roles...),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "id=%s email=%s roles=%s\n", u.ID, u.Email, strings.Join(u.Roles, ","))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	cmd.Flags().StringVar(&pass, "password", "", "password en claro")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "roles extra (repetible)")
	return cmd
}
