package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezinne-pharmarcy/backend/internal/config"
	"github.com/ezinne-pharmarcy/backend/internal/domain"
	"github.com/ezinne-pharmarcy/backend/internal/observability"
	"github.com/ezinne-pharmarcy/backend/internal/persistence"
	"github.com/ezinne-pharmarcy/backend/internal/repository"
	"github.com/ezinne-pharmarcy/backend/internal/service"
)

var ownerFlags struct {
	email     string
	password  string
	firstName string
	lastName  string
}

var ownerCmd = &cobra.Command{
	Use:   "owner",
	Short: "Manage owner accounts",
}

var ownerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the first store-admin owner",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(ownerFlags.email))
		if email == "" || len(ownerFlags.password) < 8 {
			return fmt.Errorf("--email and a --password of at least 8 characters are required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required")
		}
		logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		pg, err := persistence.NewPostgres(cmd.Context(), cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		accounts := service.NewAccountService(service.AccountDependencies{
			Accounts:   repository.NewAccountRepository(pg.DB()),
			Sessions:   repository.NewSessionStore(pg.DB()),
			Logger:     logger,
			BcryptCost: cfg.Auth.BcryptCost,
		})
		owner, err := accounts.BootstrapOwner(cmd.Context(), email, ownerFlags.password, domain.Profile{
			FirstName: ownerFlags.firstName,
			LastName:  ownerFlags.lastName,
		})
		if errors.Is(err, service.ErrAlreadyBootstrapped) {
			return fmt.Errorf("%w; create further owners through the API", err)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created owner %s (%s)\n", owner.Email, owner.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ownerCmd)
	ownerCmd.AddCommand(ownerCreateCmd)

	ownerCreateCmd.Flags().StringVar(&ownerFlags.email, "email", "", "owner email")
	ownerCreateCmd.Flags().StringVar(&ownerFlags.password, "password", "", "owner password")
	ownerCreateCmd.Flags().StringVar(&ownerFlags.firstName, "first-name", "", "first name")
	ownerCreateCmd.Flags().StringVar(&ownerFlags.lastName, "last-name", "", "last name")
}
