package main

import (
	"context"
	"fmt"

	"github.com/AndersonGC/dryfit/internal/api"
	"github.com/AndersonGC/dryfit/internal/app"
	"github.com/AndersonGC/dryfit/internal/auth"
	"github.com/AndersonGC/dryfit/internal/config"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/ratelimit"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/spf13/cobra"
)

// env is what every subcommand works against. It is opened lazily so that
// commands like help never touch the database.
type env struct {
	configDir string
	cfg       config.Config
	log       logging.Logger
	store     repository.Store
	services  api.Services
}

func newRootCmd() *cobra.Command {
	e := &env{}

	root := &cobra.Command{
		Use:   "dryfitctl",
		Short: "Administrative tasks for the DryFit server",
		Long: `dryfitctl runs one-off administrative tasks against the database the
server is configured for (config.yaml, .env and environment variables).

QUICK START:

  $ dryfitctl migrate                                   # Apply schema / indexes
  $ dryfitctl seed categories                           # Insert default categories
  $ dryfitctl coach create --email maria@box.com --name "Maria Silva" --password s3cret!
  $ dryfitctl invite generate --coach maria@box.com     # Print a fresh invite code`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.store != nil {
				return e.store.Close(cmd.Context())
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&e.configDir, "config", ".", "directory containing config.yaml")

	root.AddCommand(
		newMigrateCmd(e),
		newSeedCmd(e),
		newCoachCmd(e),
		newInviteCmd(e),
	)
	return root
}

// open loads the configuration and connects to the store. migrate forces
// schema setup regardless of database.migrate_on_start.
func (e *env) open(ctx context.Context, migrate bool) error {
	cfg, err := config.LoadConfig(e.configDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	e.cfg = cfg
	e.log = logging.New(cfg.Log.Level, "text")

	dbCfg := cfg.Database
	dbCfg.MigrateOnStart = dbCfg.MigrateOnStart || migrate
	e.store, err = app.OpenStore(ctx, dbCfg, e.log)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", dbCfg.Driver, err)
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.VerificationExpiration)
	if err != nil {
		return err
	}
	mail, err := app.NewMailer(cfg.SMTP, e.log)
	if err != nil {
		return err
	}
	e.services = app.NewServices(e.store, tokens, mail, ratelimit.NewRedisLimiter(nil), nil, nil, cfg, e.log)
	return nil
}
