package main

import (
	"database/sql"
	"time"

	"github.com/spf13/cobra"

	"github.com/fkhayef/podplanner/internal/config"
	"github.com/fkhayef/podplanner/internal/database"
	"github.com/fkhayef/podplanner/internal/logger"
	"github.com/fkhayef/podplanner/internal/notification"
)

// commandContext carries what every subcommand shares
type commandContext struct {
	databaseURL string
	open        func(url string) (*sql.DB, error)
	now         func() time.Time
	sender      func() (notification.Sender, error)
	mailTimeout time.Duration
}

func newCommandContext() *commandContext {
	cfg := config.Load()
	return &commandContext{
		databaseURL: cfg.DatabaseURL,
		open:        database.NewPostgresConnection,
		now:         time.Now,
		sender: func() (notification.Sender, error) {
			log, err := logger.New(cfg.Env, cfg.LogLevel)
			if err != nil {
				return nil, err
			}
			return notification.NewSender(cfg.SMTP, log), nil
		},
		mailTimeout: cfg.SMTP.Timeout,
	}
}

func (c *commandContext) withDB(fn func(db *sql.DB) error) error {
	db, err := c.open(c.databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "podctl",
		Short:         "PodPlanner maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.databaseURL, "database-url", ctx.databaseURL, "PostgreSQL connection string (defaults to DATABASE_URL)")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newSweepCommand(ctx))
	rootCmd.AddCommand(newMailTestCommand(ctx))

	return rootCmd
}
