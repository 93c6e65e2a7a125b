// Package cli implements posctl, the operator tool for catalog imports and
// sales exports.
package cli

import (
	"context"
	"io"
	"log"

	"nimbus-pos/internal/config"
	"nimbus-pos/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DSN     string
	Verbose bool
}

// NewRootCommand creates the posctl root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "posctl",
		Short:         "Nimbus POS operator tool",
		Long:          "Import product catalogs into a store and export its sales reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", config.FromEnv().DBConnString, "Postgres connection string (defaults to DB_DSN)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log repository activity to stderr")

	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newReportCommand(opts))

	return cmd
}

func (o *RootOptions) logger(cmd *cobra.Command) *log.Logger {
	if !o.Verbose {
		return log.New(io.Discard, "", 0)
	}
	return log.New(cmd.ErrOrStderr(), "[posctl] ", log.LstdFlags|log.LUTC)
}

func (o *RootOptions) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return db.Connect(ctx, o.DSN, db.PoolOptions{MaxConns: 4, ApplicationName: "posctl"})
}
