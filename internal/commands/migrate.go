package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kyat/internal/database"
)

func (a *app) newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, dialect, err := a.config()
			if err != nil {
				return err
			}

			if err := database.Migrate(dialect, cfg.ConnectionString()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s schema is up to date\n", dialect)

			return nil
		},
	}
}
