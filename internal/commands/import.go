package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

func (a *app) newImportCommand() *cobra.Command {
	var (
		username string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a text statement into an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			cur, err := svc.cursor(cmd.Context(), username, ledger.Period{})
			if err != nil {
				return err
			}

			res, err := svc.imports.Import(cmd.Context(), cur, f, force)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(res.Conflicts) > 0 && !force {
				for _, c := range res.Conflicts {
					e := c.Existing
					fmt.Fprintf(out, "conflict: %s %s %s %s\n",
						e.Key(), e.OccurredAt.Format("2006-01-02 15:04"), e.Description, numfmt.FormatAmount(e.Amount))
				}

				return fmt.Errorf("%d entries already exist, nothing imported (use --force to skip them)", len(res.Conflicts))
			}

			fmt.Fprintf(out, "imported %d entries, skipped %d\n", len(res.Imported), len(res.Conflicts))

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "account to import into (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().BoolVar(&force, "force", false, "skip entries that already exist instead of aborting")

	return cmd
}
