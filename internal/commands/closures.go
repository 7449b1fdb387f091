package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

func (a *app) newClosuresCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "closures",
		Short: "List closed months, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			cur, err := svc.cursor(cmd.Context(), username, ledger.Period{})
			if err != nil {
				return err
			}

			cs, err := svc.ledger.Closures(cmd.Context(), cur.UserID)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MONTH\tTOTAL\tCLOSED AT")

			for _, c := range cs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Period(), numfmt.FormatAmount(c.Total), c.CreatedAt.Format("2006-01-02 15:04"))
			}

			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "account (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
