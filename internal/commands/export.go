package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

func (a *app) newExportCommand() *cobra.Command {
	var (
		username string
		month    string
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a month statement to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			var p ledger.Period
			if month != "" {
				if p, err = ledger.ParsePeriod(month); err != nil {
					return err
				}
			}

			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			if month == "" {
				p = svc.ledger.CurrentPeriod()
			}

			cur, err := svc.cursor(cmd.Context(), username, p)
			if err != nil {
				return err
			}

			doc, err := svc.export.Render(cmd.Context(), *cur, p, f)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = doc.Filename
			}

			if err := os.WriteFile(outPath, doc.Body, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}

			if doc.Warning != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), doc.Warning)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "account to export (required)")
	_ = cmd.MarkFlagRequired("user")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&format, "format", string(export.FormatText), "txt or pdf")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output file (default: summary_<year>_<MM>.<format>)")

	return cmd
}
