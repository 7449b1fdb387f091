package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *app) newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	cmd.AddCommand(a.newUserAddCommand())

	return cmd
}

func (a *app) newUserAddCommand() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if password == "" {
				fmt.Fprint(out, "Password: ")

				var err error

				password, err = readPassword(a.in)
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}

				fmt.Fprintln(out)
			}

			if strings.TrimSpace(password) == "" {
				return fmt.Errorf("password cannot be empty")
			}

			svc, err := a.open()
			if err != nil {
				return err
			}
			defer svc.Close()

			u, err := svc.users.Create(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "user %s created (%s)\n", u.Username, u.ID)

			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func readPassword(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}

		return string(b), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}
