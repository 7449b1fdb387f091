// Package commands implements the kyatctl admin CLI.
package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/kyat/internal/config"
	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/kyat/internal/ledger/store"
	"github.com/MrJamesThe3rd/kyat/internal/user"
	userStore "github.com/MrJamesThe3rd/kyat/internal/user/store"
)

type app struct {
	in     io.Reader
	out    io.Writer
	dbPath string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	rootCmd := &cobra.Command{
		Use:   "kyatctl",
		Short: "Administer a Kyat ledger database",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database file (overrides DB_PATH)")

	rootCmd.AddCommand(
		a.newMigrateCommand(),
		a.newUserCommand(),
		a.newExportCommand(),
		a.newImportCommand(),
		a.newClosuresCommand(),
	)

	return rootCmd
}

type services struct {
	db      *sql.DB
	users   *user.Service
	lookup  *userStore.Store
	ledger  *ledger.Service
	export  *export.Service
	imports *importer.Service
}

func (a *app) config() (*config.Config, database.Dialect, error) {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return nil, "", err
	}

	if a.dbPath != "" {
		cfg.DB.Path = a.dbPath
	}

	dialect, err := cfg.Dialect()

	return cfg, dialect, err
}

// open migrates the database and wires the services the commands need.
func (a *app) open() (*services, error) {
	cfg, dialect, err := a.config()
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	dsn := cfg.ConnectionString()

	if err := database.Migrate(dialect, dsn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := database.New(dialect, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	users := userStore.New(db, dialect)
	ledgerService := ledger.NewService(ledgerStore.New(db, dialect), ledger.WithLocation(loc))

	return &services{
		db:     db,
		users:  user.NewService(users),
		lookup: users,
		ledger: ledgerService,
		export: export.NewService(ledgerService, export.Options{
			PDFEnabled: cfg.Export.PDFEnabled,
			FontPath:   cfg.Export.FontPath,
			FontDirs:   cfg.Export.FontDirs,
		}),
		imports: importer.NewService(ledgerService),
	}, nil
}

func (s *services) Close() error {
	return s.db.Close()
}

// cursor returns a cursor for username positioned on p.
func (s *services) cursor(ctx context.Context, username string, p ledger.Period) (*ledger.Cursor, error) {
	u, err := s.lookup.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", username, err)
	}

	return &ledger.Cursor{UserID: u.ID, Period: p}, nil
}
