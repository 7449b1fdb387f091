package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/kyat/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/kyat/internal/config"
	"github.com/MrJamesThe3rd/kyat/internal/database"
	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/kyat/internal/ledger/store"
	"github.com/MrJamesThe3rd/kyat/internal/user"
	userStore "github.com/MrJamesThe3rd/kyat/internal/user/store"
)

type View int

const (
	ViewLogin View = iota
	ViewLedger
	ViewExport
	ViewImport
	ViewClosures
)

type model struct {
	svc view.Services

	currentView View

	loginView    view.LoginModel
	ledgerView   view.LedgerModel
	exportView   view.ExportModel
	importView   view.ImportModel
	closuresView view.ClosuresModel

	size tea.WindowSizeMsg
}

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dialect, err := cfg.Dialect()
	if err != nil {
		slog.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(dialect, cfg.ConnectionString()); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	db, err := database.New(dialect, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	ledgerSvc := ledger.NewService(ledgerStore.New(db, dialect), ledger.WithLocation(loc))

	svc := view.Services{
		Users:  user.NewService(userStore.New(db, dialect)),
		Ledger: ledgerSvc,
		Export: export.NewService(ledgerSvc, export.Options{
			PDFEnabled: cfg.Export.PDFEnabled,
			FontPath:   cfg.Export.FontPath,
			FontDirs:   cfg.Export.FontDirs,
		}),
		Import: importer.NewService(ledgerSvc),
	}

	return model{
		svc:         svc,
		currentView: ViewLogin,
		loginView:   view.NewLoginModel(svc.Users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.size = msg

	case view.LoggedInMsg:
		m.currentView = ViewLedger
		m.ledgerView = view.NewLedgerModel(m.svc, m.svc.Ledger.NewCursor(msg.User.ID))

		return m, tea.Batch(m.ledgerView.Init(), m.resize())

	case view.OpenExportMsg:
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.svc.Export, msg.Cursor)

		return m, m.exportView.Init()

	case view.OpenImportMsg:
		m.currentView = ViewImport
		m.importView = view.NewImportModel(m.svc.Import, msg.Cursor)

		return m, m.importView.Init()

	case view.OpenClosuresMsg:
		m.currentView = ViewClosures
		m.closuresView = view.NewClosuresModel(m.svc.Ledger, msg.Cursor)

		return m, m.closuresView.Init()

	case view.ImportDoneMsg:
		m.currentView = ViewLedger
		cur, status := msg.Cursor, msg.Status

		return m, func() tea.Msg { return view.CursorMsg{Cursor: cur, Status: status} }

	case view.BackMsg:
		m.currentView = ViewLedger
		return m, m.ledgerView.Init()
	}

	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewLedger:
		var newModel tea.Model
		newModel, cmd = m.ledgerView.Update(msg)
		m.ledgerView = newModel.(view.LedgerModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewClosures:
		var newModel tea.Model
		newModel, cmd = m.closuresView.Update(msg)
		m.closuresView = newModel.(view.ClosuresModel)
	}

	return m, cmd
}

// resize replays the last window size so a freshly built screen can lay
// itself out.
func (m model) resize() tea.Cmd {
	if m.size.Width == 0 {
		return nil
	}

	size := m.size

	return func() tea.Msg { return size }
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewLedger:
		return m.ledgerView.View()
	case ViewExport:
		return m.exportView.View()
	case ViewImport:
		return m.importView.View()
	case ViewClosures:
		return m.closuresView.View()
	}

	return "Unknown View"
}

func main() {
	m := initialModel()

	// Log output would corrupt the terminal UI.
	f, err := tea.LogToFile(filepath.Join(os.TempDir(), "kyat-tui.log"), "")
	if err == nil {
		defer f.Close()

		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run TUI: %v\n", err)
		os.Exit(1)
	}
}
