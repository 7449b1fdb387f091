package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/user"
)

const dbTimeout = 5 * time.Second

// Services are shared by every screen.
type Services struct {
	Users  *user.Service
	Ledger *ledger.Service
	Export *export.Service
	Import *importer.Service
}

type CommonModel struct {
	Width  int
	Height int
}

// BackMsg returns to the statement screen.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var (
	accent   = lipgloss.Color("205")
	faint    = lipgloss.NewStyle().Faint(true)
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	padded   = lipgloss.NewStyle().Padding(1)
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(accent).Render(s)
}

// Message returns the text shown for err, preferring the localized wording.
func Message(err error) string {
	if msg, ok := ledger.ValidationMessage(err); ok {
		return msg
	}

	switch {
	case errors.Is(err, ledger.ErrNoEntries):
		return ledger.MsgNoEntries
	case errors.Is(err, ledger.ErrNotFound):
		return ledger.MsgNotFound
	case errors.Is(err, export.ErrPDFUnavailable):
		return export.MsgPDFUnavailable
	}

	if msg := user.Message(err); msg != "" {
		return msg
	}

	return fmt.Sprintf("Error: %v", err)
}
