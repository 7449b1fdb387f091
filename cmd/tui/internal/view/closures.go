package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

type closuresMsg struct {
	closures []*ledger.Closure
	err      error
}

// ClosuresModel lists every month closure of the user, newest first.
type ClosuresModel struct {
	CommonModel
	svc *ledger.Service
	cur ledger.Cursor

	table   table.Model
	loading bool
	err     error
}

func NewClosuresModel(svc *ledger.Service, cur ledger.Cursor) ClosuresModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Month", Width: 10},
			{Title: "Total (ကျပ်)", Width: 16},
			{Title: "Closed At", Width: 18},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	return ClosuresModel{svc: svc, cur: cur, table: t, loading: true}
}

func (m ClosuresModel) Init() tea.Cmd {
	svc := m.svc
	userID := m.cur.UserID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		cs, err := svc.Closures(ctx, userID)

		return closuresMsg{closures: cs, err: err}
	}
}

func (m ClosuresModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case closuresMsg:
		m.loading = false
		m.err = msg.err

		rows := make([]table.Row, len(msg.closures))
		for i, c := range msg.closures {
			rows[i] = table.Row{
				c.Period().String(),
				numfmt.FormatAmountLocalized(c.Total),
				c.CreatedAt.Local().Format("2006-01-02 15:04"),
			}
		}

		m.table.SetRows(rows)

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			return m, Back
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ClosuresModel) View() string {
	switch {
	case m.loading:
		return padded.Render("Loading closures...")
	case m.err != nil:
		return padded.Render(errStyle.Render(Message(m.err)) + "\n\n(Esc to go back)")
	}

	title := activeStyle(fmt.Sprintf("Closed months (%d)", len(m.table.Rows())))
	body := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	return padded.Render(title + "\n\n" + body + "\n\n" + faint.Render("Esc: back"))
}
