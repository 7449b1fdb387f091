package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/kyat/internal/importer"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

const importTimeout = 2 * time.Minute

type importState int

const (
	importStateFilePick importState = iota
	importStateImporting
	importStateConflicts
	importStateResult
)

// ImportDoneMsg is sent when the user leaves the import screen. Cursor holds
// the ledger cursor as updated by the import.
type ImportDoneMsg struct {
	Cursor ledger.Cursor
	Status string
}

type importResultMsg struct {
	cur    ledger.Cursor
	result *ledger.ImportResult
	forced bool
	err    error
}

type ImportModel struct {
	CommonModel
	svc *importer.Service
	cur ledger.Cursor

	state      importState
	filePicker filepicker.Model
	path       string

	result    *ledger.ImportResult
	confirm   *huh.Form
	confirmed *bool

	status string
	err    error
}

func NewImportModel(svc *importer.Service, cur ledger.Cursor) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".txt", ".tsv"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		svc:        svc,
		cur:        cur,
		filePicker: fp,
		confirmed:  new(bool),
	}
}

func (m ImportModel) ShortHelp() string {
	if m.state == importStateConflicts {
		return "Enter: confirm | Esc: cancel"
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

	case importResultMsg:
		return m.handleResult(msg)
	}

	switch m.state {
	case importStateConflicts:
		return m.updateConflicts(msg)
	case importStateFilePick:
	default:
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.path = path
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path, false)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateImporting:
		return m, nil
	case importStateConflicts:
		m.state = importStateFilePick
		m.result = nil
		m.confirm = nil
		m.status = ""

		return m, nil
	}

	cur := m.cur
	status := ""

	if m.state == importStateResult && m.err == nil {
		status = m.status
	}

	return m, func() tea.Msg { return ImportDoneMsg{Cursor: cur, Status: status} }
}

func (m ImportModel) handleResult(msg importResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.state = importStateResult
		m.err = msg.err
		m.status = Message(msg.err)

		return m, nil
	}

	m.cur = msg.cur

	res := msg.result
	if !msg.forced && len(res.Conflicts) > 0 {
		m.state = importStateConflicts
		m.result = res
		*m.confirmed = false

		m.confirm = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%d entries already exist. Skip them and import the other %d?",
						len(res.Conflicts), len(res.New))).
					Affirmative("Import").
					Negative("Cancel").
					Value(m.confirmed),
			),
		).WithWidth(60).WithShowHelp(false)

		return m, m.confirm.Init()
	}

	m.state = importStateResult
	m.err = nil
	m.status = fmt.Sprintf("Imported %d entries, skipped %d.", len(res.Imported), len(res.Conflicts))

	return m, nil
}

func (m ImportModel) updateConflicts(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	if m.confirm.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirmed {
		m.state = importStateFilePick
		m.result = nil
		m.confirm = nil

		return m, nil
	}

	m.state = importStateImporting
	m.status = fmt.Sprintf("Importing from %s...", m.path)

	return m, m.importCmd(m.path, true)
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateImporting:
		return padded.Render(m.status)
	case importStateConflicts:
		return padded.Render(m.viewConflicts() + "\n\n" + m.confirm.View())
	case importStateResult:
		style := okStyle
		if m.err != nil {
			style = errStyle
		}

		return padded.Render(style.Render(m.status) + "\n\n(Esc to go back)")
	}

	return padded.Render(
		"Select statement file to import:\n\n" + m.filePicker.View() + "\n\n" + faint.Render(m.ShortHelp()),
	)
}

func (m ImportModel) viewConflicts() string {
	var b strings.Builder

	b.WriteString(activeStyle("Duplicate Conflicts") + "\n\n")

	for _, c := range m.result.Conflicts {
		e := c.Existing
		fmt.Fprintf(&b, "%s  %s  %s  %s\n",
			e.OccurredAt.Format("02-01-2006 15:04"),
			e.Variant,
			e.Description,
			numfmt.FormatAmount(e.Amount),
		)
	}

	return b.String()
}

func (m ImportModel) importCmd(path string, force bool) tea.Cmd {
	svc := m.svc
	cur := m.cur

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		res, err := svc.Import(ctx, &cur, f, force)
		if err != nil {
			return importResultMsg{err: err}
		}

		return importResultMsg{cur: cur, result: res, forced: force}
	}
}
