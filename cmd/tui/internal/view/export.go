package view

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
)

type exportState int

const (
	exportStateForm exportState = iota
	exportStateRunning
	exportStateResult
)

type exportValues struct {
	format string
	dir    string
}

type exportResultMsg struct {
	path    string
	warning string
	err     error
}

type ExportModel struct {
	CommonModel
	svc *export.Service
	cur ledger.Cursor

	state   exportState
	form    *huh.Form
	vals    *exportValues
	spinner spinner.Model

	status  string
	warning string
	err     error
}

func NewExportModel(svc *export.Service, cur ledger.Cursor) ExportModel {
	dir, _ := os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := ExportModel{
		svc:     svc,
		cur:     cur,
		vals:    &exportValues{format: string(export.FormatText), dir: dir},
		spinner: s,
	}
	m.form = m.buildForm()

	return m
}

func (m ExportModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("format").
				Title("Export " + m.cur.Period.String()).
				Options(
					huh.NewOption("Text (.txt)", string(export.FormatText)),
					huh.NewOption("PDF (.pdf)", string(export.FormatPDF)),
				).
				Value(&m.vals.format),
			huh.NewInput().
				Key("dir").
				Title("Output directory").
				Value(&m.vals.dir),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.state != exportStateRunning {
			return m, Back
		}

	case exportResultMsg:
		m.state = exportStateResult
		m.err = msg.err
		m.warning = msg.warning

		if msg.err != nil {
			m.status = Message(msg.err)
		} else {
			m.status = "Saved to " + msg.path
		}

		return m, nil

	case spinner.TickMsg:
		if m.state != exportStateRunning {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.state != exportStateForm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.state = exportStateRunning

	return m, tea.Batch(m.spinner.Tick, m.exportCmd())
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStateRunning:
		return padded.Render(m.spinner.View() + " Exporting...")
	case exportStateResult:
		style := okStyle
		if m.err != nil {
			style = errStyle
		}

		s := style.Render(m.status)
		if m.warning != "" {
			s += "\n" + faint.Render(m.warning)
		}

		return padded.Render(s + "\n\n(Esc to go back)")
	}

	return padded.Render(m.form.View() + "\n\n" + faint.Render("Esc: back"))
}

func (m ExportModel) exportCmd() tea.Cmd {
	svc := m.svc
	cur := m.cur
	v := *m.vals

	return func() tea.Msg {
		f, err := export.ParseFormat(v.format)
		if err != nil {
			return exportResultMsg{err: err}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		doc, err := svc.Render(ctx, cur, cur.Period, f)
		if err != nil {
			return exportResultMsg{err: err}
		}

		path := filepath.Join(v.dir, doc.Filename)
		if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
			return exportResultMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}

		return exportResultMsg{path: path, warning: doc.Warning}
	}
}
