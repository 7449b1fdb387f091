package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/kyat/internal/export"
	"github.com/MrJamesThe3rd/kyat/internal/ledger"
	"github.com/MrJamesThe3rd/kyat/internal/numfmt"
)

type ledgerState int

const (
	ledgerStateBrowse ledgerState = iota
	ledgerStateForm
	ledgerStateConfirm
)

type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmClose
)

// OpenExportMsg, OpenImportMsg and OpenClosuresMsg ask the root model to
// switch screens. They carry a copy of the cursor.
type (
	OpenExportMsg   struct{ Cursor ledger.Cursor }
	OpenImportMsg   struct{ Cursor ledger.Cursor }
	OpenClosuresMsg struct{ Cursor ledger.Cursor }
)

// CursorMsg replaces the ledger cursor, e.g. after an import touched it.
type CursorMsg struct {
	Cursor ledger.Cursor
	Status string
}

type statementMsg struct {
	st    *ledger.Statement
	total decimal.Decimal
	err   error
}

type mutationMsg struct {
	cur    ledger.Cursor
	status string
	err    error
}

// defaultClock is the time offered for new entries.
const defaultClock = "09:00"

type entryValues struct {
	date        string
	clock       string
	description string
	amount      string
	note        string
	confirmed   bool
}

// addParams turns the add form into the service request.
func (v entryValues) addParams(variant ledger.Variant) (ledger.AddParams, error) {
	if err := validateDate(v.date); err != nil {
		return ledger.AddParams{}, &ledger.ValidationError{Field: "date", Message: err.Error()}
	}

	if err := validateClock(v.clock); err != nil {
		return ledger.AddParams{}, &ledger.ValidationError{Field: "time", Message: err.Error()}
	}

	at, err := numfmt.ParseDateTime(v.date, v.clock)
	if err != nil {
		return ledger.AddParams{}, err
	}

	amount, err := numfmt.ParseAmount(v.amount)
	if err != nil {
		return ledger.AddParams{}, &ledger.ValidationError{Field: "amount", Message: ledger.MsgInvalidAmount}
	}

	return ledger.AddParams{
		Variant:     variant,
		OccurredAt:  at,
		Description: v.description,
		Amount:      amount,
		Note:        v.note,
	}, nil
}

// defaultDate is today when the shown month is the current one, otherwise
// the first of the shown month.
func defaultDate(p ledger.Period, now time.Time) string {
	if p.Contains(now) {
		return numfmt.FormatDate(now)
	}

	return numfmt.FormatDate(p.Start())
}

func validateDate(s string) error {
	if _, err := numfmt.ParseDateTime(s, "00:00"); err != nil {
		return errors.New(ledger.MsgInvalidDate)
	}

	return nil
}

func validateClock(s string) error {
	if _, err := numfmt.ParseDateTime("01-01-2000", s); err != nil {
		return errors.New(ledger.MsgInvalidTime)
	}

	return nil
}

type LedgerModel struct {
	CommonModel
	svc Services
	cur ledger.Cursor

	state  ledgerState
	table  table.Model
	st     *ledger.Statement
	total  decimal.Decimal
	form   *huh.Form
	vals   *entryValues
	action confirmAction

	// formVariant and formKey describe the entry being added or edited.
	formVariant ledger.Variant
	formKey     ledger.Key

	loading bool
	status  string
	err     error
}

func NewLedgerModel(svc Services, cur ledger.Cursor) LedgerModel {
	columns := make([]table.Column, len(export.Columns))
	widths := [8]int{5, 12, 7, 34, 12, 12, 14, 20}

	for i, c := range export.Columns {
		columns[i] = table.Column{Title: c, Width: widths[i]}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return LedgerModel{
		svc:     svc,
		cur:     cur,
		table:   t,
		vals:    &entryValues{},
		loading: true,
	}
}

func (m LedgerModel) Cursor() ledger.Cursor {
	return m.cur
}

func (m LedgerModel) ShortHelp() string {
	switch m.state {
	case ledgerStateForm:
		return "Navigate form | Esc: cancel"
	case ledgerStateConfirm:
		return "Enter: confirm | Esc: cancel"
	}

	return "h/l: month | a: expense | i: income | e: edit | d: delete | c: close month | " +
		"x: export | m: import | H: closures | r: refresh | q: quit"
}

func (m LedgerModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m LedgerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statementMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.st = msg.st
			m.total = msg.total
			m.refreshTable()
		}

		return m, nil

	case mutationMsg:
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = errStyle.Render(Message(msg.err))
			return m, nil
		}

		m.cur = msg.cur
		m.status = okStyle.Render(msg.status)

		return m, m.loadCmd()

	case CursorMsg:
		m.cur = msg.Cursor
		if msg.Status != "" {
			m.status = okStyle.Render(msg.Status)
		}

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-12, 5))

		return m, nil
	}

	switch m.state {
	case ledgerStateForm, ledgerStateConfirm:
		return m.updateForm(msg)
	}

	return m.updateBrowse(msg)
}

func (m LedgerModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h", "left":
			m.cur.Period = m.cur.Period.Prev()
			return m.reload()
		case "l", "right":
			m.cur.Period = m.cur.Period.Next()
			return m.reload()
		case "r":
			return m.reload()
		case "a":
			return m.enterAdd(ledger.VariantExpense)
		case "i":
			return m.enterAdd(ledger.VariantIncome)
		case "e":
			return m.enterEdit()
		case "d":
			row, ok := m.selected()
			if !ok {
				return m, nil
			}

			m.formKey = row.Key

			return m.enterConfirm(confirmDelete, fmt.Sprintf("Delete %s (%s)?", row.Description, rowAmount(row)))
		case "c":
			return m.enterConfirm(confirmClose, fmt.Sprintf("Close %s?", m.cur.Period))
		case "x":
			cur := m.cur
			return m, func() tea.Msg { return OpenExportMsg{Cursor: cur} }
		case "m":
			cur := m.cur
			return m, func() tea.Msg { return OpenImportMsg{Cursor: cur} }
		case "H":
			cur := m.cur
			return m, func() tea.Msg { return OpenClosuresMsg{Cursor: cur} }
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m LedgerModel) reload() (tea.Model, tea.Cmd) {
	m.loading = true
	m.status = ""

	return m, m.loadCmd()
}

// selected returns the highlighted detail row. Total and divider rows
// cannot be edited.
func (m LedgerModel) selected() (ledger.Row, bool) {
	if m.st == nil {
		return ledger.Row{}, false
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.st.Rows) || m.st.Rows[idx].IsSeparator() {
		return ledger.Row{}, false
	}

	return m.st.Rows[idx], true
}

func rowAmount(r ledger.Row) string {
	if r.Income != "" {
		return r.Income
	}

	return r.Expense
}

func (m LedgerModel) enterAdd(v ledger.Variant) (tea.Model, tea.Cmd) {
	*m.vals = entryValues{
		date:  defaultDate(m.cur.Period, m.svc.Ledger.LocalNow()),
		clock: defaultClock,
	}
	m.formVariant = v
	m.formKey = ledger.Key{}

	return m.openForm()
}

func (m LedgerModel) enterEdit() (tea.Model, tea.Cmd) {
	row, ok := m.selected()
	if !ok {
		return m, nil
	}

	*m.vals = entryValues{
		description: row.Description,
		amount:      numfmt.ToASCIIAmount(rowAmount(row)),
		note:        row.Note,
	}
	m.formVariant = row.Key.Variant
	m.formKey = row.Key

	return m.openForm()
}

func (m LedgerModel) openForm() (tea.Model, tea.Cmd) {
	fields := entryFields(m.vals, m.formVariant, m.formKey.IsZero())
	m.form = huh.NewForm(huh.NewGroup(fields...)).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateForm
	m.table.Blur()

	return m, m.form.Init()
}

// entryFields builds the entry form inputs bound to v. The timestamp of an
// existing entry never changes, so only new entries ask for one.
func entryFields(v *entryValues, variant ledger.Variant, withTimestamp bool) []huh.Field {
	var fields []huh.Field

	if withTimestamp {
		fields = append(fields,
			huh.NewInput().
				Key("date").
				Title("ရက်စွဲ").
				Placeholder("DD-MM-YYYY").
				Value(&v.date).
				Validate(validateDate),
			huh.NewInput().
				Key("time").
				Title("အချိန်").
				Placeholder("HH:MM").
				Value(&v.clock).
				Validate(validateClock),
		)
	}

	fields = append(fields,
		huh.NewInput().
			Key("description").
			Title("အကြောင်းအရာ").
			Value(&v.description).
			Validate(func(s string) error {
				if variant == ledger.VariantExpense && strings.TrimSpace(s) == "" {
					return errors.New(ledger.MsgExpenseDescriptionRequired)
				}
				return nil
			}),
		huh.NewInput().
			Key("amount").
			Title("ပမာဏ").
			Placeholder("5,000").
			Value(&v.amount).
			Validate(func(s string) error {
				if _, err := numfmt.ParseAmount(s); err != nil {
					return errors.New(ledger.MsgInvalidAmount)
				}
				return nil
			}),
		huh.NewInput().
			Key("note").
			Title("မှတ်ချက်").
			Value(&v.note),
	)

	return fields
}

func (m LedgerModel) enterConfirm(action confirmAction, title string) (tea.Model, tea.Cmd) {
	m.vals.confirmed = false
	m.action = action

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&m.vals.confirmed),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = ledgerStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m LedgerModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if m.state == ledgerStateForm {
		return m, m.saveCmd()
	}

	if !m.vals.confirmed {
		m.state = ledgerStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	if m.action == confirmClose {
		return m, m.closeCmd()
	}

	return m, m.deleteCmd()
}

func (m *LedgerModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.st.Rows))
	selected := 0

	for i, r := range m.st.Rows {
		no := r.No
		if r.Highlight {
			no = "*" + no
			selected = i
		}

		if r.IsSeparator() {
			rows = append(rows, table.Row{"", "", "", r.Description, "", "", "", ""})
			continue
		}

		rows = append(rows, table.Row{no, r.Date, r.Time, r.Description, r.Income, r.Expense, r.Balance, r.Note})
	}

	m.table.SetRows(rows)
	m.table.SetCursor(selected)
}

func (m LedgerModel) View() string {
	if m.err != nil {
		return padded.Render(errStyle.Render(Message(m.err)) + "\n\n" + faint.Render("r: retry | q: quit"))
	}

	header := fmt.Sprintf("%s  %s",
		activeStyle(export.Title(m.cur.Period)),
		faint.Render("("+m.cur.Period.String()+")"),
	)

	body := "Loading..."
	if !m.loading && m.st != nil {
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	footer := fmt.Sprintf("ဝင်ငွေ %s | သုံးငွေ %s | လက်ကျန် %s | လစုစုပေါင်းသုံးငွေ %s ကျပ်",
		numfmt.FormatAmountLocalized(m.totalOf(func(st *ledger.Statement) decimal.Decimal { return st.IncomeTotal })),
		numfmt.FormatAmountLocalized(m.totalOf(func(st *ledger.Statement) decimal.Decimal { return st.ExpenseTotal })),
		numfmt.FormatAmountLocalized(m.totalOf(func(st *ledger.Statement) decimal.Decimal { return st.Balance })),
		numfmt.FormatAmountLocalized(m.total),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
		footer,
	)

	if m.form != nil && m.state != ledgerStateBrowse {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(m.formTitle() + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return padded.Render(content + "\n\n" + faint.Render(m.ShortHelp()))
}

func (m LedgerModel) totalOf(f func(*ledger.Statement) decimal.Decimal) decimal.Decimal {
	if m.st == nil {
		return decimal.Zero
	}

	return f(m.st)
}

func (m LedgerModel) formTitle() string {
	switch {
	case m.state == ledgerStateConfirm && m.action == confirmClose:
		return "Close Month"
	case m.state == ledgerStateConfirm:
		return "Delete Entry"
	case !m.formKey.IsZero():
		return "Edit Entry"
	case m.formVariant == ledger.VariantIncome:
		return "New Income"
	}

	return "New Expense"
}

func (m LedgerModel) loadCmd() tea.Cmd {
	svc := m.svc.Ledger
	cur := m.cur

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		st, err := svc.Statement(ctx, cur)
		if err != nil {
			return statementMsg{err: err}
		}

		total, err := svc.SumExpenses(ctx, cur.UserID, cur.Period)
		if err != nil {
			return statementMsg{err: err}
		}

		return statementMsg{st: st, total: total}
	}
}

func (m LedgerModel) saveCmd() tea.Cmd {
	svc := m.svc.Ledger
	cur := m.cur
	v := *m.vals
	variant, key := m.formVariant, m.formKey

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if !key.IsZero() {
			amount, err := numfmt.ParseAmount(v.amount)
			if err != nil {
				return mutationMsg{err: &ledger.ValidationError{Field: "amount", Message: ledger.MsgInvalidAmount}}
			}

			e, err := svc.Update(ctx, &cur, ledger.UpdateParams{
				Key:         key,
				Description: v.description,
				Amount:      amount,
				Note:        v.note,
			})
			if err != nil {
				return mutationMsg{err: err}
			}

			return mutationMsg{cur: cur, status: ledger.UpdatedMessage(e)}
		}

		params, err := v.addParams(variant)
		if err != nil {
			return mutationMsg{err: err}
		}

		e, err := svc.Add(ctx, &cur, params)
		if err != nil {
			return mutationMsg{err: err}
		}

		// Show the month the entry landed in.
		if !cur.Period.Contains(e.OccurredAt) {
			cur.Period = ledger.PeriodOf(e.OccurredAt)
		}

		return mutationMsg{cur: cur, status: ledger.AddedMessage(e)}
	}
}

func (m LedgerModel) deleteCmd() tea.Cmd {
	svc := m.svc.Ledger
	cur := m.cur
	key := m.formKey

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if err := svc.Delete(ctx, &cur, key); err != nil {
			return mutationMsg{err: err}
		}

		return mutationMsg{cur: cur, status: ledger.MsgDeleted}
	}
}

func (m LedgerModel) closeCmd() tea.Cmd {
	svc := m.svc.Ledger
	cur := m.cur

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		c, err := svc.CloseMonth(ctx, &cur)
		if err != nil {
			return mutationMsg{err: err}
		}

		return mutationMsg{cur: cur, status: ledger.ClosedMessage(c)}
	}
}
