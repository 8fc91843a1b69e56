// Package ui provides the terminal interface for the task list.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/sessiontodo/internal/todo"
	"github.com/nibzard/sessiontodo/internal/utils"
)

// DefaultToastDuration is how long a notification stays on screen.
const DefaultToastDuration = 4 * time.Second

// TaskStore is the part of the task store the UI drives.
type TaskStore interface {
	Add(title, description, dueDate string) todo.Task
	Edit(id string, u todo.Update)
	ToggleCompletion(id string)
	Delete(id string)
	Tasks() []todo.Task
}

// Toasts queues notifications raised outside the UI, such as failed saves.
// Push is suitable as a store save-failure handler.
type Toasts struct {
	pending []string
}

// Push queues a message.
func (t *Toasts) Push(message string) {
	if t == nil || message == "" {
		return
	}
	t.pending = append(t.pending, message)
}

func (t *Toasts) drain() []string {
	if t == nil {
		return nil
	}
	out := t.pending
	t.pending = nil
	return out
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	session       string
	toastDuration time.Duration
	now           func() time.Time
}

// WithSession sets the session label shown in the header.
func WithSession(session string) TUIOption {
	return func(c *tuiConfig) {
		c.session = session
	}
}

// WithToastDuration sets how long notifications are shown.
func WithToastDuration(d time.Duration) TUIOption {
	return func(c *tuiConfig) {
		if d > 0 {
			c.toastDuration = d
		}
	}
}

// WithClock sets the clock used for overdue highlighting.
func WithClock(now func() time.Time) TUIOption {
	return func(c *tuiConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// RunTUI starts the TUI over st. Toasts pushed to toasts are shown after the
// action that raised them.
func RunTUI(ctx context.Context, st TaskStore, toasts *Toasts, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(st, toasts, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

// form field indexes
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldCount
)

var (
	fieldLabels       = [fieldCount]string{"Title", "Description", "Due"}
	fieldPlaceholders = [fieldCount]string{"what needs doing", "optional", "2025-07-01 or 2025-07-01T17:00"}
	fieldLimits       = [fieldCount]int{200, 1000, 40}
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true)
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	toastStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("11")).Padding(0, 1)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	activeLabel   = lipgloss.NewStyle().Bold(true).Underline(true)
	inactiveLabel = lipgloss.NewStyle()
)

type tuiModel struct {
	store  TaskStore
	toasts *Toasts
	cfg    tuiConfig

	tasks  []todo.Task
	cursor int
	mode   mode

	// form state for add and edit
	editing   string
	editedDue string
	inputs    [fieldCount]textinput.Model
	field     int
	formError string

	toast    string
	toastSeq int

	showHelp bool
	width    int
}

type toastExpiredMsg struct {
	seq int
}

func newTUIModel(st TaskStore, toasts *Toasts, opts ...TUIOption) *tuiModel {
	cfg := tuiConfig{
		toastDuration: DefaultToastDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	m := &tuiModel{
		store:  st,
		toasts: toasts,
		cfg:    cfg,
		inputs: newFormInputs(),
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return m.showToasts()
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeAdd, modeEdit:
			return m, m.updateForm(msg)
		case modeConfirmDelete:
			return m, m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}
	if m.mode == modeAdd || m.mode == modeEdit {
		var cmd tea.Cmd
		m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		default:
			m.showHelp = false
			return m, nil
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "h", "?":
		m.showHelp = true
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case "a", "n":
		return m, m.openForm(modeAdd, todo.Task{})
	case "e", "enter":
		if task, ok := m.selected(); ok {
			return m, m.openForm(modeEdit, task)
		}
	case " ", "x":
		if task, ok := m.selected(); ok {
			m.store.ToggleCompletion(task.ID)
			m.refresh()
			return m, m.showToasts()
		}
	case "d", "delete":
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	}
	return m, nil
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	m.mode = modeList
	switch msg.String() {
	case "y", "Y":
		if task, ok := m.selected(); ok {
			m.store.Delete(task.ID)
			m.refresh()
			return m.showToasts()
		}
	}
	return nil
}

func newFormInputs() [fieldCount]textinput.Model {
	var inputs [fieldCount]textinput.Model
	for i := range inputs {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = fieldPlaceholders[i]
		in.CharLimit = fieldLimits[i]
		inputs[i] = in
	}
	return inputs
}

func (m *tuiModel) openForm(md mode, task todo.Task) tea.Cmd {
	m.mode = md
	m.editing = task.ID
	m.editedDue = ""
	if task.DueDate != "" {
		m.editedDue = todo.EditableDueDate(task.DueDate, m.cfg.now().Location())
	}
	values := [fieldCount]string{task.Title, task.Description, m.editedDue}
	for i := range m.inputs {
		m.inputs[i].SetValue(values[i])
		m.inputs[i].CursorEnd()
	}
	m.formError = ""
	return m.focusField(fieldTitle)
}

// focusField moves keyboard focus to field i.
func (m *tuiModel) focusField(i int) tea.Cmd {
	m.field = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m *tuiModel) value(i int) string {
	return strings.TrimSpace(m.inputs[i].Value())
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeList
		m.formError = ""
		return nil
	case tea.KeyTab, tea.KeyDown:
		return m.focusField((m.field + 1) % fieldCount)
	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusField((m.field + fieldCount - 1) % fieldCount)
	case tea.KeyEnter:
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	return cmd
}

func (m *tuiModel) submitForm() tea.Cmd {
	title := m.value(fieldTitle)
	description := m.value(fieldDescription)
	due := m.value(fieldDue)

	if title == "" {
		m.formError = "Title is required"
		return m.focusField(fieldTitle)
	}
	dueDate, err := todo.NormalizeDueDate(due, m.cfg.now().Location())
	if err != nil {
		m.formError = "Due date must look like 2025-07-01 or 2025-07-01T17:00"
		return m.focusField(fieldDue)
	}

	switch m.mode {
	case modeAdd:
		m.store.Add(title, description, dueDate)
		m.refresh()
		m.cursor = len(m.tasks) - 1
	case modeEdit:
		update := todo.Update{Title: &title, Description: &description}
		// An untouched due field keeps the stored value exactly.
		if due != m.editedDue {
			update.DueDate = &dueDate
		}
		m.store.Edit(m.editing, update)
		m.refresh()
	}
	m.mode = modeList
	m.formError = ""
	return m.showToasts()
}

// showToasts displays the newest queued notification and schedules its
// dismissal.
func (m *tuiModel) showToasts() tea.Cmd {
	pending := m.toasts.drain()
	if len(pending) == 0 {
		return nil
	}
	m.toast = pending[len(pending)-1]
	m.toastSeq++
	seq := m.toastSeq
	return tea.Tick(m.cfg.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (m *tuiModel) refresh() {
	m.tasks = m.store.Tasks()
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return todo.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.cfg.session)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.mode)
		return b.String()
	}

	now := m.cfg.now()
	writeSummary(&b, todo.Summarize(m.tasks, now))

	switch m.mode {
	case modeAdd, modeEdit:
		m.writeForm(&b)
	default:
		m.writeList(&b, now)
		if m.mode == modeConfirmDelete {
			if task, ok := m.selected(); ok {
				b.WriteString(errorStyle.Render(fmt.Sprintf("Delete %q? (y/N)", utils.Truncate(task.Title, 40))))
				b.WriteString("\n\n")
			}
		}
	}

	if m.toast != "" {
		b.WriteString(toastStyle.Render(m.toast))
		b.WriteString("\n\n")
	}
	writeFooter(&b, m.mode)
	return b.String()
}

func (m *tuiModel) writeList(b *strings.Builder, now time.Time) {
	if len(m.tasks) == 0 {
		b.WriteString(dimStyle.Render("  No tasks yet. Press a to add one."))
		b.WriteString("\n\n")
		return
	}
	for i, task := range m.tasks {
		b.WriteString(formatTask(task, i == m.cursor, now))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeForm(b *strings.Builder) {
	heading := "New task"
	if m.mode == modeEdit {
		heading = "Edit task"
	}
	b.WriteString(titleStyle.Render(heading))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := inactiveLabel.Render(fieldLabels[i])
		if i == m.field {
			label = activeLabel.Render(fieldLabels[i])
		}
		b.WriteString(fmt.Sprintf("  %s: %s\n", label, m.inputs[i].View()))
	}
	b.WriteString("\n")
	if m.formError != "" {
		b.WriteString(errorStyle.Render("  " + m.formError))
		b.WriteString("\n\n")
	}
}

func writeTitle(b *strings.Builder, session string) {
	title := "Session Todo"
	if session != "" {
		title += " (" + session + ")"
	}
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeSummary(b *strings.Builder, s todo.Summary) {
	line := fmt.Sprintf("  Open: %d  Done: %d", s.Open, s.Completed)
	if s.Overdue > 0 {
		line += "  " + overdueStyle.Render(fmt.Sprintf("Overdue: %d", s.Overdue))
	}
	b.WriteString(line + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  up/k, down/j   Move\n")
	b.WriteString("  a, n           Add a task\n")
	b.WriteString("  e, enter       Edit the selected task\n")
	b.WriteString("  space, x       Toggle completion\n")
	b.WriteString("  d, delete      Delete (asks first)\n")
	b.WriteString("  h, ?           Toggle this help screen\n")
	b.WriteString("  q, ctrl+c      Quit\n\n")
	b.WriteString("In forms: tab moves between fields, enter saves, esc cancels,\n")
	b.WriteString("left/right move the cursor, ctrl+u deletes to the start of the field.\n")
	b.WriteString("Dates without a zone are local time. An empty due date removes it.\n\n")
}

func writeFooter(b *strings.Builder, md mode) {
	switch md {
	case modeAdd, modeEdit:
		b.WriteString(dimStyle.Render("tab next field | enter save | esc cancel") + "\n")
	case modeConfirmDelete:
		b.WriteString(dimStyle.Render("y delete | any other key cancels") + "\n")
	default:
		b.WriteString(dimStyle.Render("Press h for help | q to quit") + "\n")
	}
}

func formatTask(t todo.Task, selected bool, now time.Time) string {
	pointer := " "
	if selected {
		pointer = cursorStyle.Render(">")
	}
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	title := utils.Truncate(t.Title, 60)
	if t.Completed {
		title = doneStyle.Render(title)
	}
	line := fmt.Sprintf("%s %s %s", pointer, check, title)

	if due, ok := t.DueIn(now.Location()); ok {
		label := "due " + due.In(now.Location()).Format("Mon Jan 2")
		if todo.IsOverdue(t, now) {
			line += "  " + overdueStyle.Render("overdue, "+label)
		} else {
			line += "  " + dimStyle.Render(label)
		}
	}
	if selected && t.Description != "" {
		line += "\n      " + dimStyle.Render(utils.Truncate(utils.FirstLine(t.Description), 70))
	}
	return line
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
