package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"tasklist/internal/output"
	"tasklist/internal/service"
	"tasklist/internal/tasklist"
)

// Title is shown in the header bar.
const Title = "Task List"

type promptKind int

const (
	promptCreate promptKind = iota
	promptRename
)

// prompt is an open title dialog. Cancelling it changes nothing.
type prompt struct {
	kind    promptKind
	taskID  string
	title   string
	message string
}

// loadedMsg is the result of a Load.
type loadedMsg struct {
	err error
}

// mutatedMsg is the result of a Create, Rename or Delete.
type mutatedMsg struct {
	op  string
	err error
}

// changedMsg means the store was changed by someone else.
type changedMsg struct{}

// Model is the bubbletea model for the task list screen.
type Model struct {
	ctx     context.Context
	ctrl    *tasklist.Controller
	events  *rowEvents
	logger  *log.Logger
	changes <-chan struct{}

	rows     []service.Task
	cursor   int
	prompt   *prompt
	input    textinput.Model
	status   string
	failed   bool
	busy     bool
	reload   bool
	showHelp bool
	width    int
}

// New creates the model. changes may be nil.
func New(ctx context.Context, store service.Store, logger *log.Logger, changes <-chan struct{}) *Model {
	events := &rowEvents{}
	ti := textinput.New()
	ti.CharLimit = 1024
	ti.Width = 40
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &Model{
		ctx:     ctx,
		ctrl:    tasklist.New(store, tasklist.WithView(events), tasklist.WithLogger(logger)),
		events:  events,
		logger:  logger,
		changes: changes,
		input:   ti,
	}
}

func (m *Model) Init() tea.Cmd {
	m.busy = true
	return tea.Batch(m.loadCmd(), m.waitForChange())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 10)
		return m, nil

	case tea.KeyMsg:
		if m.prompt != nil {
			return m.updatePrompt(msg)
		}
		return m.updateList(msg)

	case loadedMsg:
		m.finish()
		if msg.err != nil {
			m.fail("Could not load tasks", msg.err)
		}
		return m, m.pendingReload()

	case mutatedMsg:
		m.finish()
		if msg.err != nil {
			m.fail("Could not "+msg.op+" task", msg.err)
		}
		return m, m.pendingReload()

	case changedMsg:
		m.logger.Debug("store changed externally")
		return m, tea.Batch(m.startReload(), m.waitForChange())
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	m.failed = false

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "r":
		return m, m.startReload()
	case "a", "+":
		if m.busy {
			return m, nil
		}
		m.openPrompt(&prompt{
			kind:    promptCreate,
			title:   "New task",
			message: "What do you want to do?",
		}, "")
	case "enter":
		if m.busy {
			return m, nil
		}
		task, err := m.ctrl.TaskAt(m.cursor)
		if err != nil {
			return m, nil
		}
		m.openPrompt(&prompt{
			kind:    promptRename,
			taskID:  task.ID,
			title:   "Updating",
			message: "Update your task",
		}, task.Title)
	case "d", "delete", "backspace":
		if m.busy {
			return m, nil
		}
		task, err := m.ctrl.TaskAt(m.cursor)
		if err != nil {
			return m, nil
		}
		return m, m.mutate("delete", func(ctx context.Context) error {
			return m.ctrl.Delete(ctx, task.ID)
		})
	}
	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.closePrompt()
		return m, nil
	case "enter":
		p := m.prompt
		title := m.input.Value()
		m.closePrompt()
		if p.kind == promptCreate {
			return m, m.mutate("create", func(ctx context.Context) error {
				_, err := m.ctrl.Create(ctx, title)
				return err
			})
		}
		return m, m.mutate("update", func(ctx context.Context) error {
			return m.ctrl.Rename(ctx, p.taskID, title)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) openPrompt(p *prompt, value string) {
	m.prompt = p
	m.input.Placeholder = "New Task"
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = nil
	m.input.Blur()
	m.input.Reset()
}

// mutate runs fn off the update loop. Only one operation runs at a time.
func (m *Model) mutate(op string, fn func(ctx context.Context) error) tea.Cmd {
	m.busy = true
	ctx := m.ctx
	return func() tea.Msg {
		return mutatedMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) startReload() tea.Cmd {
	if m.busy {
		m.reload = true
		return nil
	}
	m.busy = true
	return m.loadCmd()
}

func (m *Model) pendingReload() tea.Cmd {
	if !m.reload {
		return nil
	}
	m.reload = false
	return m.startReload()
}

func (m *Model) loadCmd() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{err: m.ctrl.Load(ctx)}
	}
}

func (m *Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	ch := m.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return changedMsg{}
	}
}

// finish takes a fresh snapshot after an operation completed.
func (m *Model) finish() {
	m.busy = false
	m.rows = m.ctrl.Tasks()
	m.cursor = moveCursor(m.cursor, len(m.rows), m.events.drain())
}

func (m *Model) fail(what string, err error) {
	m.logger.Error(strings.ToLower(what), "err", err)
	m.status = fmt.Sprintf("%s: %v", what, err)
	m.failed = true
}

func (m *Model) View() string {
	var b strings.Builder

	header := headerStyle
	if m.width > 0 {
		header = header.Width(m.width)
	}
	b.WriteString(header.Render(Title))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		if m.busy {
			b.WriteString(dimStyle.Render("  Loading..."))
		} else {
			b.WriteString(dimStyle.Render("  No tasks. Press a to add one."))
		}
		b.WriteString("\n")
	}
	for i, task := range m.rows {
		line := output.NormalizeTitle(task.Title)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.prompt != nil {
		b.WriteString("\n")
		body := promptTitleStyle.Render(m.prompt.title) + "\n" +
			m.prompt.message + "\n\n" +
			m.input.View() + "\n\n" +
			dimStyle.Render("enter save • esc cancel")
		b.WriteString(promptStyle.Render(body))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(dimStyle.Render("a/+ add • enter edit • d delete • ↑/k ↓/j move • r reload • q quit • ? close help"))
	} else {
		b.WriteString(dimStyle.Render("? help • q quit"))
	}
	b.WriteString("\n")
	return b.String()
}
