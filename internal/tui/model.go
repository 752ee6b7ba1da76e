// Package tui provides the BubbleTea-based live view of menubar events.
package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/menubar/internal/dbus"
)

// MaxEvents bounds the retained event history.
const MaxEvents = 500

const callTimeout = 3 * time.Second

// Controller is the daemon the view drives.
type Controller interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	Toggle(ctx context.Context) error
	Status(ctx context.Context) (dbus.StatusReply, error)
}

// Model is the watch view model.
type Model struct {
	ctrl   Controller
	events <-chan dbus.Lifecycle

	// Components
	list list.Model
	help help.Model
	keys KeyMap

	// State
	status    dbus.StatusReply
	history   []dbus.Lifecycle // newest first
	showHelp  bool
	connected bool
	width     int
	height    int
	ready     bool

	// Status message
	statusMsg string
	statusErr bool

	clipboard string
}

// eventItem wraps a lifecycle event for the list component.
type eventItem struct {
	event dbus.Lifecycle
}

func (i eventItem) Title() string {
	return i.event.Event
}

func (i eventItem) Description() string {
	id := i.event.WindowID
	if id == "" {
		id = "-"
	}
	return fmt.Sprintf("window %s - %s", id, relativeTime(i.event.Time))
}

func (i eventItem) FilterValue() string {
	return i.event.Event + " " + i.event.WindowID
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// eventDelegate colours event names by lifecycle phase.
type eventDelegate struct {
	list.DefaultDelegate
}

func newEventDelegate() eventDelegate {
	d := list.NewDefaultDelegate()
	return eventDelegate{DefaultDelegate: d}
}

// eventColor returns the terminal colour for an event type.
func eventColor(name string) lipgloss.Color {
	switch name {
	case "show", "after-show":
		return lipgloss.Color("10")
	case "hide", "after-hide":
		return lipgloss.Color("11")
	case "after-close", "focus-lost":
		return lipgloss.Color("9")
	case "ready":
		return lipgloss.Color("12")
	default:
		return lipgloss.Color("7")
	}
}

func (d eventDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ei, ok := item.(eventItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	titleStyle := d.DefaultDelegate.Styles.NormalTitle
	descStyle := d.DefaultDelegate.Styles.NormalDesc
	if index == m.Index() {
		titleStyle = d.DefaultDelegate.Styles.SelectedTitle
		descStyle = d.DefaultDelegate.Styles.SelectedDesc
	}
	titleStyle = titleStyle.Foreground(eventColor(ei.event.Event))

	fmt.Fprint(w, titleStyle.Render(ei.Title()))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, descStyle.Render(ei.Description()))
}

// New creates the watch model. events may be nil when the caller has no
// signal subscription.
func New(ctrl Controller, events <-chan dbus.Lifecycle) Model {
	l := list.New(nil, newEventDelegate(), 0, 0)
	l.Title = "Menubar Events"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return Model{
		ctrl:      ctrl,
		events:    events,
		list:      l,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		connected: events != nil,
	}
}

type lifecycleMsg struct {
	event dbus.Lifecycle
}

type streamClosedMsg struct{}

type statusReplyMsg struct {
	reply dbus.StatusReply
	err   error
}

type actionResultMsg struct {
	action string
	err    error
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

// Init starts listening for events and fetches the initial status.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent, m.fetchStatus)
}

func (m Model) waitForEvent() tea.Msg {
	if m.events == nil {
		return nil
	}
	ev, ok := <-m.events
	if !ok {
		return streamClosedMsg{}
	}
	return lifecycleMsg{event: ev}
}

func (m Model) fetchStatus() tea.Msg {
	if m.ctrl == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	reply, err := m.ctrl.Status(ctx)
	return statusReplyMsg{reply: reply, err: err}
}

// act runs a daemon call off the UI goroutine.
func (m Model) act(action string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		return actionResultMsg{action: action, err: fn(ctx)}
	}
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.list.SetSize(msg.Width, max(msg.Height-3, 0))
		m.help.Width = msg.Width
		return m, nil

	case lifecycleMsg:
		m.history = append([]dbus.Lifecycle{msg.event}, m.history...)
		if len(m.history) > MaxEvents {
			m.history = m.history[:MaxEvents]
		}
		cmd := m.list.SetItems(m.buildListItems())
		return m, tea.Batch(cmd, m.waitForEvent, m.fetchStatus)

	case streamClosedMsg:
		m.connected = false
		return m, setStatus("Event stream closed", true)

	case statusReplyMsg:
		if msg.err != nil {
			return m, setStatus("Status failed: "+msg.err.Error(), true)
		}
		m.status = msg.reply
		return m, nil

	case actionResultMsg:
		if msg.err != nil {
			return m, setStatus(msg.action+" failed: "+msg.err.Error(), true)
		}
		// The daemon's events refresh the status when subscribed
		if m.events == nil {
			return m, m.fetchStatus
		}
		return m, nil

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, setStatus("Copied to clipboard", false)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Typing into the list filter takes every key
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	}

	if m.showHelp {
		if msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Show):
		if m.ctrl != nil {
			return m, m.act("Show", m.ctrl.Show)
		}
	case key.Matches(msg, m.keys.Hide):
		if m.ctrl != nil {
			return m, m.act("Hide", m.ctrl.Hide)
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.ctrl != nil {
			return m, m.act("Toggle", m.ctrl.Toggle)
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchStatus
	case key.Matches(msg, m.keys.Clear):
		m.history = nil
		return m, m.list.SetItems(nil)
	case key.Matches(msg, m.keys.CopyJSON):
		data, err := json.MarshalIndent(m.history, "", "  ")
		if err != nil {
			return m, setStatus("Failed to marshal JSON: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))
	case key.Matches(msg, m.keys.CopyYAML):
		data, err := yaml.Marshal(m.history)
		if err != nil {
			return m, setStatus("Failed to marshal YAML: "+err.Error(), true)
		}
		return m, m.copyToClipboard(string(data))
	default:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) buildListItems() []list.Item {
	items := make([]list.Item, len(m.history))
	for i, ev := range m.history {
		items[i] = eventItem{event: ev}
	}
	return items
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.clipboard
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text, command)}
	}
}

// History returns the retained events, newest first.
func (m Model) History() []dbus.Lifecycle {
	return m.history
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.showHelp {
		return m.viewHelp()
	}

	s := m.viewHeader() + "\n" + m.list.View() + "\n"
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += statusStyle.Render(m.statusMsg)
	} else {
		s += m.help.ShortHelpView(m.keys.ShortHelp())
	}
	return s
}

func (m Model) viewHeader() string {
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := lipgloss.NewStyle().Bold(true)

	state := m.status.State
	if state == "" {
		state = "unknown"
	}
	stateStyle := valueStyle.Foreground(stateColor(state))

	parts := []string{
		labelStyle.Render("state ") + stateStyle.Render(state),
		labelStyle.Render("anchor ") + valueStyle.Render(orDash(m.status.Anchor)),
		labelStyle.Render("window ") + valueStyle.Render(orDash(m.status.WindowID)),
		labelStyle.Render("shown ") + valueStyle.Render(relativeTime(m.status.LastShown)),
	}
	if !m.connected {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("disconnected"))
	}

	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(parts)...))
}

func joinSpaced(parts []string) []string {
	out := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			out = append(out, "   ")
		}
		out = append(out, p)
	}
	return out
}

func stateColor(state string) lipgloss.Color {
	switch state {
	case "visible":
		return lipgloss.Color("10")
	case "hidden":
		return lipgloss.Color("11")
	default:
		return lipgloss.Color("8")
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	h := m.help
	h.ShowAll = true

	return titleStyle.Render("Keyboard Shortcuts") + "\n\n" +
		h.View(m.keys) + "\n\n" +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
}

// RunOptions configures the TUI.
type RunOptions struct {
	Controller       Controller
	Events           <-chan dbus.Lifecycle
	ClipboardCommand string // empty = auto-detect
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts RunOptions) error {
	m := New(opts.Controller, opts.Events)
	m.clipboard = opts.ClipboardCommand

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
