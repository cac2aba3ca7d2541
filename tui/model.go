package main

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Paranoid-AF/aieditor/continuation"
	"github.com/Paranoid-AF/aieditor/document"
	"github.com/Paranoid-AF/aieditor/editor"
)

const (
	buttonLabel        = "Continue Writing"
	buttonLoadingLabel = "AI Writing..."
)

type focusTarget int

const (
	focusButton focusTarget = iota
	focusEditor
)

// continuationMsg carries the result of a request back to the UI loop.
type continuationMsg struct {
	input string
	text  string
	err   error
}

type styles struct {
	title       lipgloss.Style
	box         lipgloss.Style
	boxFocused  lipgloss.Style
	button      lipgloss.Style
	buttonFocus lipgloss.Style
	buttonBusy  lipgloss.Style
	errorText   lipgloss.Style
	alert       lipgloss.Style
}

func defaultStyles() styles {
	border := lipgloss.RoundedBorder()
	return styles{
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		box:         lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		boxFocused:  lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("63")).Padding(0, 1),
		button:      lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("238")),
		buttonFocus: lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("63")).Bold(true),
		buttonBusy:  lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("236")).Foreground(lipgloss.Color("245")),
		errorText:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
		alert:       lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("203")).Padding(1, 2),
	}
}

// model is the Bubble Tea model of the editor screen. The editor view is
// created once before the program starts and destroyed after it exits.
type model struct {
	ctx  context.Context
	view *editor.View
	ctrl *continuation.Controller

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	st      styles
	edStyle editor.Style

	focus focusTarget
	alert string
	width int
}

func newModel(ctx context.Context, view *editor.View, completer continuation.Completer, opts continuation.Options) *model {
	m := &model{
		ctx:     ctx,
		view:    view,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		st:      defaultStyles(),
		edStyle: editor.DefaultStyle(),
		focus:   focusButton,
	}
	opts.View = view
	opts.Completer = completer
	opts.Alert = func(msg string) { m.alert = msg }
	m.ctrl = continuation.NewController(opts)
	return m
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) loading() bool { return m.ctrl.Machine().Matches(continuation.Loading) }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.FocusMsg:
		if m.focus == focusEditor {
			m.view.Focus()
		}
		return m, nil

	case tea.BlurMsg:
		m.view.Blur()
		return m, nil

	case continuationMsg:
		m.ctrl.Finish(msg.input, msg.text, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.alert != "" {
		if key.Matches(msg, m.keys.Quit) {
			return tea.Quit
		}
		m.alert = ""
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Continue):
		return m.continueWriting()
	case key.Matches(msg, m.keys.ClearError):
		m.ctrl.Machine().Send(continuation.Event{Type: continuation.ClearError})
		return nil
	case key.Matches(msg, m.keys.NextFocus), key.Matches(msg, m.keys.PrevFocus):
		m.toggleFocus()
		return nil
	}

	if m.focus == focusButton {
		if key.Matches(msg, m.keys.Press) {
			return m.continueWriting()
		}
		return nil
	}
	m.editKey(msg)
	return nil
}

// continueWriting is the button action. The request runs as a command so the
// editor stays usable while it is pending.
func (m *model) continueWriting() tea.Cmd {
	text, ok := m.ctrl.Begin()
	if !ok {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	request := func() tea.Msg {
		out, err := ctrl.Run(ctx, text)
		return continuationMsg{input: text, text: out, err: err}
	}
	return tea.Batch(m.spinner.Tick, request)
}

func (m *model) toggleFocus() {
	if m.focus == focusEditor {
		m.focus = focusButton
		m.view.Blur()
		return
	}
	m.focus = focusEditor
	m.view.Focus()
}

func (m *model) editKey(msg tea.KeyMsg) {
	v, k := m.view, m.keys
	switch {
	case key.Matches(msg, k.Left):
		v.MoveLeft(false)
	case key.Matches(msg, k.Right):
		v.MoveRight(false)
	case key.Matches(msg, k.Up):
		v.MoveUp(false)
	case key.Matches(msg, k.Down):
		v.MoveDown(false)
	case key.Matches(msg, k.ShiftLeft):
		v.MoveLeft(true)
	case key.Matches(msg, k.ShiftRight):
		v.MoveRight(true)
	case key.Matches(msg, k.ShiftUp):
		v.MoveUp(true)
	case key.Matches(msg, k.ShiftDown):
		v.MoveDown(true)
	case key.Matches(msg, k.Home):
		v.Home(false)
	case key.Matches(msg, k.End):
		v.End(false)
	case key.Matches(msg, k.SelectAll):
		v.SelectAll()
	case key.Matches(msg, k.Backspace):
		v.Backspace()
	case key.Matches(msg, k.Delete):
		v.DeleteForward()
	case key.Matches(msg, k.Enter):
		v.Newline()
	case key.Matches(msg, k.Bold):
		v.ToggleMark(document.Bold)
	case key.Matches(msg, k.Italic):
		v.ToggleMark(document.Italic)
	case key.Matches(msg, k.Code):
		v.ToggleMark(document.Code)
	case key.Matches(msg, k.Undo):
		v.Undo()
	case key.Matches(msg, k.Redo):
		v.Redo()
	case msg.Type == tea.KeySpace:
		v.InsertText(" ")
	case msg.Type == tea.KeyRunes && !msg.Alt:
		insertTyped(v, string(msg.Runes))
	}
}

// insertTyped inserts typed or pasted text, splitting blocks at newlines.
func insertTyped(v *editor.View, text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			v.Newline()
		}
		v.InsertText(line)
	}
}

func (m *model) View() string {
	var sb strings.Builder
	sb.WriteString(m.st.title.Render("Aieditor"))
	sb.WriteString("\n\n")

	box := m.st.box
	if m.focus == focusEditor {
		box = m.st.boxFocused
	}
	if m.width > 4 {
		box = box.Width(m.width - 4)
	}
	sb.WriteString(box.Render(editor.Render(m.view, m.edStyle)))
	sb.WriteString("\n")
	sb.WriteString(m.buttonView())
	sb.WriteString("\n")

	snap := m.ctrl.Machine().Snapshot()
	if snap.State == continuation.Error {
		sb.WriteString(m.st.errorText.Render(snap.Context.Error))
		sb.WriteString("\n")
	}
	if m.alert != "" {
		sb.WriteString("\n")
		sb.WriteString(m.st.alert.Render(m.alert + "\n\npress any key"))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(m.help.View(m.keys))
	return sb.String()
}

func (m *model) buttonView() string {
	if m.loading() {
		return m.spinner.View() + " " + m.st.buttonBusy.Render(buttonLoadingLabel)
	}
	if m.focus == focusButton {
		return m.st.buttonFocus.Render(buttonLabel)
	}
	return m.st.button.Render(buttonLabel)
}
