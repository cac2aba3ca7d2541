package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Paranoid-AF/aieditor/continuation"
	"github.com/Paranoid-AF/aieditor/editor"
)

type stubCompleter struct {
	text  string
	err   error
	calls int
}

func (s *stubCompleter) Continue(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func newTestModel(c continuation.Completer) *model {
	view := editor.NewWithPlaceholder(editor.DefaultPlaceholder, editor.InputRulesPlugin())
	return newModel(context.Background(), view, c, continuation.Options{})
}

func send(m *model, msg tea.Msg) tea.Cmd {
	_, cmd := m.Update(msg)
	return cmd
}

func typeText(m *model, text string) {
	for _, r := range text {
		if r == ' ' {
			send(m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// collect runs cmd and any batched commands, returning every message produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findResult(msgs []tea.Msg) (continuationMsg, bool) {
	for _, msg := range msgs {
		if r, ok := msg.(continuationMsg); ok {
			return r, true
		}
	}
	return continuationMsg{}, false
}

func TestTabFocusSwapsPlaceholder(t *testing.T) {
	m := newTestModel(&stubCompleter{})
	if !m.view.HasClass(editor.PlaceholderClass) {
		t.Fatal("expected placeholder class at start")
	}

	send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusEditor || !m.view.Focused() {
		t.Fatal("expected editor focus after tab")
	}
	if got := m.view.Doc().TextContent(); got != "" {
		t.Errorf("expected placeholder removed, got %q", got)
	}

	send(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusButton || m.view.Focused() {
		t.Fatal("expected button focus after second tab")
	}
	if got := m.view.Doc().TextContent(); got != editor.DefaultPlaceholder {
		t.Errorf("expected placeholder restored, got %q", got)
	}
}

func TestContinueWritingSplicesResult(t *testing.T) {
	stub := &stubCompleter{text: "and the rain continued."}
	m := newTestModel(stub)

	send(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "The storm rolled in")
	send(m, tea.KeyMsg{Type: tea.KeyTab})

	cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.loading() {
		t.Fatal("expected loading after pressing the button")
	}
	if !strings.Contains(m.View(), buttonLoadingLabel) {
		t.Error("expected loading label while the request is pending")
	}

	// A second press while loading is dropped.
	if extra := send(m, tea.KeyMsg{Type: tea.KeyCtrlG}); extra != nil {
		t.Error("expected no command while loading")
	}

	result, ok := findResult(collect(cmd))
	if !ok {
		t.Fatal("expected a continuation result message")
	}
	send(m, result)

	if stub.calls != 1 {
		t.Errorf("expected 1 request, got %d", stub.calls)
	}
	want := "The storm rolled in and the rain continued."
	if got := m.view.Doc().TextContent(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if m.loading() {
		t.Error("expected idle after the result")
	}
	if !strings.Contains(m.View(), buttonLabel) {
		t.Error("expected button label back")
	}
}

func TestEditsWhilePendingAreKept(t *testing.T) {
	m := newTestModel(&stubCompleter{text: "Then silence."})
	send(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "It was late at night")

	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if cmd == nil {
		t.Fatal("expected a request command")
	}
	typeText(m, " again")

	result, _ := findResult(collect(cmd))
	send(m, result)

	want := "It was late at night again Then silence."
	if got := m.view.Doc().TextContent(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestShortTextShowsAlert(t *testing.T) {
	stub := &stubCompleter{text: "never"}
	m := newTestModel(stub)

	if cmd := send(m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no request for placeholder text")
	}
	if stub.calls != 0 {
		t.Errorf("expected no request, got %d", stub.calls)
	}
	if m.alert != continuation.ShortTextMessage {
		t.Errorf("expected alert %q, got %q", continuation.ShortTextMessage, m.alert)
	}
	if !m.ctrl.Machine().Matches(continuation.Error) {
		t.Error("expected error state")
	}

	// Any key dismisses the alert; the error line stays.
	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.alert != "" {
		t.Error("expected alert dismissed")
	}
	if !strings.Contains(m.View(), continuation.ShortTextMessage) {
		t.Error("expected error message in view")
	}
}

func TestFailureShowsPrefixedError(t *testing.T) {
	m := newTestModel(&stubCompleter{err: errors.New("API failed with status 500")})
	send(m, tea.KeyMsg{Type: tea.KeyTab})
	typeText(m, "Once upon a time")

	result, _ := findResult(collect(send(m, tea.KeyMsg{Type: tea.KeyCtrlG})))
	send(m, result)

	want := "Failed to continue text: API failed with status 500"
	if got := m.ctrl.Machine().Error(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if !strings.Contains(m.View(), want) {
		t.Error("expected error message in view")
	}
}

func TestPasteSplitsBlocks(t *testing.T) {
	m := newTestModel(&stubCompleter{})
	send(m, tea.KeyMsg{Type: tea.KeyTab})
	send(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("first\nsecond"), Paste: true})

	got := m.view.Doc().BlockTexts()
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("expected two blocks, got %q", got)
	}
}

func TestTerminalBlurRestoresPlaceholder(t *testing.T) {
	m := newTestModel(&stubCompleter{})
	send(m, tea.KeyMsg{Type: tea.KeyTab})
	send(m, tea.BlurMsg{})
	if !m.view.HasClass(editor.PlaceholderClass) {
		t.Error("expected placeholder after terminal blur")
	}
	send(m, tea.FocusMsg{})
	if m.view.HasClass(editor.PlaceholderClass) {
		t.Error("expected placeholder removed after terminal focus")
	}
}

func TestQuit(t *testing.T) {
	m := newTestModel(&stubCompleter{})
	cmd := send(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}
