package main

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the editor key bindings.
//
// Bindings must be portable across terminals (ctrl/alt fallbacks).
type keyMap struct {
	Continue, ClearError key.Binding
	NextFocus, PrevFocus key.Binding
	Press                key.Binding
	Quit                 key.Binding

	Left, Right, Up, Down                     key.Binding
	ShiftLeft, ShiftRight, ShiftUp, ShiftDown key.Binding
	Home, End                                 key.Binding
	SelectAll                                 key.Binding

	Backspace, Delete key.Binding
	Enter             key.Binding

	Bold, Italic, Code key.Binding
	Undo, Redo         key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Continue:   key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "continue writing")),
		ClearError: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear error")),
		NextFocus:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "editor/button")),
		PrevFocus:  key.NewBinding(key.WithKeys("shift+tab")),
		Press:      key.NewBinding(key.WithKeys("enter", " ", "space"), key.WithHelp("enter", "press")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),

		Left:  key.NewBinding(key.WithKeys("left")),
		Right: key.NewBinding(key.WithKeys("right")),
		Up:    key.NewBinding(key.WithKeys("up")),
		Down:  key.NewBinding(key.WithKeys("down")),

		ShiftLeft:  key.NewBinding(key.WithKeys("shift+left")),
		ShiftRight: key.NewBinding(key.WithKeys("shift+right")),
		ShiftUp:    key.NewBinding(key.WithKeys("shift+up")),
		ShiftDown:  key.NewBinding(key.WithKeys("shift+down")),

		Home:      key.NewBinding(key.WithKeys("home")),
		End:       key.NewBinding(key.WithKeys("end", "ctrl+e")),
		SelectAll: key.NewBinding(key.WithKeys("ctrl+a")),

		Backspace: key.NewBinding(key.WithKeys("backspace", "ctrl+h")),
		Delete:    key.NewBinding(key.WithKeys("delete")),
		Enter:     key.NewBinding(key.WithKeys("enter")),

		Bold:   key.NewBinding(key.WithKeys("ctrl+b"), key.WithHelp("ctrl+b", "bold")),
		Italic: key.NewBinding(key.WithKeys("alt+i"), key.WithHelp("alt+i", "italic")),
		Code:   key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "code")),
		Undo:   key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "undo")),
		Redo:   key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "redo")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Continue, k.NextFocus, k.Bold, k.Undo, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Continue, k.ClearError, k.NextFocus, k.Press, k.Quit},
		{k.Bold, k.Italic, k.Code, k.Undo, k.Redo},
	}
}
