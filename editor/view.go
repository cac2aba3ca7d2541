// Package editor is the editing surface: a live document state, a set of
// presentation classes and the plugins that react to focus, blur and typed
// text.
//
// A View is created once with New, held for the lifetime of the program and
// released with Destroy. It is driven from a single goroutine (the UI loop).
package editor

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Paranoid-AF/aieditor/document"
)

// MetaAddToHistory, set to false on a transaction, keeps it out of undo history.
const MetaAddToHistory = "addToHistory"

// ErrDestroyed is returned when a destroyed view is asked to apply a change.
var ErrDestroyed = errors.New("editor: view destroyed")

// Plugin hooks into view events. A handler returning true consumes the event
// and stops later plugins and the default handling.
type Plugin struct {
	Name string

	HandleFocus func(v *View) bool
	HandleBlur  func(v *View) bool

	// HandleTextInput runs before text replaces the range from..to.
	HandleTextInput func(v *View, from, to int, text string) bool
}

// Options configures a new View.
type Options struct {
	Doc     document.Doc
	Plugins []Plugin
	Classes []string

	// HistoryLimit caps undo steps; zero means document.DefaultHistoryLimit,
	// negative disables history.
	HistoryLimit int

	// OnChange is called after every applied transaction.
	OnChange func(v *View, tr *document.Transaction)
}

// View owns the live editor state.
type View struct {
	state     document.State
	plugins   []Plugin
	classes   map[string]bool
	history   *document.History
	onChange  func(*View, *document.Transaction)
	focused   bool
	destroyed bool
}

// New initializes a view. Plugins run in the order given.
func New(opts Options) *View {
	limit := opts.HistoryLimit
	if limit == 0 {
		limit = document.DefaultHistoryLimit
	}
	v := &View{
		state:    document.NewState(opts.Doc),
		plugins:  append([]Plugin(nil), opts.Plugins...),
		classes:  make(map[string]bool),
		history:  document.NewHistory(limit),
		onChange: opts.OnChange,
	}
	for _, c := range opts.Classes {
		v.classes[c] = true
	}
	return v
}

// State returns the current editor state.
func (v *View) State() document.State { return v.state }

// Doc returns the current document.
func (v *View) Doc() document.Doc { return v.state.Doc }

// Dispatch applies tr to the view. The transaction is applied whole or not at all.
func (v *View) Dispatch(tr *document.Transaction) error {
	if v.destroyed {
		return ErrDestroyed
	}
	prev := v.state
	next, err := prev.Apply(tr)
	if err != nil {
		slog.Debug("editor: transaction rejected", "error", err)
		return fmt.Errorf("dispatch: %w", err)
	}
	v.state = next
	if tr.DocChanged() && recordsHistory(tr) {
		v.history.Record(prev)
	}
	if v.onChange != nil {
		v.onChange(v, tr)
	}
	return nil
}

func recordsHistory(tr *document.Transaction) bool {
	val, ok := tr.Meta(MetaAddToHistory)
	if !ok {
		return true
	}
	add, isBool := val.(bool)
	return !isBool || add
}

// Focus gives the view focus and runs the focus handlers.
func (v *View) Focus() {
	if v.destroyed || v.focused {
		return
	}
	v.focused = true
	for _, p := range v.plugins {
		if p.HandleFocus != nil && p.HandleFocus(v) {
			return
		}
	}
}

// Blur removes focus and runs the blur handlers.
func (v *View) Blur() {
	if v.destroyed || !v.focused {
		return
	}
	v.focused = false
	for _, p := range v.plugins {
		if p.HandleBlur != nil && p.HandleBlur(v) {
			return
		}
	}
}

// Focused reports whether the view has focus.
func (v *View) Focused() bool { return v.focused }

func (v *View) HasClass(name string) bool { return v.classes[name] }

func (v *View) AddClass(name string) { v.classes[name] = true }

func (v *View) RemoveClass(name string) { delete(v.classes, name) }

// Destroy tears the view down. Later dispatches fail with ErrDestroyed.
func (v *View) Destroy() {
	if v.destroyed {
		return
	}
	v.destroyed = true
	v.focused = false
	v.plugins = nil
	v.onChange = nil
}

// Destroyed reports whether Destroy was called.
func (v *View) Destroyed() bool { return v.destroyed }

// Undo reverts the last recorded change.
func (v *View) Undo() bool { return v.travel(v.history.Undo) }

// Redo reapplies the last undone change.
func (v *View) Redo() bool { return v.travel(v.history.Redo) }

func (v *View) travel(step func(document.State) (document.State, bool)) bool {
	if v.destroyed {
		return false
	}
	next, ok := step(v.state)
	if ok {
		v.state = next
	}
	return ok
}
