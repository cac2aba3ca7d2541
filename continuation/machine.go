// Package continuation coordinates an AI continuation request with the
// editor: a small state machine tracks the request and a Controller drives
// it from the user's action to the edit that splices the result in.
package continuation

import "sync"

// State is a state of the continuation machine.
type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Error   State = "error"
)

// EventType names an event accepted by the machine.
type EventType string

const (
	Continue   EventType = "CONTINUE"
	Success    EventType = "SUCCESS"
	Failure    EventType = "FAILURE"
	ClearError EventType = "CLEAR_ERROR"
)

// DefaultErrorMessage is stored when a FAILURE carries no message.
const DefaultErrorMessage = "An unknown error occurred."

// Event is sent to the machine. Message is only read for FAILURE.
type Event struct {
	Type    EventType
	Message string
}

// Context is the data carried alongside the state.
type Context struct {
	// Error is the last failure message; empty means none.
	Error string
}

type action func(Context, Event) Context

type transition struct {
	target State
	action action
}

func clearError(c Context, _ Event) Context {
	c.Error = ""
	return c
}

func setError(c Context, ev Event) Context {
	c.Error = ev.Message
	if c.Error == "" {
		c.Error = DefaultErrorMessage
	}
	return c
}

// transitions is the whole machine. CLEAR_ERROR is accepted in idle only; an
// error is left by sending CONTINUE.
var transitions = map[State]map[EventType]transition{
	Idle: {
		Continue:   {target: Loading},
		ClearError: {target: Idle, action: clearError},
	},
	Loading: {
		Success: {target: Idle},
		Failure: {target: Error, action: setError},
	},
	Error: {
		Continue: {target: Loading},
	},
}

// entryActions run whenever a state is entered.
var entryActions = map[State]action{
	Idle: clearError,
}

// Transition computes the result of ev in state s. It reports false, with s
// and c unchanged, when s does not accept ev.
func Transition(s State, c Context, ev Event) (State, Context, bool) {
	t, ok := transitions[s][ev.Type]
	if !ok {
		return s, c, false
	}
	if t.action != nil {
		c = t.action(c, ev)
	}
	if entry := entryActions[t.target]; entry != nil {
		c = entry(c, ev)
	}
	return t.target, c, true
}

// Snapshot is the machine's state at one point in time.
type Snapshot struct {
	State   State
	Context Context
}

// Machine holds the current state and applies events through Transition.
// It is safe for concurrent use.
type Machine struct {
	mu        sync.Mutex
	snap      Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewMachine returns a machine in Idle.
func NewMachine() *Machine {
	return &Machine{
		snap:      Snapshot{State: Idle},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Send applies ev and reports whether it caused a transition. Listeners are
// called after every transition.
func (m *Machine) Send(ev Event) bool {
	m.mu.Lock()
	next, ctx, ok := Transition(m.snap.State, m.snap.Context, ev)
	if !ok {
		m.mu.Unlock()
		return false
	}
	m.snap = Snapshot{State: next, Context: ctx}
	snap := m.snap
	fns := make([]func(Snapshot), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
	return true
}

func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *Machine) State() State { return m.Snapshot().State }

// Error returns the current error message, empty when there is none.
func (m *Machine) Error() string { return m.Snapshot().Context.Error }

// Matches reports whether the machine is in s.
func (m *Machine) Matches(s State) bool { return m.State() == s }

// Subscribe registers fn to be called after each transition. The returned
// function removes it.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}
