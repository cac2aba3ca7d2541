package document

// DefaultHistoryLimit is the number of undo steps kept by NewHistory.
const DefaultHistoryLimit = 100

// History keeps snapshot undo and redo stacks of editor states.
type History struct {
	limit int
	undo  []State
	redo  []State
}

// NewHistory returns a history keeping at most limit undo steps. A limit of
// zero or less disables recording.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Record pushes prev as an undo step and drops the redo stack.
func (h *History) Record(prev State) {
	if h.limit <= 0 {
		return
	}
	h.undo = append(h.undo, prev)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
	h.redo = nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Undo returns the state before the last recorded change. cur becomes the
// next redo step.
func (h *History) Undo(cur State) (State, bool) {
	if len(h.undo) == 0 {
		return cur, false
	}
	i := len(h.undo) - 1
	prev := h.undo[i]
	h.undo = h.undo[:i]
	h.redo = append(h.redo, cur)
	return prev, true
}

// Redo reapplies the last undone change.
func (h *History) Redo(cur State) (State, bool) {
	if len(h.redo) == 0 {
		return cur, false
	}
	i := len(h.redo) - 1
	next := h.redo[i]
	h.redo = h.redo[:i]
	if h.limit > 0 {
		h.undo = append(h.undo, cur)
		if len(h.undo) > h.limit {
			h.undo = h.undo[len(h.undo)-h.limit:]
		}
	}
	return next, true
}
