package document

// Selection is a text selection between two positions. Anchor stays put
// while Head follows the cursor.
type Selection struct {
	Anchor int
	Head   int
}

// Cursor returns an empty selection at pos.
func Cursor(pos int) Selection { return Selection{Anchor: pos, Head: pos} }

// Empty reports whether the selection is a bare cursor.
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// From returns the smaller end of the selection.
func (s Selection) From() int { return min(s.Anchor, s.Head) }

// To returns the larger end of the selection.
func (s Selection) To() int { return max(s.Anchor, s.Head) }

// State is an immutable editor state: a document plus selection and stored marks.
type State struct {
	Doc       Doc
	Selection Selection

	storedMarks    Mark
	hasStoredMarks bool
}

// NewState returns a state for doc with the cursor at the start of the first block.
func NewState(doc Doc) State {
	doc = doc.ensure()
	return State{Doc: doc, Selection: Cursor(1)}
}

// StoredMarks returns the marks applied to the next typed text, if set.
func (s State) StoredMarks() (Mark, bool) { return s.storedMarks, s.hasStoredMarks }

// Tr starts a transaction against s.
func (s State) Tr() *Transaction {
	return &Transaction{
		before:         s,
		doc:            s.Doc.ensure(),
		storedMarks:    s.storedMarks,
		hasStoredMarks: s.hasStoredMarks,
	}
}

// Apply returns the state produced by tr. A failed transaction leaves s unchanged.
func (s State) Apply(tr *Transaction) (State, error) {
	if err := tr.Err(); err != nil {
		return s, err
	}
	next := State{
		Doc:       tr.doc,
		Selection: tr.Selection(),
	}
	next.Selection = Selection{
		Anchor: next.Doc.ClampPos(next.Selection.Anchor),
		Head:   next.Doc.ClampPos(next.Selection.Head),
	}
	switch {
	case tr.storedSetHere:
		next.storedMarks, next.hasStoredMarks = tr.storedMarks, true
	case !tr.DocChanged() && !tr.selSet:
		next.storedMarks, next.hasStoredMarks = s.storedMarks, s.hasStoredMarks
	}
	return next, nil
}
