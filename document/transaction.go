package document

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidPos is returned when a position does not address document content.
var ErrInvalidPos = errors.New("invalid position")

// stepMap records how one step moved positions: oldSize positions starting at
// pos were replaced by newSize positions.
type stepMap struct {
	pos, oldSize, newSize int
}

// mapPos maps p through the step. Positions inside the replaced range, and a
// position exactly at an insertion point, move to the end of the new content.
func (m stepMap) mapPos(p int) int {
	if p < m.pos {
		return p
	}
	if p >= m.pos+m.oldSize {
		return p + m.newSize - m.oldSize
	}
	return m.pos + m.newSize
}

// Transaction accumulates edits against a state. Steps apply to a working copy
// of the document; nothing is visible until the transaction is dispatched.
// The first failing step poisons the transaction and later steps are ignored.
type Transaction struct {
	before State
	doc    Doc
	sel    Selection
	selSet bool

	storedMarks    Mark
	hasStoredMarks bool
	storedSetHere  bool

	maps []stepMap
	meta map[string]any
	err  error
}

// Doc returns the document as modified by the steps so far.
func (tr *Transaction) Doc() Doc { return tr.doc }

// Before returns the state the transaction was created from.
func (tr *Transaction) Before() State { return tr.before }

// Err returns the first step error, if any.
func (tr *Transaction) Err() error { return tr.err }

// DocChanged reports whether any step modified the document.
func (tr *Transaction) DocChanged() bool { return len(tr.maps) > 0 }

// Steps returns the number of document steps applied.
func (tr *Transaction) Steps() int { return len(tr.maps) }

// SetMeta attaches a metadata value to the transaction.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns a metadata value set with SetMeta.
func (tr *Transaction) Meta(key string) (any, bool) {
	v, ok := tr.meta[key]
	return v, ok
}

// Selection returns the selection the transaction will produce.
func (tr *Transaction) Selection() Selection {
	if tr.selSet {
		return tr.sel
	}
	return tr.mapSelection(tr.before.Selection)
}

// MapPos maps a position from the original document through every step.
func (tr *Transaction) MapPos(p int) int {
	for _, m := range tr.maps {
		p = m.mapPos(p)
	}
	return p
}

func (tr *Transaction) mapSelection(s Selection) Selection {
	return Selection{Anchor: tr.MapPos(s.Anchor), Head: tr.MapPos(s.Head)}
}

func (tr *Transaction) fail(err error) *Transaction {
	if tr.err == nil {
		tr.err = err
	}
	return tr
}

func (tr *Transaction) step(doc Doc, m stepMap) {
	tr.doc = doc
	tr.maps = append(tr.maps, m)
	if tr.selSet {
		tr.sel = Selection{Anchor: m.mapPos(tr.sel.Anchor), Head: m.mapPos(tr.sel.Head)}
	}
}

// InsertText inserts text at pos, inheriting the marks at that point (or the
// stored marks when set).
func (tr *Transaction) InsertText(text string, pos int) *Transaction {
	if tr.err != nil || text == "" {
		return tr
	}
	bi, off, err := tr.doc.Resolve(pos)
	if err != nil {
		return tr.fail(fmt.Errorf("insert text: %w", err))
	}

	blocks := tr.doc.Blocks()
	b := blocks[bi]
	marks := b.MarksAt(off)
	if tr.hasStoredMarks {
		marks = tr.storedMarks
	}

	chars, cm := b.explode()
	ins := []rune(text)
	nc := make([]rune, 0, len(chars)+len(ins))
	nm := make([]Mark, 0, len(chars)+len(ins))
	nc = append(nc, chars[:off]...)
	nm = append(nm, cm[:off]...)
	for _, c := range ins {
		nc = append(nc, c)
		nm = append(nm, marks)
	}
	nc = append(nc, chars[off:]...)
	nm = append(nm, cm[off:]...)
	blocks[bi] = b.withContent(nc, nm)

	tr.step(Doc{blocks: blocks}, stepMap{pos: pos, newSize: len(ins)})
	return tr
}

// Delete removes the content between from and to. Both ends must be text
// positions (joining the blocks they fall in) or both block boundaries
// (removing whole blocks).
func (tr *Transaction) Delete(from, to int) *Transaction {
	if tr.err != nil {
		return tr
	}
	if from > to {
		from, to = to, from
	}
	if from == to {
		return tr
	}

	if fk, fok := tr.doc.boundaryIndex(from); fok {
		if tk, tok := tr.doc.boundaryIndex(to); tok {
			return tr.deleteBlocks(from, to, fk, tk)
		}
	}

	fb, fo, err := tr.doc.Resolve(from)
	if err != nil {
		return tr.fail(fmt.Errorf("delete: %w", err))
	}
	tb, to2, err := tr.doc.Resolve(to)
	if err != nil {
		return tr.fail(fmt.Errorf("delete: %w", err))
	}

	blocks := tr.doc.Blocks()
	fc, fm := blocks[fb].explode()
	tc, tm := blocks[tb].explode()

	nc := append(append([]rune(nil), fc[:fo]...), tc[to2:]...)
	nm := append(append([]Mark(nil), fm[:fo]...), tm[to2:]...)
	joined := blocks[fb].withContent(nc, nm)

	out := make([]Block, 0, len(blocks)-(tb-fb))
	out = append(out, blocks[:fb]...)
	out = append(out, joined)
	out = append(out, blocks[tb+1:]...)

	tr.step(Doc{blocks: out}, stepMap{pos: from, oldSize: to - from})
	return tr
}

func (tr *Transaction) deleteBlocks(from, to, fk, tk int) *Transaction {
	blocks := tr.doc.Blocks()
	out := make([]Block, 0, len(blocks)-(tk-fk))
	out = append(out, blocks[:fk]...)
	out = append(out, blocks[tk:]...)
	newSize := 0
	if len(out) == 0 {
		// A document never loses its last block.
		out = []Block{NewParagraph("")}
		newSize = 2
	}
	tr.step(Doc{blocks: out}, stepMap{pos: from, oldSize: to - from, newSize: newSize})
	return tr
}

// Insert places whole blocks at pos, which must be a block boundary.
func (tr *Transaction) Insert(pos int, blocks ...Block) *Transaction {
	if tr.err != nil || len(blocks) == 0 {
		return tr
	}
	k, ok := tr.doc.boundaryIndex(pos)
	if !ok {
		return tr.fail(fmt.Errorf("insert block: %w: %d is not a block boundary", ErrInvalidPos, pos))
	}

	cur := tr.doc.Blocks()
	out := make([]Block, 0, len(cur)+len(blocks))
	out = append(out, cur[:k]...)
	size := 0
	for _, b := range blocks {
		out = append(out, b.clone())
		size += b.NodeSize()
	}
	out = append(out, cur[k:]...)

	tr.step(Doc{blocks: out}, stepMap{pos: pos, newSize: size})
	return tr
}

// SplitBlock splits the block containing pos in two. The tail keeps the
// block's type unless newType is given.
func (tr *Transaction) SplitBlock(pos int, newType ...BlockType) *Transaction {
	if tr.err != nil {
		return tr
	}
	bi, off, err := tr.doc.Resolve(pos)
	if err != nil {
		return tr.fail(fmt.Errorf("split block: %w", err))
	}

	blocks := tr.doc.Blocks()
	b := blocks[bi]
	chars, marks := b.explode()
	head := b.withContent(chars[:off], marks[:off])
	tail := b.withContent(chars[off:], marks[off:])
	if len(newType) > 0 {
		tail.Type = newType[0]
		if tail.Type != Heading {
			tail.Level = 0
		}
	}

	out := make([]Block, 0, len(blocks)+1)
	out = append(out, blocks[:bi]...)
	out = append(out, head, tail)
	out = append(out, blocks[bi+1:]...)

	tr.step(Doc{blocks: out}, stepMap{pos: pos, newSize: 2})
	return tr
}

// JoinBackward merges the block whose content starts at pos into the block
// before it. It fails when pos is not the start of a block after the first.
func (tr *Transaction) JoinBackward(pos int) *Transaction {
	if tr.err != nil {
		return tr
	}
	bi, off, err := tr.doc.Resolve(pos)
	if err != nil {
		return tr.fail(fmt.Errorf("join: %w", err))
	}
	if off != 0 || bi == 0 {
		return tr.fail(fmt.Errorf("join: %w: %d is not the start of a joinable block", ErrInvalidPos, pos))
	}
	return tr.Delete(pos-2, pos)
}

// SetBlockType changes the type of the block containing pos.
func (tr *Transaction) SetBlockType(pos int, t BlockType, level int) *Transaction {
	if tr.err != nil {
		return tr
	}
	bi, _, err := tr.doc.Resolve(pos)
	if err != nil {
		return tr.fail(fmt.Errorf("set block type: %w", err))
	}
	blocks := tr.doc.Blocks()
	blocks[bi].Type = t
	blocks[bi].Level = 0
	if t == Heading {
		blocks[bi].Level = clampLevel(level)
	}
	tr.step(Doc{blocks: blocks}, stepMap{pos: pos})
	return tr
}

// AddMark sets mark on the text between from and to.
func (tr *Transaction) AddMark(from, to int, mark Mark) *Transaction {
	return tr.updateMarks(from, to, func(m Mark) Mark { return m | mark })
}

// RemoveMark clears mark on the text between from and to.
func (tr *Transaction) RemoveMark(from, to int, mark Mark) *Transaction {
	return tr.updateMarks(from, to, func(m Mark) Mark { return m &^ mark })
}

func (tr *Transaction) updateMarks(from, to int, fn func(Mark) Mark) *Transaction {
	if tr.err != nil {
		return tr
	}
	if from > to {
		from, to = to, from
	}
	fb, fo, err := tr.doc.Resolve(from)
	if err != nil {
		return tr.fail(fmt.Errorf("mark: %w", err))
	}
	tb, to2, err := tr.doc.Resolve(to)
	if err != nil {
		return tr.fail(fmt.Errorf("mark: %w", err))
	}

	blocks := tr.doc.Blocks()
	for i := fb; i <= tb; i++ {
		chars, marks := blocks[i].explode()
		start, end := 0, len(chars)
		if i == fb {
			start = fo
		}
		if i == tb {
			end = to2
		}
		for k := start; k < end; k++ {
			marks[k] = fn(marks[k])
		}
		blocks[i] = blocks[i].withContent(chars, marks)
	}
	tr.step(Doc{blocks: blocks}, stepMap{pos: from})
	return tr
}

// ToggleMark removes mark when the whole range already carries it and adds it otherwise.
func (tr *Transaction) ToggleMark(from, to int, mark Mark) *Transaction {
	if tr.doc.RangeHasMark(from, to, mark) {
		return tr.RemoveMark(from, to, mark)
	}
	return tr.AddMark(from, to, mark)
}

// RangeHasMark reports whether every character between from and to carries mark.
func (d Doc) RangeHasMark(from, to int, mark Mark) bool {
	if from > to {
		from, to = to, from
	}
	fb, fo, err := d.Resolve(from)
	if err != nil {
		return false
	}
	tb, to2, err := d.Resolve(to)
	if err != nil {
		return false
	}
	seen := false
	for i := fb; i <= tb; i++ {
		_, marks := d.Block(i).explode()
		start, end := 0, len(marks)
		if i == fb {
			start = fo
		}
		if i == tb {
			end = to2
		}
		for k := start; k < end; k++ {
			seen = true
			if !marks[k].Has(mark) {
				return false
			}
		}
	}
	return seen
}

// SetSelection replaces the resulting selection; later steps still map it.
func (tr *Transaction) SetSelection(s Selection) *Transaction {
	if tr.err != nil {
		return tr
	}
	tr.sel = Selection{Anchor: tr.doc.ClampPos(s.Anchor), Head: tr.doc.ClampPos(s.Head)}
	tr.selSet = true
	return tr
}

// SetStoredMarks sets the marks applied to the next typed text.
func (tr *Transaction) SetStoredMarks(m Mark) *Transaction {
	tr.storedMarks = m
	tr.hasStoredMarks = true
	tr.storedSetHere = true
	return tr
}

// ReplaceSelectionWith deletes the selection and inserts text at its start.
func (tr *Transaction) ReplaceSelectionWith(text string) *Transaction {
	sel := tr.Selection()
	from := sel.From()
	if !sel.Empty() {
		tr.Delete(from, sel.To())
	}
	tr.InsertText(text, from)
	if tr.err == nil {
		tr.SetSelection(Cursor(from + utf8.RuneCountInString(text)))
	}
	return tr
}
