package editor

import (
	"unicode/utf8"

	"github.com/Paranoid-AF/aieditor/document"
)

// InsertText replaces the selection with text. Text input plugins run first.
func (v *View) InsertText(text string) bool {
	if v.destroyed || text == "" {
		return false
	}
	sel := v.state.Selection
	for _, p := range v.plugins {
		if p.HandleTextInput != nil && p.HandleTextInput(v, sel.From(), sel.To(), text) {
			return true
		}
	}
	return v.Dispatch(v.state.Tr().ReplaceSelectionWith(text)) == nil
}

// Newline splits the current block at the cursor. An empty bullet item turns
// back into a paragraph and a heading split at its end continues as a paragraph.
func (v *View) Newline() bool {
	tr := v.state.Tr()
	sel := v.state.Selection
	if !sel.Empty() {
		tr.Delete(sel.From(), sel.To())
	}
	pos := tr.MapPos(sel.From())
	bi, off, err := tr.Doc().Resolve(pos)
	if err != nil {
		return false
	}
	b := tr.Doc().Block(bi)
	switch {
	case b.Type == document.BulletItem && b.Len() == 0:
		tr.SetBlockType(pos, document.Paragraph, 0)
	case b.Type == document.Heading && off == b.Len():
		tr.SplitBlock(pos, document.Paragraph)
	default:
		tr.SplitBlock(pos)
	}
	return v.Dispatch(tr) == nil
}

// Backspace deletes the selection or the character before the cursor. At the
// start of a block it first resets the block to a paragraph, then joins it
// with the previous block.
func (v *View) Backspace() bool {
	sel := v.state.Selection
	tr := v.state.Tr()
	if !sel.Empty() {
		return v.Dispatch(tr.Delete(sel.From(), sel.To())) == nil
	}
	pos := sel.Head
	bi, off, err := v.Doc().Resolve(pos)
	if err != nil {
		return false
	}
	switch {
	case off > 0:
		tr.Delete(pos-1, pos)
	case v.Doc().Block(bi).Type != document.Paragraph:
		tr.SetBlockType(pos, document.Paragraph, 0)
	case bi > 0:
		tr.JoinBackward(pos)
	default:
		return false
	}
	return v.Dispatch(tr) == nil
}

// DeleteForward deletes the selection or the character after the cursor,
// joining the next block when the cursor is at a block end.
func (v *View) DeleteForward() bool {
	sel := v.state.Selection
	tr := v.state.Tr()
	if !sel.Empty() {
		return v.Dispatch(tr.Delete(sel.From(), sel.To())) == nil
	}
	pos := sel.Head
	bi, off, err := v.Doc().Resolve(pos)
	if err != nil {
		return false
	}
	switch {
	case off < v.Doc().Block(bi).Len():
		tr.Delete(pos, pos+1)
	case bi < v.Doc().BlockCount()-1:
		tr.JoinBackward(pos + 2)
	default:
		return false
	}
	return v.Dispatch(tr) == nil
}

// ToggleMark toggles mark on the selection, or on the next typed text when
// the selection is empty.
func (v *View) ToggleMark(mark document.Mark) bool {
	sel := v.state.Selection
	tr := v.state.Tr()
	if sel.Empty() {
		cur, ok := v.state.StoredMarks()
		if !ok {
			bi, off, err := v.Doc().Resolve(sel.Head)
			if err != nil {
				return false
			}
			cur = v.Doc().Block(bi).MarksAt(off)
		}
		tr.SetStoredMarks(cur ^ mark)
	} else {
		tr.ToggleMark(sel.From(), sel.To(), mark)
	}
	return v.Dispatch(tr) == nil
}

// Cursor movement. With extend set the anchor stays and the selection grows.

func (v *View) MoveLeft(extend bool) bool {
	sel := v.state.Selection
	if !sel.Empty() && !extend {
		return v.setSelection(document.Cursor(sel.From()))
	}
	d := v.Doc()
	bi, off, err := d.Resolve(sel.Head)
	if err != nil {
		return false
	}
	head := sel.Head - 1
	if off == 0 {
		if bi == 0 {
			return false
		}
		head = d.ContentEnd(bi - 1)
	}
	return v.moveHead(head, extend)
}

func (v *View) MoveRight(extend bool) bool {
	sel := v.state.Selection
	if !sel.Empty() && !extend {
		return v.setSelection(document.Cursor(sel.To()))
	}
	d := v.Doc()
	bi, off, err := d.Resolve(sel.Head)
	if err != nil {
		return false
	}
	head := sel.Head + 1
	if off == d.Block(bi).Len() {
		if bi == d.BlockCount()-1 {
			return false
		}
		head = d.ContentStart(bi + 1)
	}
	return v.moveHead(head, extend)
}

// MoveUp moves to the previous block, keeping the column where possible.
func (v *View) MoveUp(extend bool) bool { return v.moveBlock(-1, extend) }

// MoveDown moves to the next block, keeping the column where possible.
func (v *View) MoveDown(extend bool) bool { return v.moveBlock(1, extend) }

func (v *View) moveBlock(delta int, extend bool) bool {
	d := v.Doc()
	bi, off, err := d.Resolve(v.state.Selection.Head)
	if err != nil {
		return false
	}
	target := bi + delta
	if target < 0 {
		return v.moveHead(d.ContentStart(0), extend)
	}
	if target >= d.BlockCount() {
		return v.moveHead(d.ContentEnd(d.BlockCount()-1), extend)
	}
	return v.moveHead(d.ContentStart(target)+min(off, d.Block(target).Len()), extend)
}

// Home moves to the start of the current block.
func (v *View) Home(extend bool) bool {
	bi, _, err := v.Doc().Resolve(v.state.Selection.Head)
	if err != nil {
		return false
	}
	return v.moveHead(v.Doc().ContentStart(bi), extend)
}

// End moves to the end of the current block.
func (v *View) End(extend bool) bool {
	bi, _, err := v.Doc().Resolve(v.state.Selection.Head)
	if err != nil {
		return false
	}
	return v.moveHead(v.Doc().ContentEnd(bi), extend)
}

// SelectAll selects the whole document.
func (v *View) SelectAll() bool {
	d := v.Doc()
	return v.setSelection(document.Selection{Anchor: 1, Head: d.ContentEnd(d.BlockCount() - 1)})
}

func (v *View) moveHead(head int, extend bool) bool {
	sel := document.Cursor(head)
	if extend {
		sel.Anchor = v.state.Selection.Anchor
	}
	return v.setSelection(sel)
}

func (v *View) setSelection(sel document.Selection) bool {
	if sel == v.state.Selection {
		return false
	}
	return v.Dispatch(v.state.Tr().SetSelection(sel)) == nil
}

// InputRulesPlugin turns a paragraph into a heading when it starts with one
// to six '#' followed by a space, and into a bullet item on "- " or "* ".
func InputRulesPlugin() Plugin {
	return Plugin{
		Name: "input-rules",
		HandleTextInput: func(v *View, from, to int, text string) bool {
			if text != " " || from != to {
				return false
			}
			d := v.Doc()
			bi, off, err := d.Resolve(from)
			if err != nil {
				return false
			}
			b := d.Block(bi)
			if b.Type != document.Paragraph || off == 0 || off > 6 {
				return false
			}
			prefix := string([]rune(b.Text())[:off])

			var (
				t     document.BlockType
				level int
			)
			switch {
			case prefix == "-" || prefix == "*":
				t = document.BulletItem
			case isHashes(prefix):
				t, level = document.Heading, utf8.RuneCountInString(prefix)
			default:
				return false
			}
			start := d.ContentStart(bi)
			tr := v.State().Tr().Delete(start, from).SetBlockType(start, t, level)
			return v.Dispatch(tr) == nil
		},
	}
}

func isHashes(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '#' {
			return false
		}
	}
	return true
}
