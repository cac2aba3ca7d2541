package document

import (
	"fmt"
	"strings"
)

// Doc is an immutable document. It always holds at least one block.
type Doc struct {
	blocks []Block
}

// New returns a document of the given blocks, or a single empty paragraph.
func New(blocks ...Block) Doc {
	if len(blocks) == 0 {
		return Doc{blocks: []Block{NewParagraph("")}}
	}
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = b.clone()
	}
	return Doc{blocks: out}
}

// FromText returns a document with one paragraph per line of text.
func FromText(text string) Doc {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))
	for _, line := range lines {
		blocks = append(blocks, NewParagraph(line))
	}
	return New(blocks...)
}

func (d Doc) ensure() Doc {
	if len(d.blocks) == 0 {
		return New()
	}
	return d
}

// BlockCount returns the number of top-level blocks.
func (d Doc) BlockCount() int { return len(d.ensure().blocks) }

// Block returns block i.
func (d Doc) Block(i int) Block { return d.ensure().blocks[i].clone() }

// Blocks returns a copy of the top-level blocks.
func (d Doc) Blocks() []Block {
	d = d.ensure()
	out := make([]Block, len(d.blocks))
	for i, b := range d.blocks {
		out[i] = b.clone()
	}
	return out
}

// FirstBlock returns the first top-level block.
func (d Doc) FirstBlock() Block { return d.Block(0) }

// LastBlock returns the last top-level block.
func (d Doc) LastBlock() Block { return d.Block(d.BlockCount() - 1) }

// Size returns the total number of positions in the document.
func (d Doc) Size() int {
	n := 0
	for _, b := range d.ensure().blocks {
		n += b.NodeSize()
	}
	return n
}

// TextContent returns the text of all blocks concatenated without separators.
func (d Doc) TextContent() string {
	var sb strings.Builder
	for _, b := range d.ensure().blocks {
		sb.WriteString(b.Text())
	}
	return sb.String()
}

// BlockTexts returns the text content of every top-level block.
func (d Doc) BlockTexts() []string {
	blocks := d.ensure().blocks
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text()
	}
	return out
}

// PlainText joins the top-level block texts with newlines and trims the result.
func (d Doc) PlainText() string {
	return strings.TrimSpace(strings.Join(d.BlockTexts(), "\n"))
}

// BlockBoundary returns the position before block i (len gives the document end).
func (d Doc) BlockBoundary(i int) int {
	d = d.ensure()
	pos := 0
	for k := 0; k < i && k < len(d.blocks); k++ {
		pos += d.blocks[k].NodeSize()
	}
	return pos
}

// ContentStart returns the position of the first character of block i.
func (d Doc) ContentStart(i int) int { return d.BlockBoundary(i) + 1 }

// ContentEnd returns the position after the last character of block i.
func (d Doc) ContentEnd(i int) int { return d.ContentStart(i) + d.Block(i).Len() }

// Resolve maps a text position to a block index and rune offset in that block.
func (d Doc) Resolve(pos int) (block, offset int, err error) {
	d = d.ensure()
	start := 0
	for i, b := range d.blocks {
		contentStart := start + 1
		if pos >= contentStart && pos <= contentStart+b.Len() {
			return i, pos - contentStart, nil
		}
		start += b.NodeSize()
	}
	return 0, 0, fmt.Errorf("%w: %d (size %d)", ErrInvalidPos, pos, d.Size())
}

// boundaryIndex returns k when pos is the position before block k.
func (d Doc) boundaryIndex(pos int) (int, bool) {
	d = d.ensure()
	at := 0
	for i := 0; i <= len(d.blocks); i++ {
		if at == pos {
			return i, true
		}
		if i < len(d.blocks) {
			at += d.blocks[i].NodeSize()
		}
	}
	return 0, false
}

// ClampPos returns the text position nearest to pos.
func (d Doc) ClampPos(pos int) int {
	if _, _, err := d.Resolve(pos); err == nil {
		return pos
	}
	if pos <= 1 {
		return 1
	}
	last := d.BlockCount() - 1
	if pos >= d.ContentEnd(last) {
		return d.ContentEnd(last)
	}
	// pos sits on a boundary token: snap into the following block.
	if k, ok := d.boundaryIndex(pos); ok && k < d.BlockCount() {
		return d.ContentStart(k)
	}
	return pos - 1
}

// Equal reports whether two documents have identical structure and content.
func (d Doc) Equal(other Doc) bool {
	a, b := d.ensure().blocks, other.ensure().blocks
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].Level != b[i].Level || len(a[i].Runs) != len(b[i].Runs) {
			return false
		}
		for j := range a[i].Runs {
			if a[i].Runs[j] != b[i].Runs[j] {
				return false
			}
		}
	}
	return true
}

// String renders the document structure for debugging.
func (d Doc) String() string {
	var sb strings.Builder
	for i, b := range d.ensure().blocks {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s(%q)", b.Type, b.Text())
	}
	return sb.String()
}
