// Package document is the rich-text model edited by the editor: a flat list
// of block nodes, each holding inline text runs with marks.
//
// Positions follow the usual rich-text convention of counting an opening and
// a closing token around every block. Block i spans nodeSize = len(text)+2
// positions, its content starts one position after its opening token, and the
// document size is the sum of all node sizes.
package document

import (
	"strings"
	"unicode/utf8"
)

// BlockType identifies the kind of a top-level block.
type BlockType uint8

const (
	Paragraph BlockType = iota
	Heading
	BulletItem
)

func (t BlockType) String() string {
	switch t {
	case Paragraph:
		return "paragraph"
	case Heading:
		return "heading"
	case BulletItem:
		return "bullet_item"
	default:
		return "unknown"
	}
}

// Mark is a set of inline formatting flags.
type Mark uint8

const (
	Bold Mark = 1 << iota
	Italic
	Code
)

// Has reports whether every flag in other is set.
func (m Mark) Has(other Mark) bool { return m&other == other }

func (m Mark) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	if m.Has(Bold) {
		parts = append(parts, "bold")
	}
	if m.Has(Italic) {
		parts = append(parts, "italic")
	}
	if m.Has(Code) {
		parts = append(parts, "code")
	}
	return strings.Join(parts, "+")
}

// Run is a span of text sharing one set of marks.
type Run struct {
	Text  string
	Marks Mark
}

// Block is a top-level node: a paragraph, heading or bullet item.
type Block struct {
	Type BlockType
	// Level is the heading level (1-6); zero for other types.
	Level int
	Runs  []Run
}

// NewParagraph returns a paragraph holding plain text.
func NewParagraph(text string) Block {
	return Block{Type: Paragraph, Runs: runsOf(text, 0)}
}

// NewHeading returns a heading of the given level.
func NewHeading(level int, text string) Block {
	return Block{Type: Heading, Level: clampLevel(level), Runs: runsOf(text, 0)}
}

// NewBulletItem returns a bullet list item.
func NewBulletItem(text string) Block {
	return Block{Type: BulletItem, Runs: runsOf(text, 0)}
}

// Text returns the block's text content.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Len returns the length of the block's content in runes.
func (b Block) Len() int {
	n := 0
	for _, r := range b.Runs {
		n += utf8.RuneCountInString(r.Text)
	}
	return n
}

// NodeSize is the number of positions the block occupies.
func (b Block) NodeSize() int { return b.Len() + 2 }

// MarksAt returns the marks that text typed at offset would inherit: those of
// the character before offset, or of the first character at offset 0.
func (b Block) MarksAt(offset int) Mark {
	chars, marks := b.explode()
	if len(chars) == 0 {
		return 0
	}
	if offset <= 0 {
		return marks[0]
	}
	if offset > len(marks) {
		offset = len(marks)
	}
	return marks[offset-1]
}

func (b Block) clone() Block {
	out := b
	out.Runs = append([]Run(nil), b.Runs...)
	return out
}

// explode returns per-rune text and marks.
func (b Block) explode() ([]rune, []Mark) {
	var chars []rune
	var marks []Mark
	for _, r := range b.Runs {
		for _, c := range r.Text {
			chars = append(chars, c)
			marks = append(marks, r.Marks)
		}
	}
	return chars, marks
}

// withContent returns b with its runs rebuilt from per-rune data.
func (b Block) withContent(chars []rune, marks []Mark) Block {
	out := b
	out.Runs = nil
	start := 0
	for i := 1; i <= len(chars); i++ {
		if i == len(chars) || marks[i] != marks[start] {
			out.Runs = append(out.Runs, Run{Text: string(chars[start:i]), Marks: marks[start]})
			start = i
		}
	}
	return out
}

func runsOf(text string, marks Mark) []Run {
	if text == "" {
		return nil
	}
	return []Run{{Text: text, Marks: marks}}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}
