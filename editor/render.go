package editor

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Paranoid-AF/aieditor/document"
)

// Style controls how a view is rendered.
type Style struct {
	Text        lipgloss.Style
	Heading     lipgloss.Style
	Bullet      lipgloss.Style
	Placeholder lipgloss.Style

	Bold   lipgloss.Style
	Italic lipgloss.Style
	Code   lipgloss.Style

	Selection lipgloss.Style
	Cursor    lipgloss.Style
}

// BulletPrefix is drawn before every bullet item.
const BulletPrefix = "• "

func DefaultStyle() Style {
	return Style{
		Text:        lipgloss.NewStyle(),
		Heading:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Bullet:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		Bold:        lipgloss.NewStyle().Bold(true),
		Italic:      lipgloss.NewStyle().Italic(true),
		Code:        lipgloss.NewStyle().Foreground(lipgloss.Color("150")),
		Selection:   lipgloss.NewStyle().Background(lipgloss.Color("237")),
		Cursor:      lipgloss.NewStyle().Reverse(true),
	}
}

// Render draws the document one block per line. The cursor is drawn only
// while the view is focused.
func Render(v *View, st Style) string {
	d := v.Doc()
	sel := v.State().Selection
	placeholder := v.HasClass(PlaceholderClass)

	lines := make([]string, 0, d.BlockCount())
	for i := range d.BlockCount() {
		b := d.Block(i)
		base := st.Text
		switch {
		case placeholder:
			base = st.Placeholder
		case b.Type == document.Heading:
			base = st.Heading
		}

		var sb strings.Builder
		if b.Type == document.BulletItem {
			sb.WriteString(st.Bullet.Render(BulletPrefix))
		}
		pos := d.ContentStart(i)
		for _, run := range b.Runs {
			style := markStyle(base, run.Marks, st)
			for _, c := range run.Text {
				sb.WriteString(renderRune(c, pos, sel, v.Focused(), style, st))
				pos++
			}
		}
		if v.Focused() && sel.Empty() && sel.Head == pos {
			sb.WriteString(st.Cursor.Render(" "))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func renderRune(c rune, pos int, sel document.Selection, focused bool, style lipgloss.Style, st Style) string {
	s := string(c)
	if c == '\n' {
		if focused && sel.Empty() && sel.Head == pos {
			return st.Cursor.Render(" ") + "\n"
		}
		return "\n"
	}
	switch {
	case focused && sel.Empty() && sel.Head == pos:
		return st.Cursor.Inherit(style).Render(s)
	case !sel.Empty() && pos >= sel.From() && pos < sel.To():
		return st.Selection.Inherit(style).Render(s)
	default:
		return style.Render(s)
	}
}

func markStyle(base lipgloss.Style, m document.Mark, st Style) lipgloss.Style {
	out := base
	if m.Has(document.Bold) {
		out = st.Bold.Inherit(out)
	}
	if m.Has(document.Italic) {
		out = st.Italic.Inherit(out)
	}
	if m.Has(document.Code) {
		out = st.Code.Inherit(out)
	}
	return out
}
