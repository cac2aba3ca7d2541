package editor

import (
	"strings"

	"github.com/Paranoid-AF/aieditor/document"
)

// PlaceholderClass marks a view whose document shows the placeholder text.
const PlaceholderClass = "placeholder"

// DefaultPlaceholder is the text shown in an empty editor.
const DefaultPlaceholder = "Write Here"

// PlaceholderDoc returns the initial document: one paragraph holding text.
func PlaceholderDoc(text string) document.Doc {
	return document.New(document.NewParagraph(text))
}

// PlaceholderPlugin removes text from the document on focus and restores it
// on blur when the document is left empty. Neither handler consumes the event.
func PlaceholderPlugin(text string) Plugin {
	return Plugin{
		Name: "placeholder",
		HandleFocus: func(v *View) bool {
			first := v.Doc().FirstBlock()
			if first.Text() != text {
				return false
			}
			v.RemoveClass(PlaceholderClass)
			tr := v.State().Tr().
				Delete(1, first.NodeSize()-1).
				SetSelection(document.Cursor(1)).
				SetMeta(MetaAddToHistory, false)
			_ = v.Dispatch(tr)
			return false
		},
		HandleBlur: func(v *View) bool {
			if strings.TrimSpace(v.Doc().TextContent()) != "" {
				return false
			}
			v.AddClass(PlaceholderClass)
			tr := v.State().Tr().
				InsertText(text, 1).
				SetMeta(MetaAddToHistory, false)
			_ = v.Dispatch(tr)
			return false
		},
	}
}

// NewWithPlaceholder returns a view showing text as its placeholder, with the
// placeholder plugin installed ahead of extra.
func NewWithPlaceholder(text string, extra ...Plugin) *View {
	return New(Options{
		Doc:     PlaceholderDoc(text),
		Plugins: append([]Plugin{PlaceholderPlugin(text)}, extra...),
		Classes: []string{PlaceholderClass},
	})
}
