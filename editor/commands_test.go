package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paranoid-AF/aieditor/document"
)

func typed(t *testing.T, text string, plugins ...Plugin) *View {
	t.Helper()
	v := New(Options{Plugins: plugins})
	for _, r := range text {
		if r == '\n' {
			require.True(t, v.Newline())
			continue
		}
		require.True(t, v.InsertText(string(r)))
	}
	return v
}

func TestTypingAndNewline(t *testing.T) {
	v := typed(t, "ab\ncd")
	assert.Equal(t, []string{"ab", "cd"}, v.Doc().BlockTexts())
	assert.Equal(t, document.Cursor(7), v.State().Selection)
}

func TestNewlineSplitsMidBlock(t *testing.T) {
	v := typed(t, "abcd")
	v.MoveLeft(false)
	v.MoveLeft(false)
	v.Newline()
	assert.Equal(t, []string{"ab", "cd"}, v.Doc().BlockTexts())
	assert.Equal(t, document.Cursor(5), v.State().Selection)
}

func TestBackspace(t *testing.T) {
	v := typed(t, "ab\ncd")
	v.Home(false)
	require.True(t, v.Backspace())
	assert.Equal(t, []string{"abcd"}, v.Doc().BlockTexts())
	assert.Equal(t, document.Cursor(3), v.State().Selection)

	require.True(t, v.Backspace())
	assert.Equal(t, "acd", v.Doc().TextContent())

	v.Home(false)
	assert.False(t, v.Backspace())
}

func TestBackspaceResetsBlockType(t *testing.T) {
	v := typed(t, "- x", InputRulesPlugin())
	v.Home(false)
	require.True(t, v.Backspace())
	assert.Equal(t, document.Paragraph, v.Doc().FirstBlock().Type)
	assert.Equal(t, "x", v.Doc().TextContent())
}

func TestDeleteForward(t *testing.T) {
	v := typed(t, "ab\ncd")
	v.MoveUp(false)
	v.End(false)
	require.True(t, v.DeleteForward())
	assert.Equal(t, []string{"abcd"}, v.Doc().BlockTexts())
	require.True(t, v.DeleteForward())
	assert.Equal(t, "abd", v.Doc().TextContent())

	v.End(false)
	assert.False(t, v.DeleteForward())
}

func TestSelectionReplace(t *testing.T) {
	v := typed(t, "hello")
	v.MoveLeft(true)
	v.MoveLeft(true)
	assert.Equal(t, document.Selection{Anchor: 6, Head: 4}, v.State().Selection)
	v.InsertText("p!")
	assert.Equal(t, "help!", v.Doc().TextContent())
}

func TestSelectAllDelete(t *testing.T) {
	v := typed(t, "ab\ncd")
	v.SelectAll()
	require.True(t, v.Backspace())
	assert.Equal(t, []string{""}, v.Doc().BlockTexts())
}

func TestArrowsCrossBlocks(t *testing.T) {
	v := typed(t, "ab\ncd")
	v.Home(false)
	v.MoveLeft(false)
	assert.Equal(t, document.Cursor(3), v.State().Selection)
	v.MoveRight(false)
	assert.Equal(t, document.Cursor(5), v.State().Selection)

	v.End(false)
	assert.False(t, v.MoveRight(false))
	v.MoveUp(false)
	assert.Equal(t, document.Cursor(3), v.State().Selection)
	v.MoveUp(false)
	assert.Equal(t, document.Cursor(1), v.State().Selection)
	v.MoveDown(false)
	v.MoveDown(false)
	assert.Equal(t, document.Cursor(7), v.State().Selection)
}

func TestToggleMarkStored(t *testing.T) {
	v := typed(t, "a")
	require.True(t, v.ToggleMark(document.Bold))
	v.InsertText("b")
	v.InsertText("c")
	assert.Equal(t, []document.Run{{Text: "a"}, {Text: "bc", Marks: document.Bold}}, v.Doc().FirstBlock().Runs)
}

func TestToggleMarkSelection(t *testing.T) {
	v := typed(t, "abc")
	v.SelectAll()
	v.ToggleMark(document.Italic)
	assert.True(t, v.Doc().RangeHasMark(1, 4, document.Italic))
	v.ToggleMark(document.Italic)
	assert.False(t, v.Doc().RangeHasMark(1, 4, document.Italic))
}

func TestInputRules(t *testing.T) {
	tests := []struct {
		input string
		want  document.BlockType
		level int
		text  string
	}{
		{"# Title", document.Heading, 1, "Title"},
		{"### Sub", document.Heading, 3, "Sub"},
		{"- item", document.BulletItem, 0, "item"},
		{"* item", document.BulletItem, 0, "item"},
		{"#no", document.Paragraph, 0, "#no"},
		{"a - b", document.Paragraph, 0, "a - b"},
		{"####### x", document.Paragraph, 0, "####### x"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := typed(t, tt.input, InputRulesPlugin())
			b := v.Doc().FirstBlock()
			assert.Equal(t, tt.want, b.Type)
			assert.Equal(t, tt.level, b.Level)
			assert.Equal(t, tt.text, b.Text())
		})
	}
}

func TestBulletNewline(t *testing.T) {
	v := typed(t, "- one\ntwo\n\n", InputRulesPlugin())
	blocks := v.Doc().Blocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, document.BulletItem, blocks[0].Type)
	assert.Equal(t, document.BulletItem, blocks[1].Type)
	assert.Equal(t, document.Paragraph, blocks[2].Type)
}

func TestHeadingNewlineEndsHeading(t *testing.T) {
	v := typed(t, "# T\nbody", InputRulesPlugin())
	blocks := v.Doc().Blocks()
	require.Len(t, blocks, 2)
	assert.Equal(t, document.Heading, blocks[0].Type)
	assert.Equal(t, document.Paragraph, blocks[1].Type)
	assert.Equal(t, "body", blocks[1].Text())
}
