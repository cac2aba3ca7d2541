package continuation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Paranoid-AF/aieditor/document"
	"github.com/Paranoid-AF/aieditor/editor"
)

type fakeCompleter struct {
	text  string
	err   error
	calls []string
}

func (f *fakeCompleter) Continue(_ context.Context, text string) (string, error) {
	f.calls = append(f.calls, text)
	return f.text, f.err
}

func newController(t *testing.T, doc document.Doc, c Completer) (*Controller, *editor.View, *[]string) {
	t.Helper()
	v := editor.New(editor.Options{Doc: doc})
	alerts := new([]string)
	ctrl := NewController(Options{
		View:      v,
		Completer: c,
		Alert:     func(msg string) { *alerts = append(*alerts, msg) },
	})
	return ctrl, v, alerts
}

func TestShortTextMakesNoRequest(t *testing.T) {
	inputs := []string{"", "Write Here", "   short   ", "0123456789", "héllo wörl"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			fc := &fakeCompleter{text: "never"}
			var alerts []string
			v := editor.New(editor.Options{Doc: document.FromText(in)})
			ctrl := NewController(Options{
				View:      v,
				Completer: fc,
				Alert:     func(msg string) { alerts = append(alerts, msg) },
			})

			ctrl.HandleAIWork(context.Background())

			assert.Empty(t, fc.calls)
			assert.Equal(t, []string{ShortTextMessage}, alerts)
			assert.Equal(t, Error, ctrl.Machine().State())
			assert.Equal(t, ShortTextMessage, ctrl.Machine().Error())
			assert.Equal(t, in, v.Doc().TextContent())
		})
	}
}

func TestSuccessExtendsTrailingParagraph(t *testing.T) {
	fc := &fakeCompleter{text: "and the rain continued."}
	ctrl, v, _ := newController(t, document.FromText("It was a dark night"), fc)

	ctrl.HandleAIWork(context.Background())

	assert.Equal(t, []string{"It was a dark night"}, fc.calls)
	assert.Equal(t, []string{"It was a dark night and the rain continued."}, v.Doc().BlockTexts())
	assert.Equal(t, Idle, ctrl.Machine().State())
	assert.Empty(t, ctrl.Machine().Error())
}

func TestSuccessAfterNonParagraphAddsBlock(t *testing.T) {
	fc := &fakeCompleter{text: "Third item."}
	doc := document.New(
		document.NewParagraph("A list of things:"),
		document.NewBulletItem("first item"),
	)
	ctrl, v, _ := newController(t, doc, fc)

	ctrl.HandleAIWork(context.Background())

	require.Equal(t, 3, v.Doc().BlockCount())
	last := v.Doc().LastBlock()
	assert.Equal(t, document.Paragraph, last.Type)
	assert.Equal(t, "Third item.", last.Text())
	assert.Equal(t, "first item", v.Doc().Block(1).Text())
}

func TestSendsNewlineJoinedTrimmedText(t *testing.T) {
	fc := &fakeCompleter{text: "more"}
	doc := document.New(
		document.NewParagraph("  "),
		document.NewHeading(1, "Title"),
		document.NewParagraph("Body text here  "),
	)
	ctrl, _, _ := newController(t, doc, fc)

	ctrl.HandleAIWork(context.Background())

	assert.Equal(t, []string{"Title\nBody text here"}, fc.calls)
}

func TestFailureIsPrefixed(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("AI returned an empty response.")}
	ctrl, v, alerts := newController(t, document.FromText("Once upon a time"), fc)

	ctrl.HandleAIWork(context.Background())

	assert.Equal(t, Error, ctrl.Machine().State())
	assert.Equal(t, "Failed to continue text: AI returned an empty response.", ctrl.Machine().Error())
	assert.Empty(t, *alerts)
	assert.Equal(t, "Once upon a time", v.Doc().TextContent())
}

func TestRetryFromErrorState(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("boom")}
	ctrl, v, _ := newController(t, document.FromText("Once upon a time"), fc)

	ctrl.HandleAIWork(context.Background())
	require.Equal(t, Error, ctrl.Machine().State())

	fc.err = nil
	fc.text = "there was a fox."
	ctrl.HandleAIWork(context.Background())

	assert.Equal(t, Idle, ctrl.Machine().State())
	assert.Empty(t, ctrl.Machine().Error())
	assert.Equal(t, "Once upon a time there was a fox.", v.Doc().TextContent())
}

func TestBeginIgnoredWhileLoading(t *testing.T) {
	fc := &fakeCompleter{text: "x"}
	ctrl, _, _ := newController(t, document.FromText("Once upon a time"), fc)

	text, ok := ctrl.Begin()
	require.True(t, ok)
	assert.Equal(t, "Once upon a time", text)
	assert.Equal(t, Loading, ctrl.Machine().State())

	_, ok = ctrl.Begin()
	assert.False(t, ok)
	assert.Equal(t, Loading, ctrl.Machine().State())
}

func TestBeginWithoutView(t *testing.T) {
	ctrl := NewController(Options{Completer: &fakeCompleter{}})
	_, ok := ctrl.Begin()
	assert.False(t, ok)
	assert.Equal(t, Idle, ctrl.Machine().State())
}

func TestBeginAfterDestroy(t *testing.T) {
	ctrl, v, _ := newController(t, document.FromText("Once upon a time"), &fakeCompleter{})
	v.Destroy()
	_, ok := ctrl.Begin()
	assert.False(t, ok)
	assert.Equal(t, Idle, ctrl.Machine().State())
}

func TestFinishUsesCurrentDocumentEnd(t *testing.T) {
	ctrl, v, _ := newController(t, document.FromText("Once upon a time"), &fakeCompleter{})
	text, ok := ctrl.Begin()
	require.True(t, ok)

	// The user keeps typing while the request is pending.
	tr := v.State().Tr().Insert(v.Doc().Size(), document.NewParagraph("a new line"))
	require.NoError(t, v.Dispatch(tr))

	ctrl.Finish(text, "appended.", nil)

	assert.Equal(t, []string{"Once upon a time", "a new line appended."}, v.Doc().BlockTexts())
	assert.Equal(t, Idle, ctrl.Machine().State())
}

func TestFinishOnDestroyedViewFails(t *testing.T) {
	ctrl, v, _ := newController(t, document.FromText("Once upon a time"), &fakeCompleter{})
	text, ok := ctrl.Begin()
	require.True(t, ok)
	v.Destroy()

	ctrl.Finish(text, "late", nil)

	assert.Equal(t, Error, ctrl.Machine().State())
	assert.Contains(t, ctrl.Machine().Error(), FailurePrefix)
}

func TestOnDone(t *testing.T) {
	var outcomes []Outcome
	fc := &fakeCompleter{text: "done."}
	v := editor.New(editor.Options{Doc: document.FromText("tiny")})
	ctrl := NewController(Options{
		View:      v,
		Completer: fc,
		OnDone:    func(o Outcome) { outcomes = append(outcomes, o) },
	})

	ctrl.HandleAIWork(context.Background())
	require.Len(t, outcomes, 1)
	assert.ErrorIs(t, outcomes[0].Err, ErrTooShort)

	require.NoError(t, v.Dispatch(v.State().Tr().InsertText(" but longer now", v.Doc().Size()-1)))
	ctrl.HandleAIWork(context.Background())
	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[1].Err)
	assert.Equal(t, "tiny but longer now", outcomes[1].Input)
	assert.Equal(t, "done.", outcomes[1].Continuation)
}

func TestRunWithoutCompleter(t *testing.T) {
	ctrl := NewController(Options{})
	_, err := ctrl.Run(context.Background(), "text")
	assert.ErrorIs(t, err, ErrNoCompleter)
}

func TestMinChars(t *testing.T) {
	fc := &fakeCompleter{text: "ok"}
	v := editor.New(editor.Options{Doc: document.FromText("abc")})
	ctrl := NewController(Options{View: v, Completer: fc, MinChars: 3})

	ctrl.HandleAIWork(context.Background())

	assert.Equal(t, []string{"abc"}, fc.calls)
	assert.Equal(t, "abc ok", v.Doc().TextContent())
}
