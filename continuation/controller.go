package continuation

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Paranoid-AF/aieditor/document"
	"github.com/Paranoid-AF/aieditor/editor"
)

const (
	// DefaultMinChars is the shortest document text that is sent to the model.
	DefaultMinChars = 11

	// ShortTextMessage is shown, and stored as the error, when the document is too short.
	ShortTextMessage = "Please write a bit more before continuing."

	// FailurePrefix starts the error message of every failed request.
	FailurePrefix = "Failed to continue text: "
)

var (
	// ErrTooShort is reported to OnDone when the document is below the minimum length.
	ErrTooShort = errors.New(ShortTextMessage)
	// ErrNoCompleter is returned by Run when the controller has nothing to ask.
	ErrNoCompleter = errors.New("no completer configured")
)

// Completer returns a continuation of text. *generate.Generator satisfies it.
type Completer interface {
	Continue(ctx context.Context, text string) (string, error)
}

// Outcome describes one finished continuation request.
type Outcome struct {
	Input        string
	Continuation string
	// Err is the failure, if any. Message is what the machine stored for it.
	Err      error
	Message  string
	Duration time.Duration
}

// Options configures a Controller.
type Options struct {
	View      *editor.View
	Machine   *Machine
	Completer Completer

	// MinChars is the minimum trimmed text length; zero means DefaultMinChars.
	MinChars int

	// Alert shows a blocking message to the user.
	Alert func(msg string)
	// OnDone is called after every request that reached the model or was
	// rejected as too short.
	OnDone func(Outcome)
}

// Controller wires the user's "continue writing" action to the editor, the
// state machine and the completer.
//
// Begin and Finish touch the view and must run on the UI goroutine. Run only
// talks to the completer and may run anywhere.
type Controller struct {
	view      *editor.View
	machine   *Machine
	completer Completer
	minChars  int
	alert     func(string)
	onDone    func(Outcome)

	started time.Time
}

// NewController returns a controller. A nil Machine gets a fresh one.
func NewController(opts Options) *Controller {
	c := &Controller{
		view:      opts.View,
		machine:   opts.Machine,
		completer: opts.Completer,
		minChars:  opts.MinChars,
		alert:     opts.Alert,
		onDone:    opts.OnDone,
	}
	if c.machine == nil {
		c.machine = NewMachine()
	}
	if c.minChars <= 0 {
		c.minChars = DefaultMinChars
	}
	if c.alert == nil {
		c.alert = func(string) {}
	}
	return c
}

// Machine returns the state machine driven by the controller.
func (c *Controller) Machine() *Machine { return c.machine }

// Begin starts a request. It reports false without side effects when the view
// is missing or a request is already loading, and false after moving the
// machine to Error when the document text is too short. Otherwise it returns
// the text to send.
func (c *Controller) Begin() (string, bool) {
	if c.view == nil || c.view.Destroyed() || c.machine.Matches(Loading) {
		return "", false
	}
	c.machine.Send(Event{Type: Continue})
	c.started = time.Now()

	text := c.view.Doc().PlainText()
	if utf8.RuneCountInString(text) < c.minChars {
		c.alert(ShortTextMessage)
		c.machine.Send(Event{Type: Failure, Message: ShortTextMessage})
		c.done(Outcome{Input: text, Err: ErrTooShort, Message: ShortTextMessage})
		return "", false
	}
	return text, true
}

// Run asks the completer for a continuation of text.
func (c *Controller) Run(ctx context.Context, text string) (string, error) {
	if c.completer == nil {
		return "", ErrNoCompleter
	}
	return c.completer.Continue(ctx, text)
}

// Finish applies the result of Run. On success the continuation is spliced
// into the document as it is now, not as it was when the request started.
func (c *Controller) Finish(input, continuation string, err error) {
	if err == nil {
		err = Splice(c.view, continuation)
	}
	out := Outcome{Input: input, Continuation: continuation, Duration: time.Since(c.started)}
	if err != nil {
		slog.Warn("continuation failed", "error", err)
		out.Continuation = ""
		out.Err = err
		out.Message = FailurePrefix + err.Error()
		c.machine.Send(Event{Type: Failure, Message: out.Message})
		c.done(out)
		return
	}
	slog.Debug("continuation applied", "chars", utf8.RuneCountInString(continuation), "elapsed", out.Duration)
	c.machine.Send(Event{Type: Success})
	c.done(out)
}

// HandleAIWork runs a whole request synchronously: Begin, Run and Finish.
func (c *Controller) HandleAIWork(ctx context.Context) {
	text, ok := c.Begin()
	if !ok {
		return
	}
	continuation, err := c.Run(ctx, text)
	c.Finish(text, continuation, err)
}

func (c *Controller) done(o Outcome) {
	if c.onDone != nil {
		c.onDone(o)
	}
}

// Splice adds text to the end of the document in one transaction. A trailing
// paragraph is extended with a space and the text; any other trailing block
// gets a new paragraph after it.
func Splice(v *editor.View, text string) error {
	if v == nil {
		return editor.ErrDestroyed
	}
	st := v.State()
	d := st.Doc
	tr := st.Tr()
	if d.LastBlock().Type == document.Paragraph {
		tr.InsertText(" "+text, d.Size()-1)
	} else {
		tr.Insert(d.Size(), document.NewParagraph(text))
	}
	return v.Dispatch(tr)
}
