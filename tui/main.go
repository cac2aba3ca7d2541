// Command aieditor is a terminal rich-text editor with an AI "continue
// writing" action. The editor runs as a full-screen Bubble Tea program; the
// continue subcommand does the same continuation headlessly for pipes.
//
// Usage:
//
//	aieditor                       # interactive editor
//	aieditor --log session.toml    # also append a TOML entry per request
//	aieditor continue draft.txt    # print draft.txt with its continuation
//	aieditor config --defaults     # print the default config
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	aieditor "github.com/Paranoid-AF/aieditor"
	"github.com/Paranoid-AF/aieditor/continuation"
	"github.com/Paranoid-AF/aieditor/document"
	"github.com/Paranoid-AF/aieditor/editor"
	"github.com/Paranoid-AF/aieditor/generate"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type app struct {
	debug      bool
	sessionLog string
	cfg        *aieditor.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "aieditor",
		Short:        "Terminal rich-text editor with AI continue writing",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: a.runEditor,
	}
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "log debug output")
	root.PersistentFlags().StringVar(&a.sessionLog, "log", "", "append a TOML entry per continuation to this file (- for stdout)")

	root.AddCommand(a.newContinueCmd(), a.newConfigCmd())
	return root
}

// setup loads .env files and the config, then installs the default logger.
func (a *app) setup(cmd *cobra.Command) error {
	for _, path := range aieditor.LoadDotEnv() {
		slog.Debug("loaded env file", "path", path)
	}

	cfg, err := aieditor.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config %s: %w", aieditor.ConfigPath(), err)
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	for _, w := range aieditor.ValidateConfig(cfg) {
		slog.Warn("config", "warning", w)
	}
	return nil
}

// newGenerator builds the single client used for every request.
func (a *app) newGenerator() *generate.Generator {
	gc := a.cfg.Generation
	return generate.NewGenerator(generate.Options{
		BaseURL:         aieditor.ResolveBaseURL(a.cfg),
		APIKey:          aieditor.ResolveAPIKey(a.cfg),
		Model:           aieditor.ResolveModel(a.cfg),
		Instruction:     aieditor.LoadInstruction(),
		MaxRetries:      gc.MaxRetries,
		BaseDelay:       gc.BaseDelay(),
		Timeout:         gc.Timeout(),
		Temperature:     gc.Temperature,
		MaxOutputTokens: gc.MaxOutputTokens,
		CacheTTL:        gc.CacheTTL(),
	})
}

func (a *app) openRecorder(model string) (*recorder, error) {
	if a.sessionLog == "" {
		return nil, nil
	}
	return openRecorder(a.sessionLog, model)
}

func (a *app) runEditor(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("aieditor needs a terminal; use 'aieditor continue' to read from a pipe")
	}
	if a.sessionLog == "-" {
		return errors.New("--log - is not available in the interactive editor")
	}

	// The editor owns the terminal from here on, so logs go to a file.
	logFile, err := openLogFile(aieditor.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	level := slog.LevelInfo
	if a.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level})))

	gen := a.newGenerator()
	defer gen.Close()

	rec, err := a.openRecorder(gen.Model())
	if err != nil {
		return err
	}
	defer rec.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	view := editor.NewWithPlaceholder(a.cfg.Editor.Placeholder, editor.InputRulesPlugin())
	defer view.Destroy()

	m := newModel(ctx, view, gen, continuation.Options{
		MinChars: a.cfg.Editor.MinChars,
		OnDone:   rec.record,
	})

	slog.Info("starting editor", "model", gen.Model())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run editor: %w", err)
	}
	slog.Info("editor closed")
	return nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}

func (a *app) newContinueCmd() *cobra.Command {
	var only bool
	cmd := &cobra.Command{
		Use:   "continue [file|-]",
		Short: "Append a continuation to a text file and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			gen := a.newGenerator()
			defer gen.Close()

			rec, err := a.openRecorder(gen.Model())
			if err != nil {
				return err
			}
			defer rec.Close()

			var added string
			view := editor.New(editor.Options{Doc: document.FromText(text)})
			defer view.Destroy()
			ctrl := continuation.NewController(continuation.Options{
				View:      view,
				Completer: gen,
				MinChars:  a.cfg.Editor.MinChars,
				Alert:     func(msg string) { fmt.Fprintln(cmd.ErrOrStderr(), msg) },
				OnDone: func(o continuation.Outcome) {
					added = o.Continuation
					rec.record(o)
				},
			})

			ctrl.HandleAIWork(cmd.Context())
			if snap := ctrl.Machine().Snapshot(); snap.State == continuation.Error {
				return errors.New(snap.Context.Error)
			}

			out := cmd.OutOrStdout()
			if only {
				fmt.Fprintln(out, added)
				return nil
			}
			for _, line := range view.Doc().BlockTexts() {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&only, "only", false, "print only the continuation")
	return cmd
}

func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (a *app) newConfigCmd() *cobra.Command {
	var defaults, prompt, validate bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case prompt:
				fmt.Fprintln(out, aieditor.LoadInstruction())
				return nil
			case validate:
				warnings := aieditor.ValidateConfig(a.cfg)
				for _, w := range warnings {
					fmt.Fprintln(out, "warning:", w)
				}
				if len(warnings) == 0 {
					fmt.Fprintln(out, "ok:", aieditor.ConfigPath())
				}
				return nil
			}

			cfg := *a.cfg
			if defaults {
				cfg = *aieditor.DefaultConfig()
			} else {
				cfg.Generation.BaseURL = aieditor.ResolveBaseURL(a.cfg)
				cfg.Generation.Model = aieditor.ResolveModel(a.cfg)
				if aieditor.ResolveAPIKey(a.cfg) != "" {
					cfg.Generation.APIKey = "(set)"
				}
			}
			return toml.NewEncoder(out).Encode(cfg)
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults")
	cmd.Flags().BoolVar(&prompt, "prompt", false, "print the system instruction")
	cmd.Flags().BoolVar(&validate, "validate", false, "check the config for problems")
	return cmd
}
