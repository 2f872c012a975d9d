package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Mozzzaic/banani-ai-test/internal/app/conversation"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

var (
	promptOut     string
	promptSession string
)

var promptCmd = &cobra.Command{
	Use:   "prompt [text...]",
	Short: "Run prompts in-process and write the assembled screen",
	Long: `Runs each argument as one turn of the same session, printing progress as it
goes, then writes the final assembled HTML.

Example:
  screensmith prompt --mock-llm "a pricing page" "make the hero dark" --out page.html`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVarP(&promptOut, "out", "o", "", "Write the assembled HTML here instead of stdout")
	promptCmd.Flags().StringVar(&promptSession, "session", "", "Session id (random when empty)")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}

	id := domain.SessionID(promptSession)
	if id == "" {
		id = domain.SessionID(uuid.NewString())
	}

	rep := &consoleReporter{w: cmd.ErrOrStderr()}
	var state domain.SessionState
	for _, text := range args {
		rep.printf("> %s\n", text)
		state, err = svc.Run(ctx, conversation.SubmitPromptInput{SessionID: id, Prompt: text}, rep)
		if err != nil {
			return err
		}
	}

	if state.Screen == nil {
		return fmt.Errorf("no screen was produced")
	}

	out := cmd.OutOrStdout()
	if promptOut != "" {
		f, err := os.Create(promptOut)
		if err != nil {
			return fmt.Errorf("creating %s: %w", promptOut, err)
		}
		defer f.Close()
		out = f
	}
	if _, err := io.WriteString(out, state.Screen.AssembledHTML); err != nil {
		return fmt.Errorf("writing screen: %w", err)
	}
	if promptOut != "" {
		rep.printf("wrote %d components to %s\n", len(state.Screen.Components), promptOut)
	}
	return nil
}

// consoleReporter prints run events for a terminal.
type consoleReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func (r *consoleReporter) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format, args...)
}

func (r *consoleReporter) Progress(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "  ... %s\n", message)
}

func (r *consoleReporter) Succeed(state domain.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(state.Messages); n > 0 {
		fmt.Fprintf(r.w, "  %s\n", state.Messages[n-1].Content)
	}
}

func (r *consoleReporter) Fail(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "  error: %s\n", message)
}
