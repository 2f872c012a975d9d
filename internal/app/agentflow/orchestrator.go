package agentflow

import (
	"context"
	"time"

	"github.com/Mozzzaic/banani-ai-test/internal/app/assembler"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

// Orchestrator runs the two phases of a prompt: the Router picks an action,
// the Executor applies it, and the result is assembled into a new state.
type Orchestrator struct {
	router   *Router
	executor *Executor
}

func NewOrchestrator(router *Router, executor *Executor) *Orchestrator {
	return &Orchestrator{
		router:   router,
		executor: executor,
	}
}

// NewDefaultOrchestrator wires a Router and Executor over the same services.
func NewDefaultOrchestrator(llm domain.LLMClient, gen ComponentGenerator, opts ...ExecutorOption) *Orchestrator {
	return NewOrchestrator(NewRouter(llm), NewExecutor(gen, opts...))
}

// Run returns the replacement state for one prompt. The input state is never
// modified; on error the caller keeps what it had.
func (o *Orchestrator) Run(
	ctx context.Context,
	prompt string,
	state domain.SessionState,
	progress ProgressFunc,
) (domain.SessionState, error) {
	if progress == nil {
		progress = func(string) {}
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("orchestrator started", "messages", len(state.Messages))
	start := time.Now()

	progress("Analyzing your request...")
	action, err := o.router.Route(ctx, prompt, state)
	if err != nil {
		log.Error("routing failed", "error", err)
		return domain.SessionState{}, err
	}

	out, err := o.executor.Execute(ctx, action, state.Screen, progress)
	if err != nil {
		return domain.SessionState{}, err
	}

	progress("Assembling final screen...")
	screen := &domain.Screen{
		Components:    out.Components,
		AssembledHTML: assembler.Assemble(out.Components),
		StyleGuide:    out.StyleGuide,
	}

	summary := out.Summary
	if summary == "" {
		summary = "Done!"
	}

	messages := make([]domain.Message, 0, len(state.Messages)+2)
	messages = append(messages, state.Messages...)
	messages = append(messages,
		domain.Message{Role: domain.RoleUser, Content: prompt},
		domain.Message{Role: domain.RoleAssistant, Content: summary},
	)

	log.Info("orchestrator end",
		"action", action.ToolName(),
		"components", len(screen.Components),
		"elapsed_ms", time.Since(start).Milliseconds())

	return domain.SessionState{Messages: messages, Screen: screen}, nil
}
