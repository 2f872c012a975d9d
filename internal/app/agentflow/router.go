package agentflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

const routerInstructions = `You are a UI routing expert. Your job is to pick the right action to fulfill the user's request.
Current screen components:
%s

RULES:
- If no components exist, YOU MUST call generate_screen.
- If it's pure styling or content updates to existing items, call update_components.
- If it changes the core structure (adding/removing items), call regenerate_screen.

DECOMPOSITION:
- Each component is a self-contained, full-width section (navbar, hero, feature grid, CTA, footer, etc.).
- A grid of cards is ONE component. Do NOT create separate components for each card.
- Aim for 4-6 components per screen.`

// Router classifies a prompt into exactly one Action.
type Router struct {
	llm domain.LLMClient
}

func NewRouter(llm domain.LLMClient) *Router {
	return &Router{llm: llm}
}

func (r *Router) Name() string {
	return "router"
}

// Route asks the router model to select an action for prompt given the
// transcript and screen in state.
func (r *Router) Route(ctx context.Context, prompt string, state domain.SessionState) (Action, error) {
	log := observability.LoggerFromContext(ctx).With("agent", r.Name())

	turns := make([]domain.Message, 0, len(state.Messages)+1)
	turns = append(turns, state.Messages...)
	turns = append(turns, domain.Message{Role: domain.RoleUser, Content: prompt})

	res, err := r.llm.Generate(ctx, domain.GenerateRequest{
		Model:  domain.ModelRouter,
		System: fmt.Sprintf(routerInstructions, ScreenSummary(state.Screen)),
		Turns:  turns,
		Tools:  ToolSpecs(),
	})
	if err != nil {
		log.Error("router call failed", "error", err)
		return nil, fmt.Errorf("%w: router call: %w", domain.ErrGenerationFailure, err)
	}
	if res == nil {
		return nil, domain.RoutingFailure("router returned no response")
	}

	action, err := actionFromCalls(res.Calls)
	if err != nil {
		return nil, err
	}

	if !state.HasComponents() {
		if _, ok := action.(CreateScreen); !ok {
			return nil, domain.RoutingFailure("router selected %s but the screen is empty", action.ToolName())
		}
	}

	log.Info("router selected action", "action", action.ToolName())
	return action, nil
}

// actionFromCalls reduces the reply's tool calls to one Action. Calls to
// different tools are ambiguous. Parallel update_components calls are merged
// into one update list; repeated calls to the other tools keep the first.
func actionFromCalls(calls []domain.ToolCall) (Action, error) {
	if len(calls) == 0 {
		return nil, domain.RoutingFailure("router failed to select a tool")
	}
	for _, c := range calls[1:] {
		if c.Name != calls[0].Name {
			names := make([]string, len(calls))
			for i, call := range calls {
				names[i] = call.Name
			}
			return nil, domain.RoutingFailure("router selected %d tools (%s)", len(calls), strings.Join(names, ", "))
		}
	}

	first, err := DecodeAction(calls[0])
	if err != nil {
		return nil, err
	}
	merged, ok := first.(UpdateComponents)
	if !ok {
		return first, nil
	}
	for _, c := range calls[1:] {
		next, err := DecodeAction(c)
		if err != nil {
			return nil, err
		}
		merged.Updates = append(merged.Updates, next.(UpdateComponents).Updates...)
	}
	return merged, nil
}

// ScreenSummary lists the live components the way the router sees them.
func ScreenSummary(screen *domain.Screen) string {
	if screen == nil || len(screen.Components) == 0 {
		return "None. The screen is empty."
	}
	lines := make([]string, len(screen.Components))
	for i, c := range screen.Components {
		lines[i] = fmt.Sprintf("- [%s] %s (%s): %s", c.ID, c.Name, c.Type, c.Description)
	}
	return strings.Join(lines, "\n")
}
