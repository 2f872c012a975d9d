package agentflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

// DefaultLaunchStagger spaces out the generation calls of one CreateScreen.
const DefaultLaunchStagger = 300 * time.Millisecond

// ComponentGenerator writes the HTML fragment for one component.
type ComponentGenerator interface {
	Generate(ctx context.Context, prompt, styleGuide string) (string, error)
}

// ProgressFunc receives advisory progress text. It must not block and must be
// safe for concurrent use: component tasks report from their own goroutines.
type ProgressFunc func(message string)

// Outcome is the executor's result before assembly.
type Outcome struct {
	Components []domain.Component
	StyleGuide string
	Summary    string
}

// Executor applies a routed Action to the current screen.
type Executor struct {
	gen     ComponentGenerator
	stagger time.Duration
	newID   func() domain.ComponentID
}

type ExecutorOption func(*Executor)

func WithLaunchStagger(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d >= 0 {
			e.stagger = d
		}
	}
}

// WithIDSource replaces UUID component ids, mostly for tests.
func WithIDSource(fn func() domain.ComponentID) ExecutorOption {
	return func(e *Executor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

func NewExecutor(gen ComponentGenerator, opts ...ExecutorOption) *Executor {
	e := &Executor{
		gen:     gen,
		stagger: DefaultLaunchStagger,
		newID:   func() domain.ComponentID { return domain.ComponentID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Executor) Name() string {
	return "executor"
}

// Execute runs action against screen (which may be nil) and returns the
// complete replacement component list.
func (e *Executor) Execute(ctx context.Context, action Action, screen *domain.Screen, progress ProgressFunc) (*Outcome, error) {
	if progress == nil {
		progress = func(string) {}
	}

	log := observability.LoggerFromContext(ctx).With("agent", e.Name(), "action", action.ToolName())
	start := time.Now()

	var (
		out *Outcome
		err error
	)
	switch a := action.(type) {
	case CreateScreen:
		out, err = e.createScreen(ctx, a, progress)
	case UpdateComponents:
		out, err = e.updateComponents(ctx, a, screen, progress)
	case RegenerateScreen:
		out, err = e.regenerateScreen(ctx, a, screen, progress)
	default:
		return nil, domain.RoutingFailure("unsupported action %T", action)
	}
	if err != nil {
		log.Error("executor failed", "error", err)
		return nil, err
	}

	log.Info("executor finished",
		"components", len(out.Components),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func (e *Executor) createScreen(ctx context.Context, a CreateScreen, progress ProgressFunc) (*Outcome, error) {
	progress(fmt.Sprintf("Breaking down into %d components...", len(a.Components)))

	components := make([]domain.Component, len(a.Components))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range a.Components {
		goSafe(g, func() error {
			if err := wait(gctx, time.Duration(i)*e.stagger); err != nil {
				return err
			}
			progress(fmt.Sprintf("Generating %s...", spec.Name))

			prompt := fmt.Sprintf("Create a %s named %q for the screen: %q. Description: %s",
				spec.Type, spec.Name, a.Description, spec.Description)
			html, err := e.gen.Generate(gctx, prompt, a.StyleGuide)
			if err != nil {
				return fmt.Errorf("generating %s: %w", spec.Name, err)
			}

			components[i] = domain.Component{
				ID:          e.newID(),
				Name:        spec.Name,
				Type:        spec.Type,
				Description: spec.Description,
				HTML:        html,
				Order:       i,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	names := make([]string, len(components))
	for i, c := range components {
		names[i] = c.Name
	}

	return &Outcome{
		Components: components,
		StyleGuide: a.StyleGuide,
		Summary: fmt.Sprintf("Generated a new screen with %d components: %s.",
			len(components), strings.Join(names, ", ")),
	}, nil
}

func (e *Executor) updateComponents(ctx context.Context, a UpdateComponents, screen *domain.Screen, progress ProgressFunc) (*Outcome, error) {
	if screen == nil || len(screen.Components) == 0 {
		return nil, domain.RoutingFailure("%s: the screen is empty", ToolUpdateComponents)
	}

	targets := make([]string, len(a.Updates))
	for i, u := range a.Updates {
		targets[i] = "component"
		if c, ok := screen.ComponentByID(u.ComponentID); ok {
			targets[i] = c.Name
		}
	}
	progress(fmt.Sprintf("Updating %s...", strings.Join(targets, ", ")))

	// Untouched components are copied as-is; only targeted slots are rewritten.
	components := make([]domain.Component, len(screen.Components))
	copy(components, screen.Components)

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range screen.Components {
		update, ok := firstUpdateFor(a.Updates, c.ID)
		if !ok {
			continue
		}
		goSafe(g, func() error {
			progress(fmt.Sprintf("Rewriting %s...", c.Name))

			prompt := fmt.Sprintf("Update this existing component. Apply the following instruction: %s\n\nCurrent HTML:\n%s",
				update.Instruction, c.HTML)
			html, err := e.gen.Generate(gctx, prompt, screen.StyleGuide)
			if err != nil {
				return fmt.Errorf("updating %s: %w", c.Name, err)
			}
			components[i].HTML = html
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	described := make([]string, len(a.Updates))
	for i, u := range a.Updates {
		if c, ok := screen.ComponentByID(u.ComponentID); ok {
			described[i] = fmt.Sprintf("%s (%s)", c.Name, u.Instruction)
		} else {
			described[i] = string(u.ComponentID)
		}
	}
	plural := "s"
	if len(a.Updates) == 1 {
		plural = ""
	}

	return &Outcome{
		Components: components,
		StyleGuide: screen.StyleGuide,
		Summary: fmt.Sprintf("Updated %d component%s: %s.",
			len(a.Updates), plural, strings.Join(described, ", ")),
	}, nil
}

func firstUpdateFor(updates []ComponentUpdate, id domain.ComponentID) (ComponentUpdate, bool) {
	for _, u := range updates {
		if u.ComponentID == id {
			return u, true
		}
	}
	return ComponentUpdate{}, false
}

func (e *Executor) regenerateScreen(ctx context.Context, a RegenerateScreen, screen *domain.Screen, progress ProgressFunc) (*Outcome, error) {
	if screen == nil || len(screen.Components) == 0 {
		return nil, domain.RoutingFailure("%s: the screen is empty", ToolRegenerateScreen)
	}

	progress(fmt.Sprintf("Restructuring layout with %d components...", len(a.Components)))

	components := make([]domain.Component, len(a.Components))
	kept := make([]bool, len(a.Components))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range a.Components {
		if spec.KeepFromID != "" {
			if existing, ok := screen.ComponentByID(spec.KeepFromID); ok {
				components[i] = domain.Component{
					ID:          existing.ID,
					Name:        spec.Name,
					Type:        spec.Type,
					Description: spec.Description,
					HTML:        existing.HTML,
					Order:       i,
				}
				kept[i] = true
				continue
			}
		}

		goSafe(g, func() error {
			progress(fmt.Sprintf("Generating %s...", spec.Name))

			prompt := fmt.Sprintf("Create a %s named %s based on the overall instruction: %s. Description: %s",
				spec.Type, spec.Name, a.Instruction, spec.Description)
			html, err := e.gen.Generate(gctx, prompt, screen.StyleGuide)
			if err != nil {
				return fmt.Errorf("generating %s: %w", spec.Name, err)
			}
			components[i] = domain.Component{
				ID:          e.newID(),
				Name:        spec.Name,
				Type:        spec.Type,
				Description: spec.Description,
				HTML:        html,
				Order:       i,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var keptNames, createdNames []string
	for i, c := range components {
		if kept[i] {
			keptNames = append(keptNames, c.Name)
		} else {
			createdNames = append(createdNames, c.Name)
		}
	}
	var parts []string
	if len(keptNames) > 0 {
		parts = append(parts, "kept "+strings.Join(keptNames, ", "))
	}
	if len(createdNames) > 0 {
		parts = append(parts, "created "+strings.Join(createdNames, ", "))
	}

	return &Outcome{
		Components: components,
		StyleGuide: screen.StyleGuide,
		Summary: fmt.Sprintf("Restructured the screen (%s). %d components total.",
			strings.Join(parts, "; "), len(components)),
	}, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// goSafe runs fn on g, reporting a panic as the task's error so Wait
// returns instead of the process dying.
func goSafe(g *errgroup.Group, fn func() error) {
	g.Go(func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("component task panicked: %v", p)
			}
		}()
		return fn()
	})
}
