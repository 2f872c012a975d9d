package agentflow_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mozzzaic/banani-ai-test/internal/adapters/llm"
	"github.com/Mozzzaic/banani-ai-test/internal/app/agentflow"
	"github.com/Mozzzaic/banani-ai-test/internal/app/assembler"
	"github.com/Mozzzaic/banani-ai-test/internal/app/generation"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newTestOrchestrator(fake *llm.ScriptedLLM) *agentflow.Orchestrator {
	gen := generation.NewClient(fake, generation.WithSleep(noSleep))
	return agentflow.NewDefaultOrchestrator(fake, gen, agentflow.WithLaunchStagger(0))
}

// A first prompt on an empty session builds a whole screen.
func TestRunCreatesScreenFromEmptySession(t *testing.T) {
	fake := llm.NewScriptedLLM().RouteTo(agentflow.ToolGenerateScreen, agentflow.CreateScreen{
		Description: "landing page",
		StyleGuide:  "Light theme, accent indigo-600",
		Components: []agentflow.ComponentSpec{
			{Name: "Navbar", Type: "navbar", Description: "logo and links"},
			{Name: "Hero", Type: "hero", Description: "headline and CTA"},
			{Name: "Footer", Type: "footer", Description: "copyright"},
		},
	})
	orch := newTestOrchestrator(fake)
	progress := &progressLog{}
	initial := domain.EmptyState()

	state, err := orch.Run(context.Background(), "Create a landing page", initial, progress.add)
	require.NoError(t, err)

	require.NotNil(t, state.Screen)
	require.Len(t, state.Screen.Components, 3)
	for i, name := range []string{"Navbar", "Hero", "Footer"} {
		c := state.Screen.Components[i]
		assert.Equal(t, name, c.Name)
		assert.Equal(t, i, c.Order)
		assert.True(t, strings.HasPrefix(c.HTML, "<div>Create a "), c.HTML)
	}
	assert.Equal(t, assembler.Assemble(state.Screen.Components), state.Screen.AssembledHTML)
	assert.Equal(t, "Light theme, accent indigo-600", state.Screen.StyleGuide)

	assert.Equal(t, []domain.Message{
		{Role: domain.RoleUser, Content: "Create a landing page"},
		{Role: domain.RoleAssistant, Content: "Generated a new screen with 3 components: Navbar, Hero, Footer."},
	}, state.Messages)

	msgs := progress.all()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "Analyzing your request...", msgs[0])
	assert.Equal(t, "Assembling final screen...", msgs[len(msgs)-1])

	assert.Len(t, fake.Calls(domain.ModelGenerator), 3)
	assert.Nil(t, initial.Screen)
	assert.Empty(t, initial.Messages)
}

// A follow-up edit regenerates only the targeted component.
func TestRunUpdatesOneComponent(t *testing.T) {
	fake := llm.NewScriptedLLM().
		RouteTo(agentflow.ToolUpdateComponents, agentflow.UpdateComponents{
			Updates: []agentflow.ComponentUpdate{{ComponentID: "h1", Instruction: "dark background"}},
		}).
		OnGenerate(func(string, int) (string, error) {
			return "```html\n<section class=\"bg-gray-900\">hero</section>\n```", nil
		})
	orch := newTestOrchestrator(fake)

	screen := threeComponentScreen()
	screen.AssembledHTML = assembler.Assemble(screen.Components)
	prev := domain.SessionState{
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "landing page"},
			{Role: domain.RoleAssistant, Content: "Generated a new screen with 3 components: Navbar, Hero, Footer."},
		},
		Screen: screen,
	}
	prevHTML := prev.Screen.AssembledHTML

	state, err := orch.Run(context.Background(), "Make the hero section have a dark background", prev, nil)
	require.NoError(t, err)

	got := state.Screen.Components
	require.Len(t, got, 3)
	assert.Equal(t, prev.Screen.Components[0], got[0])
	assert.Equal(t, prev.Screen.Components[2], got[2])
	assert.Equal(t, `<section class="bg-gray-900">hero</section>`, got[1].HTML)
	assert.Equal(t, domain.ComponentID("h1"), got[1].ID)

	assert.NotEqual(t, prevHTML, state.Screen.AssembledHTML)
	assert.Len(t, state.Messages, 4)
	assert.Equal(t, "Updated 1 component: Hero (dark background).", state.Messages[3].Content)
	assert.Len(t, fake.Calls(domain.ModelGenerator), 1)

	// The style guide captured at creation is reused for edits.
	system := fake.Calls(domain.ModelGenerator)[0].System
	assert.True(t, strings.HasSuffix(system, "Style guide to follow: dark"))
}

func TestRunRoutingFailureMakesNoGenerationCalls(t *testing.T) {
	fake := llm.NewScriptedLLM().QueueRouter(llm.RouterReply{Response: &domain.GenerateResponse{}})
	orch := newTestOrchestrator(fake)

	_, err := orch.Run(context.Background(), "hello", domain.EmptyState(), nil)

	assert.ErrorIs(t, err, domain.ErrRoutingFailure)
	assert.Empty(t, fake.Calls(domain.ModelGenerator))
}
