package llm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mozzzaic/banani-ai-test/internal/adapters/llm"
	"github.com/Mozzzaic/banani-ai-test/internal/app/agentflow"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

func routeWithMock(t *testing.T, prompt string, state domain.SessionState) agentflow.Action {
	t.Helper()
	action, err := agentflow.NewRouter(llm.NewMockLLM()).Route(context.Background(), prompt, state)
	require.NoError(t, err)
	return action
}

func mockState() domain.SessionState {
	return domain.SessionState{Screen: &domain.Screen{Components: []domain.Component{
		{ID: "n1", Name: "Navbar", Type: "navbar", Description: "links"},
		{ID: "h1", Name: "Hero", Type: "hero", Description: "headline"},
		{ID: "f1", Name: "Footer", Type: "footer", Description: "copyright"},
	}}}
}

func TestMockLLMCreatesOnEmptyScreen(t *testing.T) {
	action := routeWithMock(t, "a landing page", domain.EmptyState())

	create, ok := action.(agentflow.CreateScreen)
	require.True(t, ok, "got %T", action)
	assert.Len(t, create.Components, 4)
	assert.NotEmpty(t, create.StyleGuide)
	assert.Equal(t, "a landing page", create.Description)
}

func TestMockLLMUpdatesMentionedComponent(t *testing.T) {
	action := routeWithMock(t, "Make the footer darker", mockState())

	update, ok := action.(agentflow.UpdateComponents)
	require.True(t, ok, "got %T", action)
	require.Len(t, update.Updates, 1)
	assert.Equal(t, domain.ComponentID("f1"), update.Updates[0].ComponentID)
}

func TestMockLLMFallsBackToFirstComponent(t *testing.T) {
	action := routeWithMock(t, "more whitespace please", mockState())

	update, ok := action.(agentflow.UpdateComponents)
	require.True(t, ok, "got %T", action)
	assert.Equal(t, domain.ComponentID("n1"), update.Updates[0].ComponentID)
}

func TestMockLLMRegeneratesOnStructuralChange(t *testing.T) {
	action := routeWithMock(t, "Add a testimonials section", mockState())

	regen, ok := action.(agentflow.RegenerateScreen)
	require.True(t, ok, "got %T", action)
	require.Len(t, regen.Components, 4)
	assert.Equal(t, domain.ComponentID("n1"), regen.Components[0].KeepFromID)
	assert.Equal(t, domain.ComponentID("f1"), regen.Components[2].KeepFromID)
	assert.Empty(t, regen.Components[3].KeepFromID)
}

func TestMockLLMGeneratesFencedFragment(t *testing.T) {
	res, err := llm.NewMockLLM().Generate(context.Background(), domain.GenerateRequest{
		Model: domain.ModelGenerator,
		Turns: []domain.Message{{Role: domain.RoleUser, Content: `a <b>bold</b> "hero"`}},
	})
	require.NoError(t, err)

	assert.Contains(t, res.Text, "```html")
	assert.Contains(t, res.Text, "a &lt;b&gt;bold&lt;/b&gt;")
	assert.Empty(t, res.Calls)
}

func TestScriptedLLMWithoutScript(t *testing.T) {
	_, err := llm.NewScriptedLLM().Generate(context.Background(), domain.GenerateRequest{Model: domain.ModelRouter})
	assert.ErrorIs(t, err, llm.ErrNoScript)
}
