package agentflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mozzzaic/banani-ai-test/internal/app/agentflow"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

func TestDecodeAction(t *testing.T) {
	tests := []struct {
		name    string
		call    domain.ToolCall
		want    agentflow.Action
		wantErr bool
	}{
		{
			name: "generate screen",
			call: domain.ToolCall{Name: agentflow.ToolGenerateScreen, Args: map[string]any{
				"screen_description": "a landing page",
				"style_guide":        "dark",
				"components": []any{
					map[string]any{"name": "Hero", "type": "hero", "description": "big headline"},
				},
			}},
			want: agentflow.CreateScreen{
				Description: "a landing page",
				StyleGuide:  "dark",
				Components:  []agentflow.ComponentSpec{{Name: "Hero", Type: "hero", Description: "big headline"}},
			},
		},
		{
			name: "update components",
			call: domain.ToolCall{Name: agentflow.ToolUpdateComponents, Args: map[string]any{
				"updates": []any{map[string]any{"component_id": "h1", "instruction": "darker"}},
			}},
			want: agentflow.UpdateComponents{
				Updates: []agentflow.ComponentUpdate{{ComponentID: "h1", Instruction: "darker"}},
			},
		},
		{
			name: "regenerate keeps ids",
			call: domain.ToolCall{Name: agentflow.ToolRegenerateScreen, Args: map[string]any{
				"instruction": "add pricing",
				"components": []any{
					map[string]any{"name": "Hero", "type": "hero", "description": "", "keep_from_id": "h1"},
					map[string]any{"name": "Pricing", "type": "pricing", "description": "three tiers"},
				},
			}},
			want: agentflow.RegenerateScreen{
				Instruction: "add pricing",
				Components: []agentflow.ComponentSpec{
					{Name: "Hero", Type: "hero", KeepFromID: "h1"},
					{Name: "Pricing", Type: "pricing", Description: "three tiers"},
				},
			},
		},
		{
			name:    "unknown tool",
			call:    domain.ToolCall{Name: "delete_screen", Args: map[string]any{}},
			wantErr: true,
		},
		{
			name:    "no components",
			call:    domain.ToolCall{Name: agentflow.ToolGenerateScreen, Args: map[string]any{"screen_description": "x"}},
			wantErr: true,
		},
		{
			name: "component without name",
			call: domain.ToolCall{Name: agentflow.ToolGenerateScreen, Args: map[string]any{
				"components": []any{map[string]any{"type": "hero"}},
			}},
			wantErr: true,
		},
		{
			name:    "malformed arguments",
			call:    domain.ToolCall{Name: agentflow.ToolRegenerateScreen, Args: map[string]any{"components": "Hero"}},
			wantErr: true,
		},
		{
			name:    "no updates",
			call:    domain.ToolCall{Name: agentflow.ToolUpdateComponents, Args: map[string]any{"updates": []any{}}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := agentflow.DecodeAction(tt.call)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrRoutingFailure)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.call.Name, got.ToolName())
		})
	}
}

func TestToolSpecsDeclareAllActions(t *testing.T) {
	specs := agentflow.ToolSpecs()
	require.Len(t, specs, 3)

	names := map[string]*domain.Schema{}
	for _, s := range specs {
		names[s.Name] = s.Parameters
	}
	require.Contains(t, names, agentflow.ToolGenerateScreen)
	require.Contains(t, names, agentflow.ToolUpdateComponents)
	require.Contains(t, names, agentflow.ToolRegenerateScreen)

	regen := names[agentflow.ToolRegenerateScreen]
	assert.Contains(t, regen.Properties["components"].Items.Properties, "keep_from_id")
	assert.NotContains(t, names[agentflow.ToolGenerateScreen].Properties["components"].Items.Properties, "keep_from_id")
	assert.ElementsMatch(t, []string{"updates"}, names[agentflow.ToolUpdateComponents].Required)
}
