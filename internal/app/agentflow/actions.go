package agentflow

import (
	"encoding/json"
	"strings"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// Tool names the router may select.
const (
	ToolGenerateScreen   = "generate_screen"
	ToolUpdateComponents = "update_components"
	ToolRegenerateScreen = "regenerate_screen"
)

// Action is the closed set of mutations a run can apply. The concrete types
// are CreateScreen, UpdateComponents and RegenerateScreen.
type Action interface {
	ToolName() string
	validate() error
}

// ComponentSpec describes a component to produce. KeepFromID is only honored
// by RegenerateScreen.
type ComponentSpec struct {
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Description string             `json:"description"`
	KeepFromID  domain.ComponentID `json:"keep_from_id,omitempty"`
}

type CreateScreen struct {
	Description string          `json:"screen_description"`
	StyleGuide  string          `json:"style_guide"`
	Components  []ComponentSpec `json:"components"`
}

func (CreateScreen) ToolName() string { return ToolGenerateScreen }

func (a CreateScreen) validate() error {
	return validateSpecs(ToolGenerateScreen, a.Components)
}

type ComponentUpdate struct {
	ComponentID domain.ComponentID `json:"component_id"`
	Instruction string             `json:"instruction"`
}

type UpdateComponents struct {
	Updates []ComponentUpdate `json:"updates"`
}

func (UpdateComponents) ToolName() string { return ToolUpdateComponents }

func (a UpdateComponents) validate() error {
	if len(a.Updates) == 0 {
		return domain.RoutingFailure("%s: no updates", ToolUpdateComponents)
	}
	return nil
}

type RegenerateScreen struct {
	Instruction string          `json:"instruction"`
	Components  []ComponentSpec `json:"components"`
}

func (RegenerateScreen) ToolName() string { return ToolRegenerateScreen }

func (a RegenerateScreen) validate() error {
	return validateSpecs(ToolRegenerateScreen, a.Components)
}

func validateSpecs(tool string, specs []ComponentSpec) error {
	if len(specs) == 0 {
		return domain.RoutingFailure("%s: no components", tool)
	}
	for i, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			return domain.RoutingFailure("%s: component %d has no name", tool, i)
		}
	}
	return nil
}

// DecodeAction turns a raw tool call into its Action. Unknown tools and
// malformed arguments are routing failures, never guesses.
func DecodeAction(call domain.ToolCall) (Action, error) {
	var action Action
	switch call.Name {
	case ToolGenerateScreen:
		action = &CreateScreen{}
	case ToolUpdateComponents:
		action = &UpdateComponents{}
	case ToolRegenerateScreen:
		action = &RegenerateScreen{}
	default:
		return nil, domain.RoutingFailure("unknown tool %q", call.Name)
	}

	raw, err := json.Marshal(call.Args)
	if err != nil {
		return nil, domain.RoutingFailure("%s: encoding arguments: %v", call.Name, err)
	}
	if err := json.Unmarshal(raw, action); err != nil {
		return nil, domain.RoutingFailure("%s: decoding arguments: %v", call.Name, err)
	}

	// Return values, not pointers, so callers switch on the plain types.
	switch a := action.(type) {
	case *CreateScreen:
		action = *a
	case *UpdateComponents:
		action = *a
	case *RegenerateScreen:
		action = *a
	}
	if err := action.validate(); err != nil {
		return nil, err
	}
	return action, nil
}

func stringSchema(desc string) *domain.Schema {
	return &domain.Schema{Type: domain.SchemaString, Description: desc}
}

// ToolSpecs declares the three actions for the router call.
func ToolSpecs() []domain.ToolSpec {
	componentItem := func(withKeep bool) *domain.Schema {
		props := map[string]*domain.Schema{
			"name":        stringSchema(""),
			"type":        stringSchema("Semantic category, e.g. navbar, hero, card_grid, footer"),
			"description": stringSchema(""),
		}
		if withKeep {
			props["keep_from_id"] = stringSchema("ID of the existing component to keep")
		}
		return &domain.Schema{
			Type:       domain.SchemaObject,
			Properties: props,
			Required:   []string{"name", "type", "description"},
		}
	}

	return []domain.ToolSpec{
		{
			Name:        ToolGenerateScreen,
			Description: "Generate a completely new screen from scratch.",
			Parameters: &domain.Schema{
				Type: domain.SchemaObject,
				Properties: map[string]*domain.Schema{
					"screen_description": stringSchema(""),
					"style_guide": stringSchema("Shared design rules all components must follow " +
						"(e.g. 'Dark theme, bg-gray-900, accent indigo-500, rounded-xl cards, Inter font')"),
					"components": {Type: domain.SchemaArray, Items: componentItem(false)},
				},
				Required: []string{"screen_description", "style_guide", "components"},
			},
		},
		{
			Name:        ToolUpdateComponents,
			Description: "Apply style or text updates to existing components.",
			Parameters: &domain.Schema{
				Type: domain.SchemaObject,
				Properties: map[string]*domain.Schema{
					"updates": {
						Type: domain.SchemaArray,
						Items: &domain.Schema{
							Type: domain.SchemaObject,
							Properties: map[string]*domain.Schema{
								"component_id": stringSchema(""),
								"instruction":  stringSchema(""),
							},
							Required: []string{"component_id", "instruction"},
						},
					},
				},
				Required: []string{"updates"},
			},
		},
		{
			Name:        ToolRegenerateScreen,
			Description: "Restructure an existing screen with new or retained components.",
			Parameters: &domain.Schema{
				Type: domain.SchemaObject,
				Properties: map[string]*domain.Schema{
					"instruction": stringSchema(""),
					"components":  {Type: domain.SchemaArray, Items: componentItem(true)},
				},
				Required: []string{"instruction", "components"},
			},
		},
	}
}
