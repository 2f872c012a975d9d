package llm

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// MockLLM is a deterministic, offline stand-in for the generation service.
// Routing follows simple keyword rules; generated HTML echoes the request.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// summaryLine matches the "- [id] name (type): description" lines of the router prompt.
var summaryLine = regexp.MustCompile(`(?m)^- \[([^\]]+)\] (.+?) \(([^)]*)\): (.*)$`)

var structuralWords = []string{"add", "remove", "delete", "reorder", "move", "swap", "replace"}

type mockComponent struct {
	id, name, typ string
}

func (m *MockLLM) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt := ""
	if n := len(req.Turns); n > 0 {
		prompt = req.Turns[n-1].Content
	}

	if len(req.Tools) == 0 {
		return &domain.GenerateResponse{Text: mockFragment(prompt)}, nil
	}

	var existing []mockComponent
	for _, match := range summaryLine.FindAllStringSubmatch(req.System, -1) {
		existing = append(existing, mockComponent{id: match[1], name: match[2], typ: match[3]})
	}

	var call domain.ToolCall
	switch {
	case len(existing) == 0:
		call = mockCreate(prompt)
	case hasAnyWord(prompt, structuralWords):
		call = mockRegenerate(prompt, existing)
	default:
		call = mockUpdate(prompt, existing)
	}
	return &domain.GenerateResponse{Calls: []domain.ToolCall{call}}, nil
}

func mockCreate(prompt string) domain.ToolCall {
	components := []any{
		map[string]any{"name": "Navbar", "type": "navbar", "description": "Top navigation with logo and links"},
		map[string]any{"name": "Hero", "type": "hero", "description": "Headline, subheadline and primary call to action"},
		map[string]any{"name": "Features", "type": "card_grid", "description": "Three feature cards"},
		map[string]any{"name": "Footer", "type": "footer", "description": "Links and copyright"},
	}
	return domain.ToolCall{
		Name: "generate_screen",
		Args: map[string]any{
			"screen_description": prompt,
			"style_guide":        "Light theme, bg-white, accent indigo-600, rounded-xl cards, Inter font",
			"components":         components,
		},
	}
}

func mockUpdate(prompt string, existing []mockComponent) domain.ToolCall {
	lower := strings.ToLower(prompt)
	var updates []any
	for _, c := range existing {
		if strings.Contains(lower, strings.ToLower(c.name)) || strings.Contains(lower, strings.ToLower(c.typ)) {
			updates = append(updates, map[string]any{"component_id": c.id, "instruction": prompt})
		}
	}
	if len(updates) == 0 {
		updates = append(updates, map[string]any{"component_id": existing[0].id, "instruction": prompt})
	}
	return domain.ToolCall{Name: "update_components", Args: map[string]any{"updates": updates}}
}

func mockRegenerate(prompt string, existing []mockComponent) domain.ToolCall {
	components := make([]any, 0, len(existing)+1)
	for _, c := range existing {
		components = append(components, map[string]any{
			"name":         c.name,
			"type":         c.typ,
			"description":  "Kept from the previous layout",
			"keep_from_id": c.id,
		})
	}
	components = append(components, map[string]any{
		"name":        "New Section",
		"type":        "section",
		"description": prompt,
	})
	return domain.ToolCall{
		Name: "regenerate_screen",
		Args: map[string]any{"instruction": prompt, "components": components},
	}
}

func mockFragment(prompt string) string {
	return fmt.Sprintf("```html\n<section class=\"p-8 border-b\">\n  <p class=\"text-gray-700\">%s</p>\n</section>\n```",
		html.EscapeString(prompt))
}

// hasAnyWord matches whole words only, so "padding" does not read as "add".
func hasAnyWord(s string, words []string) bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, f := range fields {
		if slices.Contains(words, f) {
			return true
		}
	}
	return false
}
