package domain_test

import (
	"errors"
	"testing"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

func TestCloneDeepCopies(t *testing.T) {
	orig := domain.SessionState{
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
		Screen: &domain.Screen{
			Components: []domain.Component{{ID: "c1", Name: "Hero", HTML: "<h1>hi</h1>"}},
			StyleGuide: "dark",
		},
	}

	cp := orig.Clone()
	cp.Messages[0].Content = "changed"
	cp.Screen.Components[0].HTML = "<h1>changed</h1>"
	cp.Screen.StyleGuide = "light"

	if orig.Messages[0].Content != "hi" {
		t.Fatalf("messages aliased: %q", orig.Messages[0].Content)
	}
	if orig.Screen.Components[0].HTML != "<h1>hi</h1>" {
		t.Fatalf("components aliased: %q", orig.Screen.Components[0].HTML)
	}
	if orig.Screen.StyleGuide != "dark" {
		t.Fatalf("screen aliased")
	}
}

func TestCloneOfEmptyState(t *testing.T) {
	cp := domain.EmptyState().Clone()
	if cp.Messages == nil || len(cp.Messages) != 0 {
		t.Fatalf("expected empty non-nil messages, got %#v", cp.Messages)
	}
	if cp.Screen != nil || cp.HasComponents() {
		t.Fatalf("expected no screen")
	}
}

func TestComponentByID(t *testing.T) {
	var nilScreen *domain.Screen
	if _, ok := nilScreen.ComponentByID("x"); ok {
		t.Fatalf("nil screen must not find components")
	}

	s := &domain.Screen{Components: []domain.Component{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}}
	c, ok := s.ComponentByID("b")
	if !ok || c.Name != "B" {
		t.Fatalf("ComponentByID(b) = %+v, %v", c, ok)
	}
}

func TestErrorHelpersWrapSentinels(t *testing.T) {
	if err := domain.InvalidInput("prompt is %s", "empty"); !errors.Is(err, domain.ErrInvalidInput) || err.Error() != "invalid input: prompt is empty" {
		t.Fatalf("unexpected error %v", err)
	}
	if err := domain.RoutingFailure("no tool"); !errors.Is(err, domain.ErrRoutingFailure) {
		t.Fatalf("unexpected error %v", err)
	}
}
