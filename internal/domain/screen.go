package domain

// Component is one named, independently regenerable fragment of a screen.
type Component struct {
	ID          ComponentID `json:"id"`
	Name        string      `json:"name"`
	Type        string      `json:"type"` // semantic category: "hero", "navbar", "card_grid", ...
	Description string      `json:"description"`
	HTML        string      `json:"html"` // bare fragment, never a full document
	Order       int         `json:"order"`
}

// Screen is the ordered component list plus the document assembled from it.
type Screen struct {
	Components    []Component `json:"components"`
	AssembledHTML string      `json:"assembled_html"`

	// StyleGuide is captured when the screen is first generated and reused on every edit.
	StyleGuide string `json:"style_guide,omitempty"`
}

func (s Screen) Clone() Screen {
	out := s
	out.Components = make([]Component, len(s.Components))
	copy(out.Components, s.Components)
	return out
}

// ComponentByID returns the live component with the given id.
func (s *Screen) ComponentByID(id ComponentID) (Component, bool) {
	if s == nil {
		return Component{}, false
	}
	for _, c := range s.Components {
		if c.ID == id {
			return c, true
		}
	}
	return Component{}, false
}
