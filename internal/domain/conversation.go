package domain

// Message is one entry of the session transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SessionState is everything a session owns: the transcript and the current screen.
// It is replaced wholesale by a pipeline run, never patched in place.
type SessionState struct {
	Messages []Message `json:"messages"`
	Screen   *Screen   `json:"screen"`
}

// EmptyState returns the state a brand new (or reset) session starts with.
func EmptyState() SessionState {
	return SessionState{Messages: []Message{}}
}

// Clone deep-copies the state so stored values never alias caller slices.
func (s SessionState) Clone() SessionState {
	out := SessionState{
		Messages: make([]Message, len(s.Messages)),
	}
	copy(out.Messages, s.Messages)
	if s.Screen != nil {
		scr := s.Screen.Clone()
		out.Screen = &scr
	}
	return out
}

// HasComponents reports whether the state carries a non-empty screen.
func (s SessionState) HasComponents() bool {
	return s.Screen != nil && len(s.Screen.Components) > 0
}
