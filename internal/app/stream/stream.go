// Package stream carries one pipeline run to its caller: zero or more
// progress notifications followed by exactly one terminal event.
package stream

import (
	"sync"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

type EventType string

const (
	EventStatus EventType = "status"
	EventDone   EventType = "done"
	EventError  EventType = "error"
)

// Event is one item of the stream. Only the fields of its type are set.
type Event struct {
	Type EventType

	Message  string           // status
	Screen   *domain.Screen   // done
	Messages []domain.Message // done
	Error    string           // error
}

// Terminal reports whether no event may follow this one.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

const DefaultBuffer = 64

// Stream is a buffered, ordered event channel. Producers never block: when the
// buffer is full, progress notifications are dropped, and one slot is always
// kept free for the terminal event.
type Stream struct {
	mu       sync.Mutex
	events   chan Event
	finished bool
	dropped  int
}

func New(buffer int) *Stream {
	if buffer < 2 {
		buffer = DefaultBuffer
	}
	return &Stream{events: make(chan Event, buffer)}
}

// Events is closed right after the terminal event.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Progress queues an advisory notification.
func (s *Stream) Progress(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished || len(s.events) >= cap(s.events)-1 {
		s.dropped++
		return
	}
	s.events <- Event{Type: EventStatus, Message: message}
}

// Succeed emits the terminal success event with the final screen and transcript.
func (s *Stream) Succeed(state domain.SessionState) {
	s.finish(Event{Type: EventDone, Screen: state.Screen, Messages: state.Messages})
}

// Fail emits the terminal failure event.
func (s *Stream) Fail(message string) {
	s.finish(Event{Type: EventError, Error: message})
}

// Dropped returns how many progress notifications were discarded.
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Stream) finish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return
	}
	s.finished = true
	s.events <- ev
	close(s.events)
}
