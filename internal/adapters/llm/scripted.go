package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// ErrNoScript is returned when a router call has no queued reply left.
var ErrNoScript = errors.New("scripted llm: no reply scripted")

// RouterReply is one scripted answer to a router call.
type RouterReply struct {
	Response *domain.GenerateResponse
	Err      error
}

// GenerateFunc scripts generator calls. attempt counts calls with the same
// prompt, starting at 1.
type GenerateFunc func(prompt string, attempt int) (string, error)

// ScriptedLLM implements domain.LLMClient with scripted replies and records
// every call for verification.
type ScriptedLLM struct {
	mu       sync.Mutex
	router   []RouterReply
	generate GenerateFunc
	attempts map[string]int
	calls    []domain.GenerateRequest
}

func NewScriptedLLM() *ScriptedLLM {
	return &ScriptedLLM{
		attempts: make(map[string]int),
		generate: func(prompt string, _ int) (string, error) {
			return "<div>" + prompt + "</div>", nil
		},
	}
}

// QueueRouter appends replies consumed by successive router calls.
func (s *ScriptedLLM) QueueRouter(replies ...RouterReply) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.router = append(s.router, replies...)
	return s
}

// RouteTo queues a single tool call whose arguments are v encoded as JSON.
func (s *ScriptedLLM) RouteTo(tool string, v any) *ScriptedLLM {
	return s.QueueRouter(RouterReply{Response: &domain.GenerateResponse{
		Calls: []domain.ToolCall{{Name: tool, Args: ArgsOf(v)}},
	}})
}

// OnGenerate replaces the generator script.
func (s *ScriptedLLM) OnGenerate(fn GenerateFunc) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generate = fn
	return s
}

func (s *ScriptedLLM) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)

	if req.Model == domain.ModelRouter {
		defer s.mu.Unlock()
		if len(s.router) == 0 {
			return nil, ErrNoScript
		}
		reply := s.router[0]
		s.router = s.router[1:]
		return reply.Response, reply.Err
	}

	prompt := ""
	if n := len(req.Turns); n > 0 {
		prompt = req.Turns[n-1].Content
	}
	s.attempts[prompt]++
	attempt := s.attempts[prompt]
	fn := s.generate
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := fn(prompt, attempt)
	if err != nil {
		return nil, err
	}
	return &domain.GenerateResponse{Text: text}, nil
}

// Calls returns the recorded requests for the given model role.
func (s *ScriptedLLM) Calls(role domain.ModelRole) []domain.GenerateRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.GenerateRequest
	for _, c := range s.calls {
		if c.Model == role {
			out = append(out, c)
		}
	}
	return out
}

// ArgsOf converts a struct into the loose argument map a model would return.
func ArgsOf(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return out
}
