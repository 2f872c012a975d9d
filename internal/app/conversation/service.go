package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mozzzaic/banani-ai-test/internal/app/agentflow"
	"github.com/Mozzzaic/banani-ai-test/internal/app/stream"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

// GenericFailureMessage is reported for errors outside the known taxonomy.
const GenericFailureMessage = "An unexpected error occurred during generation."

// Reporter receives the progress and the single terminal event of one run.
// Progress is called from concurrent component tasks, so implementations
// must be safe for concurrent use.
type Reporter interface {
	Progress(message string)
	Succeed(state domain.SessionState)
	Fail(message string)
}

type Service struct {
	store        domain.SessionStore
	orchestrator *agentflow.Orchestrator
	now          func() time.Time
	locks        *sessionLocks
	streamBuffer int
}

type Option func(*Service)

// WithStreamBuffer sets the event buffer of streams returned by SubmitPrompt.
func WithStreamBuffer(n int) Option {
	return func(s *Service) {
		s.streamBuffer = n
	}
}

// WithClock replaces time.Now for sweeps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(
	store domain.SessionStore,
	orchestrator *agentflow.Orchestrator,
	opts ...Option,
) *Service {
	s := &Service{
		store:        store,
		orchestrator: orchestrator,
		now:          time.Now,
		locks:        newSessionLocks(),
		streamBuffer: stream.DefaultBuffer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type SubmitPromptInput struct {
	SessionID domain.SessionID
	Prompt    string
}

func (in SubmitPromptInput) validate() (SubmitPromptInput, error) {
	if in.SessionID == "" {
		return in, domain.InvalidInput("session id is required")
	}
	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return in, domain.InvalidInput("prompt is required")
	}
	in.Prompt = prompt
	return in, nil
}

// SubmitPrompt validates the input and starts a run in the background. The
// returned stream yields progress and then exactly one terminal event.
// Invalid input is rejected here, before any session access.
func (s *Service) SubmitPrompt(ctx context.Context, in SubmitPromptInput) (*stream.Stream, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	st := stream.New(s.streamBuffer)
	go func() {
		_, _ = s.run(ctx, in, st)
	}()
	return st, nil
}

// Run executes one prompt synchronously, reporting to r, and returns the
// stored replacement state.
func (s *Service) Run(ctx context.Context, in SubmitPromptInput, r Reporter) (domain.SessionState, error) {
	in, err := in.validate()
	if err != nil {
		r.Fail(err.Error())
		return domain.SessionState{}, err
	}
	return s.run(ctx, in, r)
}

func (s *Service) run(ctx context.Context, in SubmitPromptInput, r Reporter) (state domain.SessionState, err error) {
	ctx = observability.WithSessionID(ctx, string(in.SessionID))
	log := observability.LoggerFromContext(ctx)

	defer func() {
		if p := recover(); p != nil {
			log.Error("pipeline panicked", "panic", p)
			err = fmt.Errorf("pipeline panic: %v", p)
			r.Fail(GenericFailureMessage)
		}
	}()

	s.sweep(ctx)

	unlock := s.locks.lock(in.SessionID)
	defer unlock()

	log.Info("submitting prompt", "prompt_len", len(in.Prompt))

	current := s.store.Get(in.SessionID)
	next, err := s.orchestrator.Run(ctx, in.Prompt, current, r.Progress)
	if err != nil {
		log.Error("pipeline failed", "error", err)
		r.Fail(failureMessage(err))
		return domain.SessionState{}, err
	}

	s.store.Update(in.SessionID, next)
	r.Succeed(next)

	log.Info("prompt completed", "messages", len(next.Messages))
	return next, nil
}

// ReadSession returns the caller's current screen and transcript.
func (s *Service) ReadSession(ctx context.Context, id domain.SessionID) (domain.SessionState, error) {
	if id == "" {
		return domain.SessionState{}, domain.InvalidInput("session id is required")
	}
	s.sweep(ctx)

	state := s.store.Get(id)
	observability.LoggerFromContext(ctx).Debug("read session",
		"session_id", id,
		"messages", len(state.Messages))
	return state, nil
}

// ResetSession clears the caller's own session. Without an id there is
// nothing to reset.
func (s *Service) ResetSession(ctx context.Context, id domain.SessionID) error {
	s.sweep(ctx)
	if id == "" {
		return nil
	}

	unlock := s.locks.lock(id)
	defer unlock()

	s.store.Reset(id)
	observability.LoggerFromContext(ctx).Info("session reset", "session_id", id)
	return nil
}

func (s *Service) sweep(ctx context.Context) {
	if removed := s.store.Sweep(s.now()); removed > 0 {
		observability.LoggerFromContext(ctx).Info("swept expired sessions", "removed", removed)
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrRoutingFailure),
		errors.Is(err, domain.ErrGenerationFailure):
		return err.Error()
	default:
		return GenericFailureMessage
	}
}
