// Package generation wraps the HTML-writing call to the generation service:
// fixed instructions, bounded retry with linear backoff, and cleanup of the
// returned text into a bare fragment.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

const (
	DefaultMaxAttempts = 3
	DefaultBackoffUnit = time.Second
)

var errNoResponse = errors.New("generation service returned no response")

const componentInstructions = `You are an expert frontend developer. Generate a single, self-contained HTML component using Tailwind CSS classes.
Return ONLY the raw HTML fragment, with no <!DOCTYPE>, <html>, <head>, <body>, or <script> tags.
This component will be placed inside a page alongside other components, so do NOT use min-h-screen or full-page wrappers.
Use realistic, specific placeholder text that feels human-written. Never use em-dashes or generic marketing fluff.`

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Client generates one component fragment per call.
type Client struct {
	llm         domain.LLMClient
	maxAttempts int
	backoffUnit time.Duration
	sleep       SleepFunc
	now         func() time.Time
}

type Option func(*Client)

// WithMaxAttempts bounds the number of calls made per Generate.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoffUnit sets the unit of the linear backoff (attempt × unit).
func WithBackoffUnit(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.backoffUnit = d
		}
	}
}

// WithSleep replaces the wait between attempts. Tests use it to skip real time.
func WithSleep(fn SleepFunc) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func NewClient(llm domain.LLMClient, opts ...Option) *Client {
	c := &Client{
		llm:         llm,
		maxAttempts: DefaultMaxAttempts,
		backoffUnit: DefaultBackoffUnit,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate asks the generator model for a fragment described by prompt.
// Service errors are retried; the last one is returned once attempts run out.
func (c *Client) Generate(ctx context.Context, prompt, styleGuide string) (string, error) {
	req := domain.GenerateRequest{
		Model:  domain.ModelGenerator,
		System: SystemInstructions(styleGuide, c.now()),
		Turns:  []domain.Message{{Role: domain.RoleUser, Content: prompt}},
	}

	log := observability.LoggerFromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		start := time.Now()
		res, err := c.llm.Generate(ctx, req)
		if err == nil && res == nil {
			err = errNoResponse
		}
		if err == nil {
			log.Debug("generation call succeeded",
				"attempt", attempt,
				"elapsed_ms", time.Since(start).Milliseconds())
			return CleanFragment(res.Text), nil
		}
		lastErr = err

		// A cancelled caller is not a service error; retrying cannot help.
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, ctx.Err())
		}

		log.Warn("generation call failed",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"error", err)

		if attempt == c.maxAttempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.backoffUnit); err != nil {
			return "", fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
		}
	}

	return "", fmt.Errorf("%w: after %d attempts: %w", domain.ErrGenerationFailure, c.maxAttempts, lastErr)
}

// SystemInstructions returns the generator instructions, with the style guide
// appended when one is set.
func SystemInstructions(styleGuide string, now time.Time) string {
	system := componentInstructions + fmt.Sprintf(
		"\nThe current year is %d. Use %d for any copyright notices or dates.", now.Year(), now.Year())
	if styleGuide != "" {
		system += "\nStyle guide to follow: " + styleGuide
	}
	return system
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
