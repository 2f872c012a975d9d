package agentflow_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// fakeGen records prompts and answers through fn, or echoes the prompt.
type fakeGen struct {
	mu      sync.Mutex
	prompts []string
	styles  []string
	fn      func(prompt string) (string, error)
}

func (g *fakeGen) Generate(ctx context.Context, prompt, styleGuide string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.styles = append(g.styles, styleGuide)
	fn := g.fn
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fn == nil {
		return "<div>" + prompt + "</div>", nil
	}
	return fn(prompt)
}

func (g *fakeGen) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

type progressLog struct {
	mu   sync.Mutex
	msgs []string
}

func (p *progressLog) add(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
}

func (p *progressLog) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.msgs...)
}

func seqIDs() func() domain.ComponentID {
	var n atomic.Int64
	return func() domain.ComponentID {
		return domain.ComponentID(fmt.Sprintf("gen-%d", n.Add(1)))
	}
}

func threeComponentScreen() *domain.Screen {
	return &domain.Screen{
		Components: []domain.Component{
			{ID: "n1", Name: "Navbar", Type: "navbar", Description: "top bar", HTML: "<nav>old</nav>", Order: 0},
			{ID: "h1", Name: "Hero", Type: "hero", Description: "headline", HTML: "<section>old hero</section>", Order: 1},
			{ID: "f1", Name: "Footer", Type: "footer", Description: "links", HTML: "<footer>old</footer>", Order: 2},
		},
		AssembledHTML: "<html>old</html>",
		StyleGuide:    "dark",
	}
}
