package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Mozzzaic/banani-ai-test/internal/domain"
)

// GenAIConfig selects the backend and the model per role.
type GenAIConfig struct {
	UseVertex bool

	APIKey string // Gemini API backend

	ProjectID string // Vertex AI backend
	Location  string

	RouterModel    string
	GeneratorModel string
}

// GenAIClient implements domain.LLMClient on top of google.golang.org/genai,
// against either the Gemini API or Vertex AI.
type GenAIClient struct {
	client *genai.Client
	models map[domain.ModelRole]string
}

func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*GenAIClient, error) {
	cc := &genai.ClientConfig{}
	if cfg.UseVertex {
		if cfg.ProjectID == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend requires project and location")
		}
		cc.Project = cfg.ProjectID
		cc.Location = cfg.Location
		cc.Backend = genai.BackendVertexAI
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend requires an API key")
		}
		cc.APIKey = cfg.APIKey
		cc.Backend = genai.BackendGeminiAPI
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	routerModel := cfg.RouterModel
	if routerModel == "" {
		routerModel = "gemini-2.5-flash"
	}
	generatorModel := cfg.GeneratorModel
	if generatorModel == "" {
		generatorModel = "gemini-2.5-pro"
	}

	return &GenAIClient{
		client: client,
		models: map[domain.ModelRole]string{
			domain.ModelRouter:    routerModel,
			domain.ModelGenerator: generatorModel,
		},
	}, nil
}

// Generate implements domain.LLMClient.
func (c *GenAIClient) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResponse, error) {
	model, ok := c.models[req.Model]
	if !ok {
		model = c.models[domain.ModelGenerator]
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	if len(req.Tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDeclarations(req.Tools)}}
		cfg.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAny,
			},
		}
	}

	res, err := c.client.Models.GenerateContent(ctx, model, toContents(req.Turns), cfg)
	if err != nil {
		return nil, fmt.Errorf("genai generate content (%s): %w", model, err)
	}

	out := &domain.GenerateResponse{}
	for _, fc := range res.FunctionCalls() {
		out.Calls = append(out.Calls, domain.ToolCall{Name: fc.Name, Args: fc.Args})
	}
	if len(req.Tools) > 0 {
		return out, nil
	}

	out.Text = res.Text()
	if out.Text == "" {
		return nil, fmt.Errorf("genai returned empty text (%s)", model)
	}
	return out, nil
}
