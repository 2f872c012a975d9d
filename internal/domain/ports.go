package domain

import "context"

// ModelRole selects which configured model serves a call.
type ModelRole string

const (
	ModelRouter    ModelRole = "router"    // fast model that only picks an action
	ModelGenerator ModelRole = "generator" // high-quality model that writes HTML
)

// LLMClient is the content-generation service consumed by routing and the executor.
type LLMClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// GenerateRequest is a single call to the generation service.
type GenerateRequest struct {
	Model  ModelRole
	System string
	Turns  []Message // conversation so far, oldest first

	// Tools, when set, forces the model to answer with exactly one tool call.
	Tools []ToolSpec
}

// ToolSpec declares an action the model may select.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  *Schema
}

// Schema is a minimal JSON-schema subset, enough to describe tool arguments.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

type SchemaType string

const (
	SchemaObject SchemaType = "object"
	SchemaArray  SchemaType = "array"
	SchemaString SchemaType = "string"
)

// GenerateResponse carries either text, tool calls, or both.
type GenerateResponse struct {
	Text  string
	Calls []ToolCall
}

// ToolCall is one action selected by the model with its raw arguments.
type ToolCall struct {
	Name string
	Args map[string]any
}

// SessionStore keeps per-identifier session state with sliding expiration.
type SessionStore interface {
	Get(id SessionID) SessionState
	Update(id SessionID, state SessionState)
	Reset(id SessionID)
	Sweep(now Timestamp) int
}
