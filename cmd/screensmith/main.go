package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mozzzaic/banani-ai-test/internal/adapters/llm"
	memstore "github.com/Mozzzaic/banani-ai-test/internal/adapters/storage/memory"
	"github.com/Mozzzaic/banani-ai-test/internal/app/agentflow"
	"github.com/Mozzzaic/banani-ai-test/internal/app/conversation"
	"github.com/Mozzzaic/banani-ai-test/internal/app/generation"
	"github.com/Mozzzaic/banani-ai-test/internal/config"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

var (
	// Global flags
	configPath string
	useMock    bool
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "screensmith",
	Short: "Conversational generator of single-page HTML screens",
	Long: `screensmith turns natural-language prompts into a screen made of independently
generated components, and refines it turn by turn.

Each prompt is routed to one of three actions: create a new screen, update
some components in place, or restructure the layout while keeping chosen
components untouched.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&useMock, "mock-llm", false, "Use the deterministic offline LLM")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug logging in text format")

	rootCmd.AddCommand(serveCmd, promptCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig applies the persistent flags that were actually set.
func loadConfig(cmd *cobra.Command, addr *string) (*config.Config, error) {
	var ov config.Overrides
	flags := cmd.Flags()
	if flags.Changed("config") {
		ov.ConfigPath = &configPath
	}
	if flags.Changed("mock-llm") {
		ov.UseMockLLM = &useMock
	}
	if flags.Changed("debug") {
		ov.Debug = &debug
	}
	if addr != nil && flags.Changed("addr") {
		ov.Addr = addr
	}

	cfg, err := config.Load(ov)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	observability.Configure(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// newLLMClient chooses between the mock and the genai backends.
func newLLMClient(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.WithFields("component", "llm")

	if cfg.LLM.UseMock {
		log.Info("using mock llm client")
		return llm.NewMockLLM(), nil
	}

	log.Info("using genai llm client",
		"backend", cfg.LLM.Backend,
		"router_model", cfg.LLM.RouterModel,
		"generator_model", cfg.LLM.GeneratorModel)

	return llm.NewGenAIClient(ctx, llm.GenAIConfig{
		UseVertex:      cfg.LLM.Backend == config.BackendVertex,
		APIKey:         cfg.LLM.APIKey,
		ProjectID:      cfg.LLM.GCPProjectID,
		Location:       cfg.LLM.GCPLocation,
		RouterModel:    cfg.LLM.RouterModel,
		GeneratorModel: cfg.LLM.GeneratorModel,
	})
}

// newService wires the pipeline around an in-memory session store.
func newService(ctx context.Context, cfg *config.Config) (*conversation.Service, error) {
	llmClient, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing llm client: %w", err)
	}

	gen := generation.NewClient(llmClient,
		generation.WithMaxAttempts(cfg.Pipeline.MaxAttempts),
		generation.WithBackoffUnit(cfg.Pipeline.BackoffUnit),
	)
	orch := agentflow.NewDefaultOrchestrator(llmClient, gen,
		agentflow.WithLaunchStagger(cfg.Pipeline.LaunchStagger),
	)
	store := memstore.NewSessionStore(cfg.Session.TTL)

	return conversation.NewService(store, orch,
		conversation.WithStreamBuffer(cfg.Pipeline.StreamBuffer),
	), nil
}
