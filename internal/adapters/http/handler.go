package httpadapter

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Mozzzaic/banani-ai-test/internal/app/conversation"
	"github.com/Mozzzaic/banani-ai-test/internal/app/stream"
	"github.com/Mozzzaic/banani-ai-test/internal/domain"
	"github.com/Mozzzaic/banani-ai-test/internal/observability"
)

// Options configure the transport around the conversation service.
type Options struct {
	CookieName     string
	CookieMaxAge   time.Duration
	SecureCookies  bool
	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.CookieName == "" {
		o.CookieName = DefaultCookieName
	}
	if o.CookieMaxAge <= 0 {
		o.CookieMaxAge = DefaultCookieMaxAge
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	return o
}

type Server struct {
	svc  *conversation.Service
	opts Options
}

func NewServer(svc *conversation.Service, opts Options) http.Handler {
	s := &Server{svc: svc, opts: opts.withDefaults()}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(withRequestID())
	router.Use(withLogging())
	router.Use(cors.New(corsConfig(s.opts.AllowedOrigins)))

	router.GET("/healthz", s.handleHealthz)

	api := router.Group("/api")
	{
		api.POST("/generate", s.handleGenerate)
		api.GET("/session", s.handleGetSession)
		api.POST("/reset", s.handleReset)
	}

	return router
}

// corsConfig reflects the caller's origin when every origin is allowed, since
// session cookies are not sent to a literal "*".
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", SessionHeader, RequestIDHeader},
		ExposeHeaders:    []string{SessionHeader, RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type sessionResponse struct {
	Screen   *domain.Screen   `json:"screen"`
	Messages []domain.Message `json:"messages"`
}

type resetResponse struct {
	Success bool `json:"success"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleGenerate streams one pipeline run as Server-Sent Events.
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid JSON body.")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		badRequest(c, "Invalid or missing 'prompt' field in request body.")
		return
	}

	id := s.ensureSession(c)
	ctx := observability.WithSessionID(c.Request.Context(), string(id))

	st, err := s.svc.SubmitPrompt(ctx, conversation.SubmitPromptInput{
		SessionID: id,
		Prompt:    req.Prompt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			badRequest(c, err.Error())
			return
		}
		internalError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	if err := stream.WriteAll(c.Writer, c.Writer.Flush, st.Events()); err != nil {
		observability.LoggerFromContext(ctx).Warn("event stream interrupted", "error", err)
	}
}

func (s *Server) handleGetSession(c *gin.Context) {
	id := s.ensureSession(c)

	state, err := s.svc.ReadSession(c.Request.Context(), id)
	if err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSessionResponse(state))
}

// handleReset clears only the caller's session; without one it is a no-op.
func (s *Server) handleReset(c *gin.Context) {
	id, _ := s.sessionID(c)

	if err := s.svc.ResetSession(c.Request.Context(), id); err != nil {
		internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, resetResponse{Success: true})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

func toSessionResponse(state domain.SessionState) sessionResponse {
	msgs := state.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return sessionResponse{Screen: state.Screen, Messages: msgs}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func internalError(c *gin.Context, err error) {
	observability.LoggerFromContext(c.Request.Context()).Error("request failed", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
