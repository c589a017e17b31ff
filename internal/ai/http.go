package ai

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sarthakagrawal927/reader-backend/internal/cache"
	"github.com/sarthakagrawal927/reader-backend/internal/sanitize"
)

// maxContextRunes bounds the article text spliced into the system
// prompt so oversized articles don't blow the provider's context window.
const maxContextRunes = 12000

const modelsCacheTTL = 10 * time.Minute

type Handler struct {
	registry *Registry
	cache    *cache.Cache
}

func Register(rg *gin.RouterGroup, registry *Registry, c *cache.Cache) {
	h := &Handler{registry: registry, cache: c}

	rg.POST("/chat", h.chat)
	rg.POST("/models", h.models)
}

type chatReq struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
	Messages []any  `json:"messages"`
	Context  string `json:"context"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	messages := SanitizeMessages(req.Messages)
	if len(messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No messages provided"})
		return
	}

	provider, err := h.registry.New(req.Provider, req.APIKey)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	model := req.Model
	if model == "" {
		if fallback := StaticModels(req.Provider); len(fallback) > 0 {
			model = fallback[0]
		}
	}

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	started := false
	streamErr := provider.Stream(c.Request.Context(), ChatRequest{
		Model:    model,
		System:   systemPrompt(req.Context),
		Messages: messages,
	}, func(delta string) error {
		started = true
		if _, err := c.Writer.WriteString(delta); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	if streamErr != nil {
		if !started {
			c.JSON(http.StatusBadGateway, gin.H{"error": "AI provider request failed: " + streamErr.Error()})
			return
		}
		// Reply already under way; nothing useful to send the client.
		log.Warn().Err(streamErr).Str("provider", req.Provider).Msg("ai stream interrupted")
	}
}

func systemPrompt(articleContext string) string {
	prompt := "You are a helpful reading assistant. Answer questions about the article the user saved. Be concise and ground every answer in the article text."
	articleContext = sanitize.Clamp(sanitize.PlainText(articleContext), maxContextRunes)
	if articleContext == "" {
		return prompt
	}
	return fmt.Sprintf("%s\n\nArticle:\n%s", prompt, articleContext)
}

type modelsReq struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
}

type modelsResp struct {
	Models []string `json:"models"`
	Source string   `json:"source"`
}

func (h *Handler) models(c *gin.Context) {
	var req modelsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	provider, err := h.registry.New(req.Provider, req.APIKey)
	if err != nil {
		if errors.Is(err, ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// A missing key still gets the static list so the picker works
		// before the user pastes credentials.
		c.JSON(http.StatusOK, modelsResp{Models: StaticModels(req.Provider), Source: "static"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := "ai:models:" + req.Provider

	var cached []string
	if hit, _ := h.cache.GetJSON(ctx, cacheKey, &cached); hit {
		c.JSON(http.StatusOK, modelsResp{Models: cached, Source: "provider"})
		return
	}

	models, err := provider.Models(ctx)
	if err != nil || len(models) == 0 {
		c.JSON(http.StatusOK, modelsResp{Models: StaticModels(req.Provider), Source: "static"})
		return
	}

	if err := h.cache.SetJSON(ctx, cacheKey, models, modelsCacheTTL); err != nil {
		log.Warn().Err(err).Msg("cache ai models")
	}
	c.JSON(http.StatusOK, modelsResp{Models: models, Source: "provider"})
}
