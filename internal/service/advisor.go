package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/agrisense-ai/agrisense-backend/internal/llm"
	"github.com/agrisense-ai/agrisense-backend/pkg/logger"
	"github.com/agrisense-ai/agrisense-backend/pkg/metrics"
)

const (
	// maxTitleLength bounds a derived session title.
	maxTitleLength = 50
	// titleFallbackLength is the rune count kept before the ellipsis
	// when title generation fails.
	titleFallbackLength = 47
)

// ResponseGenerator produces assistant replies and session titles.
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, chatCtx *ChatContext) (string, error)
	GenerateTitle(ctx context.Context, message string) string
}

// Advisor wraps an LLM client with the farming-assistant prompt and
// sampling parameters.
type Advisor struct {
	client llm.Client
	model  string
	log    *logger.Logger
}

// NewAdvisor creates an advisor. model may be empty to use the client's
// default.
func NewAdvisor(client llm.Client, model string, log *logger.Logger) *Advisor {
	return &Advisor{client: client, model: model, log: log}
}

// GenerateResponse sends the assembled context to the model and returns
// the reply text. Any failure, including empty output, is terminal for
// the request.
func (a *Advisor) GenerateResponse(ctx context.Context, chatCtx *ChatContext) (string, error) {
	resp, err := a.client.Complete(ctx, &llm.CompletionRequest{
		Model:       a.model,
		Messages:    BuildConversation(chatCtx),
		MaxTokens:   1024,
		Temperature: 0.7,
		TopP:        0.95,
		TopK:        40,
	})
	if err != nil {
		a.log.Error("LLM completion failed", zap.String("provider", a.client.Name()), zap.Error(err))
		metrics.RecordLLMRequest(a.model, "error", 0, 0, 0)
		return "", fmt.Errorf("%w: %v", ErrAIGeneration, err)
	}
	if resp.Content == "" {
		a.log.Error("LLM returned empty response", zap.String("provider", a.client.Name()))
		metrics.RecordLLMRequest(resp.Model, "empty", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
		return "", fmt.Errorf("%w: empty response", ErrAIGeneration)
	}

	metrics.RecordLLMRequest(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
	return resp.Content, nil
}

// GenerateTitle derives a short session title from the first message.
// Short messages are used verbatim without a model call. On any model
// failure the deterministic truncation fallback is returned; this
// function never fails.
func (a *Advisor) GenerateTitle(ctx context.Context, message string) string {
	if utf8.RuneCountInString(message) <= maxTitleLength {
		metrics.TitleGenerationsTotal.WithLabelValues("verbatim").Inc()
		return message
	}

	resp, err := a.client.Complete(ctx, &llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.ChatMessage{{
			Role:    "user",
			Content: "次のメッセージから、短いタイトル（20文字以内）を生成してください：\n\n" + message,
		}},
		MaxTokens:   50,
		Temperature: 0.5,
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
		a.log.Warn("title generation failed, using truncation fallback", zap.Error(err))
		metrics.TitleGenerationsTotal.WithLabelValues("fallback").Inc()
		return truncateRunes(message, titleFallbackLength) + "..."
	}

	metrics.TitleGenerationsTotal.WithLabelValues("generated").Inc()
	return truncateRunes(strings.TrimSpace(resp.Content), maxTitleLength)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
