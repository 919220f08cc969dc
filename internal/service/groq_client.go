package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcity/calo/internal/domain"
)

// GroqClient reasons through Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	cfg       ProviderConfig
	transport llmHTTP
}

// NewGroqClient creates a Groq client. It fails when the configuration
// cannot work, which keeps the provider out of the chain.
func NewGroqClient(cfg ProviderConfig) (*GroqClient, error) {
	if err := cfg.validate("groq"); err != nil {
		return nil, err
	}
	return &GroqClient{cfg: cfg, transport: newLLMHTTP("groq", cfg.Timeout)}, nil
}

func (c *GroqClient) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Produce implements ReasoningStrategy.
func (c *GroqClient) Produce(ctx context.Context, assessment domain.RiskAssessment, protocols []domain.Protocol) (domain.ReasoningOutput, error) {
	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildReasoningPrompt(c.cfg.City, assessment, protocols)},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var resp chatResponse
	if err := c.transport.postJSON(ctx, endpoint, headers, body, &resp); err != nil {
		return domain.ReasoningOutput{}, err
	}
	if len(resp.Choices) == 0 {
		return domain.ReasoningOutput{}, c.transport.fail(false, fmt.Errorf("%w: response missing choices", ErrMalformedReply))
	}

	out, err := parseReasoningReply(resp.Choices[0].Message.Content)
	if err != nil {
		return domain.ReasoningOutput{}, c.transport.fail(false, err)
	}
	return out, nil
}

var _ ReasoningStrategy = (*GroqClient)(nil)
