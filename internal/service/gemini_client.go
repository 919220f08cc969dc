package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcity/calo/internal/domain"
)

// GeminiClient reasons through the Gemini generateContent REST API.
type GeminiClient struct {
	cfg       ProviderConfig
	transport llmHTTP
}

// NewGeminiClient creates a Gemini client. It fails when the configuration
// cannot work, which keeps the provider out of the chain.
func NewGeminiClient(cfg ProviderConfig) (*GeminiClient, error) {
	if err := cfg.validate("gemini"); err != nil {
		return nil, err
	}
	return &GeminiClient{cfg: cfg, transport: newLLMHTTP("gemini", cfg.Timeout)}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Produce implements ReasoningStrategy.
func (c *GeminiClient) Produce(ctx context.Context, assessment domain.RiskAssessment, protocols []domain.Protocol) (domain.ReasoningOutput, error) {
	body := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildReasoningPrompt(c.cfg.City, assessment, protocols)}}},
		},
	}
	body.GenerationConfig.ResponseMimeType = "application/json"
	body.GenerationConfig.Temperature = 0.3

	endpoint := fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	var resp geminiResponse
	if err := c.transport.postJSON(ctx, endpoint, headers, body, &resp); err != nil {
		return domain.ReasoningOutput{}, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return domain.ReasoningOutput{}, c.transport.fail(false, fmt.Errorf("%w: response missing candidates", ErrMalformedReply))
	}

	var text strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	out, err := parseReasoningReply(text.String())
	if err != nil {
		return domain.ReasoningOutput{}, c.transport.fail(false, err)
	}
	return out, nil
}

var _ ReasoningStrategy = (*GeminiClient)(nil)
