package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/smartcity/calo/internal/domain"
	"github.com/smartcity/calo/internal/observability"
)

// ReasoningStrategy turns an assessment and its matched protocols into a
// dual-view explanation, or fails with an error (usually *ProviderError).
type ReasoningStrategy interface {
	Name() string
	Produce(ctx context.Context, assessment domain.RiskAssessment, protocols []domain.Protocol) (domain.ReasoningOutput, error)
}

// ProviderError is a failed external reasoning attempt. Transient failures
// (network, rate limit, 5xx) are worth retrying on the next request; the
// others (auth, malformed reply) are not expected to heal on their own.
type ProviderError struct {
	Provider  string
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ErrMalformedReply marks a provider reply that does not match the expected shape.
var ErrMalformedReply = errors.New("malformed reasoning reply")

// ProviderCandidate describes one external provider in priority order.
// Build runs once at startup; an error marks the provider unavailable for the
// lifetime of the process.
type ProviderCandidate struct {
	Name       string
	Configured bool
	Build      func() (ReasoningStrategy, error)
}

// RuleBasedName is the name of the deterministic fallback strategy.
const RuleBasedName = "rule-based"

// ReasoningChain runs the highest-priority available strategy and falls
// through to the rule-based strategy on any failure. Provider selection
// happens once in NewReasoningChain; the chain is read-only afterwards.
type ReasoningChain struct {
	strategies []ReasoningStrategy
	fallback   *RuleBasedStrategy
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewReasoningChain selects the first configured candidate that builds
// successfully. With no usable candidate the chain is the fallback alone.
func NewReasoningChain(timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, candidates ...ProviderCandidate) *ReasoningChain {
	c := &ReasoningChain{timeout: timeout, logger: logger, metrics: metrics}

	for _, cand := range candidates {
		if !cand.Configured {
			logger.Debug("reasoning provider not configured", "provider", cand.Name)
			continue
		}
		strategy, err := cand.Build()
		if err != nil {
			logger.Error("reasoning provider initialization failed", "provider", cand.Name, "error", err)
			continue
		}
		c.strategies = append(c.strategies, strategy)
		logger.Info("reasoning provider initialized", "provider", cand.Name)
		break
	}

	if len(c.strategies) == 0 {
		logger.Warn("no reasoning provider available, using rule-based fallback")
	}
	c.fallback = NewRuleBasedStrategy(c.Provider())
	return c
}

// Provider names the active external provider, or the fallback when none is.
func (c *ReasoningChain) Provider() string {
	if len(c.strategies) == 0 {
		return RuleBasedName
	}
	return c.strategies[0].Name()
}

// Reason always returns a structurally valid output. Provider failures are
// logged and cited in the fallback's logic trace, never returned.
func (c *ReasoningChain) Reason(ctx context.Context, assessment domain.RiskAssessment, protocols []domain.Protocol) domain.ReasoningOutput {
	var failures []string

	for _, s := range c.strategies {
		out, err := c.attempt(ctx, s, assessment, protocols)
		if err == nil {
			out.Source = s.Name()
			return out
		}

		var perr *ProviderError
		transient := errors.As(err, &perr) && perr.Transient
		c.logger.Warn("reasoning strategy failed, falling through",
			"strategy", s.Name(), "transient", transient, "error", err)
		failures = append(failures, failureSummary(s.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	start := time.Now()
	out := c.fallback.Synthesize(assessment, protocols, failures)
	c.observe(RuleBasedName, "success", start)
	return out
}

// failureSummary names the provider and the class of failure. The error text
// itself stays in the logs since it can carry request URLs and reply bodies.
func failureSummary(provider string, err error) string {
	var perr *ProviderError
	switch {
	case errors.Is(err, ErrMalformedReply):
		return provider + ": malformed reply"
	case errors.Is(err, context.DeadlineExceeded):
		return provider + ": timed out"
	case errors.Is(err, context.Canceled):
		return provider + ": canceled"
	case errors.As(err, &perr) && perr.Transient:
		return provider + ": transient failure"
	default:
		return provider + ": request failed"
	}
}

func (c *ReasoningChain) attempt(ctx context.Context, s ReasoningStrategy, assessment domain.RiskAssessment, protocols []domain.Protocol) (out domain.ReasoningOutput, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &ProviderError{Provider: s.Name(), Err: fmt.Errorf("panic: %v", r)}
		}
		outcome := "success"
		if err != nil {
			outcome = "failure"
		}
		c.observe(s.Name(), outcome, start)
	}()

	return s.Produce(attemptCtx, assessment, protocols)
}

func (c *ReasoningChain) observe(strategy, outcome string, start time.Time) {
	c.metrics.ReasoningAttempts.WithLabelValues(strategy, outcome).Inc()
	c.metrics.ReasoningDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}

const systemPrompt = "You are a Smart City AI analyst. Respond with valid JSON only."

// buildReasoningPrompt renders the assessment and protocols as the request
// sent to generative providers.
func buildReasoningPrompt(city string, a domain.RiskAssessment, protocols []domain.Protocol) string {
	var b strings.Builder
	s := a.Signals

	fmt.Fprintf(&b, "Analyze this city intelligence data for %s and provide JSON response.\n\n", city)
	b.WriteString("**Current Signals:**\n")
	fmt.Fprintf(&b, "- Weather Stress: %.2f (rainfall), %.2f (heat), condition %s\n", s.RainfallStress, s.HeatStress, s.WeatherConditionRaw)
	fmt.Fprintf(&b, "- Sanitation Complaints: %.2f\n", s.SanitationStress)
	fmt.Fprintf(&b, "- Drainage Complaints: %.2f\n", s.DrainageStress)
	fmt.Fprintf(&b, "- Health Anxiety: %.2f\n", s.HealthAnxiety)
	fmt.Fprintf(&b, "- Traffic Anxiety: %.2f\n\n", s.TrafficAnxiety)

	b.WriteString("**Detected Risks:**\n")
	if len(a.ActiveRisks) == 0 {
		b.WriteString("No critical risks detected.\n")
	}
	for _, r := range a.ActiveRisks {
		fmt.Fprintf(&b, "- %s (severity: %.2f, factors: %s)\n", r.Name, r.Severity, strings.Join(r.ContributingFactors, ", "))
	}

	b.WriteString("\n**Recommended Protocols:**\n")
	if len(protocols) == 0 {
		b.WriteString("No specific protocols triggered.\n")
	}
	for i, p := range protocols {
		if i == 3 {
			break
		}
		actions := p.Actions
		if len(actions) > 2 {
			actions = actions[:2]
		}
		fmt.Fprintf(&b, "- %s: %s\n", p.Name, strings.Join(actions, ", "))
	}

	fmt.Fprintf(&b, "\n**Analysis Confidence:** %.0f%%\n\n", a.ConfidenceScore*100)
	fmt.Fprintf(&b, `Provide response in this EXACT JSON format:
{
  "citizen_view": {
    "status_headline": "Brief 1-sentence status for citizens",
    "visual_theme": "Normal|Caution|Critical"
  },
  "engineer_view": {
    "confidence_score": %.2f,
    "detected_risks": ["risk1", "risk2"],
    "raw_signals": {"weather": 0.0, "complaints": 0.0, "trends": 0.0},
    "logic_trace": "Brief explanation of analysis",
    "recommended_actions": ["action1", "action2", "action3"]
  }
}

Respond with valid JSON only.
`, a.ConfidenceScore)

	return b.String()
}

// stripCodeFences removes markdown code fences around a JSON reply.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// parseReasoningReply decodes a provider reply into a ReasoningOutput,
// rejecting anything that is not one object with both views and every
// required engineer field.
func parseReasoningReply(text string) (domain.ReasoningOutput, error) {
	var reply struct {
		CitizenView  *domain.CitizenView `json:"citizen_view"`
		EngineerView json.RawMessage     `json:"engineer_view"`
	}
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &reply); err != nil {
		return domain.ReasoningOutput{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	switch {
	case reply.CitizenView == nil:
		return domain.ReasoningOutput{}, fmt.Errorf("%w: missing citizen_view", ErrMalformedReply)
	case isNull(reply.EngineerView):
		return domain.ReasoningOutput{}, fmt.Errorf("%w: missing engineer_view", ErrMalformedReply)
	case strings.TrimSpace(reply.CitizenView.StatusHeadline) == "":
		return domain.ReasoningOutput{}, fmt.Errorf("%w: missing citizen_view.status_headline", ErrMalformedReply)
	case reply.CitizenView.VisualTheme != "" && !reply.CitizenView.VisualTheme.Valid():
		return domain.ReasoningOutput{}, fmt.Errorf("%w: unknown visual_theme %q", ErrMalformedReply, reply.CitizenView.VisualTheme)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(reply.EngineerView, &fields); err != nil {
		return domain.ReasoningOutput{}, fmt.Errorf("%w: engineer_view: %v", ErrMalformedReply, err)
	}
	for _, key := range []string{"detected_risks", "logic_trace", "recommended_actions"} {
		if isNull(fields[key]) {
			return domain.ReasoningOutput{}, fmt.Errorf("%w: missing engineer_view.%s", ErrMalformedReply, key)
		}
	}

	var engineer domain.EngineerView
	if err := json.Unmarshal(reply.EngineerView, &engineer); err != nil {
		return domain.ReasoningOutput{}, fmt.Errorf("%w: engineer_view: %v", ErrMalformedReply, err)
	}
	if strings.TrimSpace(engineer.LogicTrace) == "" {
		return domain.ReasoningOutput{}, fmt.Errorf("%w: empty engineer_view.logic_trace", ErrMalformedReply)
	}

	engineer.DataSources = nil
	return domain.ReasoningOutput{CitizenView: *reply.CitizenView, EngineerView: engineer}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
