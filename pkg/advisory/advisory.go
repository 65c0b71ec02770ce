package advisory

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/covena/covena/pkg/adapter"
	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

// Fallback strings returned when the advisory service fails. Callers rely
// on these exact values; an advisory failure is never surfaced as an error.
const (
	FallbackClaimAdvisory   = "AI Analysis unavailable at this moment. Manual review required."
	FallbackPoolExplanation = "Calculated based on current pool volume and actuarial risk modeling."
)

//go:embed prompt/claim.md
var claimPromptRaw string

//go:embed prompt/pool.md
var poolPromptRaw string

var (
	claimPromptTmpl = template.Must(template.New("claim").Parse(claimPromptRaw))
	poolPromptTmpl  = template.Must(template.New("pool").Parse(poolPromptRaw))
)

// Client generates advisory text for claims and pool economics. Each call
// issues exactly one request with no automatic retry and degrades to a
// fixed fallback string on any failure.
type Client struct {
	gemini  adapter.Gemini
	timeout time.Duration
}

// Option is a functional option for Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// New creates a new advisory Client
func New(gemini adapter.Gemini, opts ...Option) *Client {
	c := &Client{
		gemini:  gemini,
		timeout: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AdviseClaim requests adjuster commentary for a claim. The result is
// free-form text; on failure it is exactly FallbackClaimAdvisory.
func (c *Client) AdviseClaim(ctx context.Context, description string, amount float64) string {
	var buf bytes.Buffer
	if err := claimPromptTmpl.Execute(&buf, map[string]any{
		"Description": description,
		"Amount":      amount,
	}); err != nil {
		logging.From(ctx).Warn("failed to build claim advisory prompt", "error", err)
		return FallbackClaimAdvisory
	}

	// The original adjuster prompt runs without a thinking budget.
	thinkingBudget := int32(0)
	config := &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  &thinkingBudget,
		},
	}

	text, err := c.generate(ctx, buf.String(), config)
	if err != nil {
		logging.From(ctx).Warn("claim advisory unavailable, using fallback", "error", err)
		return FallbackClaimAdvisory
	}
	return text
}

// ExplainPool requests an explanation of a member's monthly contribution
// from the pool-wide counters. On failure it returns exactly
// FallbackPoolExplanation.
func (c *Client) ExplainPool(ctx context.Context, stats model.PoolStats, monthlyContribution float64) string {
	var buf bytes.Buffer
	if err := poolPromptTmpl.Execute(&buf, map[string]any{
		"MonthlyContribution": monthlyContribution,
		"Participants":        stats.Participants,
		"TotalValue":          stats.TotalValue,
		"ClaimsPaid":          stats.ClaimsPaidThisYear,
		"RiskLevel":           stats.RiskLevel,
	}); err != nil {
		logging.From(ctx).Warn("failed to build pool explanation prompt", "error", err)
		return FallbackPoolExplanation
	}

	text, err := c.generate(ctx, buf.String(), nil)
	if err != nil {
		logging.From(ctx).Warn("pool explanation unavailable, using fallback", "error", err)
		return FallbackPoolExplanation
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return "", err
	}

	text := extractText(resp)
	if text == "" {
		return "", goerr.New("empty response from gemini")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
