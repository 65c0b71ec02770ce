package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/open-policy-agent/opa/v1/rego"
)

//go:embed policies/default.rego
var defaultPolicyRaw string

// Action is the resolution a policy picks for a freshly submitted claim.
type Action string

const (
	// ActionApprove schedules an automatic approval after the decided delay.
	ActionApprove Action = "approve"
	// ActionReview routes the claim to the administrative queue.
	ActionReview Action = "review"
	// ActionHold leaves the claim in analyzing with no scheduled transition.
	ActionHold Action = "hold"
)

// Validate checks if the action is valid
func (a Action) Validate() error {
	switch a {
	case ActionApprove, ActionReview, ActionHold:
		return nil
	default:
		return goerr.New("invalid policy action", goerr.V("action", a))
	}
}

// Decision is the evaluated resolution for one claim.
type Decision struct {
	Action Action
	Delay  time.Duration
}

// Engine evaluates the claim resolution policy. The embedded default
// reproduces the reference placeholder behavior (unconditional approval
// after 5 seconds); operators may load their own Rego modules instead.
type Engine struct {
	query *rego.PreparedEvalQuery
}

// New creates an Engine from the Rego modules in policyDir. An empty dir
// loads the embedded default policy.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}

	options := make([]func(*rego.Rego), 0, len(modules)+1)
	options = append(options, rego.Query("data.resolution.decision"))
	options = append(options, modules...)

	prepared, err := rego.New(options...).PrepareForEval(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to prepare resolution query")
	}

	return &Engine{query: &prepared}, nil
}

func loadModules(policyDir string) ([]func(*rego.Rego), error) {
	if policyDir == "" {
		return []func(*rego.Rego){rego.Module("default.rego", defaultPolicyRaw)}, nil
	}

	files, err := filepath.Glob(filepath.Join(policyDir, "*.rego"))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to glob policy files")
	}
	if len(files) == 0 {
		return nil, goerr.New("no policy files found", goerr.V("dir", policyDir))
	}

	modules := make([]func(*rego.Rego), 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read policy file", goerr.V("path", file))
		}
		modules = append(modules, rego.Module(file, string(data)))
	}
	return modules, nil
}

// Evaluate decides how a newly submitted claim resolves.
func (e *Engine) Evaluate(ctx context.Context, claim *model.Claim) (*Decision, error) {
	input := map[string]any{
		"id":          string(claim.ID),
		"owner_id":    claim.OwnerID,
		"category":    string(claim.Category),
		"amount":      claim.Amount,
		"description": claim.Description,
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate resolution policy")
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, goerr.New("resolution policy returned no decision")
	}

	raw, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, goerr.New("resolution decision is not an object",
			goerr.V("value", rs[0].Expressions[0].Value))
	}

	decision, err := parseDecision(raw)
	if err != nil {
		return nil, err
	}
	return decision, nil
}

func parseDecision(raw map[string]any) (*Decision, error) {
	action, ok := raw["action"].(string)
	if !ok {
		return nil, goerr.New("resolution decision has no action", goerr.V("decision", raw))
	}
	if err := Action(action).Validate(); err != nil {
		return nil, err
	}

	var seconds float64
	switch v := raw["delay_seconds"].(type) {
	case nil:
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, goerr.Wrap(err, "invalid delay_seconds", goerr.V("value", v))
		}
		seconds = f
	case float64:
		seconds = v
	case int:
		seconds = float64(v)
	default:
		return nil, goerr.New("invalid delay_seconds type", goerr.V("value", v))
	}
	if seconds < 0 {
		return nil, goerr.New("delay_seconds must not be negative", goerr.V("value", seconds))
	}

	return &Decision{
		Action: Action(action),
		Delay:  time.Duration(seconds * float64(time.Second)),
	}, nil
}
