package claim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/policy"
	"github.com/covena/covena/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Attachment is one evidence file submitted with a claim.
type Attachment struct {
	Name string
	Data io.Reader
}

// SubmitInput carries the member-facing claim form.
type SubmitInput struct {
	OwnerID     string
	OwnerName   string
	Category    model.ClaimCategory
	Amount      float64
	Description string
	Attachments []Attachment
}

// Submit files a new claim. The record is persisted in analyzing before
// either deferred operation starts; the advisory fetch and the scheduled
// resolution then run independently of each other. An advisory failure
// never blocks or reverts the lifecycle.
func (u *UseCase) Submit(ctx context.Context, input SubmitInput) (*model.Claim, error) {
	now := time.Now()
	claim := &model.Claim{
		ID:          model.NewClaimID(),
		OwnerID:     input.OwnerID,
		OwnerName:   input.OwnerName,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		Status:      model.StatusAnalyzing,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := claim.Validate(); err != nil {
		return nil, err
	}

	decision, err := u.policy.Evaluate(ctx, claim)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to evaluate resolution policy", goerr.V("claim_id", claim.ID))
	}

	keys, err := u.storeAttachments(ctx, claim.ID, input.Attachments)
	if err != nil {
		return nil, err
	}
	claim.Attachments = keys

	if err := u.repo.PutClaim(ctx, claim); err != nil {
		return nil, goerr.Wrap(err, "failed to save claim")
	}

	logging.From(ctx).Info("claim submitted",
		"claim_id", claim.ID, "owner_id", claim.OwnerID,
		"category", claim.Category, "amount", claim.Amount,
		"resolution", decision.Action, "delay", decision.Delay)

	u.recordAudit(ctx, newAuditEvent(claim.ID, model.AuditClaimSubmitted, claim.OwnerID, model.StatusDraft, claim.Status))

	u.fetchAdvisory(ctx, claim)
	u.applyDecision(ctx, claim, decision)

	return claim, nil
}

func (u *UseCase) storeAttachments(ctx context.Context, id model.ClaimID, attachments []Attachment) ([]string, error) {
	if len(attachments) == 0 {
		return nil, nil
	}
	if u.storage == nil {
		return nil, goerr.New("attachment storage is not configured")
	}

	keys := make([]string, 0, len(attachments))
	for _, a := range attachments {
		key := fmt.Sprintf("claims/%s/%s", id, a.Name)
		w, err := u.storage.Put(ctx, key)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open attachment writer", goerr.V("key", key))
		}
		if _, err := io.Copy(w, a.Data); err != nil {
			_ = w.Close()
			return nil, goerr.Wrap(err, "failed to upload attachment", goerr.V("key", key))
		}
		if err := w.Close(); err != nil {
			return nil, goerr.Wrap(err, "failed to finalize attachment", goerr.V("key", key))
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func (u *UseCase) applyDecision(ctx context.Context, claim *model.Claim, decision *policy.Decision) {
	switch decision.Action {
	case policy.ActionApprove:
		u.scheduleResolution(ctx, claim.ID, decision.Delay)

	case policy.ActionReview:
		if err := u.repo.TransitionClaim(ctx, claim.ID, model.StatusAnalyzing, model.StatusPendingReview); err != nil {
			logging.From(ctx).Warn("failed to route claim to review",
				"claim_id", claim.ID, "error", err)
			return
		}
		claim.Status = model.StatusPendingReview

	case policy.ActionHold:
		// Stays in analyzing until an operator acts.
	}
}

// scheduleResolution arms the automatic transition to approved. The
// handle is tracked so Close can cancel it before it fires.
func (u *UseCase) scheduleResolution(ctx context.Context, id model.ClaimID, delay time.Duration) {
	ctx = context.WithoutCancel(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return
	}
	u.timers[id] = u.sched.Schedule(delay, func() {
		u.autoResolve(ctx, id)
	})
}

func (u *UseCase) autoResolve(ctx context.Context, id model.ClaimID) {
	u.mu.Lock()
	delete(u.timers, id)
	u.mu.Unlock()

	err := u.repo.TransitionClaim(ctx, id, model.StatusAnalyzing, model.StatusApproved)
	switch {
	case err == nil:
		logging.From(ctx).Info("claim auto-approved", "claim_id", id)
		u.recordAudit(ctx, newAuditEvent(id, model.AuditClaimAutoApproved, "system", model.StatusAnalyzing, model.StatusApproved))

	case errors.Is(err, model.ErrClaimNotFound):
		logging.From(ctx).Warn("claim disappeared before auto-approval", "claim_id", id)

	case errors.Is(err, model.ErrInvalidTransition):
		// Someone else moved the claim first; the timer result is obsolete.
		logging.From(ctx).Info("claim already resolved, skipping auto-approval", "claim_id", id)

	default:
		logging.From(ctx).Error("failed to auto-approve claim", "claim_id", id, "error", err)
	}
}
