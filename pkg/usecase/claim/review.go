package claim

import (
	"context"
	"time"

	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// IntakeInput carries a claim entering through the administrative path.
type IntakeInput struct {
	OwnerID     string
	OwnerName   string
	Category    model.ClaimCategory
	Amount      float64
	Description string
}

// Intake files a claim directly into the administrative review queue.
// Unlike Submit there is no scheduled resolution: only an explicit
// Approve or Reject moves the claim on. The advisory fetch still runs
// concurrently.
func (u *UseCase) Intake(ctx context.Context, input IntakeInput) (*model.Claim, error) {
	now := time.Now()
	claim := &model.Claim{
		ID:          model.NewClaimID(),
		OwnerID:     input.OwnerID,
		OwnerName:   input.OwnerName,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		Status:      model.StatusPendingReview,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := claim.Validate(); err != nil {
		return nil, err
	}

	if err := u.repo.PutClaim(ctx, claim); err != nil {
		return nil, goerr.Wrap(err, "failed to save claim")
	}

	logging.From(ctx).Info("claim entered review queue",
		"claim_id", claim.ID, "owner_id", claim.OwnerID, "amount", claim.Amount)

	u.recordAudit(ctx, newAuditEvent(claim.ID, model.AuditClaimIntake, claim.OwnerID, model.StatusDraft, claim.Status))
	u.fetchAdvisory(ctx, claim)

	return claim, nil
}

// Approve moves a claim from pending_review to approved. Any other
// current status is rejected as an invalid transition with no partial
// mutation; an unknown ID reports model.ErrClaimNotFound.
func (u *UseCase) Approve(ctx context.Context, id model.ClaimID, actor string) error {
	if err := u.repo.TransitionClaim(ctx, id, model.StatusPendingReview, model.StatusApproved); err != nil {
		return goerr.Wrap(err, "failed to approve claim", goerr.V("claim_id", id), goerr.V("actor", actor))
	}

	logging.From(ctx).Info("claim approved", "claim_id", id, "actor", actor)
	u.recordAudit(ctx, newAuditEvent(id, model.AuditClaimApproved, actor, model.StatusPendingReview, model.StatusApproved))
	return nil
}

// Reject moves a claim from pending_review to rejected under the same
// rules as Approve.
func (u *UseCase) Reject(ctx context.Context, id model.ClaimID, actor string) error {
	if err := u.repo.TransitionClaim(ctx, id, model.StatusPendingReview, model.StatusRejected); err != nil {
		return goerr.Wrap(err, "failed to reject claim", goerr.V("claim_id", id), goerr.V("actor", actor))
	}

	logging.From(ctx).Info("claim rejected", "claim_id", id, "actor", actor)
	u.recordAudit(ctx, newAuditEvent(id, model.AuditClaimRejected, actor, model.StatusPendingReview, model.StatusRejected))
	return nil
}
