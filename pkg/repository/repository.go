package repository

import (
	"context"

	"github.com/covena/covena/pkg/model"
)

// Repository defines the interface for claim persistence. One store holds
// all claims keyed by owner; the per-user view and the admin queue are
// queries over the same data.
type Repository interface {
	// PutClaim saves a new claim. The caller must assign a fresh unique ID
	// before calling.
	PutClaim(ctx context.Context, claim *model.Claim) error

	// GetClaim retrieves a claim by ID. Returns model.ErrClaimNotFound if
	// no claim with the given ID exists.
	GetClaim(ctx context.Context, id model.ClaimID) (*model.Claim, error)

	// TransitionClaim swaps the status of a claim from `from` to `to`
	// atomically per ID. It returns model.ErrInvalidTransition when the
	// current status does not equal `from`, and model.ErrClaimNotFound for
	// an unknown ID. Legality of the (from, to) pair is the caller's
	// responsibility.
	TransitionClaim(ctx context.Context, id model.ClaimID, from, to model.ClaimStatus) error

	// AttachAdvisory sets the advisory text of a claim. It touches only the
	// advisory field so it can run concurrently with status transitions.
	AttachAdvisory(ctx context.Context, id model.ClaimID, text string) error

	// ListClaimsByOwner retrieves the claims of one owner, newest first.
	ListClaimsByOwner(ctx context.Context, ownerID string) ([]*model.Claim, error)

	// ListQueue retrieves all claims in insertion order for the admin view.
	ListQueue(ctx context.Context) ([]*model.Claim, error)
}
