package claim

import (
	"context"

	"github.com/covena/covena/pkg/model"
)

// List retrieves the claims of one owner, newest first.
func (u *UseCase) List(ctx context.Context, ownerID string) ([]*model.Claim, error) {
	return u.repo.ListClaimsByOwner(ctx, ownerID)
}

// Queue retrieves the global claim queue in insertion order.
func (u *UseCase) Queue(ctx context.Context) ([]*model.Claim, error) {
	return u.repo.ListQueue(ctx)
}

// Get retrieves a single claim by ID.
func (u *UseCase) Get(ctx context.Context, id model.ClaimID) (*model.Claim, error) {
	return u.repo.GetClaim(ctx, id)
}
