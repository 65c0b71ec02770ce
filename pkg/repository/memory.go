package repository

import (
	"context"
	"sync"
	"time"

	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
)

// Memory is an in-process Repository for demos and tests. All methods are
// safe for concurrent use; status and advisory writes are serialized per
// store so timer-driven and admin writers cannot clobber each other.
type Memory struct {
	mu     sync.Mutex
	claims map[model.ClaimID]*model.Claim
	order  []model.ClaimID
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		claims: make(map[model.ClaimID]*model.Claim),
	}
}

func (r *Memory) PutClaim(ctx context.Context, claim *model.Claim) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if claim.ID == "" {
		return goerr.Wrap(model.ErrInvalidClaim, "claim ID is empty")
	}
	if _, ok := r.claims[claim.ID]; ok {
		return goerr.New("claim already exists", goerr.V("claim_id", claim.ID))
	}

	cp := *claim
	cp.Attachments = append([]string(nil), claim.Attachments...)
	r.claims[claim.ID] = &cp
	r.order = append(r.order, claim.ID)
	return nil
}

func (r *Memory) GetClaim(ctx context.Context, id model.ClaimID) (*model.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, ok := r.claims[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
	}
	cp := *claim
	cp.Attachments = append([]string(nil), claim.Attachments...)
	return &cp, nil
}

func (r *Memory) TransitionClaim(ctx context.Context, id model.ClaimID, from, to model.ClaimStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, ok := r.claims[id]
	if !ok {
		return goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
	}
	if claim.Status != from {
		return goerr.Wrap(model.ErrInvalidTransition, "status mismatch",
			goerr.V("claim_id", id),
			goerr.V("current", claim.Status),
			goerr.V("from", from),
			goerr.V("to", to))
	}

	claim.Status = to
	claim.UpdatedAt = time.Now()
	return nil
}

func (r *Memory) AttachAdvisory(ctx context.Context, id model.ClaimID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	claim, ok := r.claims[id]
	if !ok {
		return goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
	}

	claim.AdvisoryText = text
	claim.UpdatedAt = time.Now()
	return nil
}

func (r *Memory) ListClaimsByOwner(ctx context.Context, ownerID string) ([]*model.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claims []*model.Claim
	for i := len(r.order) - 1; i >= 0; i-- {
		claim := r.claims[r.order[i]]
		if claim.OwnerID != ownerID {
			continue
		}
		cp := *claim
		cp.Attachments = append([]string(nil), claim.Attachments...)
		claims = append(claims, &cp)
	}
	return claims, nil
}

func (r *Memory) ListQueue(ctx context.Context) ([]*model.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	claims := make([]*model.Claim, 0, len(r.order))
	for _, id := range r.order {
		claim := r.claims[id]
		cp := *claim
		cp.Attachments = append([]string(nil), claim.Attachments...)
		claims = append(claims, &cp)
	}
	return claims, nil
}
