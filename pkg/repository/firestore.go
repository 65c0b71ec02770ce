package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/covena/covena/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const claimCollection = "claims"

// Firestore implements Repository using Cloud Firestore. Status swaps run
// in a transaction to keep per-ID compare-and-swap semantics across
// concurrent writers.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a new Firestore repository
func NewFirestore(ctx context.Context, projectID, databaseID string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID), goerr.V("database", databaseID))
	}

	return &Firestore{client: client}, nil
}

// Close releases the underlying client.
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) PutClaim(ctx context.Context, claim *model.Claim) error {
	if claim.ID == "" {
		return goerr.Wrap(model.ErrInvalidClaim, "claim ID is empty")
	}

	doc := r.client.Collection(claimCollection).Doc(string(claim.ID))
	if _, err := doc.Create(ctx, claim); err != nil {
		return goerr.Wrap(err, "failed to save claim", goerr.V("claim_id", claim.ID))
	}
	return nil
}

func (r *Firestore) GetClaim(ctx context.Context, id model.ClaimID) (*model.Claim, error) {
	snap, err := r.client.Collection(claimCollection).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get claim", goerr.V("claim_id", id))
	}

	var claim model.Claim
	if err := snap.DataTo(&claim); err != nil {
		return nil, goerr.Wrap(err, "failed to decode claim", goerr.V("claim_id", id))
	}
	return &claim, nil
}

func (r *Firestore) TransitionClaim(ctx context.Context, id model.ClaimID, from, to model.ClaimStatus) error {
	doc := r.client.Collection(claimCollection).Doc(string(id))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(doc)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
			}
			return goerr.Wrap(err, "failed to get claim", goerr.V("claim_id", id))
		}

		var claim model.Claim
		if err := snap.DataTo(&claim); err != nil {
			return goerr.Wrap(err, "failed to decode claim", goerr.V("claim_id", id))
		}
		if claim.Status != from {
			return goerr.Wrap(model.ErrInvalidTransition, "status mismatch",
				goerr.V("claim_id", id),
				goerr.V("current", claim.Status),
				goerr.V("from", from),
				goerr.V("to", to))
		}

		return tx.Update(doc, []firestore.Update{
			{Path: "Status", Value: to},
			{Path: "UpdatedAt", Value: time.Now()},
		})
	})
	if err != nil {
		return err
	}
	return nil
}

func (r *Firestore) AttachAdvisory(ctx context.Context, id model.ClaimID, text string) error {
	doc := r.client.Collection(claimCollection).Doc(string(id))
	_, err := doc.Update(ctx, []firestore.Update{
		{Path: "AdvisoryText", Value: text},
		{Path: "UpdatedAt", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(model.ErrClaimNotFound, "no such claim", goerr.V("claim_id", id))
		}
		return goerr.Wrap(err, "failed to attach advisory", goerr.V("claim_id", id))
	}
	return nil
}

func (r *Firestore) ListClaimsByOwner(ctx context.Context, ownerID string) ([]*model.Claim, error) {
	query := r.client.Collection(claimCollection).
		Where("OwnerID", "==", ownerID).
		OrderBy("CreatedAt", firestore.Desc)

	return r.collect(ctx, query.Documents(ctx))
}

func (r *Firestore) ListQueue(ctx context.Context) ([]*model.Claim, error) {
	query := r.client.Collection(claimCollection).
		OrderBy("CreatedAt", firestore.Asc)

	return r.collect(ctx, query.Documents(ctx))
}

func (r *Firestore) collect(ctx context.Context, iter *firestore.DocumentIterator) ([]*model.Claim, error) {
	defer iter.Stop()

	var claims []*model.Claim
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate claims")
		}

		var claim model.Claim
		if err := snap.DataTo(&claim); err != nil {
			return nil, goerr.Wrap(err, "failed to decode claim", goerr.V("doc", snap.Ref.ID))
		}
		claims = append(claims, &claim)
	}
	return claims, nil
}
