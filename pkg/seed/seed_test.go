package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/repository"
	"github.com/covena/covena/pkg/seed"
	"github.com/m-mizutani/gt"
)

func TestDemoDataset(t *testing.T) {
	ds, err := seed.Demo()
	gt.NoError(t, err)

	gt.Equal(t, ds.Member.ID, "USR-001")
	gt.Equal(t, ds.Member.Name, "Alex Rivera")
	gt.Equal(t, ds.Member.MonthlyContribution, 42.5)

	gt.Equal(t, ds.Stats.Participants, 1284)
	gt.Equal(t, ds.Stats.RiskLevel, model.RiskLow)
	gt.Equal(t, ds.Stats.SolvencyRatio, 142.5)

	gt.Equal(t, len(ds.Payments), 3)
	gt.Equal(t, len(ds.Incidents), 2)
	gt.Equal(t, len(ds.Claims), 3)

	// The queue fixtures cover every reviewable state.
	byID := make(map[model.ClaimID]*model.Claim)
	for _, c := range ds.Claims {
		byID[c.ID] = c
	}
	gt.Equal(t, byID["CLM-001"].Status, model.StatusApproved)
	gt.Equal(t, byID["CLM-902"].Status, model.StatusPendingReview)
	gt.Equal(t, byID["CLM-902"].OwnerName, "Sarah Connor")
	gt.Equal(t, byID["CLM-903"].Status, model.StatusAnalyzing)
	gt.Equal(t, byID["CLM-903"].Description, "Pipe burst in kitchen.")
}

func TestLoadInvalidClaim(t *testing.T) {
	raw := `member:
  id: USR-001
stats:
  risk_level: low
claims:
  - id: CLM-001
    owner_id: USR-001
    category: meteor_strike
    amount: 100
    description: Something fell from the sky.
    status: analyzing
`
	_, err := seed.Load(strings.NewReader(raw))
	gt.Error(t, err)
}

func TestLoadInvalidRiskLevel(t *testing.T) {
	raw := `member:
  id: USR-001
stats:
  risk_level: catastrophic
`
	_, err := seed.Load(strings.NewReader(raw))
	gt.Error(t, err)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	ds, err := seed.Demo()
	gt.NoError(t, err)

	repo := repository.NewMemory()
	gt.NoError(t, ds.Apply(ctx, repo))

	queue, err := repo.ListQueue(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(queue), 3)

	got, err := repo.GetClaim(ctx, "CLM-902")
	gt.NoError(t, err)
	gt.Equal(t, got.Status, model.StatusPendingReview)

	// Seeding twice collides on claim IDs.
	gt.Error(t, ds.Apply(ctx, repo))
}
