package pool

import (
	"context"

	"github.com/covena/covena/pkg/model"
)

// Advisor explains pool economics in natural language. It never fails; a
// broken advisory service degrades to a fixed fallback sentence.
type Advisor interface {
	ExplainPool(ctx context.Context, stats model.PoolStats, monthlyContribution float64) string
}

// UseCase exposes read-only pool statistics and the AI contribution
// explanation. The snapshot is external data; the claims core never
// mutates it.
type UseCase struct {
	stats     model.PoolStats
	payments  []*model.Payment
	incidents []*model.Incident
	advisor   Advisor
}

// New creates a pool UseCase over a stats snapshot.
func New(stats model.PoolStats, payments []*model.Payment, incidents []*model.Incident, advisor Advisor) *UseCase {
	return &UseCase{
		stats:     stats,
		payments:  payments,
		incidents: incidents,
		advisor:   advisor,
	}
}

// Stats returns the aggregate pool snapshot.
func (u *UseCase) Stats() model.PoolStats {
	return u.stats
}

// Payments returns the member's contribution history.
func (u *UseCase) Payments() []*model.Payment {
	return u.payments
}

// Incidents returns pool-funded loss events near the member.
func (u *UseCase) Incidents() []*model.Incident {
	return u.incidents
}

// Explain returns a natural-language breakdown of why the member pays
// their monthly contribution.
func (u *UseCase) Explain(ctx context.Context, member model.Member) string {
	return u.advisor.ExplainPool(ctx, u.stats, member.MonthlyContribution)
}
