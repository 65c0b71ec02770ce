package pool_test

import (
	"context"
	"testing"

	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/usecase/pool"
	"github.com/m-mizutani/gt"
)

type mockAdvisor struct {
	lastStats        model.PoolStats
	lastContribution float64
	text             string
}

func (m *mockAdvisor) ExplainPool(ctx context.Context, stats model.PoolStats, monthlyContribution float64) string {
	m.lastStats = stats
	m.lastContribution = monthlyContribution
	return m.text
}

func TestPoolUseCase(t *testing.T) {
	stats := model.PoolStats{
		Participants:       1284,
		TotalValue:         1250000,
		ClaimsPaidThisYear: 37,
		RiskLevel:          model.RiskLow,
		SolvencyRatio:      142.5,
	}
	payments := []*model.Payment{
		{ID: "PAY-001", Amount: 42.5, Status: "completed", Type: "contribution"},
	}
	incidents := []*model.Incident{
		{ID: "INC-001", Type: "Wildfire", TotalLoss: 84000, IndividualImpact: 65.42},
	}
	advisor := &mockAdvisor{text: "Your contribution covers 1284 neighbors."}

	uc := pool.New(stats, payments, incidents, advisor)

	gt.Equal(t, uc.Stats(), stats)
	gt.Equal(t, len(uc.Payments()), 1)
	gt.Equal(t, uc.Payments()[0].ID, "PAY-001")
	gt.Equal(t, len(uc.Incidents()), 1)
	gt.Equal(t, uc.Incidents()[0].Type, "Wildfire")

	member := model.Member{ID: "USR-001", MonthlyContribution: 42.5}
	text := uc.Explain(context.Background(), member)
	gt.Equal(t, text, "Your contribution covers 1284 neighbors.")
	gt.Equal(t, advisor.lastStats, stats)
	gt.Equal(t, advisor.lastContribution, 42.5)
}
