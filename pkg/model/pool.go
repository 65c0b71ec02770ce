package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Validate checks if the risk level is valid
func (r RiskLevel) Validate() error {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return nil
	default:
		return goerr.New("invalid risk level", goerr.V("level", r))
	}
}

// PoolStats is a read-only aggregate snapshot of the mutual pool. It is
// consumed by the advisory pool-explanation prompt and by dashboards; the
// claims core never mutates it.
type PoolStats struct {
	Participants       int
	TotalValue         float64
	ClaimsPaidThisYear int
	RiskLevel          RiskLevel
	SolvencyRatio      float64
}

// Member is a participant of the mutual pool.
type Member struct {
	ID                  string
	Name                string
	Email               string
	KYCStatus           string
	PropertyScore       int
	MonthlyContribution float64
	PoolID              string
	Location            string
}

// Payment is a single contribution record of a member.
type Payment struct {
	ID     string
	Date   time.Time
	Amount float64
	Status string
	Type   string
}

// Incident is a pool-funded loss event visible to nearby members.
type Incident struct {
	ID               string
	Type             string
	Location         string
	TotalLoss        float64
	IndividualImpact float64
	Description      string
	Status           string
	Date             time.Time
}
