package seed

import (
	"bytes"
	"context"
	_ "embed"
	"io"
	"time"

	"github.com/covena/covena/pkg/model"
	"github.com/covena/covena/pkg/repository"
	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

//go:embed data/demo.yml
var demoRaw []byte

// Dataset is a demo snapshot of one member's view of the pool plus the
// global claim queue fixtures.
type Dataset struct {
	Member    model.Member
	Stats     model.PoolStats
	Payments  []*model.Payment
	Incidents []*model.Incident
	Claims    []*model.Claim
}

type rawDataset struct {
	Member    rawMember     `yaml:"member"`
	Stats     rawStats      `yaml:"stats"`
	Payments  []rawPayment  `yaml:"payments"`
	Incidents []rawIncident `yaml:"incidents"`
	Claims    []rawClaim    `yaml:"claims"`
}

type rawMember struct {
	ID                  string  `yaml:"id"`
	Name                string  `yaml:"name"`
	Email               string  `yaml:"email"`
	KYCStatus           string  `yaml:"kyc_status"`
	PropertyScore       int     `yaml:"property_score"`
	MonthlyContribution float64 `yaml:"monthly_contribution"`
	PoolID              string  `yaml:"pool_id"`
	Location            string  `yaml:"location"`
}

type rawStats struct {
	Participants       int     `yaml:"participants"`
	TotalValue         float64 `yaml:"total_value"`
	ClaimsPaidThisYear int     `yaml:"claims_paid_this_year"`
	RiskLevel          string  `yaml:"risk_level"`
	SolvencyRatio      float64 `yaml:"solvency_ratio"`
}

type rawPayment struct {
	ID     string    `yaml:"id"`
	Date   time.Time `yaml:"date"`
	Amount float64   `yaml:"amount"`
	Status string    `yaml:"status"`
	Type   string    `yaml:"type"`
}

type rawIncident struct {
	ID               string    `yaml:"id"`
	Type             string    `yaml:"type"`
	Location         string    `yaml:"location"`
	TotalLoss        float64   `yaml:"total_loss"`
	IndividualImpact float64   `yaml:"individual_impact"`
	Description      string    `yaml:"description"`
	Status           string    `yaml:"status"`
	Date             time.Time `yaml:"date"`
}

type rawClaim struct {
	ID           string    `yaml:"id"`
	OwnerID      string    `yaml:"owner_id"`
	OwnerName    string    `yaml:"owner_name"`
	Category     string    `yaml:"category"`
	Amount       float64   `yaml:"amount"`
	Description  string    `yaml:"description"`
	Status       string    `yaml:"status"`
	AdvisoryText string    `yaml:"advisory_text"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// Load parses a YAML dataset and validates its claims and stats.
func Load(r io.Reader) (*Dataset, error) {
	var raw rawDataset
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, goerr.Wrap(err, "failed to decode seed dataset")
	}

	ds := &Dataset{
		Member: model.Member{
			ID:                  raw.Member.ID,
			Name:                raw.Member.Name,
			Email:               raw.Member.Email,
			KYCStatus:           raw.Member.KYCStatus,
			PropertyScore:       raw.Member.PropertyScore,
			MonthlyContribution: raw.Member.MonthlyContribution,
			PoolID:              raw.Member.PoolID,
			Location:            raw.Member.Location,
		},
		Stats: model.PoolStats{
			Participants:       raw.Stats.Participants,
			TotalValue:         raw.Stats.TotalValue,
			ClaimsPaidThisYear: raw.Stats.ClaimsPaidThisYear,
			RiskLevel:          model.RiskLevel(raw.Stats.RiskLevel),
			SolvencyRatio:      raw.Stats.SolvencyRatio,
		},
	}
	if err := ds.Stats.RiskLevel.Validate(); err != nil {
		return nil, err
	}

	for _, p := range raw.Payments {
		ds.Payments = append(ds.Payments, &model.Payment{
			ID:     p.ID,
			Date:   p.Date,
			Amount: p.Amount,
			Status: p.Status,
			Type:   p.Type,
		})
	}

	for _, in := range raw.Incidents {
		ds.Incidents = append(ds.Incidents, &model.Incident{
			ID:               in.ID,
			Type:             in.Type,
			Location:         in.Location,
			TotalLoss:        in.TotalLoss,
			IndividualImpact: in.IndividualImpact,
			Description:      in.Description,
			Status:           in.Status,
			Date:             in.Date,
		})
	}

	for _, c := range raw.Claims {
		claim := &model.Claim{
			ID:           model.ClaimID(c.ID),
			OwnerID:      c.OwnerID,
			OwnerName:    c.OwnerName,
			Category:     model.ClaimCategory(c.Category),
			Amount:       c.Amount,
			Description:  c.Description,
			Status:       model.ClaimStatus(c.Status),
			AdvisoryText: c.AdvisoryText,
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.CreatedAt,
		}
		if err := claim.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid seed claim", goerr.V("claim_id", c.ID))
		}
		ds.Claims = append(ds.Claims, claim)
	}

	return ds, nil
}

// Demo returns the embedded demo dataset.
func Demo() (*Dataset, error) {
	return Load(bytes.NewReader(demoRaw))
}

// Apply inserts the dataset claims into a repository.
func (ds *Dataset) Apply(ctx context.Context, repo repository.Repository) error {
	for _, claim := range ds.Claims {
		if err := repo.PutClaim(ctx, claim); err != nil {
			return goerr.Wrap(err, "failed to seed claim", goerr.V("claim_id", claim.ID))
		}
	}
	return nil
}
