package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrClaimNotFound     = goerr.New("claim not found")
	ErrInvalidTransition = goerr.New("invalid status transition")
	ErrInvalidStatus     = goerr.New("invalid claim status")
	ErrInvalidCategory   = goerr.New("invalid claim category")
	ErrInvalidClaim      = goerr.New("invalid claim")
)

type ClaimID string

// NewClaimID generates a new unique ClaimID with the CLM- prefix
func NewClaimID() ClaimID {
	return ClaimID("CLM-" + strings.ToUpper(uuid.New().String()[:8]))
}

type ClaimStatus string

const (
	StatusDraft         ClaimStatus = "draft"
	StatusAnalyzing     ClaimStatus = "analyzing"
	StatusPendingReview ClaimStatus = "pending_review"
	StatusApproved      ClaimStatus = "approved"
	StatusRejected      ClaimStatus = "rejected"
)

// Validate checks if the status is valid
func (s ClaimStatus) Validate() error {
	switch s {
	case StatusDraft, StatusAnalyzing, StatusPendingReview, StatusApproved, StatusRejected:
		return nil
	default:
		return goerr.Wrap(ErrInvalidStatus, "unknown status", goerr.V("status", s))
	}
}

// CanTransition reports whether moving to next is a legal lifecycle step.
// Approved and rejected are terminal. A claim never returns to draft or
// analyzing after leaving them.
func (s ClaimStatus) CanTransition(next ClaimStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusAnalyzing
	case StatusAnalyzing:
		return next == StatusApproved || next == StatusPendingReview
	case StatusPendingReview:
		return next == StatusApproved || next == StatusRejected
	default:
		return false
	}
}

// Terminal reports whether no transition leaves this status.
func (s ClaimStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

type ClaimCategory string

const (
	CategoryWaterDamage       ClaimCategory = "water_damage"
	CategoryElectronicFailure ClaimCategory = "electronic_failure"
	CategoryFireSmoke         ClaimCategory = "fire_smoke"
	CategoryStructuralDamage  ClaimCategory = "structural_damage"
	CategoryTheft             ClaimCategory = "theft"
)

// Categories lists all claim categories accepted at submission.
func Categories() []ClaimCategory {
	return []ClaimCategory{
		CategoryWaterDamage,
		CategoryElectronicFailure,
		CategoryFireSmoke,
		CategoryStructuralDamage,
		CategoryTheft,
	}
}

// Validate checks if the category is valid
func (c ClaimCategory) Validate() error {
	switch c {
	case CategoryWaterDamage, CategoryElectronicFailure, CategoryFireSmoke, CategoryStructuralDamage, CategoryTheft:
		return nil
	default:
		return goerr.Wrap(ErrInvalidCategory, "unknown category", goerr.V("category", c))
	}
}

// Claim is a member-submitted request for payout from the mutual pool.
// Amount and CreatedAt are immutable after creation. AdvisoryText is
// eventually-present: it is attached asynchronously and may arrive before
// or after the status settles.
type Claim struct {
	ID          ClaimID
	OwnerID     string
	OwnerName   string
	Category    ClaimCategory
	Amount      float64
	Description string
	Status      ClaimStatus

	AdvisoryText string
	Attachments  []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the submission rules for a new claim.
func (c *Claim) Validate() error {
	if c.OwnerID == "" {
		return goerr.Wrap(ErrInvalidClaim, "owner is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return goerr.Wrap(ErrInvalidClaim, "description is required")
	}
	if c.Amount < 0 {
		return goerr.Wrap(ErrInvalidClaim, "amount must not be negative", goerr.V("amount", c.Amount))
	}
	if err := c.Category.Validate(); err != nil {
		return err
	}
	if err := c.Status.Validate(); err != nil {
		return err
	}
	return nil
}
