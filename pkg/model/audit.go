package model

import "time"

type AuditAction string

const (
	AuditClaimSubmitted    AuditAction = "claim_submitted"
	AuditClaimIntake       AuditAction = "claim_intake"
	AuditClaimAutoApproved AuditAction = "claim_auto_approved"
	AuditClaimApproved     AuditAction = "claim_approved"
	AuditClaimRejected     AuditAction = "claim_rejected"
)

// AuditEvent records who moved a claim and how.
type AuditEvent struct {
	ClaimID    ClaimID
	Action     AuditAction
	Actor      string
	PrevStatus ClaimStatus
	NextStatus ClaimStatus
	OccurredAt time.Time
}
