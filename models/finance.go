package models

import (
    "time"
)

// Claim lifecycle. PENDING -> APPROVED is the only transition; APPROVED is
// terminal.
const (
    ClaimStatusPending  = "PENDING"
    ClaimStatusApproved = "APPROVED"
)

// ClaimIDPrefix prefixes the transaction id to form a claim id.
const ClaimIDPrefix = "claim-"

// InsurancePolicy is keyed by (insurance, policyNumber). Claims are tracked
// as separate documents; the Claims slice is initialized empty and kept for
// wire-format parity with older clients.
type InsurancePolicy struct {
    DocType          string    `json:"docType"`
    PolicyNumber     string    `json:"policyNumber"`
    InsuranceID      string    `json:"insuranceId"`
    InsuranceCompany string    `json:"insuranceCompany"`
    PatientID        string    `json:"patientId"`
    CoverageAmount   int       `json:"coverageAmount"`
    Claims           []string  `json:"claims"`
    CreatedAt        time.Time `json:"createdAt"`
}

// Claim is keyed by (claim, claimId). PatientID always comes from the caller
// identity, never from request input.
type Claim struct {
    DocType          string     `json:"docType"`
    ClaimID          string     `json:"claimId"`
    PolicyNumber     string     `json:"policyNumber"`
    PatientID        string     `json:"patientId"`
    InsuranceID      string     `json:"insuranceId"`
    InsuranceCompany string     `json:"insuranceCompany"`
    Amount           int        `json:"amount"`
    Reason           string     `json:"reason"`
    Status           string     `json:"status"`
    RequestedAt      time.Time  `json:"requestedAt"`
    ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
}

// IsApproved reports whether the claim has reached its terminal state.
func (c *Claim) IsApproved() bool {
    return c.Status == ClaimStatusApproved
}

// RewardBalance is the patient-held point balance, keyed by (reward,
// patientId). Balance never goes negative.
type RewardBalance struct {
    DocType   string    `json:"docType"`
    PatientID string    `json:"patientId"`
    Balance   int       `json:"balance"`
    UpdatedAt time.Time `json:"updatedAt"`
}
