package models

import (
    "time"
)

// Consent status values. Only "approved" is written today; the field exists so
// the record outlives list membership in authorizedEntities.
const (
    ConsentStatusApproved = "approved"
)

// Consent reward policy. Granting access to one of the rewardable roles
// credits the patient's balance. The credit fires on every grant call, even a
// re-grant to an already-authorized entity; that re-award is the recorded
// behavior of the system, kept behind these constants so the policy is a
// one-line change.
const (
    ConsentRewardPoints = 10
)

// RewardableRoles lists the entity roles whose consent grant earns the
// patient reward points.
var RewardableRoles = []string{RoleResearcher, RoleInsuranceAdmin}

// IsRewardableRole reports whether granting access to this role credits the
// patient's reward balance.
func IsRewardableRole(role string) bool {
    for _, r := range RewardableRoles {
        if r == role {
            return true
        }
    }
    return false
}

// ConsentRecord is one per (patient, entity) pair, created alongside an
// access grant.
type ConsentRecord struct {
    DocType    string    `json:"docType"`
    PatientID  string    `json:"patientId"`
    EntityID   string    `json:"entityId"`
    EntityRole string    `json:"entityRole"`
    Status     string    `json:"status"`
    GrantedAt  time.Time `json:"grantedAt"`
}

// IsApproved reports whether this consent is currently approved.
func (c *ConsentRecord) IsApproved() bool {
    return c.Status == ConsentStatusApproved
}
