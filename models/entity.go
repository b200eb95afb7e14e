package models

import (
    "time"
)

// Document type discriminators. Every persisted document carries one in its
// docType field; composite keys use the same tag as the category prefix.
const (
    DocTypeHospital       = "hospital"
    DocTypeDoctor         = "doctor"
    DocTypePatient        = "patient"
    DocTypeConsent        = "consent"
    DocTypeRecord         = "record"
    DocTypeDescription    = "description"
    DocTypeMedicineStock  = "medicineStock"
    DocTypeInsurance      = "insurance"
    DocTypeClaim          = "claim"
    DocTypeReward         = "reward"
    DocTypeDiagnostics    = "diagnostics"
    DocTypePharmacy       = "pharmacy"
    DocTypeResearcher     = "researcher"
    DocTypeInsuranceAgent = "insuranceAgent"
)

// Caller roles. The set is closed; any other role string is denied everywhere.
const (
    RoleHospital       = "hospital"
    RoleDoctor         = "doctor"
    RolePatient        = "patient"
    RoleDiagnostics    = "diagnostics"
    RolePharmacy       = "pharmacy"
    RoleResearcher     = "researcher"
    RoleResearchAdmin  = "researchAdmin"
    RoleInsuranceAdmin = "insuranceAdmin"
    RoleInsuranceAgent = "insuranceAgent"
)

// Organization MSP identifiers. Org1 is the provider side (hospitals, doctors,
// patients, diagnostics, pharmacies); Org2 is the payer/research side.
const (
    OrgProviderMSP = "Org1MSP"
    OrgPayerMSP    = "Org2MSP"
)

// Entity status values.
const (
    StatusActive = "ACTIVE"
)

// AgentCoverageCap is the maximum coverage amount an insuranceAgent may issue.
// Admin-issued policies are not capped.
const AgentCoverageCap = 50000

// Hospital is an onboarding-time provider organization document.
type Hospital struct {
    DocType    string    `json:"docType"`
    HospitalID string    `json:"hospitalId"`
    Name       string    `json:"name"`
    City       string    `json:"city"`
    CreatedAt  time.Time `json:"createdAt"`
}

// Doctor is a hospital-owned practitioner profile. Stored under the flat key
// <hospitalId>_DOCTOR_<doctorId> so lookups and deletes stay symmetric with
// the hospital that created it.
type Doctor struct {
    DocType        string    `json:"docType"`
    DoctorID       string    `json:"doctorId"`
    HospitalID     string    `json:"hospitalId"`
    Name           string    `json:"name"`
    Specialization string    `json:"specialization,omitempty"`
    City           string    `json:"city,omitempty"`
    Status         string    `json:"status"`
    CreatedAt      time.Time `json:"createdAt"`
    UpdatedAt      time.Time `json:"updatedAt"`
}

// Patient owns its own document. AuthorizedEntities only grows, via consent
// grants; it is never auto-shrunk.
type Patient struct {
    DocType            string    `json:"docType"`
    PatientID          string    `json:"patientId"`
    HospitalID         string    `json:"hospitalId"`
    Name               string    `json:"name"`
    DOB                string    `json:"dob"`
    City               string    `json:"city,omitempty"`
    AuthorizedEntities []string  `json:"authorizedEntities"`
    CreatedAt          time.Time `json:"createdAt"`
    UpdatedAt          time.Time `json:"updatedAt"`
}

// IsAuthorized reports whether entityID is in the patient's granted-access set.
func (p *Patient) IsAuthorized(entityID string) bool {
    for _, id := range p.AuthorizedEntities {
        if id == entityID {
            return true
        }
    }
    return false
}

// DiagnosticsCenter is onboarded by its owning hospital.
type DiagnosticsCenter struct {
    DocType   string    `json:"docType"`
    CenterID  string    `json:"centerId"`
    Name      string    `json:"name"`
    City      string    `json:"city,omitempty"`
    CreatedBy string    `json:"createdBy"`
    Status    string    `json:"status"`
    CreatedAt time.Time `json:"createdAt"`
}

// Pharmacy is onboarded by its owning hospital.
type Pharmacy struct {
    DocType    string    `json:"docType"`
    PharmacyID string    `json:"pharmacyId"`
    Name       string    `json:"name"`
    City       string    `json:"city,omitempty"`
    CreatedBy  string    `json:"createdBy"`
    Status     string    `json:"status"`
    CreatedAt  time.Time `json:"createdAt"`
}

// Researcher is onboarded by a research administrator.
type Researcher struct {
    DocType      string    `json:"docType"`
    ResearcherID string    `json:"researcherId"`
    Name         string    `json:"name"`
    Institution  string    `json:"institution"`
    CreatedBy    string    `json:"createdBy"`
    Status       string    `json:"status"`
    CreatedAt    time.Time `json:"createdAt"`
}

// InsuranceAgent is onboarded by an insurance administrator.
type InsuranceAgent struct {
    DocType          string    `json:"docType"`
    AgentID          string    `json:"agentId"`
    InsuranceCompany string    `json:"insuranceCompany"`
    Name             string    `json:"name"`
    City             string    `json:"city,omitempty"`
    WalletBalance    int       `json:"walletBalance"`
    CreatedBy        string    `json:"createdBy"`
    Status           string    `json:"status"`
    CreatedAt        time.Time `json:"createdAt"`
}
