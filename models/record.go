package models

import (
    "time"
)

// Record id prefixes. Ids derive from the transaction id so they are unique
// and deterministic across replicas.
const (
    RecordIDPrefix      = "R-"
    LabReportIDPrefix   = "lab-"
    DescriptionIDPrefix = "desc-"
)

// PatientRecord is a clinical record keyed by (record, patientId, recordId).
// Doctor-authored records carry diagnosis/prescription; diagnostics-authored
// ones carry an embedded lab report. PatientID and DoctorID are immutable
// after creation.
type PatientRecord struct {
    DocType            string              `json:"docType"`
    RecordID           string              `json:"recordId"`
    PatientID          string              `json:"patientId"`
    DoctorID           string              `json:"doctorId,omitempty"`
    Diagnosis          string              `json:"diagnosis,omitempty"`
    Prescription       string              `json:"prescription,omitempty"`
    LabReport          *LabReport          `json:"labReport,omitempty"`
    DispensedMedicines []DispensedMedicine `json:"dispensedMedicines,omitempty"`
    DataHash           string              `json:"dataHash,omitempty"`
    CreatedAt          time.Time           `json:"createdAt"`
    UpdatedAt          time.Time           `json:"updatedAt"`
}

// LabReport is the diagnostics payload embedded in a record document.
type LabReport struct {
    LabID      string    `json:"labId"`
    ReportType string    `json:"reportType"`
    ReportData string    `json:"reportData"`
    CreatedAt  time.Time `json:"createdAt"`
}

// DispensedMedicine is one fulfilment entry appended to a clinical record by
// a successful dispense.
type DispensedMedicine struct {
    Medicine    string    `json:"medicine"`
    Quantity    int       `json:"quantity"`
    PharmacyID  string    `json:"pharmacyId"`
    DispensedAt time.Time `json:"dispensedAt"`
}

// PatientDescription is a free-text note a doctor attaches to a patient,
// stored as its own document category rather than merged into a record.
type PatientDescription struct {
    DocType       string    `json:"docType"`
    DescriptionID string    `json:"descriptionId"`
    PatientID     string    `json:"patientId"`
    DoctorID      string    `json:"doctorId"`
    Description   string    `json:"description"`
    CreatedAt     time.Time `json:"createdAt"`
}

// MedicineStock tracks a pharmacy's on-hand quantity per medicine. Quantity
// never goes negative; only a successful dispense decrements it.
type MedicineStock struct {
    DocType          string          `json:"docType"`
    PharmacyID       string          `json:"pharmacyId"`
    MedicineName     string          `json:"medicineName"`
    Quantity         int             `json:"quantity"`
    DispensedHistory []DispenseEntry `json:"dispensedHistory"`
    UpdatedAt        time.Time       `json:"updatedAt"`
}

// DispenseEntry is the stock-side audit entry mirrored by the record-side
// DispensedMedicine entry.
type DispenseEntry struct {
    PatientID   string    `json:"patientId"`
    RecordID    string    `json:"recordId"`
    Quantity    int       `json:"quantity"`
    DispensedAt time.Time `json:"dispensedAt"`
}

// RecordHistoryEntry is one ledger modification of a record key.
type RecordHistoryEntry struct {
    TxID      string         `json:"txId"`
    Timestamp time.Time      `json:"timestamp"`
    IsDelete  bool           `json:"isDelete"`
    Record    *PatientRecord `json:"record,omitempty"`
}

// HasLabReport reports whether the record carries a diagnostics payload.
func (r *PatientRecord) HasLabReport() bool {
    return r.LabReport != nil
}
