package utils

import (
    "fmt"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/models"
)

// DoctorKey builds the flat doctor profile key. Doctors are the one category
// not stored under a composite key: the hospital id is baked into the key so
// creation, lookup and the delete path all address the same entry.
func DoctorKey(hospitalID, doctorID string) string {
    return fmt.Sprintf("%s_DOCTOR_%s", hospitalID, doctorID)
}

// PatientKey builds the composite key for a patient document.
func PatientKey(ctx contractapi.TransactionContextInterface, patientID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypePatient, []string{patientID})
}

// ConsentKey builds the composite key for a (patient, entity) consent record.
func ConsentKey(ctx contractapi.TransactionContextInterface, patientID, entityID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeConsent, []string{patientID, entityID})
}

// RecordKey builds the composite key for a clinical record.
func RecordKey(ctx contractapi.TransactionContextInterface, patientID, recordID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeRecord, []string{patientID, recordID})
}

// DescriptionKey builds the composite key for a patient description.
func DescriptionKey(ctx contractapi.TransactionContextInterface, patientID, descriptionID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeDescription, []string{patientID, descriptionID})
}

// StockKey builds the composite key for a pharmacy's medicine stock entry.
func StockKey(ctx contractapi.TransactionContextInterface, pharmacyID, medicineName string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeMedicineStock, []string{pharmacyID, medicineName})
}

// PolicyKey builds the composite key for an insurance policy.
func PolicyKey(ctx contractapi.TransactionContextInterface, policyNumber string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeInsurance, []string{policyNumber})
}

// ClaimKey builds the composite key for a claim.
func ClaimKey(ctx contractapi.TransactionContextInterface, claimID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeClaim, []string{claimID})
}

// RewardKey builds the composite key for a patient reward balance.
func RewardKey(ctx contractapi.TransactionContextInterface, patientID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(models.DocTypeReward, []string{patientID})
}

// EntityKey builds the composite key for a category-prefixed onboarding
// entity (diagnostics center, pharmacy, researcher, insurance agent).
func EntityKey(ctx contractapi.TransactionContextInterface, docType, entityID string) (string, error) {
    return ctx.GetStub().CreateCompositeKey(docType, []string{entityID})
}
