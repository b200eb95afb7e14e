package contracts

import (
    "encoding/json"
    "fmt"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// canViewPatientData is the single authorization predicate behind every
// patient-scoped read. Keeping it in one place is deliberate: the policy
// changed shape several times and per-query copies drift.
//
//   patient        -> self only
//   doctor         -> member of the patient's authorizedEntities
//   hospital       -> always
//   researcher     -> approved consent record for (patient, caller)
//   diagnostics    -> always (category-wide access)
//   pharmacy       -> always (category-wide access)
//   insuranceAdmin -> always (category-wide access)
//   anything else  -> denied
func canViewPatientData(ctx contractapi.TransactionContextInterface, caller utils.Identity, patient *models.Patient) (bool, error) {
    switch caller.Role {
    case models.RolePatient:
        return caller.UniqueID == patient.PatientID, nil
    case models.RoleDoctor:
        return patient.IsAuthorized(caller.UniqueID), nil
    case models.RoleHospital:
        return true, nil
    case models.RoleResearcher:
        consent, err := getConsent(ctx, patient.PatientID, caller.UniqueID)
        if err != nil {
            return false, err
        }
        return consent != nil && consent.IsApproved(), nil
    case models.RoleDiagnostics, models.RolePharmacy, models.RoleInsuranceAdmin:
        return true, nil
    default:
        return false, nil
    }
}

// requirePatientView loads the patient and enforces the view predicate for
// the caller, returning the patient on success.
func requirePatientView(ctx contractapi.TransactionContextInterface, caller utils.Identity, patientID string) (*models.Patient, error) {
    patient, err := loadPatient(ctx, patientID)
    if err != nil {
        return nil, err
    }
    ok, err := canViewPatientData(ctx, caller, patient)
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ccerrors.Unauthorizedf("caller %s (role %s) is not authorized for patient %s", caller.UniqueID, caller.Role, patientID)
    }
    return patient, nil
}

// resolveCaller resolves the invoking identity.
func resolveCaller(ctx contractapi.TransactionContextInterface) (utils.Identity, error) {
    caller, err := utils.ResolveIdentity(ctx)
    if err != nil {
        return caller, fmt.Errorf("failed to resolve caller identity: %v", err)
    }
    return caller, nil
}

// requireRole rejects callers whose role is not in the allowed set.
func requireRole(caller utils.Identity, roles ...string) error {
    for _, r := range roles {
        if caller.Role == r {
            return nil
        }
    }
    return ccerrors.Unauthorizedf("operation not permitted for role %q", caller.Role)
}

// requireOrg rejects callers enrolled outside the expected organization.
func requireOrg(caller utils.Identity, mspID string) error {
    if caller.MSPID != mspID {
        return ccerrors.Unauthorizedf("operation not permitted for organization %q", caller.MSPID)
    }
    return nil
}

// getJSON reads and unmarshals a document. Returns false with no error when
// the key is absent.
func getJSON(ctx contractapi.TransactionContextInterface, key string, out interface{}) (bool, error) {
    data, err := ctx.GetStub().GetState(key)
    if err != nil {
        return false, fmt.Errorf("failed to read %s from world state: %v", key, err)
    }
    if data == nil {
        return false, nil
    }
    if err := json.Unmarshal(data, out); err != nil {
        return false, fmt.Errorf("failed to unmarshal %s: %v", key, err)
    }
    return true, nil
}

// putJSON marshals and writes a document. Documents are plain structs, so the
// encoding is canonical and byte-identical across replicas.
func putJSON(ctx contractapi.TransactionContextInterface, key string, v interface{}) error {
    data, err := json.Marshal(v)
    if err != nil {
        return fmt.Errorf("failed to marshal %s: %v", key, err)
    }
    if err := ctx.GetStub().PutState(key, data); err != nil {
        return fmt.Errorf("failed to write %s to world state: %v", key, err)
    }
    return nil
}

// exists reports whether a key holds a document.
func exists(ctx contractapi.TransactionContextInterface, key string) (bool, error) {
    data, err := ctx.GetStub().GetState(key)
    if err != nil {
        return false, fmt.Errorf("failed to read %s from world state: %v", key, err)
    }
    return data != nil, nil
}

// loadPatient fetches a patient document or fails with NotFound.
func loadPatient(ctx contractapi.TransactionContextInterface, patientID string) (*models.Patient, error) {
    key, err := utils.PatientKey(ctx, patientID)
    if err != nil {
        return nil, err
    }
    var patient models.Patient
    found, err := getJSON(ctx, key, &patient)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("patient %s does not exist", patientID)
    }
    return &patient, nil
}

// loadRecord fetches a clinical record or fails with NotFound.
func loadRecord(ctx contractapi.TransactionContextInterface, patientID, recordID string) (*models.PatientRecord, error) {
    key, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    var record models.PatientRecord
    found, err := getJSON(ctx, key, &record)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("record %s does not exist for patient %s", recordID, patientID)
    }
    return &record, nil
}

// getConsent fetches a consent record, nil when absent.
func getConsent(ctx contractapi.TransactionContextInterface, patientID, entityID string) (*models.ConsentRecord, error) {
    key, err := utils.ConsentKey(ctx, patientID, entityID)
    if err != nil {
        return nil, err
    }
    var consent models.ConsentRecord
    found, err := getJSON(ctx, key, &consent)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, nil
    }
    return &consent, nil
}

// emitEvent writes a ledger event; event failures do not abort the operation
// state changes already queued in this transaction.
func emitEvent(ctx contractapi.TransactionContextInterface, name string, payload interface{}) {
    data, err := json.Marshal(payload)
    if err != nil {
        return
    }
    _ = ctx.GetStub().SetEvent(name, data)
}
