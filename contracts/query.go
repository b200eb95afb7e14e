package contracts

import (
    "encoding/json"
    "fmt"
    "sort"

    "github.com/hyperledger/fabric-chaincode-go/shim"
    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
)

// QueryContract builds read-only, authorization-filtered views across the
// clinical, consent and financial stores. List results are always a bare
// array; an empty view is an empty array, never a message object.
type QueryContract struct {
    contractapi.Contract
}

// GetAllRecordsByPatientID returns every record document for a patient
// (doctor-authored records and lab reports, with their embedded dispense
// entries), sorted ascending by creation time.
func (qc *QueryContract) GetAllRecordsByPatientID(ctx contractapi.TransactionContextInterface, patientID string) ([]*models.PatientRecord, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if _, err := requirePatientView(ctx, caller, patientID); err != nil {
        return nil, err
    }
    return patientRecords(ctx, patientID)
}

// GetPatientPrescription returns the patient's records that carry a
// prescription.
func (qc *QueryContract) GetPatientPrescription(ctx contractapi.TransactionContextInterface, patientID string) ([]*models.PatientRecord, error) {
    records, err := qc.GetAllRecordsByPatientID(ctx, patientID)
    if err != nil {
        return nil, err
    }
    filtered := []*models.PatientRecord{}
    for _, r := range records {
        if r.Prescription != "" {
            filtered = append(filtered, r)
        }
    }
    return filtered, nil
}

// GetReportsByPatientID returns the patient's records that embed a lab
// report.
func (qc *QueryContract) GetReportsByPatientID(ctx contractapi.TransactionContextInterface, patientID string) ([]*models.PatientRecord, error) {
    records, err := qc.GetAllRecordsByPatientID(ctx, patientID)
    if err != nil {
        return nil, err
    }
    filtered := []*models.PatientRecord{}
    for _, r := range records {
        if r.HasLabReport() {
            filtered = append(filtered, r)
        }
    }
    return filtered, nil
}

// GetAllTreatmentHistory returns the full chronological record list for a
// patient.
func (qc *QueryContract) GetAllTreatmentHistory(ctx contractapi.TransactionContextInterface, patientID string) ([]*models.PatientRecord, error) {
    return qc.GetAllRecordsByPatientID(ctx, patientID)
}

// GetAllPatientsByDoctor returns the patients who have granted access to the
// calling doctor.
func (qc *QueryContract) GetAllPatientsByDoctor(ctx contractapi.TransactionContextInterface, doctorID string) ([]*models.Patient, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleDoctor); err != nil {
        return nil, err
    }
    if caller.UniqueID != doctorID {
        return nil, ccerrors.Unauthorizedf("doctor %s cannot list patients of doctor %s", caller.UniqueID, doctorID)
    }

    iter, err := ctx.GetStub().GetStateByPartialCompositeKey(models.DocTypePatient, []string{})
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    patients := []*models.Patient{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var patient models.Patient
        if err := json.Unmarshal(kv.Value, &patient); err != nil {
            return nil, fmt.Errorf("failed to unmarshal patient document: %v", err)
        }
        if patient.IsAuthorized(doctorID) {
            patients = append(patients, &patient)
        }
    }
    return patients, nil
}

// GetAllPatientsWithRecordsByDoctor is GetAllPatientsByDoctor with each
// patient's clinical records attached.
func (qc *QueryContract) GetAllPatientsWithRecordsByDoctor(ctx contractapi.TransactionContextInterface, doctorID string) ([]*models.PatientWithRecords, error) {
    patients, err := qc.GetAllPatientsByDoctor(ctx, doctorID)
    if err != nil {
        return nil, err
    }

    result := []*models.PatientWithRecords{}
    for _, patient := range patients {
        records, err := patientRecords(ctx, patient.PatientID)
        if err != nil {
            return nil, err
        }
        result = append(result, &models.PatientWithRecords{Patient: patient, Records: records})
    }
    return result, nil
}

// GetAllDoctorsByHospital lists a hospital's doctors. Hospital-scoped
// listings carry no per-row gate; the scope itself is the trust boundary.
func (qc *QueryContract) GetAllDoctorsByHospital(ctx contractapi.TransactionContextInterface, hospitalID string) ([]*models.Doctor, error) {
    query := fmt.Sprintf(`{"selector":{"docType":"%s","hospitalId":"%s"}}`, models.DocTypeDoctor, hospitalID)
    iter, err := ctx.GetStub().GetQueryResult(query)
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    doctors := []*models.Doctor{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var doctor models.Doctor
        if err := json.Unmarshal(kv.Value, &doctor); err != nil {
            return nil, fmt.Errorf("failed to unmarshal doctor document: %v", err)
        }
        doctors = append(doctors, &doctor)
    }
    return doctors, nil
}

// GetAllPatientsByHospital lists a hospital's registered patients.
func (qc *QueryContract) GetAllPatientsByHospital(ctx contractapi.TransactionContextInterface, hospitalID string) ([]*models.Patient, error) {
    query := fmt.Sprintf(`{"selector":{"docType":"%s","hospitalId":"%s"}}`, models.DocTypePatient, hospitalID)
    iter, err := ctx.GetStub().GetQueryResult(query)
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    patients := []*models.Patient{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var patient models.Patient
        if err := json.Unmarshal(kv.Value, &patient); err != nil {
            return nil, fmt.Errorf("failed to unmarshal patient document: %v", err)
        }
        patients = append(patients, &patient)
    }
    return patients, nil
}

// GetAllClaimsByInsurance lists claims filed against one insurance company.
// Restricted to insurer-side roles.
func (qc *QueryContract) GetAllClaimsByInsurance(ctx contractapi.TransactionContextInterface, insuranceCompany string) ([]*models.Claim, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleInsuranceAdmin, models.RoleInsuranceAgent); err != nil {
        return nil, err
    }

    query := fmt.Sprintf(`{"selector":{"docType":"%s","insuranceCompany":"%s"}}`, models.DocTypeClaim, insuranceCompany)
    return drainClaims(ctx, query)
}

// GetAllClaimsByPatient lists the calling patient's claims. The patient id
// comes from the caller identity, not request input.
func (qc *QueryContract) GetAllClaimsByPatient(ctx contractapi.TransactionContextInterface) ([]*models.Claim, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePatient); err != nil {
        return nil, err
    }

    query := fmt.Sprintf(`{"selector":{"docType":"%s","patientId":"%s"}}`, models.DocTypeClaim, caller.UniqueID)
    return drainClaims(ctx, query)
}

// GetAllPrescriptions returns the system-wide prescription feed. Provider
// categories see every row; researcher and insuranceAdmin callers see only
// rows whose patient has an approved consent for them.
func (qc *QueryContract) GetAllPrescriptions(ctx contractapi.TransactionContextInterface) ([]*models.PatientRecord, error) {
    return qc.systemFeed(ctx, func(r *models.PatientRecord) bool {
        return r.Prescription != ""
    })
}

// GetAllLabReports returns the system-wide lab report feed under the same
// gating as GetAllPrescriptions.
func (qc *QueryContract) GetAllLabReports(ctx contractapi.TransactionContextInterface) ([]*models.PatientRecord, error) {
    return qc.systemFeed(ctx, func(r *models.PatientRecord) bool {
        return r.HasLabReport()
    })
}

// systemFeed scans the whole record category and applies the row filter plus
// per-caller consent gating.
func (qc *QueryContract) systemFeed(ctx contractapi.TransactionContextInterface, keep func(*models.PatientRecord) bool) ([]*models.PatientRecord, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller,
        models.RoleHospital, models.RolePharmacy, models.RoleDiagnostics,
        models.RoleResearcher, models.RoleInsuranceAdmin); err != nil {
        return nil, err
    }
    consentGated := caller.Role == models.RoleResearcher || caller.Role == models.RoleInsuranceAdmin

    iter, err := ctx.GetStub().GetStateByPartialCompositeKey(models.DocTypeRecord, []string{})
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    records := []*models.PatientRecord{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var record models.PatientRecord
        if err := json.Unmarshal(kv.Value, &record); err != nil {
            return nil, fmt.Errorf("failed to unmarshal record document: %v", err)
        }
        if !keep(&record) {
            continue
        }
        if consentGated {
            consent, err := getConsent(ctx, record.PatientID, caller.UniqueID)
            if err != nil {
                return nil, err
            }
            if consent == nil || !consent.IsApproved() {
                continue
            }
        }
        records = append(records, &record)
    }

    sortRecords(records)
    return records, nil
}

// patientRecords drains the (record, patientId) range in chronological
// order.
func patientRecords(ctx contractapi.TransactionContextInterface, patientID string) ([]*models.PatientRecord, error) {
    iter, err := ctx.GetStub().GetStateByPartialCompositeKey(models.DocTypeRecord, []string{patientID})
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    return drainRecords(iter)
}

func drainRecords(iter shim.StateQueryIteratorInterface) ([]*models.PatientRecord, error) {
    records := []*models.PatientRecord{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var record models.PatientRecord
        if err := json.Unmarshal(kv.Value, &record); err != nil {
            return nil, fmt.Errorf("failed to unmarshal record document: %v", err)
        }
        records = append(records, &record)
    }
    sortRecords(records)
    return records, nil
}

func drainClaims(ctx contractapi.TransactionContextInterface, query string) ([]*models.Claim, error) {
    iter, err := ctx.GetStub().GetQueryResult(query)
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    claims := []*models.Claim{}
    for iter.HasNext() {
        kv, err := iter.Next()
        if err != nil {
            return nil, err
        }
        var claim models.Claim
        if err := json.Unmarshal(kv.Value, &claim); err != nil {
            return nil, fmt.Errorf("failed to unmarshal claim document: %v", err)
        }
        claims = append(claims, &claim)
    }
    return claims, nil
}

// sortRecords orders records ascending by creation time, record id as the
// tie-breaker so equal-timestamp rows stay stable across peers.
func sortRecords(records []*models.PatientRecord) {
    sort.SliceStable(records, func(i, j int) bool {
        if records[i].CreatedAt.Equal(records[j].CreatedAt) {
            return records[i].RecordID < records[j].RecordID
        }
        return records[i].CreatedAt.Before(records[j].CreatedAt)
    })
}
