package contracts

import (
    "encoding/json"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// ClinicalRecordContract stores doctor-authored records, diagnostics lab
// reports and free-text descriptions.
type ClinicalRecordContract struct {
    contractapi.Contract
}

// AddRecord creates a clinical record for a patient. The caller must be a
// doctor the patient has granted access to; the record id derives from the
// transaction id.
func (crc *ClinicalRecordContract) AddRecord(ctx contractapi.TransactionContextInterface, patientID, diagnosis, prescription string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
        "diagnosis": diagnosis,
    }, "patientId", "diagnosis"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleDoctor); err != nil {
        return nil, err
    }

    patient, err := loadPatient(ctx, patientID)
    if err != nil {
        return nil, err
    }
    if !patient.IsAuthorized(caller.UniqueID) {
        return nil, ccerrors.Unauthorizedf("doctor %s has not been granted access by patient %s", caller.UniqueID, patientID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    recordID := models.RecordIDPrefix + ctx.GetStub().GetTxID()
    record := models.PatientRecord{
        DocType:      models.DocTypeRecord,
        RecordID:     recordID,
        PatientID:    patientID,
        DoctorID:     caller.UniqueID,
        Diagnosis:    diagnosis,
        Prescription: prescription,
        DataHash:     utils.DataHash(diagnosis, prescription),
        CreatedAt:    now,
        UpdatedAt:    now,
    }

    key, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, key, &record); err != nil {
        return nil, err
    }

    emitEvent(ctx, "RecordAdded", &record)
    resp := models.OK("record created for patient " + patientID)
    resp.RecordID = recordID
    return resp, nil
}

// UpdatePatientRecord merges new diagnosis/prescription values into an
// existing record. Only the doctor who authored the record may update it,
// which is stricter than the patient-level access check.
func (crc *ClinicalRecordContract) UpdatePatientRecord(ctx contractapi.TransactionContextInterface, patientID, recordID, diagnosis, prescription string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
        "recordId":  recordID,
    }, "patientId", "recordId"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleDoctor); err != nil {
        return nil, err
    }

    patient, err := loadPatient(ctx, patientID)
    if err != nil {
        return nil, err
    }
    if !patient.IsAuthorized(caller.UniqueID) {
        return nil, ccerrors.Unauthorizedf("doctor %s has not been granted access by patient %s", caller.UniqueID, patientID)
    }

    record, err := loadRecord(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if record.DoctorID != caller.UniqueID {
        return nil, ccerrors.Unauthorizedf("record %s can only be updated by its authoring doctor", recordID)
    }

    if diagnosis != "" {
        record.Diagnosis = diagnosis
    }
    if prescription != "" {
        record.Prescription = prescription
    }
    record.DataHash = utils.DataHash(record.Diagnosis, record.Prescription)

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }
    record.UpdatedAt = now

    key, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, key, record); err != nil {
        return nil, err
    }

    emitEvent(ctx, "RecordUpdated", record)
    resp := models.OK("record " + recordID + " updated")
    resp.RecordID = recordID
    return resp, nil
}

// UploadPatientDescription attaches a free-text note to the patient as its
// own document, under the same doctor gating as AddRecord.
func (crc *ClinicalRecordContract) UploadPatientDescription(ctx contractapi.TransactionContextInterface, patientID, description string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId":   patientID,
        "description": description,
    }, "patientId", "description"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleDoctor); err != nil {
        return nil, err
    }

    patient, err := loadPatient(ctx, patientID)
    if err != nil {
        return nil, err
    }
    if !patient.IsAuthorized(caller.UniqueID) {
        return nil, ccerrors.Unauthorizedf("doctor %s has not been granted access by patient %s", caller.UniqueID, patientID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    descriptionID := models.DescriptionIDPrefix + ctx.GetStub().GetTxID()
    doc := models.PatientDescription{
        DocType:       models.DocTypeDescription,
        DescriptionID: descriptionID,
        PatientID:     patientID,
        DoctorID:      caller.UniqueID,
        Description:   description,
        CreatedAt:     now,
    }

    key, err := utils.DescriptionKey(ctx, patientID, descriptionID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, key, &doc); err != nil {
        return nil, err
    }

    emitEvent(ctx, "DescriptionUploaded", &doc)
    resp := models.OK("description uploaded for patient " + patientID)
    resp.DescriptionID = descriptionID
    return resp, nil
}

// UploadLabReport writes a diagnostics lab report as a record document with
// an embedded labReport payload, independent of any doctor-authored record.
func (crc *ClinicalRecordContract) UploadLabReport(ctx contractapi.TransactionContextInterface, patientID, reportType, reportData string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId":  patientID,
        "reportType": reportType,
        "reportData": reportData,
    }, "patientId", "reportType", "reportData"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleDiagnostics); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }

    if _, err := loadPatient(ctx, patientID); err != nil {
        return nil, err
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    recordID := models.LabReportIDPrefix + ctx.GetStub().GetTxID()
    record := models.PatientRecord{
        DocType:   models.DocTypeRecord,
        RecordID:  recordID,
        PatientID: patientID,
        LabReport: &models.LabReport{
            LabID:      caller.UniqueID,
            ReportType: reportType,
            ReportData: reportData,
            CreatedAt:  now,
        },
        DataHash:  utils.DataHash(reportType, reportData),
        CreatedAt: now,
        UpdatedAt: now,
    }

    key, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, key, &record); err != nil {
        return nil, err
    }

    emitEvent(ctx, "LabReportUploaded", &record)
    resp := models.OK("lab report uploaded for patient " + patientID)
    resp.RecordID = recordID
    return resp, nil
}

// GetRecord reads a single clinical record, gated by the central predicate.
func (crc *ClinicalRecordContract) GetRecord(ctx contractapi.TransactionContextInterface, patientID, recordID string) (*models.PatientRecord, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if _, err := requirePatientView(ctx, caller, patientID); err != nil {
        return nil, err
    }
    return loadRecord(ctx, patientID, recordID)
}

// GetRecordHistory returns the ledger modification history of one record key.
func (crc *ClinicalRecordContract) GetRecordHistory(ctx contractapi.TransactionContextInterface, patientID, recordID string) ([]*models.RecordHistoryEntry, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if _, err := requirePatientView(ctx, caller, patientID); err != nil {
        return nil, err
    }

    key, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }

    iter, err := ctx.GetStub().GetHistoryForKey(key)
    if err != nil {
        return nil, err
    }
    defer iter.Close()

    history := []*models.RecordHistoryEntry{}
    for iter.HasNext() {
        mod, err := iter.Next()
        if err != nil {
            return nil, err
        }

        entry := &models.RecordHistoryEntry{
            TxID:      mod.TxId,
            Timestamp: mod.Timestamp.AsTime().UTC(),
            IsDelete:  mod.IsDelete,
        }
        if !mod.IsDelete && mod.Value != nil {
            var record models.PatientRecord
            if err := json.Unmarshal(mod.Value, &record); err == nil {
                entry.Record = &record
            }
        }
        history = append(history, entry)
    }

    return history, nil
}
