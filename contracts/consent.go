package contracts

import (
    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// ConsentContract manages the per-patient granted-access set and the consent
// records that back researcher access.
type ConsentContract struct {
    contractapi.Contract
}

// GrantAccess adds an entity to the calling patient's authorizedEntities set
// and writes the matching consent record. Membership addition is idempotent:
// a re-grant leaves the set and the patient's updatedAt untouched. The
// consent record is always (re)written. Granting to a rewardable role credits
// the patient's balance on every call, including re-grants; that re-award is
// the recorded policy (see models.ConsentRewardPoints).
func (cc *ConsentContract) GrantAccess(ctx contractapi.TransactionContextInterface, patientID, entityID, entityRole string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId":  patientID,
        "entityId":   entityID,
        "entityRole": entityRole,
    }, "patientId", "entityId", "entityRole"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePatient); err != nil {
        return nil, err
    }
    if caller.UniqueID != patientID {
        return nil, ccerrors.Unauthorizedf("patient %s cannot grant access on behalf of patient %s", caller.UniqueID, patientID)
    }

    patient, err := loadPatient(ctx, patientID)
    if err != nil {
        return nil, err
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    if !patient.IsAuthorized(entityID) {
        patient.AuthorizedEntities = append(patient.AuthorizedEntities, entityID)
        patient.UpdatedAt = now

        patientKey, err := utils.PatientKey(ctx, patientID)
        if err != nil {
            return nil, err
        }
        if err := putJSON(ctx, patientKey, patient); err != nil {
            return nil, err
        }
    }

    consentKey, err := utils.ConsentKey(ctx, patientID, entityID)
    if err != nil {
        return nil, err
    }
    consent := models.ConsentRecord{
        DocType:    models.DocTypeConsent,
        PatientID:  patientID,
        EntityID:   entityID,
        EntityRole: entityRole,
        Status:     models.ConsentStatusApproved,
        GrantedAt:  now,
    }
    if err := putJSON(ctx, consentKey, &consent); err != nil {
        return nil, err
    }

    resp := models.OK("access granted to " + entityID)

    if models.IsRewardableRole(entityRole) {
        balance, err := creditRewardBalance(ctx, patientID, models.ConsentRewardPoints, now)
        if err != nil {
            return nil, err
        }
        resp.RewardBalance = balance
    }

    emitEvent(ctx, "AccessGranted", &consent)
    return resp, nil
}

// GetConsent reads the consent record for a (patient, entity) pair.
func (cc *ConsentContract) GetConsent(ctx contractapi.TransactionContextInterface, patientID, entityID string) (*models.ConsentRecord, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
        "entityId":  entityID,
    }, "patientId", "entityId"); err != nil {
        return nil, err
    }

    consent, err := getConsent(ctx, patientID, entityID)
    if err != nil {
        return nil, err
    }
    if consent == nil {
        return nil, ccerrors.NotFoundf("no consent record for patient %s and entity %s", patientID, entityID)
    }
    return consent, nil
}
