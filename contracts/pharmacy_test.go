package contracts

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
)

func pharmacyCtx(ctx *testContext) *testContext {
    return ctx.as(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
}

func TestUpdateMedicineStock(t *testing.T) {
    ctx := newTestContext(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
    pc := new(PharmacyContract)

    _, err := pc.UpdateMedicineStock(hospitalCtx(ctx), "amlodipine", "100")
    requireKind(t, err, ccerrors.KindUnauthorized)

    _, err = pc.UpdateMedicineStock(ctx, "amlodipine", "-5")
    requireKind(t, err, ccerrors.KindValidation)

    resp, err := pc.UpdateMedicineStock(ctx, "amlodipine", "100")
    require.NoError(t, err)
    assert.Equal(t, 0, resp.PreviousStock)
    assert.Equal(t, 100, resp.NewStock)

    resp, err = pc.UpdateMedicineStock(ctx, "amlodipine", "40")
    require.NoError(t, err)
    assert.Equal(t, 100, resp.PreviousStock)
    assert.Equal(t, 40, resp.NewStock)

    stock, err := pc.GetMedicineStock(ctx, "amlodipine")
    require.NoError(t, err)
    assert.Equal(t, 40, stock.Quantity)
    assert.Empty(t, stock.DispensedHistory)
}

func TestDispenseMedicine(t *testing.T) {
    ctx := newTestContext(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
    seedPatientWithDoctorAccess(t, ctx)
    recordID := seedRecord(t, ctx, "tx-disp-1", "hypertension", "amlodipine")
    pc := new(PharmacyContract)

    _, err := pc.UpdateMedicineStock(pharmacyCtx(ctx), "amlodipine", "10")
    require.NoError(t, err)

    // Prescription mismatch.
    _, err = pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "ibuprofen", "2")
    requireKind(t, err, ccerrors.KindBusinessRule)

    // More than available.
    _, err = pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "amlodipine", "11")
    requireKind(t, err, ccerrors.KindBusinessRule)

    stock, err := pc.GetMedicineStock(pharmacyCtx(ctx), "amlodipine")
    require.NoError(t, err)
    assert.Equal(t, 10, stock.Quantity, "failed dispense must not change stock")

    resp, err := pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "amlodipine", "4")
    require.NoError(t, err)
    assert.Equal(t, 6, resp.NewStock)

    stock, err = pc.GetMedicineStock(pharmacyCtx(ctx), "amlodipine")
    require.NoError(t, err)
    assert.Equal(t, 6, stock.Quantity)
    require.Len(t, stock.DispensedHistory, 1)
    assert.Equal(t, recordID, stock.DispensedHistory[0].RecordID)
    assert.Equal(t, 4, stock.DispensedHistory[0].Quantity)

    record, err := new(ClinicalRecordContract).GetRecord(patientCtx(ctx), patientID, recordID)
    require.NoError(t, err)
    require.Len(t, record.DispensedMedicines, 1)
    assert.Equal(t, "amlodipine", record.DispensedMedicines[0].Medicine)
    assert.Equal(t, pharmacyID, record.DispensedMedicines[0].PharmacyID)
}

func TestDispenseMedicineExactStock(t *testing.T) {
    ctx := newTestContext(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
    seedPatientWithDoctorAccess(t, ctx)
    recordID := seedRecord(t, ctx, "tx-disp-2", "hypertension", "amlodipine")
    pc := new(PharmacyContract)

    _, err := pc.UpdateMedicineStock(pharmacyCtx(ctx), "amlodipine", "5")
    require.NoError(t, err)

    resp, err := pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "amlodipine", "5")
    require.NoError(t, err)
    assert.Equal(t, 0, resp.NewStock)

    _, err = pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "amlodipine", "1")
    requireKind(t, err, ccerrors.KindBusinessRule)
}

func TestDispenseMedicineUnknownStock(t *testing.T) {
    ctx := newTestContext(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
    seedPatientWithDoctorAccess(t, ctx)
    recordID := seedRecord(t, ctx, "tx-disp-3", "flu", "oseltamivir")

    _, err := new(PharmacyContract).DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "oseltamivir", "1")
    requireKind(t, err, ccerrors.KindNotFound)
}

func TestUpdateStockPreservesDispenseHistory(t *testing.T) {
    ctx := newTestContext(models.RolePharmacy, pharmacyID, models.OrgProviderMSP)
    seedPatientWithDoctorAccess(t, ctx)
    recordID := seedRecord(t, ctx, "tx-disp-4", "hypertension", "amlodipine")
    pc := new(PharmacyContract)

    _, err := pc.UpdateMedicineStock(pharmacyCtx(ctx), "amlodipine", "10")
    require.NoError(t, err)
    _, err = pc.DispenseMedicine(pharmacyCtx(ctx), patientID, recordID, "amlodipine", "3")
    require.NoError(t, err)

    // Restock overwrites the quantity but keeps the audit trail.
    _, err = pc.UpdateMedicineStock(pharmacyCtx(ctx), "amlodipine", "50")
    require.NoError(t, err)

    stock, err := pc.GetMedicineStock(pharmacyCtx(ctx), "amlodipine")
    require.NoError(t, err)
    assert.Equal(t, 50, stock.Quantity)
    require.Len(t, stock.DispensedHistory, 1)
}
