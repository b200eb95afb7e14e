package contracts

import (
    "fmt"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// PharmacyContract manages per-pharmacy medicine stock and prescription
// fulfilment.
type PharmacyContract struct {
    contractapi.Contract
}

// UpdateMedicineStock overwrites the calling pharmacy's stock level for a
// medicine. History accumulated by earlier dispenses is preserved; the
// response reports the previous and new quantity for auditability.
func (pc *PharmacyContract) UpdateMedicineStock(ctx contractapi.TransactionContextInterface, medicineName, newStock string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "medicineName": medicineName,
        "newStock":     newStock,
    }, "medicineName", "newStock"); err != nil {
        return nil, err
    }

    quantity, err := utils.ParseNonNegativeInt("newStock", newStock)
    if err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePharmacy); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }

    key, err := utils.StockKey(ctx, caller.UniqueID, medicineName)
    if err != nil {
        return nil, err
    }

    stock := models.MedicineStock{
        DocType:          models.DocTypeMedicineStock,
        PharmacyID:       caller.UniqueID,
        MedicineName:     medicineName,
        DispensedHistory: []models.DispenseEntry{},
    }
    previous := 0
    found, err := getJSON(ctx, key, &stock)
    if err != nil {
        return nil, err
    }
    if found {
        previous = stock.Quantity
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }
    stock.Quantity = quantity
    stock.UpdatedAt = now

    if err := putJSON(ctx, key, &stock); err != nil {
        return nil, err
    }

    emitEvent(ctx, "MedicineStockUpdated", &stock)
    resp := models.OK(fmt.Sprintf("stock of %s set to %d", medicineName, quantity))
    resp.PreviousStock = previous
    resp.NewStock = quantity
    return resp, nil
}

// DispenseMedicine fulfils a prescription: it verifies the clinical record
// names exactly this medicine, checks stock, then decrements the stock
// document and appends fulfilment entries to both the stock history and the
// clinical record. Both writes commit atomically with the enclosing
// transaction.
func (pc *PharmacyContract) DispenseMedicine(ctx contractapi.TransactionContextInterface, patientID, recordID, medicineName, quantity string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId":    patientID,
        "recordId":     recordID,
        "medicineName": medicineName,
        "quantity":     quantity,
    }, "patientId", "recordId", "medicineName", "quantity"); err != nil {
        return nil, err
    }

    amount, err := utils.ParsePositiveInt("quantity", quantity)
    if err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePharmacy); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }

    record, err := loadRecord(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if record.PatientID != patientID {
        return nil, ccerrors.NotFoundf("record %s does not belong to patient %s", recordID, patientID)
    }
    // Exact string match: multi-drug prescriptions are not supported.
    if record.Prescription != medicineName {
        return nil, ccerrors.BusinessRulef("record %s does not prescribe %s", recordID, medicineName)
    }

    stockKey, err := utils.StockKey(ctx, caller.UniqueID, medicineName)
    if err != nil {
        return nil, err
    }
    var stock models.MedicineStock
    found, err := getJSON(ctx, stockKey, &stock)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("pharmacy %s has no stock entry for %s", caller.UniqueID, medicineName)
    }
    if amount > stock.Quantity {
        return nil, ccerrors.BusinessRulef("not enough stock of %s: requested %d, available %d", medicineName, amount, stock.Quantity)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    stock.Quantity -= amount
    stock.DispensedHistory = append(stock.DispensedHistory, models.DispenseEntry{
        PatientID:   patientID,
        RecordID:    recordID,
        Quantity:    amount,
        DispensedAt: now,
    })
    stock.UpdatedAt = now
    if err := putJSON(ctx, stockKey, &stock); err != nil {
        return nil, err
    }

    record.DispensedMedicines = append(record.DispensedMedicines, models.DispensedMedicine{
        Medicine:    medicineName,
        Quantity:    amount,
        PharmacyID:  caller.UniqueID,
        DispensedAt: now,
    })
    record.UpdatedAt = now
    recordKey, err := utils.RecordKey(ctx, patientID, recordID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, recordKey, record); err != nil {
        return nil, err
    }

    emitEvent(ctx, "MedicineDispensed", map[string]interface{}{
        "patientId":    patientID,
        "recordId":     recordID,
        "medicineName": medicineName,
        "quantity":     amount,
        "pharmacyId":   caller.UniqueID,
    })
    resp := models.OK(fmt.Sprintf("dispensed %d of %s", amount, medicineName))
    resp.NewStock = stock.Quantity
    return resp, nil
}

// GetMedicineStock reads the calling pharmacy's stock entry for a medicine.
func (pc *PharmacyContract) GetMedicineStock(ctx contractapi.TransactionContextInterface, medicineName string) (*models.MedicineStock, error) {
    if err := utils.RequireFields(map[string]string{
        "medicineName": medicineName,
    }, "medicineName"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePharmacy); err != nil {
        return nil, err
    }

    key, err := utils.StockKey(ctx, caller.UniqueID, medicineName)
    if err != nil {
        return nil, err
    }
    var stock models.MedicineStock
    found, err := getJSON(ctx, key, &stock)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("pharmacy %s has no stock entry for %s", caller.UniqueID, medicineName)
    }
    return &stock, nil
}
