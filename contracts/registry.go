package contracts

import (
    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// EntityRegistryContract onboards hospitals, practitioners, patients and the
// payer/research-side entities. Each operation validates inputs, then
// uniqueness, then the onboarding gate, before writing.
type EntityRegistryContract struct {
    contractapi.Contract
}

// RegisterHospital creates a hospital document. This is the bootstrap path
// and carries no role restriction.
func (erc *EntityRegistryContract) RegisterHospital(ctx contractapi.TransactionContextInterface, hospitalID, name, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "name":       name,
        "city":       city,
    }, "hospitalId", "name", "city"); err != nil {
        return nil, err
    }

    found, err := exists(ctx, hospitalID)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("hospital %s already exists", hospitalID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    hospital := models.Hospital{
        DocType:    models.DocTypeHospital,
        HospitalID: hospitalID,
        Name:       name,
        City:       city,
        CreatedAt:  now,
    }
    if err := putJSON(ctx, hospitalID, &hospital); err != nil {
        return nil, err
    }

    emitEvent(ctx, "HospitalRegistered", &hospital)
    return models.OK("hospital " + hospitalID + " registered"), nil
}

// RegisterPatient creates a patient document with an empty granted-access set
// and seeds a zero reward balance.
func (erc *EntityRegistryContract) RegisterPatient(ctx contractapi.TransactionContextInterface, hospitalID, patientID, name, dob, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "patientId":  patientID,
        "name":       name,
        "dob":        dob,
    }, "hospitalId", "patientId", "name", "dob"); err != nil {
        return nil, err
    }

    hospitalFound, err := exists(ctx, hospitalID)
    if err != nil {
        return nil, err
    }
    if !hospitalFound {
        return nil, ccerrors.NotFoundf("hospital %s does not exist", hospitalID)
    }

    patientKey, err := utils.PatientKey(ctx, patientID)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, patientKey)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("patient %s already exists", patientID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    patient := models.Patient{
        DocType:            models.DocTypePatient,
        PatientID:          patientID,
        HospitalID:         hospitalID,
        Name:               name,
        DOB:                dob,
        City:               city,
        AuthorizedEntities: []string{},
        CreatedAt:          now,
        UpdatedAt:          now,
    }
    if err := putJSON(ctx, patientKey, &patient); err != nil {
        return nil, err
    }

    rewardKey, err := utils.RewardKey(ctx, patientID)
    if err != nil {
        return nil, err
    }
    reward := models.RewardBalance{
        DocType:   models.DocTypeReward,
        PatientID: patientID,
        Balance:   0,
        UpdatedAt: now,
    }
    if err := putJSON(ctx, rewardKey, &reward); err != nil {
        return nil, err
    }

    emitEvent(ctx, "PatientRegistered", &patient)
    return models.OK("patient " + patientID + " registered"), nil
}

// CreateDoctor creates a doctor profile owned by the calling hospital.
func (erc *EntityRegistryContract) CreateDoctor(ctx contractapi.TransactionContextInterface, hospitalID, doctorID, name, specialization, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "doctorId":   doctorID,
        "name":       name,
    }, "hospitalId", "doctorId", "name"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleHospital); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }
    if caller.UniqueID != hospitalID {
        return nil, ccerrors.Unauthorizedf("hospital %s cannot create doctors for hospital %s", caller.UniqueID, hospitalID)
    }

    key := utils.DoctorKey(hospitalID, doctorID)
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("doctor %s already exists at hospital %s", doctorID, hospitalID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    doctor := models.Doctor{
        DocType:        models.DocTypeDoctor,
        DoctorID:       doctorID,
        HospitalID:     hospitalID,
        Name:           name,
        Specialization: specialization,
        City:           city,
        Status:         models.StatusActive,
        CreatedAt:      now,
        UpdatedAt:      now,
    }
    if err := putJSON(ctx, key, &doctor); err != nil {
        return nil, err
    }

    emitEvent(ctx, "DoctorCreated", &doctor)
    return models.OK("doctor " + doctorID + " created"), nil
}

// CreateDiagnosticsCenter onboards a diagnostics center under the calling
// hospital.
func (erc *EntityRegistryContract) CreateDiagnosticsCenter(ctx contractapi.TransactionContextInterface, hospitalID, centerID, name, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "centerId":   centerID,
        "name":       name,
    }, "hospitalId", "centerId", "name"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleHospital); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }
    if caller.UniqueID != hospitalID {
        return nil, ccerrors.Unauthorizedf("hospital %s cannot onboard centers for hospital %s", caller.UniqueID, hospitalID)
    }

    key, err := utils.EntityKey(ctx, models.DocTypeDiagnostics, centerID)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("diagnostics center %s already exists", centerID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    center := models.DiagnosticsCenter{
        DocType:   models.DocTypeDiagnostics,
        CenterID:  centerID,
        Name:      name,
        City:      city,
        CreatedBy: hospitalID,
        Status:    models.StatusActive,
        CreatedAt: now,
    }
    if err := putJSON(ctx, key, &center); err != nil {
        return nil, err
    }

    emitEvent(ctx, "DiagnosticsCenterCreated", &center)
    return models.OK("diagnostics center " + centerID + " created"), nil
}

// CreatePharmacy onboards a pharmacy under the calling hospital.
func (erc *EntityRegistryContract) CreatePharmacy(ctx contractapi.TransactionContextInterface, hospitalID, pharmacyID, name, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "pharmacyId": pharmacyID,
        "name":       name,
    }, "hospitalId", "pharmacyId", "name"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleHospital); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }
    if caller.UniqueID != hospitalID {
        return nil, ccerrors.Unauthorizedf("hospital %s cannot onboard pharmacies for hospital %s", caller.UniqueID, hospitalID)
    }

    key, err := utils.EntityKey(ctx, models.DocTypePharmacy, pharmacyID)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("pharmacy %s already exists", pharmacyID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    pharmacy := models.Pharmacy{
        DocType:    models.DocTypePharmacy,
        PharmacyID: pharmacyID,
        Name:       name,
        City:       city,
        CreatedBy:  hospitalID,
        Status:     models.StatusActive,
        CreatedAt:  now,
    }
    if err := putJSON(ctx, key, &pharmacy); err != nil {
        return nil, err
    }

    emitEvent(ctx, "PharmacyCreated", &pharmacy)
    return models.OK("pharmacy " + pharmacyID + " created"), nil
}

// OnboardResearcher onboards a researcher. Restricted to research
// administrators in the payer/research organization.
func (erc *EntityRegistryContract) OnboardResearcher(ctx contractapi.TransactionContextInterface, researcherID, name, institution string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "researcherId": researcherID,
        "name":         name,
        "institution":  institution,
    }, "researcherId", "name", "institution"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleResearchAdmin); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgPayerMSP); err != nil {
        return nil, err
    }

    key, err := utils.EntityKey(ctx, models.DocTypeResearcher, researcherID)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("researcher %s already exists", researcherID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    researcher := models.Researcher{
        DocType:      models.DocTypeResearcher,
        ResearcherID: researcherID,
        Name:         name,
        Institution:  institution,
        CreatedBy:    caller.UniqueID,
        Status:       models.StatusActive,
        CreatedAt:    now,
    }
    if err := putJSON(ctx, key, &researcher); err != nil {
        return nil, err
    }

    emitEvent(ctx, "ResearcherOnboarded", &researcher)
    return models.OK("researcher " + researcherID + " onboarded"), nil
}

// OnboardInsuranceAgent onboards an insurance agent with a zero wallet
// balance. Restricted to insurance administrators.
func (erc *EntityRegistryContract) OnboardInsuranceAgent(ctx contractapi.TransactionContextInterface, agentID, insuranceCompany, name, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "agentId":          agentID,
        "insuranceCompany": insuranceCompany,
        "name":             name,
    }, "agentId", "insuranceCompany", "name"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleInsuranceAdmin); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgPayerMSP); err != nil {
        return nil, err
    }

    key, err := utils.EntityKey(ctx, models.DocTypeInsuranceAgent, agentID)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("insurance agent %s already exists", agentID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    agent := models.InsuranceAgent{
        DocType:          models.DocTypeInsuranceAgent,
        AgentID:          agentID,
        InsuranceCompany: insuranceCompany,
        Name:             name,
        City:             city,
        WalletBalance:    0,
        CreatedBy:        caller.UniqueID,
        Status:           models.StatusActive,
        CreatedAt:        now,
    }
    if err := putJSON(ctx, key, &agent); err != nil {
        return nil, err
    }

    emitEvent(ctx, "InsuranceAgentOnboarded", &agent)
    return models.OK("insurance agent " + agentID + " onboarded"), nil
}

// UpdateDoctorProfile applies a partial update to name, specialization and
// city. Other fields are immutable.
func (erc *EntityRegistryContract) UpdateDoctorProfile(ctx contractapi.TransactionContextInterface, hospitalID, doctorID, name, specialization, city string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "doctorId":   doctorID,
    }, "hospitalId", "doctorId"); err != nil {
        return nil, err
    }

    key := utils.DoctorKey(hospitalID, doctorID)
    var doctor models.Doctor
    found, err := getJSON(ctx, key, &doctor)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("doctor %s does not exist at hospital %s", doctorID, hospitalID)
    }

    if name != "" {
        doctor.Name = name
    }
    if specialization != "" {
        doctor.Specialization = specialization
    }
    if city != "" {
        doctor.City = city
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }
    doctor.UpdatedAt = now

    if err := putJSON(ctx, key, &doctor); err != nil {
        return nil, err
    }

    emitEvent(ctx, "DoctorProfileUpdated", &doctor)
    return models.OK("doctor " + doctorID + " updated"), nil
}

// DeleteDoctorProfile hard-deletes a doctor profile. This is the only hard
// delete in the system; the hospital that owns the profile is the only
// caller allowed to remove it.
func (erc *EntityRegistryContract) DeleteDoctorProfile(ctx contractapi.TransactionContextInterface, hospitalID, doctorID string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "hospitalId": hospitalID,
        "doctorId":   doctorID,
    }, "hospitalId", "doctorId"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleHospital); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgProviderMSP); err != nil {
        return nil, err
    }
    if caller.UniqueID != hospitalID {
        return nil, ccerrors.Unauthorizedf("hospital %s cannot delete doctors of hospital %s", caller.UniqueID, hospitalID)
    }

    key := utils.DoctorKey(hospitalID, doctorID)
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("doctor %s does not exist at hospital %s", doctorID, hospitalID)
    }

    if err := ctx.GetStub().DelState(key); err != nil {
        return nil, err
    }

    emitEvent(ctx, "DoctorProfileDeleted", map[string]string{
        "hospitalId": hospitalID,
        "doctorId":   doctorID,
    })
    return models.OK("doctor " + doctorID + " deleted"), nil
}

// GetHospital reads a hospital document.
func (erc *EntityRegistryContract) GetHospital(ctx contractapi.TransactionContextInterface, hospitalID string) (*models.Hospital, error) {
    var hospital models.Hospital
    found, err := getJSON(ctx, hospitalID, &hospital)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("hospital %s does not exist", hospitalID)
    }
    return &hospital, nil
}

// GetDoctor reads a doctor profile.
func (erc *EntityRegistryContract) GetDoctor(ctx contractapi.TransactionContextInterface, hospitalID, doctorID string) (*models.Doctor, error) {
    var doctor models.Doctor
    found, err := getJSON(ctx, utils.DoctorKey(hospitalID, doctorID), &doctor)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("doctor %s does not exist at hospital %s", doctorID, hospitalID)
    }
    return &doctor, nil
}

// GetPatient reads a patient document, gated by the central view predicate.
func (erc *EntityRegistryContract) GetPatient(ctx contractapi.TransactionContextInterface, patientID string) (*models.Patient, error) {
    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    return requirePatientView(ctx, caller, patientID)
}
