package contracts

import (
    "testing"

    "github.com/stretchr/testify/require"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
)

// Shared fixture identities used across the contract tests.
const (
    hospitalID   = "apollo"
    patientID    = "pat1"
    doctorID     = "doc1"
    centerID     = "lab1"
    pharmacyID   = "pharm1"
    researcherID = "res1"
    agentID      = "agent1"
    insurerID    = "unitedcare"
)

func hospitalCtx(ctx *testContext) *testContext {
    return ctx.as(models.RoleHospital, hospitalID, models.OrgProviderMSP)
}

func patientCtx(ctx *testContext) *testContext {
    return ctx.as(models.RolePatient, patientID, models.OrgProviderMSP)
}

func doctorCtx(ctx *testContext) *testContext {
    return ctx.as(models.RoleDoctor, doctorID, models.OrgProviderMSP)
}

func seedHospital(t *testing.T, ctx *testContext) {
    t.Helper()
    _, err := new(EntityRegistryContract).RegisterHospital(hospitalCtx(ctx), hospitalID, "Apollo General", "Chennai")
    require.NoError(t, err)
}

func seedPatient(t *testing.T, ctx *testContext) {
    t.Helper()
    seedHospital(t, ctx)
    _, err := new(EntityRegistryContract).RegisterPatient(hospitalCtx(ctx), hospitalID, patientID, "Asha Rao", "1990-04-12", "Chennai")
    require.NoError(t, err)
}

func seedDoctor(t *testing.T, ctx *testContext) {
    t.Helper()
    _, err := new(EntityRegistryContract).CreateDoctor(hospitalCtx(ctx), hospitalID, doctorID, "Dr. Mehta", "cardiology", "Chennai")
    require.NoError(t, err)
}

// seedPatientWithDoctorAccess registers the hospital, patient and doctor and
// has the patient grant the doctor access.
func seedPatientWithDoctorAccess(t *testing.T, ctx *testContext) {
    t.Helper()
    seedPatient(t, ctx)
    seedDoctor(t, ctx)
    _, err := new(ConsentContract).GrantAccess(patientCtx(ctx), patientID, doctorID, models.RoleDoctor)
    require.NoError(t, err)
}

// seedRecord writes a doctor-authored record under the given tx id and
// returns the record id.
func seedRecord(t *testing.T, ctx *testContext, txID, diagnosis, prescription string) string {
    t.Helper()
    resp, err := new(ClinicalRecordContract).AddRecord(doctorCtx(ctx).tx(txID), patientID, diagnosis, prescription)
    require.NoError(t, err)
    require.Equal(t, models.RecordIDPrefix+txID, resp.RecordID)
    return resp.RecordID
}

func requireKind(t *testing.T, err error, kind ccerrors.Kind) {
    t.Helper()
    require.Error(t, err)
    require.Equal(t, kind, ccerrors.KindOf(err), "unexpected error kind for: %v", err)
}
