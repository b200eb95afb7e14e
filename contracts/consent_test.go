package contracts

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
)

func TestGrantAccess(t *testing.T) {
    ctx := newTestContext(models.RolePatient, patientID, models.OrgProviderMSP)
    seedPatient(t, ctx)
    seedDoctor(t, ctx)
    cc := new(ConsentContract)

    _, err := cc.GrantAccess(doctorCtx(ctx), patientID, doctorID, models.RoleDoctor)
    requireKind(t, err, ccerrors.KindUnauthorized)

    _, err = cc.GrantAccess(ctx.as(models.RolePatient, "pat2", models.OrgProviderMSP), patientID, doctorID, models.RoleDoctor)
    requireKind(t, err, ccerrors.KindUnauthorized)

    resp, err := cc.GrantAccess(patientCtx(ctx), patientID, doctorID, models.RoleDoctor)
    require.NoError(t, err)
    assert.True(t, resp.Success)
    assert.Zero(t, resp.RewardBalance)

    patient, err := new(EntityRegistryContract).GetPatient(patientCtx(ctx), patientID)
    require.NoError(t, err)
    assert.Equal(t, []string{doctorID}, patient.AuthorizedEntities)

    consent, err := cc.GetConsent(patientCtx(ctx), patientID, doctorID)
    require.NoError(t, err)
    assert.Equal(t, models.ConsentStatusApproved, consent.Status)
    assert.Equal(t, models.RoleDoctor, consent.EntityRole)
}

func TestGrantAccessIdempotentMembership(t *testing.T) {
    ctx := newTestContext(models.RolePatient, patientID, models.OrgProviderMSP)
    seedPatientWithDoctorAccess(t, ctx)
    cc := new(ConsentContract)

    before, err := new(EntityRegistryContract).GetPatient(patientCtx(ctx), patientID)
    require.NoError(t, err)

    _, err = cc.GrantAccess(patientCtx(ctx), patientID, doctorID, models.RoleDoctor)
    require.NoError(t, err)

    after, err := new(EntityRegistryContract).GetPatient(patientCtx(ctx), patientID)
    require.NoError(t, err)
    assert.Equal(t, []string{doctorID}, after.AuthorizedEntities)
    assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestGrantAccessRewardsResearcherConsent(t *testing.T) {
    ctx := newTestContext(models.RolePatient, patientID, models.OrgProviderMSP)
    seedPatient(t, ctx)
    cc := new(ConsentContract)

    resp, err := cc.GrantAccess(patientCtx(ctx), patientID, researcherID, models.RoleResearcher)
    require.NoError(t, err)
    assert.Equal(t, models.ConsentRewardPoints, resp.RewardBalance)

    // A re-grant credits again; the accumulating balance is the recorded
    // policy.
    resp, err = cc.GrantAccess(patientCtx(ctx), patientID, researcherID, models.RoleResearcher)
    require.NoError(t, err)
    assert.Equal(t, 2*models.ConsentRewardPoints, resp.RewardBalance)

    balance, err := new(FinanceContract).GetRewardBalance(patientCtx(ctx), patientID)
    require.NoError(t, err)
    assert.Equal(t, 2*models.ConsentRewardPoints, balance.Balance)
}

func TestGrantAccessDoctorEarnsNoReward(t *testing.T) {
    ctx := newTestContext(models.RolePatient, patientID, models.OrgProviderMSP)
    seedPatient(t, ctx)
    seedDoctor(t, ctx)

    _, err := new(ConsentContract).GrantAccess(patientCtx(ctx), patientID, doctorID, models.RoleDoctor)
    require.NoError(t, err)

    balance, err := new(FinanceContract).GetRewardBalance(patientCtx(ctx), patientID)
    require.NoError(t, err)
    assert.Equal(t, 0, balance.Balance)
}

func TestGetConsentNotFound(t *testing.T) {
    ctx := newTestContext(models.RolePatient, patientID, models.OrgProviderMSP)
    seedPatient(t, ctx)

    _, err := new(ConsentContract).GetConsent(patientCtx(ctx), patientID, "nobody")
    requireKind(t, err, ccerrors.KindNotFound)
}
