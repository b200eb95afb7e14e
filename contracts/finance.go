package contracts

import (
    "fmt"
    "time"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
    "github.com/medichain/chaincode/ehr-ledger/models"
    "github.com/medichain/chaincode/ehr-ledger/utils"
)

// FinanceContract manages insurance policies, the claim lifecycle and the
// patient reward balance.
type FinanceContract struct {
    contractapi.Contract
}

// IssueInsurance creates a policy for a patient. Agents are capped at
// models.AgentCoverageCap; administrators are not.
func (fc *FinanceContract) IssueInsurance(ctx contractapi.TransactionContextInterface, policyNumber, patientID, coverageAmount, insuranceCompany string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "policyNumber":     policyNumber,
        "patientId":        patientID,
        "coverageAmount":   coverageAmount,
        "insuranceCompany": insuranceCompany,
    }, "policyNumber", "patientId", "coverageAmount", "insuranceCompany"); err != nil {
        return nil, err
    }

    coverage, err := utils.ParsePositiveInt("coverageAmount", coverageAmount)
    if err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleInsuranceAdmin, models.RoleInsuranceAgent); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgPayerMSP); err != nil {
        return nil, err
    }

    if _, err := loadPatient(ctx, patientID); err != nil {
        return nil, err
    }

    key, err := utils.PolicyKey(ctx, policyNumber)
    if err != nil {
        return nil, err
    }
    found, err := exists(ctx, key)
    if err != nil {
        return nil, err
    }
    if found {
        return nil, ccerrors.Conflictf("policy %s already exists", policyNumber)
    }

    if caller.Role == models.RoleInsuranceAgent && coverage > models.AgentCoverageCap {
        return nil, ccerrors.BusinessRulef("agents may not issue coverage above %d, got %d", models.AgentCoverageCap, coverage)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    policy := models.InsurancePolicy{
        DocType:          models.DocTypeInsurance,
        PolicyNumber:     policyNumber,
        InsuranceID:      caller.UniqueID,
        InsuranceCompany: insuranceCompany,
        PatientID:        patientID,
        CoverageAmount:   coverage,
        Claims:           []string{},
        CreatedAt:        now,
    }
    if err := putJSON(ctx, key, &policy); err != nil {
        return nil, err
    }

    emitEvent(ctx, "InsuranceIssued", &policy)
    return models.OK("policy " + policyNumber + " issued"), nil
}

// CreateClaim opens a PENDING claim against a policy. The claimant is always
// the calling patient; the patient id is never taken from request input.
func (fc *FinanceContract) CreateClaim(ctx contractapi.TransactionContextInterface, policyNumber, amount, reason string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "policyNumber": policyNumber,
        "amount":       amount,
        "reason":       reason,
    }, "policyNumber", "amount", "reason"); err != nil {
        return nil, err
    }

    claimAmount, err := utils.ParsePositiveInt("amount", amount)
    if err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePatient); err != nil {
        return nil, err
    }

    policyKey, err := utils.PolicyKey(ctx, policyNumber)
    if err != nil {
        return nil, err
    }
    var policy models.InsurancePolicy
    found, err := getJSON(ctx, policyKey, &policy)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("policy %s does not exist", policyNumber)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    claimID := models.ClaimIDPrefix + ctx.GetStub().GetTxID()
    claim := models.Claim{
        DocType:          models.DocTypeClaim,
        ClaimID:          claimID,
        PolicyNumber:     policyNumber,
        PatientID:        caller.UniqueID,
        InsuranceID:      policy.InsuranceID,
        InsuranceCompany: policy.InsuranceCompany,
        Amount:           claimAmount,
        Reason:           reason,
        Status:           models.ClaimStatusPending,
        RequestedAt:      now,
    }

    claimKey, err := utils.ClaimKey(ctx, claimID)
    if err != nil {
        return nil, err
    }
    if err := putJSON(ctx, claimKey, &claim); err != nil {
        return nil, err
    }

    emitEvent(ctx, "ClaimCreated", &claim)
    resp := models.OK("claim filed against policy " + policyNumber)
    resp.ClaimID = claimID
    return resp, nil
}

// ApproveClaim moves a claim from PENDING to APPROVED. The transition is
// one-way; approving an already-approved claim is an error. Approval is
// restricted to insurer-side roles, a tightening over the earlier policy
// that relied on endpoint-level gating alone.
func (fc *FinanceContract) ApproveClaim(ctx contractapi.TransactionContextInterface, claimID string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "claimId": claimID,
    }, "claimId"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleInsuranceAdmin, models.RoleInsuranceAgent); err != nil {
        return nil, err
    }
    if err := requireOrg(caller, models.OrgPayerMSP); err != nil {
        return nil, err
    }

    claimKey, err := utils.ClaimKey(ctx, claimID)
    if err != nil {
        return nil, err
    }
    var claim models.Claim
    found, err := getJSON(ctx, claimKey, &claim)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("claim %s does not exist", claimID)
    }
    if claim.IsApproved() {
        return nil, ccerrors.BusinessRulef("claim %s is already approved", claimID)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }
    claim.Status = models.ClaimStatusApproved
    claim.ApprovedAt = &now

    if err := putJSON(ctx, claimKey, &claim); err != nil {
        return nil, err
    }

    emitEvent(ctx, "ClaimApproved", &claim)
    return models.OK("claim " + claimID + " approved"), nil
}

// CreditReward credits reward points to a patient. Researchers and insurance
// administrators may credit any patient; patients may only credit themselves.
func (fc *FinanceContract) CreditReward(ctx contractapi.TransactionContextInterface, patientID, points string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
        "points":    points,
    }, "patientId", "points"); err != nil {
        return nil, err
    }

    amount, err := utils.ParsePositiveInt("points", points)
    if err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RoleResearcher, models.RoleInsuranceAdmin, models.RolePatient); err != nil {
        return nil, err
    }
    if caller.Role == models.RolePatient && caller.UniqueID != patientID {
        return nil, ccerrors.Unauthorizedf("patient %s cannot credit rewards to patient %s", caller.UniqueID, patientID)
    }

    if _, err := loadPatient(ctx, patientID); err != nil {
        return nil, err
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }

    balance, err := creditRewardBalance(ctx, patientID, amount, now)
    if err != nil {
        return nil, err
    }

    resp := models.OK(fmt.Sprintf("credited %d points to patient %s", amount, patientID))
    resp.RewardBalance = balance
    return resp, nil
}

// UseReward debits reward points from the calling patient's balance.
func (fc *FinanceContract) UseReward(ctx contractapi.TransactionContextInterface, patientID, amount string) (*models.TxResponse, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
        "amount":    amount,
    }, "patientId", "amount"); err != nil {
        return nil, err
    }

    points, err := utils.ParsePositiveInt("amount", amount)
    if err != nil {
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
        return nil, ccerrors.Unauthorizedf("patient %s cannot spend rewards of patient %s", caller.UniqueID, patientID)
    }

    key, err := utils.RewardKey(ctx, patientID)
    if err != nil {
        return nil, err
    }
    var reward models.RewardBalance
    found, err := getJSON(ctx, key, &reward)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("no reward balance for patient %s", patientID)
    }
    if reward.Balance < points {
        return nil, ccerrors.BusinessRulef("insufficient reward balance: have %d, need %d", reward.Balance, points)
    }

    now, err := utils.TxTime(ctx)
    if err != nil {
        return nil, err
    }
    reward.Balance -= points
    reward.UpdatedAt = now

    if err := putJSON(ctx, key, &reward); err != nil {
        return nil, err
    }

    emitEvent(ctx, "RewardUsed", &reward)
    resp := models.OK(fmt.Sprintf("debited %d points", points))
    resp.RewardBalance = reward.Balance
    return resp, nil
}

// GetRewardBalance reads a patient's reward balance. Patients see only their
// own; hospital, researcher and insuranceAdmin callers are also permitted.
func (fc *FinanceContract) GetRewardBalance(ctx contractapi.TransactionContextInterface, patientID string) (*models.RewardBalance, error) {
    if err := utils.RequireFields(map[string]string{
        "patientId": patientID,
    }, "patientId"); err != nil {
        return nil, err
    }

    caller, err := resolveCaller(ctx)
    if err != nil {
        return nil, err
    }
    if err := requireRole(caller, models.RolePatient, models.RoleHospital, models.RoleResearcher, models.RoleInsuranceAdmin); err != nil {
        return nil, err
    }
    if caller.Role == models.RolePatient && caller.UniqueID != patientID {
        return nil, ccerrors.Unauthorizedf("patient %s cannot view rewards of patient %s", caller.UniqueID, patientID)
    }

    key, err := utils.RewardKey(ctx, patientID)
    if err != nil {
        return nil, err
    }
    var reward models.RewardBalance
    found, err := getJSON(ctx, key, &reward)
    if err != nil {
        return nil, err
    }
    if !found {
        return nil, ccerrors.NotFoundf("no reward balance for patient %s", patientID)
    }
    return &reward, nil
}

// creditRewardBalance re-reads and credits a patient's balance within the
// current transaction, creating the balance document if registration
// predates reward tracking.
func creditRewardBalance(ctx contractapi.TransactionContextInterface, patientID string, points int, now time.Time) (int, error) {
    key, err := utils.RewardKey(ctx, patientID)
    if err != nil {
        return 0, err
    }

    reward := models.RewardBalance{
        DocType:   models.DocTypeReward,
        PatientID: patientID,
    }
    if _, err := getJSON(ctx, key, &reward); err != nil {
        return 0, err
    }

    reward.Balance += points
    reward.UpdatedAt = now

    if err := putJSON(ctx, key, &reward); err != nil {
        return 0, err
    }
    return reward.Balance, nil
}
