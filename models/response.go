package models

// TxResponse is the success envelope returned by state-mutating operations.
type TxResponse struct {
    Success       bool   `json:"success"`
    Message       string `json:"message"`
    RecordID      string `json:"recordId,omitempty"`
    ClaimID       string `json:"claimId,omitempty"`
    DescriptionID string `json:"descriptionId,omitempty"`
    RewardBalance int    `json:"rewardBalance,omitempty"`
    PreviousStock int    `json:"previousStock,omitempty"`
    NewStock      int    `json:"newStock,omitempty"`
}

// OK builds a success envelope with just a message.
func OK(message string) *TxResponse {
    return &TxResponse{Success: true, Message: message}
}

// PatientWithRecords pairs a patient with their clinical records for the
// per-doctor roster views.
type PatientWithRecords struct {
    Patient *Patient         `json:"patient"`
    Records []*PatientRecord `json:"records"`
}
