package utils

import (
    "github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// Certificate attribute names carried by enrolled identities.
const (
    AttrRole     = "role"
    AttrUniqueID = "uniqueId"
)

// Identity is the resolved caller: role and unique id from certificate
// attributes, organization from the MSP id.
type Identity struct {
    Role     string
    UniqueID string
    MSPID    string
}

// ResolveIdentity extracts the caller identity from the transaction context.
// Missing attributes resolve to empty strings rather than an error; each
// operation re-checks the fields it needs and rejects there, so a caller with
// an incomplete certificate fails at the authorization gate, not here.
func ResolveIdentity(ctx contractapi.TransactionContextInterface) (Identity, error) {
    id := Identity{}

    ci := ctx.GetClientIdentity()

    if role, found, err := ci.GetAttributeValue(AttrRole); err == nil && found {
        id.Role = role
    }
    if uid, found, err := ci.GetAttributeValue(AttrUniqueID); err == nil && found {
        id.UniqueID = uid
    }

    mspID, err := ci.GetMSPID()
    if err != nil {
        return id, err
    }
    id.MSPID = mspID

    return id, nil
}
