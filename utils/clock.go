package utils

import (
    "time"

    "github.com/hyperledger/fabric-contract-api-go/contractapi"
)

// TxTime returns the transaction's logical timestamp as a UTC time.Time.
// Transaction logic must never read the wall clock: the proposal timestamp is
// the same on every endorsing peer, so documents stamped with it serialize
// identically across replicas.
func TxTime(ctx contractapi.TransactionContextInterface) (time.Time, error) {
    ts, err := ctx.GetStub().GetTxTimestamp()
    if err != nil {
        return time.Time{}, err
    }
    return ts.AsTime().UTC(), nil
}
