package main

import (
    "log"
    "os"

    "github.com/hyperledger/fabric-chaincode-go/shim"
    "github.com/hyperledger/fabric-contract-api-go/contractapi"

    "github.com/medichain/chaincode/ehr-ledger/contracts"
)

func main() {
    chaincode, err := contractapi.NewChaincode(
        new(contracts.EntityRegistryContract),
        new(contracts.ConsentContract),
        new(contracts.ClinicalRecordContract),
        new(contracts.PharmacyContract),
        new(contracts.FinanceContract),
        new(contracts.QueryContract),
    )
    if err != nil {
        log.Panicf("Error creating EHR ledger chaincode: %v", err)
    }

    // With CHAINCODE_SERVER_ADDRESS set the chaincode runs as an external
    // service; otherwise the peer manages its lifecycle.
    if addr := os.Getenv("CHAINCODE_SERVER_ADDRESS"); addr != "" {
        server := &shim.ChaincodeServer{
            CCID:    os.Getenv("CHAINCODE_ID"),
            Address: addr,
            CC:      chaincode,
            TLSProps: shim.TLSProperties{
                Disabled: true,
            },
        }
        if err := server.Start(); err != nil {
            log.Panicf("Error starting EHR ledger chaincode server: %v", err)
        }
        return
    }

    if err := chaincode.Start(); err != nil {
        log.Panicf("Error starting EHR ledger chaincode: %v", err)
    }
}
