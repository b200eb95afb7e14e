package utils

import (
    "encoding/hex"

    "golang.org/x/crypto/sha3"
)

// DataHash digests clinical content into a hex string stored alongside the
// record, so off-chain copies can be checked against the ledger entry.
func DataHash(parts ...string) string {
    h := sha3.New256()
    for _, p := range parts {
        h.Write([]byte(p))
        h.Write([]byte{0})
    }
    return hex.EncodeToString(h.Sum(nil))
}
