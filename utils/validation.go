package utils

import (
    "strconv"
    "strings"

    "github.com/medichain/chaincode/ehr-ledger/ccerrors"
)

// RequireFields rejects if any of the named fields is empty. Field names
// appear in the error message so callers can see which input was missing.
func RequireFields(fields map[string]string, names ...string) error {
    for _, name := range names {
        if strings.TrimSpace(fields[name]) == "" {
            return ccerrors.Validationf("missing required field: %s", name)
        }
    }
    return nil
}

// ParseNonNegativeInt parses a numeric input field and rejects negatives.
func ParseNonNegativeInt(name, value string) (int, error) {
    n, err := strconv.Atoi(strings.TrimSpace(value))
    if err != nil {
        return 0, ccerrors.Validationf("field %s must be an integer, got %q", name, value)
    }
    if n < 0 {
        return 0, ccerrors.Validationf("field %s must not be negative, got %d", name, n)
    }
    return n, nil
}

// ParsePositiveInt parses a numeric input field and rejects zero and
// negatives.
func ParsePositiveInt(name, value string) (int, error) {
    n, err := ParseNonNegativeInt(name, value)
    if err != nil {
        return 0, err
    }
    if n == 0 {
        return 0, ccerrors.Validationf("field %s must be positive", name)
    }
    return n, nil
}
