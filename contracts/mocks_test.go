package contracts

import (
    "crypto/x509"
    "encoding/json"
    "errors"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/golang/protobuf/ptypes/timestamp"
    "github.com/hyperledger/fabric-chaincode-go/pkg/cid"
    "github.com/hyperledger/fabric-chaincode-go/shim"
    "github.com/hyperledger/fabric-protos-go/ledger/queryresult"
    pb "github.com/hyperledger/fabric-protos-go/peer"
)

const compositeKeySep = "\x00"

// mockStub is an in-memory world state implementing the subset of stub
// behavior the contracts exercise: keyed reads and writes, composite key
// prefix scans, rich queries over top-level string fields, per-key history
// and events. Unsupported surfaces return errors so a test that strays onto
// them fails loudly.
type mockStub struct {
    state   map[string][]byte
    history map[string][]*queryresult.KeyModification
    events  map[string][]byte
    txID    string
    txTime  time.Time
}

func newMockStub() *mockStub {
    return &mockStub{
        state:   map[string][]byte{},
        history: map[string][]*queryresult.KeyModification{},
        events:  map[string][]byte{},
        txID:    "tx0",
        txTime:  time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
    }
}

func (s *mockStub) GetTxID() string      { return s.txID }
func (s *mockStub) GetChannelID() string { return "testchannel" }

func (s *mockStub) GetTxTimestamp() (*timestamp.Timestamp, error) {
    return &timestamp.Timestamp{Seconds: s.txTime.Unix(), Nanos: int32(s.txTime.Nanosecond())}, nil
}

func (s *mockStub) GetState(key string) ([]byte, error) {
    return s.state[key], nil
}

func (s *mockStub) PutState(key string, value []byte) error {
    s.state[key] = value
    s.history[key] = append(s.history[key], &queryresult.KeyModification{
        TxId:      s.txID,
        Value:     value,
        Timestamp: &timestamp.Timestamp{Seconds: s.txTime.Unix()},
    })
    return nil
}

func (s *mockStub) DelState(key string) error {
    delete(s.state, key)
    s.history[key] = append(s.history[key], &queryresult.KeyModification{
        TxId:      s.txID,
        IsDelete:  true,
        Timestamp: &timestamp.Timestamp{Seconds: s.txTime.Unix()},
    })
    return nil
}

func (s *mockStub) CreateCompositeKey(objectType string, attributes []string) (string, error) {
    key := compositeKeySep + objectType + compositeKeySep
    for _, attr := range attributes {
        key += attr + compositeKeySep
    }
    return key, nil
}

func (s *mockStub) SplitCompositeKey(compositeKey string) (string, []string, error) {
    parts := strings.Split(strings.Trim(compositeKey, compositeKeySep), compositeKeySep)
    if len(parts) == 0 {
        return "", nil, errors.New("invalid composite key")
    }
    return parts[0], parts[1:], nil
}

func (s *mockStub) GetStateByPartialCompositeKey(objectType string, keys []string) (shim.StateQueryIteratorInterface, error) {
    prefix, err := s.CreateCompositeKey(objectType, keys)
    if err != nil {
        return nil, err
    }
    return s.scan(func(key string) bool { return strings.HasPrefix(key, prefix) }), nil
}

func (s *mockStub) GetStateByRange(startKey, endKey string) (shim.StateQueryIteratorInterface, error) {
    return s.scan(func(key string) bool {
        if startKey != "" && key < startKey {
            return false
        }
        if endKey != "" && key >= endKey {
            return false
        }
        return true
    }), nil
}

// GetQueryResult evaluates selectors of the shape
// {"selector":{"field":"value",...}} by exact string match against the
// stored documents' top-level fields.
func (s *mockStub) GetQueryResult(query string) (shim.StateQueryIteratorInterface, error) {
    var parsed struct {
        Selector map[string]interface{} `json:"selector"`
    }
    if err := json.Unmarshal([]byte(query), &parsed); err != nil {
        return nil, fmt.Errorf("bad selector query: %v", err)
    }
    return s.scan(func(key string) bool {
        var doc map[string]interface{}
        if err := json.Unmarshal(s.state[key], &doc); err != nil {
            return false
        }
        for field, want := range parsed.Selector {
            if doc[field] != want {
                return false
            }
        }
        return true
    }), nil
}

func (s *mockStub) GetHistoryForKey(key string) (shim.HistoryQueryIteratorInterface, error) {
    return &mockHistoryIterator{mods: s.history[key]}, nil
}

func (s *mockStub) SetEvent(name string, payload []byte) error {
    s.events[name] = payload
    return nil
}

func (s *mockStub) scan(keep func(key string) bool) *mockStateIterator {
    keys := make([]string, 0, len(s.state))
    for key := range s.state {
        if keep(key) {
            keys = append(keys, key)
        }
    }
    sort.Strings(keys)

    kvs := make([]*queryresult.KV, 0, len(keys))
    for _, key := range keys {
        kvs = append(kvs, &queryresult.KV{Key: key, Value: s.state[key]})
    }
    return &mockStateIterator{kvs: kvs}
}

// Surfaces the contracts never touch.

func (s *mockStub) GetArgs() [][]byte                                 { return nil }
func (s *mockStub) GetStringArgs() []string                           { return nil }
func (s *mockStub) GetFunctionAndParameters() (string, []string)      { return "", nil }
func (s *mockStub) GetArgsSlice() ([]byte, error)                     { return nil, nil }
func (s *mockStub) GetDecorations() map[string][]byte                 { return nil }
func (s *mockStub) GetCreator() ([]byte, error)                       { return nil, nil }
func (s *mockStub) GetTransient() (map[string][]byte, error)          { return nil, nil }
func (s *mockStub) GetBinding() ([]byte, error)                       { return nil, nil }
func (s *mockStub) GetSignedProposal() (*pb.SignedProposal, error)    { return nil, nil }
func (s *mockStub) SetStateValidationParameter(string, []byte) error  { return errNotImplemented }
func (s *mockStub) GetStateValidationParameter(string) ([]byte, error) {
    return nil, errNotImplemented
}

func (s *mockStub) InvokeChaincode(string, [][]byte, string) pb.Response {
    return pb.Response{Status: shim.ERROR, Message: "not implemented"}
}

func (s *mockStub) GetStateByRangeWithPagination(string, string, int32, string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
    return nil, nil, errNotImplemented
}

func (s *mockStub) GetStateByPartialCompositeKeyWithPagination(string, []string, int32, string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
    return nil, nil, errNotImplemented
}

func (s *mockStub) GetQueryResultWithPagination(string, int32, string) (shim.StateQueryIteratorInterface, *pb.QueryResponseMetadata, error) {
    return nil, nil, errNotImplemented
}

func (s *mockStub) GetPrivateData(string, string) ([]byte, error)     { return nil, errNotImplemented }
func (s *mockStub) GetPrivateDataHash(string, string) ([]byte, error) { return nil, errNotImplemented }
func (s *mockStub) PutPrivateData(string, string, []byte) error       { return errNotImplemented }
func (s *mockStub) DelPrivateData(string, string) error               { return errNotImplemented }
func (s *mockStub) PurgePrivateData(string, string) error             { return errNotImplemented }

func (s *mockStub) SetPrivateDataValidationParameter(string, string, []byte) error {
    return errNotImplemented
}

func (s *mockStub) GetPrivateDataValidationParameter(string, string) ([]byte, error) {
    return nil, errNotImplemented
}

func (s *mockStub) GetPrivateDataByRange(string, string, string) (shim.StateQueryIteratorInterface, error) {
    return nil, errNotImplemented
}

func (s *mockStub) GetPrivateDataByPartialCompositeKey(string, string, []string) (shim.StateQueryIteratorInterface, error) {
    return nil, errNotImplemented
}

func (s *mockStub) GetPrivateDataQueryResult(string, string) (shim.StateQueryIteratorInterface, error) {
    return nil, errNotImplemented
}

var errNotImplemented = errors.New("not implemented in mock stub")

type mockStateIterator struct {
    kvs []*queryresult.KV
    pos int
}

func (it *mockStateIterator) HasNext() bool { return it.pos < len(it.kvs) }

func (it *mockStateIterator) Next() (*queryresult.KV, error) {
    if !it.HasNext() {
        return nil, errors.New("iterator exhausted")
    }
    kv := it.kvs[it.pos]
    it.pos++
    return kv, nil
}

func (it *mockStateIterator) Close() error { return nil }

type mockHistoryIterator struct {
    mods []*queryresult.KeyModification
    pos  int
}

func (it *mockHistoryIterator) HasNext() bool { return it.pos < len(it.mods) }

func (it *mockHistoryIterator) Next() (*queryresult.KeyModification, error) {
    if !it.HasNext() {
        return nil, errors.New("iterator exhausted")
    }
    mod := it.mods[it.pos]
    it.pos++
    return mod, nil
}

func (it *mockHistoryIterator) Close() error { return nil }

// mockIdentity satisfies cid.ClientIdentity with settable attributes.
type mockIdentity struct {
    id    string
    mspID string
    attrs map[string]string
}

func (m *mockIdentity) GetID() (string, error)    { return m.id, nil }
func (m *mockIdentity) GetMSPID() (string, error) { return m.mspID, nil }

func (m *mockIdentity) GetAttributeValue(attrName string) (string, bool, error) {
    val, ok := m.attrs[attrName]
    return val, ok, nil
}

func (m *mockIdentity) AssertAttributeValue(attrName, attrValue string) error {
    val, ok, _ := m.GetAttributeValue(attrName)
    if !ok || val != attrValue {
        return fmt.Errorf("attribute %s does not have value %s", attrName, attrValue)
    }
    return nil
}

func (m *mockIdentity) GetX509Certificate() (*x509.Certificate, error) {
    return nil, errNotImplemented
}

// testContext wires a mock stub and identity into the transaction context
// the contracts consume.
type testContext struct {
    stub     *mockStub
    identity *mockIdentity
}

func (c *testContext) GetStub() shim.ChaincodeStubInterface { return c.stub }
func (c *testContext) GetClientIdentity() cid.ClientIdentity {
    return c.identity
}

// newTestContext returns a context whose caller has the given role, unique id
// and MSP membership.
func newTestContext(role, uniqueID, mspID string) *testContext {
    return &testContext{
        stub: newMockStub(),
        identity: &mockIdentity{
            id:    "x509::" + uniqueID,
            mspID: mspID,
            attrs: map[string]string{"role": role, "uniqueId": uniqueID},
        },
    }
}

// as returns a sibling context over the same world state for a different
// caller.
func (c *testContext) as(role, uniqueID, mspID string) *testContext {
    return &testContext{
        stub: c.stub,
        identity: &mockIdentity{
            id:    "x509::" + uniqueID,
            mspID: mspID,
            attrs: map[string]string{"role": role, "uniqueId": uniqueID},
        },
    }
}

// tx sets the transaction id used for derived document ids and returns the
// context for chaining.
func (c *testContext) tx(txID string) *testContext {
    c.stub.txID = txID
    return c
}
