package testutil

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/contractexplorer/internal/soroban"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// CustomSection is a named wasm custom section.
type CustomSection struct {
	Name string
	Data []byte
}

// Wasm builds a minimal, valid wasm module holding only custom sections.
func Wasm(sections ...CustomSection) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	for _, s := range sections {
		var body []byte
		body = appendULEB(body, uint64(len(s.Name)))
		body = append(body, s.Name...)
		body = append(body, s.Data...)

		out = append(out, 0x00)
		out = appendULEB(out, uint64(len(body)))
		out = append(out, body...)
	}
	return out
}

func appendULEB(b []byte, v uint64) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			c |= 0x80
		}
		b = append(b, c)
		if v == 0 {
			return b
		}
	}
}

// ContractID returns a deterministic contract id and its C... strkey.
func ContractID(seed byte) (xdr.ContractId, string) {
	var id xdr.ContractId
	for i := range id {
		id[i] = seed
	}
	return id, soroban.ContractAddress(id)
}

// AccountID returns the G... strkey of a raw ed25519 public key.
func AccountID(pub []byte) string {
	return strkey.MustEncode(strkey.VersionByteAccountID, pub)
}

// ContractMeta encodes a contractmetav0 section body.
func ContractMeta(kv ...string) []byte {
	entries := make([]xdr.ScMetaV0, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		entries = append(entries, xdr.ScMetaV0{Key: kv[i], Val: kv[i+1]})
	}
	b, err := soroban.EncodeContractMeta(entries...)
	if err != nil {
		panic(err)
	}
	return b
}

// EnvMeta encodes a contractenvmetav0 section body.
func EnvMeta(protocol uint32) []byte {
	b, err := soroban.EncodeEnvMeta(protocol, 0)
	if err != nil {
		panic(err)
	}
	return b
}

// LedgerRPC is a stub Soroban RPC server answering getLedgerEntries from an
// in-memory key/value table.
type LedgerRPC struct {
	*httptest.Server
	Calls atomic.Int32

	mu      sync.Mutex
	entries map[string]string
	headers http.Header
}

// NewLedgerRPC starts a stub RPC server that is closed with the test.
func NewLedgerRPC(t *testing.T) *LedgerRPC {
	t.Helper()
	r := &LedgerRPC{entries: make(map[string]string)}
	r.Server = httptest.NewServer(http.HandlerFunc(r.serve))
	t.Cleanup(r.Close)
	return r
}

// Put stores a ledger entry under its key.
func (r *LedgerRPC) Put(key xdr.LedgerKey, data xdr.LedgerEntryData) {
	k, err := xdr.MarshalBase64(key)
	if err != nil {
		panic(err)
	}
	v, err := xdr.MarshalBase64(data)
	if err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[k] = v
}

// PutWasmContract stores the instance and code entries of a wasm contract.
func (r *LedgerRPC) PutWasmContract(id xdr.ContractId, wasm []byte) {
	hash := xdr.Hash(sha256.Sum256(wasm))
	r.Put(soroban.ContractInstanceKey(id), soroban.InstanceEntry(id, hash))
	r.Put(soroban.ContractCodeKey(hash), soroban.CodeEntry(hash, wasm))
}

// LastHeaders returns the headers of the most recent request.
func (r *LedgerRPC) LastHeaders() http.Header {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headers.Clone()
}

func (r *LedgerRPC) serve(w http.ResponseWriter, req *http.Request) {
	r.Calls.Add(1)

	var in struct {
		ID     string `json:"id"`
		Method string `json:"method"`
		Params struct {
			Keys []string `json:"keys"`
		} `json:"params"`
	}
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": in.ID}
	if in.Method != "getLedgerEntries" {
		resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
	} else {
		r.mu.Lock()
		r.headers = req.Header.Clone()
		entries := []map[string]any{}
		for _, k := range in.Params.Keys {
			if v, ok := r.entries[k]; ok {
				entries = append(entries, map[string]any{"key": k, "xdr": v, "lastModifiedLedgerSeq": 1})
			}
		}
		r.mu.Unlock()
		resp["result"] = map[string]any{"entries": entries, "latestLedger": 1}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// HorizonSigner is one entry of an account's signers list.
type HorizonSigner struct {
	Key    string `json:"key"`
	Weight int    `json:"weight"`
	Type   string `json:"type"`
}

// NewHorizon starts a stub Horizon server serving GET /accounts/{id} from
// accounts. Unknown accounts answer 404.
func NewHorizon(t *testing.T, accounts map[string][]HorizonSigner) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts/{id}", func(w http.ResponseWriter, req *http.Request) {
		id := req.PathValue("id")
		signers, ok := accounts[id]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": 404, "title": "Resource Missing"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "account_id": id, "signers": signers})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// NativeContractID returns the native asset contract address for passphrase.
func NativeContractID(t *testing.T, passphrase string) string {
	t.Helper()
	id, err := soroban.NativeAssetContractID(passphrase)
	if err != nil {
		t.Fatal(err)
	}
	return id
}
