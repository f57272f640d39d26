package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/metadata"
	"github.com/specialistvlad/contractexplorer/internal/metrics"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/testutil"
	"github.com/specialistvlad/contractexplorer/internal/view"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fakeClient struct{ id string }

func (c *fakeClient) ContractID() string { return c.id }
func (c *fakeClient) Options() contract.Options {
	return contract.Options{ContractID: c.id, RPCURL: "http://rpc.test"}
}
func (c *fakeClient) Methods() []contract.Method {
	return []contract.Method{{
		Name:     "balance",
		ReadOnly: true,
		Args: []contract.Arg{
			{Name: "id", Type: cty.String, Kind: contract.KindAddress},
			{Name: "limit", Type: cty.Number},
		},
	}}
}

type fakeContracts struct {
	res     *loader.Result
	reloads atomic.Int32
}

func (f *fakeContracts) Contracts() *loader.Result { return f.res }
func (f *fakeContracts) Reload(context.Context) *loader.Result {
	f.reloads.Add(1)
	return f.res
}

type fakeMetadata struct{ err error }

func (f fakeMetadata) Load(_ context.Context, contractID, _ string, _ map[string]string) (*metadata.Metadata, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &metadata.Metadata{
		ContractID:   contractID,
		ContractMeta: map[string]string{"rsver": "1.81.0"},
		EnvMeta:      map[string]string{"protocol": "22"},
	}, nil
}

type fakeChecker struct{ req signatures.Request }

func (f *fakeChecker) Check(_ context.Context, req signatures.Request) ([]signatures.Signature, error) {
	f.req = req
	if req.EnvelopeXDR == "bad" {
		return nil, errors.New("there was a problem checking transaction signatures: bad envelope")
	}
	return []signatures.Signature{{Hint: "abcd", Valid: true}}, nil
}

var tokenID = strkey.MustEncode(strkey.VersionByteContract, make([]byte, 32))

type fixture struct {
	handler   http.Handler
	contracts *fakeContracts
	checker   *fakeChecker
	logs      *testutil.SafeBuffer
	metrics   *metrics.Metrics
}

func setup(t *testing.T, md MetadataLoader) *fixture {
	t.Helper()

	testnet := network.Network{ID: "testnet", Label: "Testnet", Passphrase: "Test SDF Network ; September 2015",
		RPCURL: "https://soroban-testnet.stellar.org", HorizonURL: "https://horizon-testnet.stellar.org",
		HorizonHeaders: map[string]string{"X-Api-Key": "k"}}
	provider, err := network.NewProvider([]network.Network{network.Default(), testnet}, "")
	require.NoError(t, err)

	f := &fixture{
		contracts: &fakeContracts{res: &loader.Result{
			Loaded:   map[string]*contract.Module{"token": {Default: &fakeClient{id: tokenID}}},
			Failed:   map[string]string{"broken": loader.MsgInvalidModule},
			Names:    []string{"token", "broken"},
			Shadowed: []string{},
		}},
		checker: &fakeChecker{},
		logs:    &testutil.SafeBuffer{},
		metrics: metrics.New(),
	}
	f.handler = New(Deps{
		Contracts:  f.contracts,
		Networks:   provider,
		Metadata:   md,
		Signatures: f.checker,
		Metrics:    f.metrics,
		Logger:     slog.New(slog.NewTextHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestServer_Enabled(t *testing.T) {
	assert.True(t, Enabled)
}

func TestServer_HealthAndRequestID(t *testing.T) {
	f := setup(t, fakeMetadata{})

	rec, _ := f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(HeaderRequestID, "fixed-id")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(HeaderRequestID))
	assert.Contains(t, f.logs.String(), "request_id=fixed-id")
}

func TestServer_Contracts(t *testing.T) {
	f := setup(t, fakeMetadata{})

	rec, body := f.do(t, http.MethodGet, "/api/contracts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"token", "broken"}, body["names"])
	assert.Equal(t, map[string]any{"token": tokenID}, body["loaded"])
	assert.Equal(t, map[string]any{"broken": "Invalid contract module"}, body["failed"])

	rec, body = f.do(t, http.MethodGet, "/api/contracts/token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tokenID, body["contractId"])
	methods := body["methods"].([]any)
	require.Len(t, methods, 1)
	args := methods[0].(map[string]any)["args"].([]any)
	assert.Equal(t, "address", args[0].(map[string]any)["type"])
	assert.Equal(t, "number", args[1].(map[string]any)["type"])

	_, body = f.do(t, http.MethodGet, "/api/contracts/broken", "")
	assert.Equal(t, "Invalid contract module", body["failure"])

	rec, _ = f.do(t, http.MethodGet, "/api/contracts/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/contracts/reload", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), f.contracts.reloads.Load())
}

func TestServer_Metadata(t *testing.T) {
	f := setup(t, fakeMetadata{})
	rec, body := f.do(t, http.MethodGet, "/api/contracts/token/metadata", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rows := body["rows"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, map[string]any{"type": metadata.RowContractMeta, "key": "rsver", "value": "1.81.0"}, rows[0])

	f = setup(t, fakeMetadata{err: errors.New("rpc down")})
	rec, body = f.do(t, http.MethodGet, "/api/contracts/token/metadata", "")
	require.Equal(t, http.StatusOK, rec.Code)
	notice := body["notice"].(map[string]any)
	assert.Equal(t, "Error loading metadata", notice["title"])
	assert.Equal(t, "Could not load metadata for contract "+tokenID+" at the following RPC URL: http://rpc.test", notice["message"])
	assert.Equal(t, "rpc down", body["error"])

	rec, _ = f.do(t, http.MethodGet, "/api/contracts/broken/metadata", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Validate(t *testing.T) {
	f := setup(t, fakeMetadata{})

	rec, body := f.do(t, http.MethodPost, "/api/contracts/token/validate",
		`{"method":"balance","args":{"id":"`+tokenID+`","limit":"10"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"id": tokenID, "limit": float64(10)}, body["args"])

	rec, body = f.do(t, http.MethodPost, "/api/contracts/token/validate", `{"method":"balance","args":{"id":"nope"}}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "id")
	assert.Equal(t, "value is required", fields["limit"])

	rec, _ = f.do(t, http.MethodPost, "/api/contracts/token/validate", `{"method":"mint","args":{}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/contracts/token/validate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Networks(t *testing.T) {
	f := setup(t, fakeMetadata{})

	_, body := f.do(t, http.MethodGet, "/api/network", "")
	assert.Equal(t, "local", body["id"])

	_, body = f.do(t, http.MethodGet, "/api/lab-url", "")
	assert.True(t, strings.HasPrefix(body["url"].(string), "http://localhost:8000/lab/transaction-dashboard?$=network$"))

	rec, body := f.do(t, http.MethodPut, "/api/network/testnet", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "testnet", body["id"])
	assert.Equal(t, int32(1), f.contracts.reloads.Load())

	_, body = f.do(t, http.MethodGet, "/api/networks", "")
	assert.Equal(t, "testnet", body["active"])
	assert.Len(t, body["networks"], 2)

	rec, _ = f.do(t, http.MethodPut, "/api/network/mainnet", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_SignAndSignatures(t *testing.T) {
	f := setup(t, fakeMetadata{})
	_, _ = f.do(t, http.MethodPut, "/api/network/testnet", "")

	rec, body := f.do(t, http.MethodPost, "/api/sign", `{"xdr":"AAAA","address":"GABC"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAAA", body["signedTxXdr"])

	rec, body = f.do(t, http.MethodPost, "/api/signatures", `{"xdr":"AAAA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["signatures"], 1)
	assert.Equal(t, "https://horizon-testnet.stellar.org", f.checker.req.HorizonURL)
	assert.Equal(t, map[string]string{"X-Api-Key": "k"}, f.checker.req.Headers)

	rec, _ = f.do(t, http.MethodPost, "/api/signatures", `{"xdr":"bad"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_UI(t *testing.T) {
	f := setup(t, fakeMetadata{})

	_, body := f.do(t, http.MethodGet, "/api/ui", "")
	assert.Equal(t, "Open Contract Explorer", body["title"])
	panel := body["panel"].(map[string]any)
	assert.Equal(t, string(view.ScreenContract), panel["screen"])
	assert.Equal(t, "token", panel["selected"])

	_, body = f.do(t, http.MethodPost, "/api/ui/toggle", "")
	assert.Equal(t, view.BodyClassOpen, body["bodyClass"])

	_, body = f.do(t, http.MethodPut, "/api/ui/selected/broken", "")
	panel = body["panel"].(map[string]any)
	assert.Equal(t, string(view.ScreenFailed), panel["screen"])
	assert.Equal(t, "Failed to import contract: Invalid contract module", panel["message"])

	rec, _ := f.do(t, http.MethodPut, "/api/ui/selected/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, body = f.do(t, http.MethodPost, "/api/ui/details", "")
	assert.Equal(t, true, body["panel"].(map[string]any)["detailExpanded"])
}

func TestServer_Metrics(t *testing.T) {
	f := setup(t, fakeMetadata{})
	_, _ = f.do(t, http.MethodGet, "/api/contracts", "")

	rec, _ := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `path="/api/contracts"`)
}
