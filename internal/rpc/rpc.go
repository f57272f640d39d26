// Package rpc is a minimal Soroban JSON-RPC client. It only implements the
// calls the explorer needs.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/stellar/go/xdr"
	"resty.dev/v3"
)

// Error is a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error"`
}

// Client sends JSON-RPC requests over a shared resty client.
type Client struct {
	http *resty.Client
}

// New wraps an HTTP client. The caller keeps ownership of hc.
func New(hc *resty.Client) *Client {
	return &Client{http: hc}
}

// Call invokes method on the RPC server at url and decodes the result into out.
func (c *Client) Call(ctx context.Context, url string, headers map[string]string, method string, params, out any) error {
	logger := ctxlog.FromContext(ctx).With("rpc_method", method, "rpc_url", url)
	id := uuid.NewString()

	var body response
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(request{JSONRPC: "2.0", ID: id, Method: method, Params: params}).
		SetResult(&body).
		Post(url)
	if err != nil {
		return fmt.Errorf("rpc %s request failed: %w", method, err)
	}
	if res.IsError() {
		return fmt.Errorf("rpc %s request failed: %s", method, res.Status())
	}
	if body.Error != nil {
		return body.Error
	}
	if body.ID != id {
		logger.Debug("RPC response id mismatch.", "want", id, "got", body.ID)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body.Result, out); err != nil {
		return fmt.Errorf("rpc %s: decoding result: %w", method, err)
	}
	return nil
}

// LedgerEntry is one entry returned by getLedgerEntries. Key and XDR are
// base64 encoded LedgerKey and LedgerEntryData values.
type LedgerEntry struct {
	Key                   string  `json:"key"`
	XDR                   string  `json:"xdr"`
	LastModifiedLedgerSeq uint32  `json:"lastModifiedLedgerSeq"`
	LiveUntilLedgerSeq    *uint32 `json:"liveUntilLedgerSeq,omitempty"`
}

// Data decodes the entry's LedgerEntryData.
func (e LedgerEntry) Data() (xdr.LedgerEntryData, error) {
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(e.XDR, &data); err != nil {
		return data, fmt.Errorf("decoding ledger entry %s: %w", e.Key, err)
	}
	return data, nil
}

// LedgerEntries is the result of getLedgerEntries.
type LedgerEntries struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

// GetLedgerEntries fetches the ledger entries for keys.
func (c *Client) GetLedgerEntries(ctx context.Context, url string, headers map[string]string, keys ...xdr.LedgerKey) (*LedgerEntries, error) {
	encoded := make([]string, len(keys))
	for i, k := range keys {
		b64, err := xdr.MarshalBase64(k)
		if err != nil {
			return nil, fmt.Errorf("encoding ledger key: %w", err)
		}
		encoded[i] = b64
	}

	var out LedgerEntries
	if err := c.Call(ctx, url, headers, "getLedgerEntries", map[string]any{"keys": encoded}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
