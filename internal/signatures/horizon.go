package signatures

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"resty.dev/v3"
)

// Signer types reported by Horizon.
const (
	signerEd25519 = "ed25519_public_key"
	signerHashX   = "sha256_hash"
)

// Signer is one entry of an account's signer list.
type Signer struct {
	Key    string `json:"key"`
	Weight int    `json:"weight"`
	Type   string `json:"type"`
}

// Horizon reads account signers from a Horizon server.
type Horizon struct {
	http *resty.Client
}

// NewHorizon wraps an HTTP client. The caller keeps ownership of hc.
func NewHorizon(hc *resty.Client) *Horizon {
	return &Horizon{http: hc}
}

// Signers returns the signers of accountID.
func (h *Horizon) Signers(ctx context.Context, horizonURL string, headers map[string]string, accountID string) ([]Signer, error) {
	var account struct {
		Signers []Signer `json:"signers"`
	}
	endpoint := strings.TrimRight(horizonURL, "/") + "/accounts/" + url.PathEscape(accountID)

	res, err := h.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&account).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("loading account %s: %w", accountID, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("loading account %s: horizon responded %s", accountID, res.Status())
	}
	return account.Signers, nil
}
