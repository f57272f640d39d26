// Package wallet forwards transactions to a wallet for signing.
package wallet

import "context"

// SignOptions tells the wallet which network and account to sign for.
type SignOptions struct {
	NetworkPassphrase string `json:"networkPassphrase"`
	Address           string `json:"address,omitempty"`
}

// SignResult is the wallet's answer.
type SignResult struct {
	SignedTxXDR   string `json:"signedTxXdr"`
	SignerAddress string `json:"signerAddress,omitempty"`
}

// Signer signs base64 XDR transaction envelopes.
type Signer interface {
	SignTransaction(ctx context.Context, xdr string, opts SignOptions) (SignResult, error)
}

// Passthrough is the signer used when no wallet is connected. It returns the
// transaction unchanged.
type Passthrough struct{}

func (Passthrough) SignTransaction(_ context.Context, xdr string, opts SignOptions) (SignResult, error) {
	return SignResult{SignedTxXDR: xdr, SignerAddress: opts.Address}, nil
}
