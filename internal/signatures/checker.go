// Package signatures reports which signatures a transaction envelope carries
// and whether they are valid signatures of the source account's signers.
package signatures

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ErrInvalidEnvelope is returned when the input does not decode as a
// base64 TransactionEnvelope.
var ErrInvalidEnvelope = errors.New("invalid transaction envelope")

// AccountReader looks up the signers of an account.
type AccountReader interface {
	Signers(ctx context.Context, horizonURL string, headers map[string]string, accountID string) ([]Signer, error)
}

// Request identifies the envelope to check and where to check it.
type Request struct {
	EnvelopeXDR       string            `json:"xdr"`
	NetworkPassphrase string            `json:"networkPassphrase"`
	HorizonURL        string            `json:"horizonUrl"`
	Headers           map[string]string `json:"-"`
}

// Signature is the verdict for one envelope signature.
type Signature struct {
	Hint      string `json:"hint"`
	Signature string `json:"signature"`
	Signer    string `json:"signer,omitempty"`
	Weight    int    `json:"weight"`
	Valid     bool   `json:"valid"`
}

// Checker matches envelope signatures against account signers.
type Checker struct {
	accounts AccountReader
}

// NewChecker creates a Checker backed by accounts.
func NewChecker(accounts AccountReader) *Checker {
	return &Checker{accounts: accounts}
}

// Check decodes the envelope, fetches the source account's signers and
// verifies each signature against the transaction hash.
func (c *Checker) Check(ctx context.Context, req Request) ([]Signature, error) {
	sigs, err := c.check(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("there was a problem checking transaction signatures: %w", err)
	}
	return sigs, nil
}

func (c *Checker) check(ctx context.Context, req Request) ([]Signature, error) {
	var env xdr.TransactionEnvelope
	if err := xdr.SafeUnmarshalBase64(req.EnvelopeXDR, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}
	hash, err := network.HashTransactionInEnvelope(env, req.NetworkPassphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	// Fee-bump envelopes are checked against the fee source.
	source, sigs := env.SourceAccount(), env.Signatures()
	if env.IsFeeBump() {
		source, sigs = env.FeeBumpAccount(), env.FeeBumpSignatures()
	}
	account := source.ToAccountId().Address()
	logger := ctxlog.FromContext(ctx).With("source", account, "envelope_type", env.Type.String(), "signatures", len(sigs))

	signers, err := c.accounts.Signers(ctx, req.HorizonURL, req.Headers, account)
	if err != nil {
		return nil, err
	}
	keys := signerKeys(signers)

	out := make([]Signature, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, verify(s, hash[:], keys))
	}
	logger.Debug("Checked transaction signatures.", "signers", len(keys))
	return out, nil
}

// signerKey is a signer whose key could be decoded. pub is set for ed25519
// signers, preimageHash for sha256 hash(x) signers.
type signerKey struct {
	Signer
	pub          ed25519.PublicKey
	preimageHash []byte
}

func (k signerKey) hint() []byte {
	if k.pub != nil {
		return k.pub[len(k.pub)-4:]
	}
	return k.preimageHash[len(k.preimageHash)-4:]
}

func (k signerKey) verifies(hash []byte, sig []byte) bool {
	if k.pub != nil {
		return ed25519.Verify(k.pub, hash, sig)
	}
	sum := sha256.Sum256(sig)
	return bytes.Equal(sum[:], k.preimageHash)
}

func signerKeys(signers []Signer) []signerKey {
	var keys []signerKey
	for _, s := range signers {
		switch s.Type {
		case signerEd25519:
			pub, err := strkey.Decode(strkey.VersionByteAccountID, s.Key)
			if err != nil || len(pub) != ed25519.PublicKeySize {
				continue
			}
			keys = append(keys, signerKey{Signer: s, pub: pub})
		case signerHashX:
			h, err := strkey.Decode(strkey.VersionByteHashX, s.Key)
			if err != nil || len(h) != sha256.Size {
				continue
			}
			keys = append(keys, signerKey{Signer: s, preimageHash: h})
		}
	}
	return keys
}

// verify reports the first signer whose hint matches and whose key verifies
// the signature. A hint match that fails verification is still attributed.
func verify(s xdr.DecoratedSignature, hash []byte, keys []signerKey) Signature {
	out := Signature{
		Hint:      hex.EncodeToString(s.Hint[:]),
		Signature: base64.StdEncoding.EncodeToString(s.Signature),
	}
	for _, k := range keys {
		if !bytes.Equal(k.hint(), s.Hint[:]) {
			continue
		}
		if k.verifies(hash, s.Signature) {
			out.Signer, out.Weight, out.Valid = k.Key, k.Weight, true
			return out
		}
		if out.Signer == "" {
			out.Signer, out.Weight = k.Key, k.Weight
		}
	}
	return out
}
