// Package soroban builds the ledger keys the explorer looks up and decodes the
// ledger entries and wasm meta sections it reads back, on top of the Stellar
// XDR definitions.
package soroban

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// ErrNotWasm is returned when a contract instance is backed by the built-in
// Stellar Asset Contract rather than uploaded wasm.
var ErrNotWasm = errors.New("contract is not a wasm contract")

// ContractID decodes a C... strkey.
func ContractID(address string) (xdr.ContractId, error) {
	var id xdr.ContractId
	raw, err := strkey.Decode(strkey.VersionByteContract, address)
	if err != nil {
		return id, err
	}
	copy(id[:], raw)
	return id, nil
}

// ContractAddress renders a contract id as a C... strkey.
func ContractAddress(id [32]byte) string {
	return strkey.MustEncode(strkey.VersionByteContract, id[:])
}

func contractAddress(id xdr.ContractId) xdr.ScAddress {
	return xdr.ScAddress{Type: xdr.ScAddressTypeScAddressTypeContract, ContractId: &id}
}

// ContractInstanceKey is the key of the persistent instance entry of a
// contract.
func ContractInstanceKey(id xdr.ContractId) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.LedgerKeyContractData{
			Contract:   contractAddress(id),
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
		},
	}
}

// ContractCodeKey is the key of the code entry holding the wasm with the
// given hash.
func ContractCodeKey(hash xdr.Hash) xdr.LedgerKey {
	return xdr.LedgerKey{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.LedgerKeyContractCode{Hash: hash},
	}
}

// WasmHash returns the hash of the wasm executable of a contract instance
// entry.
func WasmHash(entry xdr.LedgerEntryData) (xdr.Hash, error) {
	data, ok := entry.GetContractData()
	if !ok {
		return xdr.Hash{}, fmt.Errorf("expected contract data entry, got %s", entry.Type)
	}
	instance, ok := data.Val.GetInstance()
	if !ok {
		return xdr.Hash{}, fmt.Errorf("expected contract instance value, got %s", data.Val.Type)
	}
	switch instance.Executable.Type {
	case xdr.ContractExecutableTypeContractExecutableWasm:
		return *instance.Executable.WasmHash, nil
	case xdr.ContractExecutableTypeContractExecutableStellarAsset:
		return xdr.Hash{}, ErrNotWasm
	default:
		return xdr.Hash{}, fmt.Errorf("unknown contract executable %s", instance.Executable.Type)
	}
}

// ContractCode returns the wasm bytes of a contract code entry.
func ContractCode(entry xdr.LedgerEntryData) ([]byte, error) {
	code, ok := entry.GetContractCode()
	if !ok {
		return nil, fmt.Errorf("expected contract code entry, got %s", entry.Type)
	}
	return code.Code, nil
}

// DecodeContractMeta decodes a stream of SCMetaEntry values as found in the
// "contractmetav0" wasm custom section.
func DecodeContractMeta(data []byte) ([]xdr.ScMetaV0, error) {
	var out []xdr.ScMetaV0
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var entry xdr.ScMetaEntry
		if _, err := xdr.Unmarshal(r, &entry); err != nil {
			return nil, fmt.Errorf("decoding contract meta entry %d: %w", len(out), err)
		}
		v0, ok := entry.GetV0()
		if !ok {
			return nil, fmt.Errorf("unknown contract meta kind %d", entry.Kind)
		}
		out = append(out, v0)
	}
	return out, nil
}

// DecodeEnvMeta decodes a stream of SCEnvMetaEntry values. The last
// interface version entry wins; nil means the stream held none.
func DecodeEnvMeta(data []byte) (*xdr.ScEnvMetaEntryInterfaceVersion, error) {
	var out *xdr.ScEnvMetaEntryInterfaceVersion
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		var entry xdr.ScEnvMetaEntry
		if _, err := xdr.Unmarshal(r, &entry); err != nil {
			return nil, fmt.Errorf("decoding env meta entry: %w", err)
		}
		v, ok := entry.GetInterfaceVersion()
		if !ok {
			return nil, fmt.Errorf("unknown env meta kind %d", entry.Kind)
		}
		out = &v
	}
	return out, nil
}

// NativeAssetContractID derives the C... address of the native asset's
// Stellar Asset Contract on the network identified by passphrase.
func NativeAssetContractID(passphrase string) (string, error) {
	id, err := xdr.MustNewNativeAsset().ContractID(passphrase)
	if err != nil {
		return "", fmt.Errorf("deriving native asset contract id: %w", err)
	}
	return ContractAddress(id), nil
}

// InstanceEntry builds the ledger entry of a wasm-backed contract instance
// with empty storage.
func InstanceEntry(id xdr.ContractId, wasmHash xdr.Hash) xdr.LedgerEntryData {
	return xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract:   contractAddress(id),
			Key:        xdr.ScVal{Type: xdr.ScValTypeScvLedgerKeyContractInstance},
			Durability: xdr.ContractDataDurabilityPersistent,
			Val: xdr.ScVal{
				Type: xdr.ScValTypeScvContractInstance,
				Instance: &xdr.ScContractInstance{
					Executable: xdr.ContractExecutable{
						Type:     xdr.ContractExecutableTypeContractExecutableWasm,
						WasmHash: &wasmHash,
					},
				},
			},
		},
	}
}

// CodeEntry builds the ledger entry of uploaded wasm.
func CodeEntry(hash xdr.Hash, code []byte) xdr.LedgerEntryData {
	return xdr.LedgerEntryData{
		Type:         xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.ContractCodeEntry{Hash: hash, Code: code},
	}
}

// EncodeContractMeta is the inverse of DecodeContractMeta.
func EncodeContractMeta(entries ...xdr.ScMetaV0) ([]byte, error) {
	var buf bytes.Buffer
	for i := range entries {
		entry := xdr.ScMetaEntry{Kind: xdr.ScMetaKindScMetaV0, V0: &entries[i]}
		if _, err := xdr.Marshal(&buf, entry); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// EncodeEnvMeta is the inverse of DecodeEnvMeta for a single entry.
func EncodeEnvMeta(protocol, preRelease uint32) ([]byte, error) {
	return xdr.ScEnvMetaEntry{
		Kind: xdr.ScEnvMetaKindScEnvMetaKindInterfaceVersion,
		InterfaceVersion: &xdr.ScEnvMetaEntryInterfaceVersion{
			Protocol:   xdr.Uint32(protocol),
			PreRelease: xdr.Uint32(preRelease),
		},
	}.MarshalBinary()
}
