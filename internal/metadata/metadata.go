// Package metadata loads the on-chain metadata of a deployed wasm contract:
// its wasm hash and the entries of its contract-meta and env-meta custom
// sections.
package metadata

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/specialistvlad/contractexplorer/internal/soroban"
)

// Custom section names written by the Soroban SDK.
const (
	SectionContractMeta = "contractmetav0"
	SectionEnvMeta      = "contractenvmetav0"
)

// Row types as shown in the metadata table.
const (
	RowContractMeta = "SCMetaEntry"
	RowEnvMeta      = "SCEnvMetaEntry"
)

// ErrNotWasm is returned for contracts without uploaded wasm, such as
// Stellar Asset Contracts.
var ErrNotWasm = soroban.ErrNotWasm

// Metadata is the decoded metadata of one contract.
type Metadata struct {
	ContractID   string            `json:"contractId"`
	WasmHash     string            `json:"wasmHash"`
	ContractMeta map[string]string `json:"contractMeta"`
	EnvMeta      map[string]string `json:"envMeta"`
}

// Row is one line of the metadata table.
type Row struct {
	Type  string `json:"type"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Rows flattens the metadata into table rows: contract meta first, then env
// meta, keys sorted within each group.
func (m *Metadata) Rows() []Row {
	rows := make([]Row, 0, len(m.ContractMeta)+len(m.EnvMeta))
	rows = appendRows(rows, RowContractMeta, m.ContractMeta)
	rows = appendRows(rows, RowEnvMeta, m.EnvMeta)
	return rows
}

func appendRows(rows []Row, typ string, entries map[string]string) []Row {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		rows = append(rows, Row{Type: typ, Key: k, Value: entries[k]})
	}
	return rows
}

// decodeSections fills the meta maps from raw custom section contents.
// Repeated contract meta keys keep the last value.
func decodeSections(m *Metadata, sections map[string][]byte) error {
	m.ContractMeta = map[string]string{}
	m.EnvMeta = map[string]string{}

	if data, ok := sections[SectionContractMeta]; ok {
		entries, err := soroban.DecodeContractMeta(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", SectionContractMeta, err)
		}
		for _, e := range entries {
			m.ContractMeta[e.Key] = e.Val
		}
	}

	if data, ok := sections[SectionEnvMeta]; ok {
		env, err := soroban.DecodeEnvMeta(data)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", SectionEnvMeta, err)
		}
		if env != nil {
			m.EnvMeta["protocol"] = strconv.FormatUint(uint64(env.Protocol), 10)
			m.EnvMeta["pre_release"] = strconv.FormatUint(uint64(env.PreRelease), 10)
		}
	}
	return nil
}
