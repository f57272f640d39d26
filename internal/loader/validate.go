package loader

import "github.com/specialistvlad/contractexplorer/internal/contract"

// AsContractModule checks v against the contract module shape: a
// contract.Module (or non-nil pointer to one) whose Default client reports a
// contract ID.
func AsContractModule(v any) (m *contract.Module, ok bool) {
	switch t := v.(type) {
	case contract.Module:
		m = &t
	case *contract.Module:
		m = t
	default:
		return nil, false
	}
	if m == nil || m.Default == nil {
		return nil, false
	}

	// A typed-nil client panics here.
	defer func() {
		if recover() != nil {
			m, ok = nil, false
		}
	}()
	if m.Default.Options().ContractID == "" {
		return nil, false
	}
	return m, true
}
