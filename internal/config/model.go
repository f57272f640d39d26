package config

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

// Model is the unified, format-agnostic representation of the explorer
// configuration file. Zero values mean "not set"; defaults are applied by the
// application.
type Model struct {
	Explorer Explorer
	Networks []*Network
	Wallet   *Wallet
}

// Explorer holds the settings of the `explorer` block.
type Explorer struct {
	ContractsDir    string
	Listen          string
	LoadConcurrency int
	MetadataTTL     time.Duration
	ActiveNetwork   string
}

// Network is the format-agnostic representation of a `network` block.
type Network struct {
	ID             string
	Label          string
	Passphrase     string
	RPCURL         string
	HorizonURL     string
	RPCHeaders     map[string]string
	HorizonHeaders map[string]string
}

// Wallet configures the wallet bridge used for signing.
type Wallet struct {
	BridgeURL string
	Timeout   time.Duration
}

// --- Contract Manifest Models ---

// Manifest is the content of one contract manifest file.
type Manifest struct {
	Path      string
	Contracts []*ContractDefinition
}

// ContractDefinition describes a generated contract client.
type ContractDefinition struct {
	Name        string
	ContractID  string
	Description string
	Methods     []*MethodDefinition
}

// MethodDefinition describes one contract method.
type MethodDefinition struct {
	Name        string
	Description string
	ReadOnly    bool
	Args        []*ArgDefinition
}

// ArgDefinition describes one method argument. Kind refines string arguments
// ("address" or "bytes").
type ArgDefinition struct {
	Name        string
	Description string
	Type        cty.Type
	Kind        string
}
