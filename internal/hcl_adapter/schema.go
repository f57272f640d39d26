// This file contains the Go structs that map directly to the HCL syntax of
// the explorer configuration file and of contract manifests.

package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// configRoot decodes every top-level block of the explorer configuration.
type configRoot struct {
	Explorer *explorerBlock `hcl:"explorer,block"`
	Networks []*networkBlock `hcl:"network,block"`
	Wallet   *walletBlock    `hcl:"wallet,block"`
}

type explorerBlock struct {
	ContractsDir    *string `hcl:"contracts_dir,optional"`
	Listen          *string `hcl:"listen,optional"`
	LoadConcurrency *int    `hcl:"load_concurrency,optional"`
	MetadataTTL     *string `hcl:"metadata_ttl,optional"`
	ActiveNetwork   *string `hcl:"active_network,optional"`
}

type networkBlock struct {
	ID             string            `hcl:"id,label"`
	Label          *string           `hcl:"label,optional"`
	Passphrase     string            `hcl:"passphrase"`
	RPCURL         string            `hcl:"rpc_url"`
	HorizonURL     *string           `hcl:"horizon_url,optional"`
	RPCHeaders     map[string]string `hcl:"rpc_headers,optional"`
	HorizonHeaders map[string]string `hcl:"horizon_headers,optional"`
}

type walletBlock struct {
	BridgeURL string  `hcl:"bridge_url"`
	Timeout   *string `hcl:"timeout,optional"`
}

// manifestRoot decodes a contract manifest file.
type manifestRoot struct {
	Contracts []*contractBlock `hcl:"contract,block"`
}

type contractBlock struct {
	Name        string         `hcl:"name,label"`
	ContractID  string         `hcl:"contract_id"`
	Description *string        `hcl:"description,optional"`
	Methods     []*methodBlock `hcl:"method,block"`
}

type methodBlock struct {
	Name        string      `hcl:"name,label"`
	Description *string     `hcl:"description,optional"`
	ReadOnly    *bool       `hcl:"read_only,optional"`
	Args        []*argBlock `hcl:"arg,block"`
}

type argBlock struct {
	Name        string         `hcl:"name,label"`
	Description *string        `hcl:"description,optional"`
	Type        hcl.Expression `hcl:"type,optional"`
}
