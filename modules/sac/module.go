// Package sac provides the built-in client for the native asset's Stellar
// Asset Contract.
package sac

import (
	"context"

	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/registry"
	"github.com/specialistvlad/contractexplorer/internal/soroban"
	"github.com/zclconf/go-cty/cty"
)

// Name is the identifier the native asset contract is loaded under.
const Name = "native"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the native asset contract factory.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterContract(Name, func(ctx context.Context) (any, error) {
		net := r.Network()
		client, err := NewClient(net)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Resolved native asset contract.", "network", net.ID, "contract_id", client.ContractID())
		return &contract.Module{Default: client}, nil
	})
}

// Client describes the Stellar Asset Contract interface of the native asset.
type Client struct {
	opts contract.Options
}

var _ contract.Client = (*Client)(nil)

// NewClient returns the native asset contract client for net.
func NewClient(net network.Network) (*Client, error) {
	id, err := soroban.NativeAssetContractID(net.Passphrase)
	if err != nil {
		return nil, err
	}
	return &Client{opts: contract.Options{
		ContractID:        id,
		NetworkPassphrase: net.Passphrase,
		RPCURL:            net.RPCURL,
	}}, nil
}

func (c *Client) ContractID() string        { return c.opts.ContractID }
func (c *Client) Options() contract.Options { return c.opts }

func address(name string) contract.Arg {
	return contract.Arg{Name: name, Type: cty.String, Kind: contract.KindAddress}
}

// i128 amounts are entered as decimal strings.
var amount = contract.Arg{Name: "amount", Description: "Amount in stroops", Type: cty.String}

// Methods returns the token interface implemented by every Stellar Asset
// Contract.
func (c *Client) Methods() []contract.Method {
	return []contract.Method{
		{Name: "allowance", Description: "Amount spender may transfer from owner", ReadOnly: true,
			Args: []contract.Arg{address("from"), address("spender")}},
		{Name: "approve", Description: "Allow spender to transfer from owner until the given ledger",
			Args: []contract.Arg{address("from"), address("spender"), amount,
				{Name: "expiration_ledger", Type: cty.Number}}},
		{Name: "balance", Description: "Balance of an address", ReadOnly: true,
			Args: []contract.Arg{address("id")}},
		{Name: "decimals", ReadOnly: true},
		{Name: "name", ReadOnly: true},
		{Name: "symbol", ReadOnly: true},
		{Name: "transfer", Description: "Transfer amount from one address to another",
			Args: []contract.Arg{address("from"), address("to"), amount}},
	}
}
