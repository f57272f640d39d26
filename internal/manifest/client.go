// Package manifest turns contract manifest files into contract clients and
// exposes a manifest directory as a loader source map.
package manifest

import (
	"fmt"

	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/stellar/go/strkey"
)

// Client is a contract.Client described by a manifest.
type Client struct {
	name        string
	description string
	opts        contract.Options
	methods     []contract.Method
}

var _ contract.Client = (*Client)(nil)

// NewClient builds a client for def bound to net.
func NewClient(def *config.ContractDefinition, net network.Network) (*Client, error) {
	if !strkey.IsValidContractAddress(def.ContractID) {
		return nil, fmt.Errorf("contract '%s': invalid contract_id %q", def.Name, def.ContractID)
	}

	c := &Client{
		name:        def.Name,
		description: def.Description,
		opts: contract.Options{
			ContractID:        def.ContractID,
			NetworkPassphrase: net.Passphrase,
			RPCURL:            net.RPCURL,
		},
	}
	for _, m := range def.Methods {
		method := contract.Method{Name: m.Name, Description: m.Description, ReadOnly: m.ReadOnly}
		for _, a := range m.Args {
			method.Args = append(method.Args, contract.Arg{
				Name:        a.Name,
				Description: a.Description,
				Type:        a.Type,
				Kind:        a.Kind,
			})
		}
		c.methods = append(c.methods, method)
	}
	return c, nil
}

func (c *Client) ContractID() string        { return c.opts.ContractID }
func (c *Client) Options() contract.Options { return c.opts }
func (c *Client) Name() string              { return c.name }
func (c *Client) Description() string       { return c.description }

// Methods returns the declared methods in manifest order.
func (c *Client) Methods() []contract.Method {
	return append([]contract.Method(nil), c.methods...)
}
