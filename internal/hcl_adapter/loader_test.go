package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/contractexplorer/internal/config"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// writeFile writes content to name inside a fresh temp dir and returns the path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeFile(t, "explorer.hcl", `
explorer {
  contracts_dir    = "src/contracts"
  listen           = ":8700"
  load_concurrency = 4
  metadata_ttl     = "2m"
  active_network   = "testnet"
}

network "testnet" {
  label       = "Testnet"
  passphrase  = "Test SDF Network ; September 2015"
  rpc_url     = "https://soroban-testnet.stellar.org"
  horizon_url = "https://horizon-testnet.stellar.org"
  rpc_headers = { "X-Api-Key" = "secret" }
}

network "futurenet" {
  passphrase = "Test SDF Future Network ; October 2022"
  rpc_url    = "https://rpc-futurenet.stellar.org"
}

wallet {
  bridge_url = "http://localhost:3001/wallet"
  timeout    = "30s"
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, config.Explorer{
		ContractsDir:    "src/contracts",
		Listen:          ":8700",
		LoadConcurrency: 4,
		MetadataTTL:     2 * time.Minute,
		ActiveNetwork:   "testnet",
	}, model.Explorer)

	require.Len(t, model.Networks, 2)
	assert.Equal(t, "Testnet", model.Networks[0].Label)
	assert.Equal(t, map[string]string{"X-Api-Key": "secret"}, model.Networks[0].RPCHeaders)
	assert.Equal(t, "futurenet", model.Networks[1].Label, "label defaults to the block id")
	assert.Empty(t, model.Networks[1].HorizonURL)

	require.NotNil(t, model.Wallet)
	assert.Equal(t, 30*time.Second, model.Wallet.Timeout)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, &config.Model{}, model)
}

func TestLoad_Errors(t *testing.T) {
	testCases := map[string]string{
		"syntax":       `explorer {`,
		"bad duration": `explorer { metadata_ttl = "soon" }`,
		"dup network": `
network "a" {
  passphrase = "x"
  rpc_url    = "y"
}
network "a" {
  passphrase = "x"
  rpc_url    = "y"
}`,
		"missing rpc":   `network "a" { passphrase = "x" }`,
		"unknown block": `server { port = 1 }`,
	}
	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().Load(context.Background(), writeFile(t, "explorer.hcl", content))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := writeFile(t, "token.hcl", `
contract "token" {
  contract_id = "CA3D5KRYM6CB7OWQ6TWYRR3Z4T7GNZLKERYNZGGA5SOAOPIFY6YQGAXE"
  description = "Fungible token"

  method "transfer" {
    description = "Move tokens"
    arg "from"   { type = address }
    arg "to"     { type = address }
    arg "amount" { type = number }
    arg "memo"   { type = bytes }
  }

  method "balance" {
    read_only = true
    arg "id" { type = address }
  }

  method "configure" {
    arg "limits" { type = map(number) }
    arg "owners" { type = list(address) }
    arg "opts"   { type = object({ flag = bool, "name" = string }) }
    arg "extra"  {}
  }
}
`)

	m, err := NewLoader().LoadManifest(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, m.Contracts, 1)

	c := m.Contracts[0]
	assert.Equal(t, "token", c.Name)
	assert.Equal(t, "Fungible token", c.Description)
	require.Len(t, c.Methods, 3)

	transfer := c.Methods[0]
	assert.False(t, transfer.ReadOnly)
	require.Len(t, transfer.Args, 4)
	assert.Equal(t, &config.ArgDefinition{Name: "from", Type: cty.String, Kind: contract.KindAddress}, transfer.Args[0])
	assert.Equal(t, cty.Number, transfer.Args[2].Type)
	assert.Equal(t, contract.KindBytes, transfer.Args[3].Kind)

	assert.True(t, c.Methods[1].ReadOnly)

	configure := c.Methods[2].Args
	assert.True(t, configure[0].Type.Equals(cty.Map(cty.Number)))
	assert.True(t, configure[1].Type.Equals(cty.List(cty.String)))
	assert.Empty(t, configure[1].Kind, "kind is only reported for top-level types")
	assert.True(t, configure[2].Type.Equals(cty.Object(map[string]cty.Type{"flag": cty.Bool, "name": cty.String})))
	assert.Equal(t, cty.DynamicPseudoType, configure[3].Type)
}

func TestLoadManifest_NoContract(t *testing.T) {
	m, err := NewLoader().LoadManifest(context.Background(), writeFile(t, "empty.hcl", "# nothing here\n"))
	require.NoError(t, err)
	assert.Empty(t, m.Contracts)
}

func TestLoadManifest_Errors(t *testing.T) {
	testCases := map[string]string{
		"syntax":       `contract "x" {`,
		"unknown type": `
contract "x" {
  contract_id = "C"
  method "m" {
    arg "a" { type = float }
  }
}`,
		"dup method": `
contract "x" {
  contract_id = "C"
  method "m" {}
  method "m" {}
}`,
		"dup arg": `
contract "x" {
  contract_id = "C"
  method "m" {
    arg "a" { type = string }
    arg "a" { type = number }
  }
}`,
		"any in list":  `
contract "x" {
  contract_id = "C"
  method "m" {
    arg "a" { type = list(any) }
  }
}`,
		"missing id":   `contract "x" {}`,
		"bad ctor":     `
contract "x" {
  contract_id = "C"
  method "m" {
    arg "a" { type = tuple(string) }
  }
}`,
		"unknown attr": `
contract "x" {
  contract_id = "C"
  color       = "red"
}`,
	}
	for name, content := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().LoadManifest(context.Background(), writeFile(t, "x.hcl", content))
			assert.Error(t, err)
		})
	}
}
