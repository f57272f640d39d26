package render

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/metadata"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct{}

func (stubClient) ContractID() string         { return "CTOKEN" }
func (stubClient) Options() contract.Options  { return contract.Options{ContractID: "CTOKEN"} }
func (stubClient) Methods() []contract.Method { return nil }

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	m.Run()
}

func TestContracts(t *testing.T) {
	var buf bytes.Buffer
	res := &loader.Result{
		Loaded: map[string]*contract.Module{"token": {Default: stubClient{}}},
		Failed: map[string]string{"broken": "boom"},
		Names:  []string{"token", "broken"},
	}
	require.NoError(t, Contracts(&buf, res))
	out := buf.String()
	assert.Contains(t, out, "CTOKEN")
	assert.Contains(t, out, "boom")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("token")), bytes.Index(buf.Bytes(), []byte("broken")))

	buf.Reset()
	require.NoError(t, Contracts(&buf, &loader.Result{}))
	assert.Equal(t, view.EmptyMessage+"\n", buf.String())
}

func TestMetadataAndSignatures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Metadata(&buf, &metadata.Metadata{
		ContractMeta: map[string]string{"rsver": "1.81.0"},
		EnvMeta:      map[string]string{"protocol": "22"},
	}))
	assert.Contains(t, buf.String(), metadata.RowContractMeta)
	assert.Contains(t, buf.String(), "1.81.0")

	buf.Reset()
	require.NoError(t, Signatures(&buf, []signatures.Signature{{Hint: "a1b2c3d4", Weight: 1, Valid: true}}))
	assert.Contains(t, buf.String(), "a1b2c3d4")
	assert.Contains(t, buf.String(), "unknown")

	buf.Reset()
	require.NoError(t, Signatures(&buf, nil))
	assert.Equal(t, "Transaction has no signatures.\n", buf.String())
}

func TestNetworks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Networks(&buf, []network.Network{network.Default()}, "local"))
	assert.Contains(t, buf.String(), "http://localhost:8000/rpc")
	assert.Contains(t, buf.String(), "*")
}
