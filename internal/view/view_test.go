package view

import (
	"testing"

	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/stellar/go/strkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fakeClient struct {
	id      string
	methods []contract.Method
}

func (c *fakeClient) ContractID() string        { return c.id }
func (c *fakeClient) Options() contract.Options { return contract.Options{ContractID: c.id} }
func (c *fakeClient) Methods() []contract.Method { return c.methods }

var contractAddr = strkey.MustEncode(strkey.VersionByteContract, make([]byte, 32))

func testResult() *loader.Result {
	return &loader.Result{
		Loaded: map[string]*contract.Module{
			"token": {Default: &fakeClient{id: contractAddr}},
		},
		Failed:   map[string]string{"broken": loader.MsgInvalidModule},
		Names:    []string{"token", "broken"},
		Shadowed: []string{},
	}
}

func TestModal(t *testing.T) {
	m := NewModal(false, "")
	assert.Equal(t, PlacementRight, m.Placement)
	assert.Equal(t, "Open Contract Explorer", m.Title())
	assert.Empty(t, m.BodyClass())
	assert.Equal(t, "ContractExplorer__toggle ContractExplorer__toggle--right", m.ToggleClass())

	m.Toggle()
	assert.True(t, m.Open)
	assert.Equal(t, "Close Contract Explorer", m.Title())
	assert.Equal(t, BodyClassOpen, m.BodyClass())

	m.Toggle()
	assert.False(t, m.Open)

	assert.Equal(t, PlacementLeft, NewModal(true, PlacementLeft).Placement)
}

func TestDebugger_SelectsFirstName(t *testing.T) {
	d := &Debugger{}
	p := d.Panel(testResult())

	assert.Equal(t, ScreenContract, p.Screen)
	assert.Equal(t, "token", p.Selected)
	assert.Equal(t, contractAddr, p.ContractID)
	assert.Equal(t, "Show Details", p.DetailsLabel)
	assert.Equal(t, []string{"token", "broken"}, p.Names)

	d.ToggleDetails()
	assert.Equal(t, "Hide Details", d.Panel(testResult()).DetailsLabel)
}

func TestDebugger_Failed(t *testing.T) {
	d := &Debugger{}
	require.NoError(t, d.Select(testResult(), "broken"))

	p := d.Panel(testResult())
	assert.Equal(t, ScreenFailed, p.Screen)
	assert.Equal(t, "broken", p.Selected)
	assert.Equal(t, loader.MsgInvalidModule, p.Failure)
	assert.Equal(t, "Failed to import contract: Invalid contract module", p.Message)
}

func TestDebugger_UnknownAndVanished(t *testing.T) {
	d := &Debugger{}
	assert.ErrorIs(t, d.Select(testResult(), "nope"), ErrUnknownContract)

	d.Selected = "gone"
	d.Sync(testResult())
	assert.Equal(t, "token", d.Selected)
}

func TestDebugger_Empty(t *testing.T) {
	d := &Debugger{Selected: "token"}
	p := d.Panel(&loader.Result{Names: []string{}})

	assert.Equal(t, ScreenEmpty, p.Screen)
	assert.Equal(t, EmptyMessage, p.Message)
	assert.Empty(t, d.Selected)
	assert.Empty(t, p.Names)

	assert.Equal(t, ScreenEmpty, (&Debugger{}).Panel(nil).Screen)
}

func TestForm_Parse(t *testing.T) {
	client := &fakeClient{id: contractAddr, methods: []contract.Method{{
		Name: "deposit",
		Args: []contract.Arg{
			{Name: "to", Type: cty.String, Kind: contract.KindAddress},
			{Name: "amount", Type: cty.Number},
			{Name: "memo", Type: cty.String, Kind: contract.KindBytes},
			{Name: "flags", Type: cty.List(cty.Bool)},
		},
	}}}
	form := NewForm(client)

	values, err := form.Parse("deposit", map[string]string{
		"to":     contractAddr,
		"amount": "125",
		"memo":   "0xdeadbeef",
		"flags":  "[true, false]",
	})
	require.NoError(t, err)
	assert.True(t, values["amount"].Equals(cty.NumberIntVal(125)).True())
	assert.True(t, values["flags"].Equals(cty.ListVal([]cty.Value{cty.True, cty.False})).True())
	assert.Len(t, EncodeValues(values), 4)

	_, err = form.Parse("deposit", map[string]string{
		"to":     "GNOPE",
		"amount": "lots",
		"memo":   "zz",
		"flags":  "true",
		"extra":  "1",
	})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Len(t, fe, 5)
	assert.Equal(t, "unknown argument", fe["extra"])
	assert.Equal(t, "expected number", fe["amount"])
	assert.Contains(t, err.Error(), "invalid input: amount: expected number; extra: unknown argument")

	_, err = form.Parse("deposit", map[string]string{})
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "value is required", fe["to"])

	_, err = form.Parse("withdraw", nil)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestForm_ParseDynamicCollections(t *testing.T) {
	client := &fakeClient{id: contractAddr, methods: []contract.Method{{
		Name: "batch",
		Args: []contract.Arg{
			{Name: "ids", Type: cty.List(cty.DynamicPseudoType)},
			{Name: "opts", Type: cty.Map(cty.DynamicPseudoType)},
		},
	}}}
	form := NewForm(client)

	values, err := form.Parse("batch", map[string]string{
		"ids":  "[1, 2]",
		"opts": `{"fast": true, "retry": false}`,
	})
	require.NoError(t, err)
	assert.True(t, values["ids"].Equals(cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)})).True())
	assert.True(t, values["opts"].Equals(cty.MapVal(map[string]cty.Value{"fast": cty.True, "retry": cty.False})).True())

	_, err = form.Parse("batch", map[string]string{"ids": "[1, 2", "opts": "{}"})
	var fe FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe["ids"], "expected JSON list of")
	assert.NotContains(t, fe, "opts")

	_, err = form.Parse("batch", map[string]string{"ids": `{"a": 1}`, "opts": "{}"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe["ids"], "expected list of")
}
