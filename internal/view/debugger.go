package view

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/contractexplorer/internal/loader"
)

// ErrUnknownContract is returned when selecting a name the load result does
// not contain.
var ErrUnknownContract = errors.New("unknown contract")

// Screen names the state the contract panel is in.
type Screen string

const (
	ScreenEmpty    Screen = "empty"
	ScreenFailed   Screen = "failed"
	ScreenContract Screen = "contract"
)

// EmptyMessage is shown when no contract modules were found.
const EmptyMessage = "No contracts found in src/contracts/"

// Panel is everything the contract panel renders for one load result.
type Panel struct {
	Screen         Screen   `json:"screen"`
	Names          []string `json:"names"`
	Selected       string   `json:"selected,omitempty"`
	ContractID     string   `json:"contractId,omitempty"`
	Failure        string   `json:"failure,omitempty"`
	Message        string   `json:"message,omitempty"`
	DetailExpanded bool     `json:"detailExpanded"`
	DetailsLabel   string   `json:"detailsLabel,omitempty"`
}

// Debugger tracks the selected contract and whether its details are shown.
type Debugger struct {
	Selected       string `json:"selected"`
	DetailExpanded bool   `json:"detailExpanded"`
}

// Sync selects the first name of res when nothing is selected or the
// selection disappeared after a reload.
func (d *Debugger) Sync(res *loader.Result) {
	if d.Selected != "" && res.Has(d.Selected) {
		return
	}
	d.Selected = ""
	if res != nil && len(res.Names) > 0 {
		d.Selected = res.Names[0]
	}
}

// Select makes name the current contract.
func (d *Debugger) Select(res *loader.Result, name string) error {
	if !res.Has(name) {
		return fmt.Errorf("%w: %q", ErrUnknownContract, name)
	}
	d.Selected = name
	return nil
}

// ToggleDetails shows or hides the metadata of the selected contract.
func (d *Debugger) ToggleDetails() { d.DetailExpanded = !d.DetailExpanded }

// Panel decides what to render for res. It calls Sync first.
func (d *Debugger) Panel(res *loader.Result) Panel {
	d.Sync(res)

	p := Panel{Names: []string{}, DetailExpanded: d.DetailExpanded}
	if res != nil {
		p.Names = append(p.Names, res.Names...)
	}
	if d.Selected == "" {
		p.Screen, p.Message = ScreenEmpty, EmptyMessage
		return p
	}

	p.Selected = d.Selected
	if m, ok := res.Module(d.Selected); ok {
		p.Screen = ScreenContract
		p.ContractID = m.Default.Options().ContractID
		p.DetailsLabel = "Show Details"
		if d.DetailExpanded {
			p.DetailsLabel = "Hide Details"
		}
		return p
	}

	msg, _ := res.Failure(d.Selected)
	p.Screen, p.Failure = ScreenFailed, msg
	p.Message = "Failed to import contract: " + msg
	return p
}
