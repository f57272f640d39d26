// Package render prints explorer data as terminal tables for the CLI.
package render

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"github.com/specialistvlad/contractexplorer/internal/loader"
	"github.com/specialistvlad/contractexplorer/internal/metadata"
	"github.com/specialistvlad/contractexplorer/internal/network"
	"github.com/specialistvlad/contractexplorer/internal/signatures"
	"github.com/specialistvlad/contractexplorer/internal/view"
)

func table(w io.Writer, data pterm.TableData) error {
	out, err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// Contracts prints one row per identifier in res.Names.
func Contracts(w io.Writer, res *loader.Result) error {
	if len(res.Names) == 0 {
		_, err := fmt.Fprintln(w, view.EmptyMessage)
		return err
	}
	data := pterm.TableData{{"Name", "Status", "Contract ID / Error"}}
	for _, name := range res.Names {
		if m, ok := res.Module(name); ok {
			data = append(data, []string{name, "loaded", m.Default.Options().ContractID})
			continue
		}
		msg, _ := res.Failure(name)
		data = append(data, []string{name, "failed", msg})
	}
	return table(w, data)
}

// Metadata prints the metadata rows of one contract.
func Metadata(w io.Writer, md *metadata.Metadata) error {
	data := pterm.TableData{{"Type", "Key", "Value"}}
	for _, r := range md.Rows() {
		data = append(data, []string{r.Type, r.Key, r.Value})
	}
	return table(w, data)
}

// Signatures prints the verdict for each envelope signature.
func Signatures(w io.Writer, sigs []signatures.Signature) error {
	if len(sigs) == 0 {
		_, err := fmt.Fprintln(w, "Transaction has no signatures.")
		return err
	}
	data := pterm.TableData{{"Hint", "Signer", "Weight", "Valid"}}
	for _, s := range sigs {
		signer := s.Signer
		if signer == "" {
			signer = "unknown"
		}
		data = append(data, []string{s.Hint, signer, fmt.Sprint(s.Weight), fmt.Sprint(s.Valid)})
	}
	return table(w, data)
}

// Networks prints the configured networks, marking the active one.
func Networks(w io.Writer, nets []network.Network, active string) error {
	data := pterm.TableData{{"", "ID", "Label", "RPC URL", "Horizon URL"}}
	for _, n := range nets {
		mark := ""
		if n.ID == active {
			mark = "*"
		}
		data = append(data, []string{mark, n.ID, n.Label, n.RPCURL, n.HorizonURL})
	}
	return table(w, data)
}
