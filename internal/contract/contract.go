// Package contract defines the capability the explorer expects from a
// generated contract client, and the module shape that exposes one.
package contract

import "github.com/zclconf/go-cty/cty"

// Argument kinds refine a cty.String argument with an encoding the form layer
// checks before submitting.
const (
	KindAddress = "address"
	KindBytes   = "bytes"
)

// Client is a contract client bound to a single deployed contract.
type Client interface {
	ContractID() string
	Options() Options
	Methods() []Method
}

// Options are the connection settings a client was created with.
type Options struct {
	ContractID        string
	NetworkPassphrase string
	RPCURL            string
}

// Method describes one callable contract function.
type Method struct {
	Name        string
	Description string
	ReadOnly    bool
	Args        []Arg
}

// Arg describes one method argument.
type Arg struct {
	Name        string
	Description string
	Type        cty.Type
	Kind        string
}

// Module is the resolved form of a contract module. It is usable only when
// Default is set.
type Module struct {
	Default Client
}

// Method returns the method with the given name.
func (m *Module) Method(name string) (Method, bool) {
	if m == nil || m.Default == nil {
		return Method{}, false
	}
	for _, method := range m.Default.Methods() {
		if method.Name == name {
			return method, true
		}
	}
	return Method{}, false
}
