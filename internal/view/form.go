package view

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/specialistvlad/contractexplorer/internal/contract"
	"github.com/stellar/go/strkey"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ErrUnknownMethod is returned when parsing input for a method the client
// does not declare.
var ErrUnknownMethod = errors.New("unknown method")

// FieldErrors maps argument names to what is wrong with their input.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for n := range fe {
		names = append(names, n)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ": " + fe[n]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Form converts raw text input into typed method arguments.
type Form struct {
	client contract.Client
}

// NewForm creates a form for client.
func NewForm(client contract.Client) *Form {
	return &Form{client: client}
}

// Parse converts raw values for method into cty values of the declared arg
// types. All problems are collected into a FieldErrors.
func (f *Form) Parse(method string, raw map[string]string) (map[string]cty.Value, error) {
	m, ok := (&contract.Module{Default: f.client}).Method(method)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	declared := make(map[string]struct{}, len(m.Args))
	values := make(map[string]cty.Value, len(m.Args))
	errs := FieldErrors{}

	for _, arg := range m.Args {
		declared[arg.Name] = struct{}{}
		text, ok := raw[arg.Name]
		if !ok || strings.TrimSpace(text) == "" {
			errs[arg.Name] = "value is required"
			continue
		}
		v, err := parseValue(arg, text)
		if err != nil {
			errs[arg.Name] = err.Error()
			continue
		}
		values[arg.Name] = v
	}
	for name := range raw {
		if _, ok := declared[name]; !ok {
			errs[name] = "unknown argument"
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return values, nil
}

func parseValue(arg contract.Arg, text string) (cty.Value, error) {
	ty := arg.Type
	if ty == cty.NilType {
		ty = cty.DynamicPseudoType
	}

	if ty.IsPrimitiveType() || ty.Equals(cty.DynamicPseudoType) {
		v, err := convert.Convert(cty.StringVal(text), ty)
		if err != nil {
			return cty.NilVal, fmt.Errorf("expected %s", ty.FriendlyName())
		}
		return v, checkKind(arg.Kind, text)
	}

	if ty.HasDynamicTypes() {
		return parseDynamicJSON([]byte(text), ty)
	}
	v, err := ctyjson.Unmarshal([]byte(text), ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected JSON %s: %v", ty.FriendlyName(), err)
	}
	return v, nil
}

// parseDynamicJSON decodes plain JSON into a type with "any" somewhere in it,
// such as list(any). The value's own type is inferred first, then converted.
func parseDynamicJSON(b []byte, ty cty.Type) (cty.Value, error) {
	implied, err := ctyjson.ImpliedType(b)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected JSON %s: %v", ty.FriendlyName(), err)
	}
	v, err := ctyjson.Unmarshal(b, implied)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected JSON %s: %v", ty.FriendlyName(), err)
	}
	v, err = convert.Convert(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("expected %s: %v", ty.FriendlyName(), err)
	}
	return v, nil
}

func checkKind(kind, text string) error {
	switch kind {
	case contract.KindAddress:
		if strkey.IsValidEd25519PublicKey(text) || strkey.IsValidContractAddress(text) {
			return nil
		}
		return errors.New("expected a G... account or C... contract address")
	case contract.KindBytes:
		if _, err := hex.DecodeString(strings.TrimPrefix(text, "0x")); err != nil {
			return errors.New("expected hex encoded bytes")
		}
	}
	return nil
}

// EncodeValues renders parsed values as JSON for API responses.
func EncodeValues(values map[string]cty.Value) map[string]ctyjson.SimpleJSONValue {
	out := make(map[string]ctyjson.SimpleJSONValue, len(values))
	for k, v := range values {
		out[k] = ctyjson.SimpleJSONValue{Value: v}
	}
	return out
}
