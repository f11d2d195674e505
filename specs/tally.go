package specs

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tally replays a sequence of add/subtract operations starting from an initial value.
//
// Process:
//  1. Build the initial number (or money, when Currency is set)
//  2. Apply each operation in order; every result is derived from the previous one
//  3. Render the final value and every value along its lineage
//
// Returns error if an operand has an unsupported kind, an operation is unknown,
// or any value is not a valid decimal number.
//
// This is the spec-level interface using only primitive types.
// See internal.Tally for the reference implementation.
type Tally func(spec TallySpec) (TallyResultSpec, error)

// TallySpec defines the starting value and the operations of a tally.
type TallySpec struct {
	// Initial value.
	//
	// A decimal string or a number. Examples: "200", 5, 12.75.
	Initial any `json:"initial" yaml:"initial"`

	// Optional ISO 4217 currency code.
	//
	// When set, the tally runs on money: operands keep this currency and the
	// result carries it.
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`

	// Number of fractional digits for results and rendering.
	//
	// Defaults to 4 when nil. Digits beyond the scale are truncated.
	Scale *int `json:"scale,omitempty" yaml:"scale,omitempty"`

	// Operations applied in order.
	Operations []OperationSpec `json:"operations" yaml:"operations"`
}

// OperationSpec is a single step of a tally.
type OperationSpec struct {
	// Operation name: "add", "subtract", or the aliases "sub" and "minus".
	Op string `json:"op" yaml:"op"`

	// Right-hand operand.
	//
	// Must be a decimal string or a number. Lists, objects, booleans and null
	// are rejected.
	Operand any `json:"operand" yaml:"operand"`

	// Optional scale for this step, overriding TallySpec.Scale.
	Scale *int `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// TallyResultSpec is the outcome of a tally.
type TallyResultSpec struct {
	// Tally identifier, unique per run.
	ID string `json:"id" yaml:"id"`

	// Final value rendered at the tally scale. Example: "15.0000".
	Value string `json:"value" yaml:"value"`

	// Currency of the final value; empty for plain numbers.
	Currency string `json:"currency,omitempty" yaml:"currency,omitempty"`

	// Every value from the initial one to the final one, rendered at the
	// tally scale. Lineage[0] is the initial value; the last entry equals Value.
	Lineage []string `json:"lineage" yaml:"lineage"`
}

// LoadTallySpec decodes a YAML (or JSON) tally document.
//
// Unquoted decimals such as 0.1000000000000000055 are kept as their literal
// text rather than converted to float64, so no digits are lost before the
// tally runs. Integers decode to int, quoted values to string, and any other
// shape is passed through for the tally to reject.
func LoadTallySpec(r io.Reader) (TallySpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw rawTallySpec
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return TallySpec{}, fmt.Errorf("tally spec: empty document")
		}
		return TallySpec{}, fmt.Errorf("tally spec: %w", err)
	}

	initial, err := decodeNumeric(&raw.Initial)
	if err != nil {
		return TallySpec{}, fmt.Errorf("tally spec: initial: %w", err)
	}
	spec := TallySpec{
		Initial:    initial,
		Currency:   raw.Currency,
		Scale:      raw.Scale,
		Operations: make([]OperationSpec, len(raw.Operations)),
	}
	for i, op := range raw.Operations {
		operand, err := decodeNumeric(&op.Operand)
		if err != nil {
			return TallySpec{}, fmt.Errorf("tally spec: operations[%d]: %w", i, err)
		}
		spec.Operations[i] = OperationSpec{Op: op.Op, Operand: operand, Scale: op.Scale}
	}
	return spec, nil
}

// rawTallySpec mirrors TallySpec with the numeric fields left as nodes.
type rawTallySpec struct {
	Initial    yaml.Node          `yaml:"initial"`
	Currency   string             `yaml:"currency"`
	Scale      *int               `yaml:"scale"`
	Operations []rawOperationSpec `yaml:"operations"`
}

type rawOperationSpec struct {
	Op      string    `yaml:"op"`
	Operand yaml.Node `yaml:"operand"`
	Scale   *int      `yaml:"scale"`
}

func decodeNumeric(node *yaml.Node) (any, error) {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!float" {
		return strings.ReplaceAll(node.Value, "_", ""), nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
