package internal

import (
	"errors"
	"fmt"

	"github.com/chrisconley/number/specs"
)

var ErrUnknownOperation = errors.New("unknown operation")

type TallyConfig struct {
	initial  Operand
	currency string
	scale    int
	steps    []TallyStep
}

func NewTallyConfig(spec specs.TallySpec) (TallyConfig, error) {
	initial, err := CoerceOperand(spec.Initial)
	if err != nil {
		return TallyConfig{}, fmt.Errorf("invalid initial value: %w", err)
	}

	scale, err := newTallyScale(spec.Scale, DefaultScale)
	if err != nil {
		return TallyConfig{}, fmt.Errorf("invalid scale: %w", err)
	}

	steps := make([]TallyStep, len(spec.Operations))
	for i, opSpec := range spec.Operations {
		step, err := NewTallyStep(opSpec, scale)
		if err != nil {
			return TallyConfig{}, fmt.Errorf("invalid operation[%d]: %w", i, err)
		}
		steps[i] = step
	}

	return TallyConfig{
		initial:  initial,
		currency: spec.Currency,
		scale:    scale,
		steps:    steps,
	}, nil
}

func newTallyScale(scale *int, fallback int) (int, error) {
	if scale == nil {
		return fallback, nil
	}
	if *scale < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidScale, *scale)
	}
	return *scale, nil
}

func (c TallyConfig) Initial() Operand {
	return c.initial
}

// Currency returns the ISO code the tally runs in, or "" for plain numbers.
func (c TallyConfig) Currency() string {
	return c.currency
}

func (c TallyConfig) Scale() int {
	return c.scale
}

func (c TallyConfig) Steps() []TallyStep {
	return c.steps
}

type TallyStep struct {
	operation   TallyOperation
	operand     Operand
	operandText string
	scale       int
}

func NewTallyStep(spec specs.OperationSpec, defaultScale int) (TallyStep, error) {
	operation, err := NewTallyOperation(spec.Op)
	if err != nil {
		return TallyStep{}, err
	}

	operand, err := CoerceOperand(spec.Operand)
	if err != nil {
		return TallyStep{}, fmt.Errorf("invalid operand: %w", err)
	}
	text, err := operand.canonical()
	if err != nil {
		return TallyStep{}, fmt.Errorf("invalid operand: %w", err)
	}

	scale, err := newTallyScale(spec.Scale, defaultScale)
	if err != nil {
		return TallyStep{}, fmt.Errorf("invalid scale: %w", err)
	}

	return TallyStep{operation: operation, operand: operand, operandText: text, scale: scale}, nil
}

func (s TallyStep) Operation() TallyOperation {
	return s.operation
}

func (s TallyStep) Operand() Operand {
	return s.operand
}

// OperandText returns the operand as the decimal text the step computes with.
func (s TallyStep) OperandText() string {
	return s.operandText
}

func (s TallyStep) Scale() int {
	return s.scale
}

type TallyOperation struct {
	value string
}

var (
	TallyAdd      = TallyOperation{value: "add"}
	TallySubtract = TallyOperation{value: "subtract"}
)

// NewTallyOperation accepts "add" and "subtract", plus the "sub" and "minus"
// aliases which normalize to "subtract".
func NewTallyOperation(value string) (TallyOperation, error) {
	switch value {
	case "add":
		return TallyAdd, nil
	case "subtract", "sub", "minus":
		return TallySubtract, nil
	case "":
		return TallyOperation{}, fmt.Errorf("%w: operation is required", ErrUnknownOperation)
	default:
		return TallyOperation{}, fmt.Errorf("%w: %q", ErrUnknownOperation, value)
	}
}

func (o TallyOperation) ToString() string {
	return o.value
}
