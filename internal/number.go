package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// DefaultScale is the number of fractional digits used when no scale is given.
const DefaultScale = 4

// ErrInvalidOperandKind is returned when an operand is not a number, text, integer or float.
var ErrInvalidOperandKind = errors.New("invalid operand kind")

var zero = NewDecimalFromInt64(0)

// Operand is anything a Number can be built from or combined with.
// The set is closed: Text, Integer, Real, *Number and *Money.
type Operand interface {
	canonical() (string, error)
}

// Text is a decimal number written out as a string, e.g. "-12.50".
type Text string

// Integer is a whole number operand.
type Integer int64

// Real is a binary floating-point operand. It is converted to its shortest
// round-trip decimal text before any arithmetic happens.
type Real float64

func (t Text) canonical() (string, error) {
	return string(t), nil
}

func (i Integer) canonical() (string, error) {
	return strconv.FormatInt(int64(i), 10), nil
}

func (r Real) canonical() (string, error) {
	return strconv.FormatFloat(float64(r), 'f', -1, 64), nil
}

func (n *Number) canonical() (string, error) {
	if n == nil {
		return "", fmt.Errorf("%w: nil number", ErrInvalidOperandKind)
	}
	return n.value, nil
}

// CoerceOperand maps a dynamically typed value, such as one decoded from JSON
// or YAML, onto an Operand. Slices, maps, booleans, nil and every other shape
// are rejected with ErrInvalidOperandKind.
func CoerceOperand(v any) (Operand, error) {
	switch x := v.(type) {
	case Operand:
		if _, err := x.canonical(); err != nil {
			return nil, err
		}
		return x, nil
	case Number:
		return Text(x.value), nil
	case string:
		return Text(x), nil
	case json.Number:
		return Text(x.String()), nil
	case int:
		return Integer(x), nil
	case int8:
		return Integer(x), nil
	case int16:
		return Integer(x), nil
	case int32:
		return Integer(x), nil
	case int64:
		return Integer(x), nil
	case uint:
		return Text(strconv.FormatUint(uint64(x), 10)), nil
	case uint8:
		return Integer(x), nil
	case uint16:
		return Integer(x), nil
	case uint32:
		return Integer(x), nil
	case uint64:
		return Text(strconv.FormatUint(x, 10)), nil
	case float32:
		return Text(strconv.FormatFloat(float64(x), 'f', -1, 32)), nil
	case float64:
		return Real(x), nil
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidOperandKind)
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidOperandKind, v)
	}
}

// Number is an immutable arbitrary-precision decimal. Arithmetic never changes
// the receiver; it returns a new Number whose Parent is the receiver.
//
// A Number is safe for concurrent use.
type Number struct {
	originalValue string
	value         string
	parent        *Number

	decimal  Decimal
	parseErr error
}

// New builds a parentless Number. Syntax is not checked here: malformed text
// surfaces as ErrMalformedDecimal from the first arithmetic or rendering call.
// A nil operand produces a Number that fails the same way.
func New(v Operand) *Number {
	if v == nil {
		return newNumber("", nil, fmt.Errorf("%w: nil", ErrInvalidOperandKind))
	}
	text, err := v.canonical()
	return newNumber(text, nil, err)
}

func NewFromString(s string) *Number {
	return New(Text(s))
}

func NewFromInt(i int64) *Number {
	return New(Integer(i))
}

func NewFromFloat(f float64) *Number {
	return New(Real(f))
}

func newNumber(text string, parent *Number, err error) *Number {
	n := &Number{
		originalValue: text,
		value:         text,
		parent:        parent,
		parseErr:      err,
	}
	if err == nil {
		n.decimal, n.parseErr = NewDecimal(text)
	}
	return n
}

// Add returns n+v at DefaultScale.
func (n *Number) Add(v Operand) (*Number, error) {
	return n.AddScaled(v, DefaultScale)
}

// AddScaled returns n+v truncated to scale fractional digits.
func (n *Number) AddScaled(v Operand, scale int) (*Number, error) {
	return n.combine(v, scale, Decimal.AddScaled)
}

// Subtract returns n-v at DefaultScale.
func (n *Number) Subtract(v Operand) (*Number, error) {
	return n.SubtractScaled(v, DefaultScale)
}

// SubtractScaled returns n-v truncated to scale fractional digits.
func (n *Number) SubtractScaled(v Operand, scale int) (*Number, error) {
	return n.combine(v, scale, Decimal.SubScaled)
}

// Sub is an alias for Subtract.
func (n *Number) Sub(v Operand) (*Number, error) {
	return n.Subtract(v)
}

// Minus is an alias for Subtract.
func (n *Number) Minus(v Operand) (*Number, error) {
	return n.Subtract(v)
}

func (n *Number) combine(v Operand, scale int, op func(Decimal, Decimal, int) (Decimal, error)) (*Number, error) {
	operand, err := operandDecimal(v)
	if err != nil {
		return nil, err
	}
	if n.parseErr != nil {
		return nil, n.parseErr
	}

	result, err := op(n.decimal, operand, scale)
	if err != nil {
		return nil, err
	}
	return newNumber(result.Text(), n, nil), nil
}

func operandDecimal(v Operand) (Decimal, error) {
	if v == nil {
		return Decimal{}, fmt.Errorf("%w: nil", ErrInvalidOperandKind)
	}
	if m, ok := v.(*Money); ok {
		if m == nil {
			return Decimal{}, fmt.Errorf("%w: nil money", ErrInvalidOperandKind)
		}
		v = m.amount
	}
	if num, ok := v.(*Number); ok {
		if num == nil {
			return Decimal{}, fmt.Errorf("%w: nil number", ErrInvalidOperandKind)
		}
		return num.decimal, num.parseErr
	}
	text, err := v.canonical()
	if err != nil {
		return Decimal{}, err
	}
	return NewDecimal(text)
}

// IsPositive reports whether n is strictly greater than zero.
func (n *Number) IsPositive() bool {
	return n.parseErr == nil && n.decimal.Cmp(zero) > 0
}

// IsNegative reports whether n is strictly less than zero. "-0" is not negative.
func (n *Number) IsNegative() bool {
	return n.parseErr == nil && n.decimal.Cmp(zero) < 0
}

// IsZero reports whether n equals zero, whatever its sign or trailing zeros.
func (n *Number) IsZero() bool {
	return n.parseErr == nil && n.decimal.Cmp(zero) == 0
}

// ToString renders n with exactly scale fractional digits, truncating extra
// digits. Scale 0 renders without a decimal point.
func (n *Number) ToString(scale int) (string, error) {
	if n.parseErr != nil {
		return "", n.parseErr
	}
	scaled, err := n.decimal.Rescale(scale)
	if err != nil {
		return "", err
	}
	return scaled.Text(), nil
}

// String renders n at DefaultScale. Malformed numbers render as their original text.
func (n *Number) String() string {
	s, err := n.ToString(DefaultScale)
	if err != nil {
		return n.originalValue
	}
	return s
}

// Parent returns the Number this one was derived from, or nil for an origin value.
func (n *Number) Parent() *Number {
	return n.parent
}

// OriginalValue returns the text n was constructed from, unscaled and unrounded.
func (n *Number) OriginalValue() string {
	return n.originalValue
}

// Value returns the working text used for arithmetic.
func (n *Number) Value() string {
	return n.value
}

// Lineage returns n followed by each of its ancestors, ending at the origin value.
func (n *Number) Lineage() []*Number {
	var chain []*Number
	for cur := n; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	return chain
}
