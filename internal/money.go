package internal

import (
	"errors"
	"fmt"

	"github.com/chrisconley/number/specs"
	"golang.org/x/text/currency"
)

var (
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is a Number denominated in an ISO 4217 currency. Derived values keep
// the currency of the value they were derived from.
type Money struct {
	amount   *Number
	currency currency.Unit
	parent   *Money
}

func NewMoney(v Operand, code string) (*Money, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	if m, ok := v.(*Money); ok && m != nil && m.currency != unit {
		return nil, fmt.Errorf("%w: %s amount for %s money", ErrCurrencyMismatch, m.ISOCode(), unit)
	}
	return &Money{amount: New(v), currency: unit}, nil
}

func NewMoneyFromSpec(spec specs.MoneySpec) (*Money, error) {
	m, err := NewMoney(Text(spec.Amount), spec.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid money: %w", err)
	}
	return m, nil
}

func (m *Money) canonical() (string, error) {
	if m == nil {
		return "", fmt.Errorf("%w: nil money", ErrInvalidOperandKind)
	}
	return m.amount.value, nil
}

func (m *Money) Add(v Operand) (*Money, error) {
	return m.AddScaled(v, DefaultScale)
}

func (m *Money) AddScaled(v Operand, scale int) (*Money, error) {
	return m.derive(v, func(n *Number) (*Number, error) { return n.AddScaled(v, scale) })
}

func (m *Money) Subtract(v Operand) (*Money, error) {
	return m.SubtractScaled(v, DefaultScale)
}

func (m *Money) SubtractScaled(v Operand, scale int) (*Money, error) {
	return m.derive(v, func(n *Number) (*Number, error) { return n.SubtractScaled(v, scale) })
}

// Sub is an alias for Subtract.
func (m *Money) Sub(v Operand) (*Money, error) {
	return m.Subtract(v)
}

// Minus is an alias for Subtract.
func (m *Money) Minus(v Operand) (*Money, error) {
	return m.Subtract(v)
}

func (m *Money) derive(v Operand, op func(*Number) (*Number, error)) (*Money, error) {
	if other, ok := v.(*Money); ok && other != nil && other.currency != m.currency {
		return nil, fmt.Errorf("%w: cannot combine %s with %s", ErrCurrencyMismatch, m.ISOCode(), other.ISOCode())
	}
	amount, err := op(m.amount)
	if err != nil {
		return nil, err
	}
	return &Money{amount: amount, currency: m.currency, parent: m}, nil
}

// ISOCode returns the three-letter currency code, e.g. "EUR".
func (m *Money) ISOCode() string {
	return m.currency.String()
}

func (m *Money) Amount() *Number {
	return m.amount
}

// Parent returns the Money this one was derived from, or nil.
func (m *Money) Parent() *Money {
	return m.parent
}

func (m *Money) IsPositive() bool { return m.amount.IsPositive() }
func (m *Money) IsNegative() bool { return m.amount.IsNegative() }
func (m *Money) IsZero() bool     { return m.amount.IsZero() }

func (m *Money) ToString(scale int) (string, error) {
	return m.amount.ToString(scale)
}

// String renders the amount at DefaultScale followed by the currency code.
func (m *Money) String() string {
	return m.amount.String() + " " + m.ISOCode()
}

func (m *Money) ToSpec() specs.MoneySpec {
	return specs.MoneySpec{
		Amount:   m.amount.Value(),
		Currency: m.ISOCode(),
	}
}
