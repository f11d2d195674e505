package internal

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

var (
	// ErrMalformedDecimal is returned when text cannot be read as a finite decimal number.
	ErrMalformedDecimal = errors.New("malformed decimal")
	// ErrInvalidScale is returned for a negative scale, or one the value cannot be rescaled to.
	ErrInvalidScale = errors.New("invalid scale")
)

// Decimal is the arbitrary-precision engine behind Number. Results of AddScaled,
// SubScaled and Rescale are truncated toward zero at the requested scale.
type Decimal struct {
	value apd.Decimal
}

func NewDecimal(s string) (Decimal, error) {
	var d apd.Decimal
	_, _, err := d.SetString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: %q: %v", ErrMalformedDecimal, s, err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("%w: %q is not finite", ErrMalformedDecimal, s)
	}
	return Decimal{value: d}, nil
}

func NewDecimalFromInt64(i int64) Decimal {
	var d apd.Decimal
	d.SetInt64(i)
	return Decimal{value: d}
}

// Text renders d in plain positional notation, never with an exponent.
func (d Decimal) Text() string {
	return d.value.Text('f')
}

// Cmp compares d and other by value: "-0" equals "0" and "1.50" equals "1.5".
func (d Decimal) Cmp(other Decimal) int {
	return d.value.Cmp(&other.value)
}

// AddScaled returns d+other with exactly scale fractional digits.
func (d Decimal) AddScaled(other Decimal, scale int) (Decimal, error) {
	var sum apd.Decimal
	if _, err := apd.BaseContext.Add(&sum, &d.value, &other.value); err != nil {
		return Decimal{}, fmt.Errorf("add: %w", err)
	}
	return rescale(&sum, scale)
}

// SubScaled returns d-other with exactly scale fractional digits.
func (d Decimal) SubScaled(other Decimal, scale int) (Decimal, error) {
	var diff apd.Decimal
	if _, err := apd.BaseContext.Sub(&diff, &d.value, &other.value); err != nil {
		return Decimal{}, fmt.Errorf("subtract: %w", err)
	}
	return rescale(&diff, scale)
}

// Rescale returns d with exactly scale fractional digits.
func (d Decimal) Rescale(scale int) (Decimal, error) {
	return rescale(&d.value, scale)
}

func rescale(x *apd.Decimal, scale int) (Decimal, error) {
	if scale < 0 {
		return Decimal{}, fmt.Errorf("%w: %d is negative", ErrInvalidScale, scale)
	}
	if scale > apd.MaxExponent {
		return Decimal{}, fmt.Errorf("%w: %d exceeds %d", ErrInvalidScale, scale, apd.MaxExponent)
	}

	// Quantize refuses results with more digits than the context precision,
	// so size it to the widest coefficient the rescale can produce.
	digits := x.NumDigits()
	if grow := int64(x.Exponent) + int64(scale); grow > 0 {
		digits += grow
	}
	ctx := apd.BaseContext.WithPrecision(uint32(digits + 1))
	ctx.Rounding = apd.RoundDown

	var result apd.Decimal
	if _, err := ctx.Quantize(&result, x, -int32(scale)); err != nil {
		return Decimal{}, fmt.Errorf("%w: cannot rescale %s to %d: %v", ErrInvalidScale, x.String(), scale, err)
	}
	if result.IsZero() {
		result.Negative = false
	}
	return Decimal{value: result}, nil
}
