package specs

// MoneySpec represents an amount of money in a single currency.
//
// The amount is stored as a decimal string to preserve precision across
// language implementations.
type MoneySpec struct {
	// Numeric value as a decimal string.
	//
	// Must be parseable as a decimal number. Examples: "5", "-12.50", "0.0001".
	Amount string `json:"amount" yaml:"amount"`

	// ISO 4217 alphabetic currency code. Examples: "EUR", "USD", "JPY".
	Currency string `json:"currency" yaml:"currency"`
}
