// Package common holds small scalar types shared between the engine's domain
// packages and its external callers.
package common

import (
	"fmt"
	"math"
)

// Money is a monetary value in minor units of a currency. Coverage limits and
// approved amounts use minor units (paise for INR) so that records stay
// bit-stable and no float arithmetic leaks into decisions.
type Money struct {
	// Amount in minor units (e.g. paise). Negative amounts are invalid.
	Amount int64 `json:"amount"`
	// Currency is an ISO 4217 code. The built-in domain tables use "INR".
	Currency string `json:"currency"`
}

// Zero reports whether m carries no value.
func (m Money) Zero() bool {
	return m.Amount == 0 && m.Currency == ""
}

// String renders the value in major units, e.g. "INR 50000.00".
func (m Money) String() string {
	if m.Zero() {
		return ""
	}
	return fmt.Sprintf("%s %d.%02d", m.Currency, m.Amount/100, m.Amount%100)
}

// Confidence is a score in [0,1]. Round-tripping through Clamp keeps all
// engine arithmetic inside the valid range.
type Confidence float64

// Clamp returns c limited to [0,1].
func (c Confidence) Clamp() Confidence {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Round4 returns c rounded to four decimal places. All confidences stored in
// externally visible records pass through Round4 so identical inputs always
// produce bit-identical outputs.
func (c Confidence) Round4() Confidence {
	return Confidence(math.Round(float64(c)*10000) / 10000)
}

// Float returns the plain float64 value.
func (c Confidence) Float() float64 { return float64(c) }
