// Package bolt11 extracts the amount from a BOLT11 payment request. The
// bridge only needs the amount for budget decisions; signature and routing
// data are left to the payment daemon.
package bolt11

import (
	"math"
	"strings"
)

// Multiplier exponents relative to one bitcoin, expressed as millisatoshis
// per unit (1 BTC = 1e11 msat).
var multipliers = map[byte]int64{
	'm': 100_000_000,
	'u': 100_000,
	'n': 100,
	'p': 1, // handled specially: value must be divisible by 10
}

const (
	maxAmountDigits = 15
	maxBitcoin      = 21_000_000
)

// Decoder reads amounts from payment request strings.
type Decoder struct{}

// NewDecoder creates a payment request decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Amount returns the invoice amount in satoshis. The second return is false
// for invoices that are unparseable, amountless, or specify sub-satoshi
// precision; callers treat all three as an undecodable payment request.
func (d *Decoder) Amount(paymentRequest string) (int64, bool) {
	hrp, ok := humanReadablePart(paymentRequest)
	if !ok {
		return 0, false
	}

	// Strip the "ln" prefix and the currency letters that follow it.
	rest := hrp[2:]
	i := 0
	for i < len(rest) && isLetter(rest[i]) {
		i++
	}
	rest = rest[i:]
	if rest == "" {
		return 0, false // amountless invoice
	}

	digits := 0
	var value int64
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		value = value*10 + int64(rest[digits]-'0')
		digits++
	}
	if digits == 0 || digits > maxAmountDigits {
		return 0, false
	}

	var msat int64
	switch {
	case digits == len(rest):
		// No multiplier: amount is in whole bitcoin.
		if value > maxBitcoin {
			return 0, false
		}
		msat = value * 100_000_000_000
	case digits == len(rest)-1:
		mult, ok := multipliers[rest[digits]]
		if !ok {
			return 0, false
		}
		if rest[digits] == 'p' {
			if value%10 != 0 {
				return 0, false
			}
			msat = value / 10
		} else {
			if value > math.MaxInt64/mult {
				return 0, false
			}
			msat = value * mult
		}
	default:
		return 0, false
	}

	if msat%1000 != 0 {
		return 0, false
	}
	return msat / 1000, true
}

// humanReadablePart isolates the bech32 HRP: everything before the last '1'
// separator. Requires the "ln" prefix.
func humanReadablePart(paymentRequest string) (string, bool) {
	pr := strings.ToLower(strings.TrimSpace(paymentRequest))
	sep := strings.LastIndexByte(pr, '1')
	if sep < 2 {
		return "", false
	}
	hrp := pr[:sep]
	if !strings.HasPrefix(hrp, "ln") {
		return "", false
	}
	return hrp, true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z'
}
