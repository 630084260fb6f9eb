package ticket

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativePrice      = errors.New("price cannot be negative")
	ErrNonPositiveQty     = errors.New("quantity must be positive")
	ErrQtyExceedsMax      = errors.New("quantity exceeds per-purchaser limit")
	ErrInvalidFeeRate     = errors.New("fee rate must be within [0, 1]")
	ErrEmptyCredential    = errors.New("credential cannot be empty")
	ErrInvalidValidityEnd = errors.New("validity end cannot precede purchase time")
)

// Money is an amount in integer cents. Arithmetic that involves fractional
// fee rates goes through shopspring/decimal so refunds never accumulate
// binary-float drift.
type Money struct {
	cents int64
}

func NewMoney(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, ErrNegativePrice
	}
	return Money{cents: cents}, nil
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) MulQuantity(q Quantity) Money {
	return Money{cents: m.cents * int64(q.Value())}
}

// AfterFee returns the amount remaining once feeRate (a fraction of the
// gross) is withheld, rounded down to the cent in the payer's favour.
func (m Money) AfterFee(feeRate float64) (Money, error) {
	if feeRate < 0 || feeRate > 1 {
		return Money{}, ErrInvalidFeeRate
	}
	gross := decimal.NewFromInt(m.cents)
	keep := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(feeRate))
	return Money{cents: gross.Mul(keep).RoundDown(0).IntPart()}, nil
}

type Quantity struct {
	value int
}

func NewQuantity(value, maxPerPurchase int) (Quantity, error) {
	if value <= 0 {
		return Quantity{}, ErrNonPositiveQty
	}
	if maxPerPurchase > 0 && value > maxPerPurchase {
		return Quantity{}, ErrQtyExceedsMax
	}
	return Quantity{value: value}, nil
}

func (q Quantity) Value() int {
	return q.value
}

// Credential is the unique redemption token carried in the ticket's QR
// payload. Uniqueness is enforced by the store's insert, not here.
type Credential struct {
	value string
}

func NewCredential(value string) (Credential, error) {
	if value == "" {
		return Credential{}, ErrEmptyCredential
	}
	return Credential{value: value}, nil
}

func (c Credential) String() string {
	return c.value
}
