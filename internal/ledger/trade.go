// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one recorded transaction on an exchange, quoted as Asset/Underlying.
type Trade struct {
	Exchange    string
	Date        time.Time
	Asset       string // top of the pair
	Underlying  string // bottom of the pair
	Side        Side   // Buy or Sell
	Quantity    decimal.Decimal
	Price       decimal.Decimal // Asset priced in Underlying
	Fee         decimal.Decimal
	FeeCurrency string
	FeeBase     decimal.Decimal // fee in the oracle input currency, zero if not given
	FeeAttached bool            // quantity already excludes the fee
	AltQty      *decimal.Decimal // quantity in Underlying, overrides Quantity*Price
}

// Pair returns the pair in A/B notation.
func (t Trade) Pair() string {
	return t.Asset + "/" + t.Underlying
}

// UnderlyingQuantity is AltQty when present, otherwise Quantity*Price.
func (t Trade) UnderlyingQuantity() decimal.Decimal {
	if t.AltQty != nil {
		return *t.AltQty
	}
	return t.Quantity.Mul(t.Price)
}

func (t Trade) String() string {
	return fmt.Sprintf("%s: %s %s @ %s (fee %s) on %s",
		t.Pair(), t.Side, t.Quantity.String(), t.Price.StringFixed(4), t.Fee.StringFixed(2), t.Exchange)
}
