// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Execution is a single-asset leg priced in the reporting currency.
// Quantity and Fee are decremented in place while the execution sits in a matching queue.
type Execution struct {
	Exchange string          `json:"exchange"`
	Date     time.Time       `json:"date"`
	Asset    string          `json:"asset"`
	Side     Side            `json:"side"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Fee      decimal.Decimal `json:"fee"`
	Merged   bool            `json:"merged"`
}

func NewExecution(exchange string, date time.Time, asset string, side Side, quantity, price, fee decimal.Decimal) *Execution {
	return &Execution{
		Exchange: exchange,
		Date:     date,
		Asset:    asset,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Fee:      fee,
	}
}

// NewTransfer builds a Transfer execution. The fee is what the transfer costs in the asset,
// so it is also carried as the quantity.
func NewTransfer(exchange string, date time.Time, asset string, fee decimal.Decimal) *Execution {
	return &Execution{
		Exchange: exchange,
		Date:     date,
		Asset:    asset,
		Side:     Transfer,
		Quantity: fee,
		Price:    decimal.Zero,
		Fee:      fee,
	}
}

func (e *Execution) IsTransfer() bool {
	return e.Side == Transfer
}

// Notional is Quantity*Price.
func (e *Execution) Notional() decimal.Decimal {
	return e.Quantity.Mul(e.Price)
}

// Absorb folds other into e as a quantity weighted average. Transfers are never absorbed.
func (e *Execution) Absorb(other *Execution) {
	if other == nil || other.IsTransfer() || e.IsTransfer() {
		return
	}
	total := e.Quantity.Add(other.Quantity)
	if !e.Price.Equal(other.Price) && !total.IsZero() {
		e.Price = e.Notional().Add(other.Notional()).Div(total)
	}
	e.Quantity = total
	e.Fee = e.Fee.Add(other.Fee)
	e.Merged = true
}

func (e *Execution) String() string {
	if e.IsTransfer() {
		return fmt.Sprintf("%s: %s %s between %s for %s %s",
			e.Asset, e.Side, e.Quantity.StringFixed(4), e.Exchange, e.Fee.String(), e.Asset)
	}
	return fmt.Sprintf("%s: %s %s @ %s (fee %s) on %s [merged=%t]",
		e.Asset, e.Side, e.Quantity.StringFixed(4), e.Price.StringFixed(4), e.Fee.StringFixed(4), e.Exchange, e.Merged)
}
