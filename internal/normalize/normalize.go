// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package normalize splits cross-currency trades into single-asset executions priced in
// the reporting currency.
package normalize

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cryptolots/internal/ledger"
)

var ErrInvalidTrade = errors.New("invalid trade")

// Pricer is the part of price.Oracle the normalizer needs.
type Pricer interface {
	Price(date time.Time, currency string) decimal.Decimal
	CrossPrice(date time.Time, currency, base string, units decimal.Decimal) decimal.Decimal
	IsInOutCurrency(currency string) bool
}

// Legs are the executions one trade produces. A nil leg means no execution; a leg whose
// price resolved to zero is still a leg.
type Legs struct {
	Buy  *ledger.Execution
	Sell *ledger.Execution
	Fee  *ledger.Execution // sale of a fee paid in a third currency
}

// All returns the non-nil legs in Buy, Sell, Fee order.
func (l Legs) All() []*ledger.Execution {
	out := make([]*ledger.Execution, 0, 3)
	for _, e := range []*ledger.Execution{l.Buy, l.Sell, l.Fee} {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}

func (l Legs) Empty() bool {
	return l.Buy == nil && l.Sell == nil && l.Fee == nil
}

// Validate rejects trades that break the structural invariants of a Trade.
func Validate(t ledger.Trade) error {
	switch {
	case t.Side != ledger.Buy && t.Side != ledger.Sell:
		return errors.Wrapf(ErrInvalidTrade, "%s: side %s", t.Pair(), t.Side)
	case !t.Quantity.IsPositive():
		return errors.Wrapf(ErrInvalidTrade, "%s: quantity %s", t.Pair(), t.Quantity)
	case !t.Price.IsPositive():
		return errors.Wrapf(ErrInvalidTrade, "%s: price %s", t.Pair(), t.Price)
	case t.Asset == t.Underlying:
		return errors.Wrapf(ErrInvalidTrade, "%s: asset equals underlying", t.Pair())
	case t.Fee.IsNegative() || t.FeeBase.IsNegative():
		return errors.Wrapf(ErrInvalidTrade, "%s: negative fee", t.Pair())
	}
	return nil
}

// Normalize converts t into up to three executions. Currencies that are the pricer's input
// or output currency never get a leg: they are the money everything is measured in.
func Normalize(t ledger.Trade, p Pricer, log logrus.FieldLogger) (Legs, error) {
	if err := Validate(t); err != nil {
		return Legs{}, err
	}

	buyQty, sellQty := t.Quantity, t.UnderlyingQuantity()
	if t.Side == ledger.Sell {
		buyQty, sellQty = sellQty, buyQty
	}

	log.WithFields(logrus.Fields{
		"exchange": t.Exchange,
		"date":     t.Date,
	}).Debugf("normalizing %s %s %s @ %s", t.Side, t.Quantity, t.Pair(), t.Price)

	assetInOut := p.IsInOutCurrency(t.Asset)
	underlyingInOut := p.IsInOutCurrency(t.Underlying)
	if assetInOut && underlyingInOut {
		return Legs{}, nil
	}

	var legs Legs
	qty := func(side ledger.Side) decimal.Decimal {
		if side == ledger.Buy {
			return buyQty
		}
		return sellQty
	}
	place := func(e *ledger.Execution) {
		if e.Side == ledger.Buy {
			legs.Buy = e
		} else {
			legs.Sell = e
		}
	}

	if !assetInOut {
		px := p.CrossPrice(t.Date, t.Asset, t.Underlying, t.Price)
		place(ledger.NewExecution(t.Exchange, t.Date, t.Asset, t.Side, qty(t.Side), px, decimal.Zero))
	}
	if !underlyingInOut {
		side := t.Side.Opposite()
		px := p.Price(t.Date, t.Underlying)
		place(ledger.NewExecution(t.Exchange, t.Date, t.Underlying, side, qty(side), px, decimal.Zero))
	}

	feeOut := feeInOutput(t, p)

	thirdCurrency := t.FeeCurrency != "" &&
		t.FeeCurrency != t.Asset &&
		t.FeeCurrency != t.Underlying &&
		!p.IsInOutCurrency(t.FeeCurrency)
	if thirdCurrency && t.Fee.IsPositive() {
		legs.Fee = ledger.NewExecution(t.Exchange, t.Date, t.FeeCurrency, ledger.Sell, t.Fee, feeOut.Div(t.Fee), decimal.Zero)
		return legs, nil
	}

	switch {
	case legs.Buy != nil && (legs.Buy.Asset == t.FeeCurrency || legs.Sell == nil || p.IsInOutCurrency(legs.Sell.Asset)):
		attachFee(t, legs.Buy, feeOut)
	case legs.Sell != nil:
		attachFee(t, legs.Sell, feeOut)
	}
	return legs, nil
}

// feeInOutput prices the fee in the output currency, preferring the explicit base amount.
func feeInOutput(t ledger.Trade, p Pricer) decimal.Decimal {
	if t.FeeBase.IsPositive() {
		return t.FeeBase.Div(p.Price(t.Date, ""))
	}
	return t.Fee.Mul(p.Price(t.Date, t.FeeCurrency))
}

func attachFee(t ledger.Trade, e *ledger.Execution, feeOut decimal.Decimal) {
	if !t.FeeAttached {
		e.Quantity = e.Quantity.Sub(t.Fee)
	}
	e.Fee = feeOut
}
