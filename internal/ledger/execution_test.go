// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gotest.tools/v3/assert"

	"cryptolots/internal/ledger"
)

var day1 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestExecution_Absorb(t *testing.T) {
	t.Run("weighted average", func(t *testing.T) {
		a := ledger.NewExecution("Binance", day1, "BTC", ledger.Buy, dec("1"), dec("100"), dec("1"))
		b := ledger.NewExecution("Binance", day1.Add(time.Minute), "BTC", ledger.Buy, dec("3"), dec("110"), dec("2"))
		a.Absorb(b)

		assert.Check(t, a.Quantity.Equal(dec("4")), a.Quantity)
		assert.Check(t, a.Price.Equal(dec("107.5")), a.Price)
		assert.Check(t, a.Fee.Equal(dec("3")), a.Fee)
		assert.Check(t, a.Merged)
		assert.Equal(t, a.Date, day1)
	})

	t.Run("same price keeps price", func(t *testing.T) {
		a := ledger.NewExecution("Binance", day1, "BTC", ledger.Sell, dec("1"), dec("100"), decimal.Zero)
		a.Absorb(ledger.NewExecution("Binance", day1, "BTC", ledger.Sell, dec("2"), dec("100"), decimal.Zero))
		assert.Check(t, a.Price.Equal(dec("100")))
		assert.Check(t, a.Quantity.Equal(dec("3")))
	})

	t.Run("transfers are never absorbed", func(t *testing.T) {
		a := ledger.NewExecution("Binance", day1, "BTC", ledger.Buy, dec("1"), dec("100"), decimal.Zero)
		a.Absorb(ledger.NewTransfer("Binance -> Ledger", day1, "BTC", dec("0.001")))
		assert.Check(t, a.Quantity.Equal(dec("1")))
		assert.Check(t, !a.Merged)
	})
}

func TestNewTransfer(t *testing.T) {
	e := ledger.NewTransfer("Binance -> Ledger", day1, "ETH", dec("0.005"))
	assert.Equal(t, e.Side, ledger.Transfer)
	assert.Check(t, e.IsTransfer())
	assert.Check(t, e.Quantity.Equal(dec("0.005")))
	assert.Check(t, e.Fee.Equal(dec("0.005")))
	assert.Check(t, e.Price.IsZero())
	assert.Equal(t, e.String(), "ETH: Transfer 0.0050 between Binance -> Ledger for 0.005 ETH")
}

func TestTrade_UnderlyingQuantity(t *testing.T) {
	tr := ledger.Trade{Asset: "BTC", Underlying: "ETH", Quantity: dec("2"), Price: dec("13")}
	assert.Check(t, tr.UnderlyingQuantity().Equal(dec("26")))
	assert.Equal(t, tr.Pair(), "BTC/ETH")

	alt := dec("25.9")
	tr.AltQty = &alt
	assert.Check(t, tr.UnderlyingQuantity().Equal(alt))
}
