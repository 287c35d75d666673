// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package normalize_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"gotest.tools/v3/assert"

	"cryptolots/internal/ledger"
	"cryptolots/internal/normalize"
	"cryptolots/internal/price"
)

var day1 = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func usdOracle(t *testing.T) *price.Oracle {
	t.Helper()
	tbl := price.Table{}
	tbl.Set("ETH", "2023-01-01", dec("2000"))
	tbl.Set("BTC", "2023-01-01", dec("30000"))
	tbl.Set("BNB", "2023-01-01", dec("300"))
	log, _ := logtest.NewNullLogger()
	return price.NewOracle(tbl, price.Config{InputCurrency: "USD"}, log)
}

func trade(pair string, side ledger.Side, qty, px string) ledger.Trade {
	asset, underlying, _ := strings.Cut(pair, "/")
	return ledger.Trade{
		Exchange:    "Binance",
		Date:        day1,
		Asset:       asset,
		Underlying:  underlying,
		Side:        side,
		Quantity:    dec(qty),
		Price:       dec(px),
		FeeAttached: true,
	}
}

func normalized(t *testing.T, tr ledger.Trade) normalize.Legs {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	legs, err := normalize.Normalize(tr, usdOracle(t), log)
	assert.NilError(t, err)
	return legs
}

func TestNormalize_CrossPair(t *testing.T) {
	t.Run("buy", func(t *testing.T) {
		legs := normalized(t, trade("BTC/ETH", ledger.Buy, "2", "13"))

		assert.Assert(t, legs.Buy != nil)
		assert.Equal(t, legs.Buy.Asset, "BTC")
		assert.Check(t, legs.Buy.Quantity.Equal(dec("2")))
		assert.Check(t, legs.Buy.Price.Equal(dec("26000")), legs.Buy.Price)

		assert.Assert(t, legs.Sell != nil)
		assert.Equal(t, legs.Sell.Asset, "ETH")
		assert.Check(t, legs.Sell.Quantity.Equal(dec("26")))
		assert.Check(t, legs.Sell.Price.Equal(dec("2000")))

		assert.Check(t, legs.Fee == nil)
		assert.Equal(t, len(legs.All()), 2)
	})

	t.Run("sell", func(t *testing.T) {
		legs := normalized(t, trade("BTC/ETH", ledger.Sell, "2", "13"))

		assert.Equal(t, legs.Sell.Asset, "BTC")
		assert.Check(t, legs.Sell.Quantity.Equal(dec("2")))
		assert.Equal(t, legs.Buy.Asset, "ETH")
		assert.Check(t, legs.Buy.Quantity.Equal(dec("26")))
	})

	t.Run("alt quantity overrides", func(t *testing.T) {
		tr := trade("BTC/ETH", ledger.Buy, "2", "13")
		alt := dec("25.5")
		tr.AltQty = &alt
		legs := normalized(t, tr)
		assert.Check(t, legs.Sell.Quantity.Equal(alt))
	})
}

func TestNormalize_InOutCurrencies(t *testing.T) {
	t.Run("fiat quote", func(t *testing.T) {
		legs := normalized(t, trade("BTC/USD", ledger.Sell, "1", "30000"))
		assert.Check(t, legs.Buy == nil)
		assert.Assert(t, legs.Sell != nil)
		assert.Check(t, legs.Sell.Price.Equal(dec("30000")))
	})

	t.Run("fiat base", func(t *testing.T) {
		legs := normalized(t, trade("USD/BTC", ledger.Buy, "30000", "0.00003"))
		assert.Check(t, legs.Buy == nil)
		assert.Assert(t, legs.Sell != nil)
		assert.Equal(t, legs.Sell.Asset, "BTC")
		assert.Check(t, legs.Sell.Quantity.Equal(dec("0.9")))
		assert.Check(t, legs.Sell.Price.Equal(dec("30000")))
	})

	t.Run("both in/out yields nothing", func(t *testing.T) {
		log, _ := logtest.NewNullLogger()
		o := price.NewOracle(price.Table{}, price.Config{InputCurrency: "USD", OutputCurrency: "JPY"}, log)
		legs, err := normalize.Normalize(trade("JPY/USD", ledger.Buy, "1000", "0.0087"), o, log)
		assert.NilError(t, err)
		assert.Check(t, legs.Empty())
		assert.Equal(t, len(legs.All()), 0)
	})
}

func TestNormalize_MissingPriceKeepsLeg(t *testing.T) {
	legs := normalized(t, trade("BTC/XYZ", ledger.Buy, "1", "5"))
	assert.Assert(t, legs.Buy != nil)
	assert.Check(t, legs.Buy.Price.IsZero())
	assert.Assert(t, legs.Sell != nil)
	assert.Check(t, legs.Sell.Price.IsZero())
}

func TestNormalize_Fees(t *testing.T) {
	t.Run("fee in bought asset, not yet deducted", func(t *testing.T) {
		tr := trade("BTC/USD", ledger.Buy, "1", "30000")
		tr.Fee = dec("0.01")
		tr.FeeCurrency = "BTC"
		tr.FeeAttached = false
		legs := normalized(t, tr)

		assert.Check(t, legs.Buy.Quantity.Equal(dec("0.99")), legs.Buy.Quantity)
		assert.Check(t, legs.Buy.Fee.Equal(dec("300")), legs.Buy.Fee)
	})

	t.Run("fee already deducted", func(t *testing.T) {
		tr := trade("BTC/USD", ledger.Buy, "1", "30000")
		tr.Fee = dec("0.01")
		tr.FeeCurrency = "BTC"
		legs := normalized(t, tr)

		assert.Check(t, legs.Buy.Quantity.Equal(dec("1")))
		assert.Check(t, legs.Buy.Fee.Equal(dec("300")))
	})

	t.Run("fee in sold asset attaches to sell", func(t *testing.T) {
		tr := trade("BTC/ETH", ledger.Buy, "2", "13")
		tr.Fee = dec("0.1")
		tr.FeeCurrency = "ETH"
		tr.FeeAttached = false
		legs := normalized(t, tr)

		assert.Check(t, legs.Buy.Fee.IsZero())
		assert.Check(t, legs.Sell.Fee.Equal(dec("200")), legs.Sell.Fee)
		assert.Check(t, legs.Sell.Quantity.Equal(dec("25.9")), legs.Sell.Quantity)
	})

	t.Run("fee in bought asset of a cross pair", func(t *testing.T) {
		tr := trade("BTC/ETH", ledger.Buy, "2", "13")
		tr.Fee = dec("0.002")
		tr.FeeCurrency = "BTC"
		legs := normalized(t, tr)

		assert.Check(t, legs.Buy.Fee.Equal(dec("60")), legs.Buy.Fee)
		assert.Check(t, legs.Sell.Fee.IsZero())
	})

	t.Run("fee in base amount", func(t *testing.T) {
		tr := trade("BTC/USD", ledger.Sell, "1", "30000")
		tr.Fee = dec("0.0004")
		tr.FeeCurrency = "BTC"
		tr.FeeBase = dec("12")
		legs := normalized(t, tr)

		assert.Check(t, legs.Sell.Fee.Equal(dec("12")))
	})

	t.Run("fee in third currency is sold", func(t *testing.T) {
		tr := trade("BTC/ETH", ledger.Buy, "2", "13")
		tr.Fee = dec("0.5")
		tr.FeeCurrency = "BNB"
		tr.FeeAttached = false
		legs := normalized(t, tr)

		assert.Assert(t, legs.Fee != nil)
		assert.Equal(t, legs.Fee.Asset, "BNB")
		assert.Equal(t, legs.Fee.Side, ledger.Sell)
		assert.Check(t, legs.Fee.Quantity.Equal(dec("0.5")))
		assert.Check(t, legs.Fee.Price.Equal(dec("300")))
		assert.Check(t, legs.Fee.Fee.IsZero())

		assert.Check(t, legs.Buy.Fee.IsZero())
		assert.Check(t, legs.Buy.Quantity.Equal(dec("2")))
		assert.Check(t, legs.Sell.Fee.IsZero())
		assert.Check(t, legs.Sell.Quantity.Equal(dec("26")))
		assert.Equal(t, len(legs.All()), 3)
	})

	t.Run("zero fee in third currency adds no leg", func(t *testing.T) {
		tr := trade("BTC/ETH", ledger.Buy, "2", "13")
		tr.FeeCurrency = "BNB"
		legs := normalized(t, tr)
		assert.Check(t, legs.Fee == nil)
	})

	t.Run("fiat fee attaches to the only leg", func(t *testing.T) {
		tr := trade("ETH/USD", ledger.Sell, "1", "2000")
		tr.Fee = dec("2.5")
		tr.FeeCurrency = "USD"
		legs := normalized(t, tr)
		assert.Check(t, legs.Fee == nil)
		assert.Check(t, legs.Sell.Fee.Equal(dec("2.5")))
	})
}

func TestNormalize_Invalid(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	for name, mod := range map[string]func(*ledger.Trade){
		"zero quantity":   func(tr *ledger.Trade) { tr.Quantity = decimal.Zero },
		"negative price":  func(tr *ledger.Trade) { tr.Price = dec("-1") },
		"same currencies": func(tr *ledger.Trade) { tr.Underlying = tr.Asset },
		"transfer side":   func(tr *ledger.Trade) { tr.Side = ledger.Transfer },
		"negative fee":    func(tr *ledger.Trade) { tr.Fee = dec("-0.1") },
	} {
		t.Run(name, func(t *testing.T) {
			tr := trade("BTC/ETH", ledger.Buy, "2", "13")
			mod(&tr)
			_, err := normalize.Normalize(tr, usdOracle(t), log)
			assert.Assert(t, errors.Is(err, normalize.ErrInvalidTrade), err)
		})
	}
}
