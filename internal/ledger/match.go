// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	quantityPlaces = 4
	moneyPlaces    = 2
)

// Match closes an opening execution against a later opposing one.
type Match struct {
	ExchangeFrom string          `json:"exchange_from"`
	ExchangeTo   string          `json:"exchange_to"`
	DateFrom     time.Time       `json:"date_from"`
	DateTo       time.Time       `json:"date_to"`
	Asset        string          `json:"asset"`
	SettleSide   Side            `json:"settle_side"`
	Quantity     decimal.Decimal `json:"quantity"`
	AmountOpen   decimal.Decimal `json:"amount_open"`
	AmountClose  decimal.Decimal `json:"amount_close"`
	FeeOpen      decimal.Decimal `json:"fee_open"`
	FeeClose     decimal.Decimal `json:"fee_close"`
	Merged       bool            `json:"merged"`
}

// NewMatch records quantity of open closed by settle. Amounts are open/settle price times
// quantity; quantity is rounded to 4 places and money to 2, half to even.
func NewMatch(open, settle *Execution, quantity, feeOpen, feeClose decimal.Decimal) Match {
	return Match{
		ExchangeFrom: open.Exchange,
		ExchangeTo:   settle.Exchange,
		DateFrom:     open.Date,
		DateTo:       settle.Date,
		Asset:        settle.Asset,
		SettleSide:   settle.Side,
		Quantity:     quantity.RoundBank(quantityPlaces),
		AmountOpen:   open.Price.Mul(quantity).RoundBank(moneyPlaces),
		AmountClose:  settle.Price.Mul(quantity).RoundBank(moneyPlaces),
		FeeOpen:      feeOpen.RoundBank(moneyPlaces),
		FeeClose:     feeClose.RoundBank(moneyPlaces),
		Merged:       open.Merged || settle.Merged,
	}
}

// Proceeds is the closing amount net of the closing fee.
func (m Match) Proceeds() decimal.Decimal {
	return m.AmountClose.Sub(m.FeeClose)
}

// Cost is the opening amount plus the opening fee.
func (m Match) Cost() decimal.Decimal {
	return m.AmountOpen.Add(m.FeeOpen)
}

// Gain is the realized gain or loss: proceeds less cost less both fees.
func (m Match) Gain() decimal.Decimal {
	return m.AmountClose.Sub(m.AmountOpen).Sub(m.FeeOpen).Sub(m.FeeClose)
}
