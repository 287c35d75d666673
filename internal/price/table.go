// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package price

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout keys a Table's inner map.
const DayLayout = "2006-01-02"

// Table maps asset -> calendar day -> price in the oracle input currency.
type Table map[string]map[string]decimal.Decimal

func Day(date time.Time) string {
	return date.Format(DayLayout)
}

// Set stores a price, creating the asset bucket if needed.
func (t Table) Set(asset, day string, price decimal.Decimal) {
	if _, ok := t[asset]; !ok {
		t[asset] = make(map[string]decimal.Decimal)
	}
	t[asset][day] = price
}

// Get reports the price on date's calendar day.
func (t Table) Get(asset string, date time.Time) (decimal.Decimal, bool) {
	days, ok := t[asset]
	if !ok {
		return decimal.Zero, false
	}
	p, ok := days[Day(date)]
	return p, ok
}
