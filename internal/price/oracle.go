// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package price resolves historical prices of any asset in the reporting currency.
package price

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const warnedSize = 4096

type Config struct {
	InputCurrency  string   // currency the Table is denominated in
	OutputCurrency string   // defaults to InputCurrency
	Direct         bool     // always look assets up in the Table
	Quiet          []string // never warn about missing prices for these
}

// Oracle resolves prices relative to its output currency. Missing table entries resolve
// to zero and are warned about once per currency and day.
type Oracle struct {
	table  Table
	in     string
	out    string
	direct bool
	quiet  map[string]bool
	warned *lru.Cache
	log    logrus.FieldLogger
}

func NewOracle(table Table, cfg Config, log logrus.FieldLogger) *Oracle {
	out := cfg.OutputCurrency
	if out == "" {
		out = cfg.InputCurrency
	}
	quiet := map[string]bool{}
	for _, c := range cfg.Quiet {
		quiet[strings.TrimSpace(c)] = true
	}
	warned, _ := lru.New(warnedSize) // only fails for a non-positive size
	if table == nil {
		table = Table{}
	}
	return &Oracle{
		table:  table,
		in:     cfg.InputCurrency,
		out:    out,
		direct: cfg.Direct,
		quiet:  quiet,
		warned: warned,
		log:    log,
	}
}

func (o *Oracle) InputCurrency() string  { return o.in }
func (o *Oracle) OutputCurrency() string { return o.out }

func (o *Oracle) IsInputCurrency(currency string) bool  { return currency == o.in }
func (o *Oracle) IsOutputCurrency(currency string) bool { return currency == o.out }

func (o *Oracle) IsInOutCurrency(currency string) bool {
	return o.IsInputCurrency(currency) || o.IsOutputCurrency(currency)
}

// Price is the historical price of currency on date. An empty currency means the output
// currency itself, which is always 1.
func (o *Oracle) Price(date time.Time, currency string) decimal.Decimal {
	return o.resolve(date, currency, "", nil)
}

// CrossPrice prices currency through base using units, the traded rate of currency in base.
// In direct mode the base is ignored and currency comes straight from the table.
func (o *Oracle) CrossPrice(date time.Time, currency, base string, units decimal.Decimal) decimal.Decimal {
	return o.resolve(date, currency, base, &units)
}

func (o *Oracle) resolve(date time.Time, currency, base string, units *decimal.Decimal) decimal.Decimal {
	if currency == "" || o.IsOutputCurrency(currency) {
		return decimal.NewFromInt(1)
	}

	inToOut := decimal.NewFromInt(1)
	if o.in != o.out {
		inToOut = o.lookup(o.out, date)
		if inToOut.IsZero() {
			// unknown conversion rate, fall back to treating the currencies as equal
			inToOut = decimal.NewFromInt(1)
		}
	}

	if o.IsInputCurrency(currency) {
		if units != nil {
			return *units
		}
		return inToOut
	}

	if o.direct || base == "" {
		return o.lookup(currency, date).Div(inToOut)
	}

	var px decimal.Decimal
	if units != nil {
		px = *units
	} else {
		px = decimal.NewFromInt(1)
	}
	return o.resolve(date, base, "", nil).Mul(px)
}

func (o *Oracle) lookup(currency string, date time.Time) decimal.Decimal {
	if p, ok := o.table.Get(currency, date); ok {
		return p
	}
	if o.quiet[currency] {
		return decimal.Zero
	}
	key := currency + "@" + Day(date)
	if seen, _ := o.warned.ContainsOrAdd(key, struct{}{}); !seen {
		o.log.WithFields(logrus.Fields{"currency": currency, "date": Day(date)}).Warn("price not found, using 0")
	}
	return decimal.Zero
}
