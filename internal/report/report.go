// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package report prints matching results: Form 8949 lines, open basis and unmatched lots.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"cryptolots/internal/ledger"
	"cryptolots/internal/match"
)

const formDate = "01/02/2006"

type Output string

const (
	OutputMatch     Output = "match"
	OutputBasis     Output = "basis"
	OutputUnmatched Output = "unmatched"
	OutputSummary   Output = "summary"
	OutputJSON      Output = "json"
)

func ParseOutput(value string) (Output, error) {
	o := Output(strings.ToLower(strings.TrimSpace(value)))
	switch o {
	case OutputMatch, OutputBasis, OutputUnmatched, OutputSummary, OutputJSON:
		return o, nil
	}
	return "", errors.Errorf("unsupported output: %q", value)
}

// Write renders res in the requested output. currency labels basis amounts.
func Write(w io.Writer, o Output, res *match.Result, currency string) error {
	switch o {
	case OutputMatch:
		return Matches(w, res.Matches)
	case OutputJSON:
		return JSON(w, res)
	case OutputBasis:
		return Basis(w, res, currency)
	case OutputUnmatched:
		return Unmatched(w, res)
	case OutputSummary:
		return Summary(w, res, currency)
	}
	return errors.Errorf("unsupported output: %q", o)
}

// FormLine is a match as one tab-separated Form 8949 line.
func FormLine(m ledger.Match) string {
	return strings.Join([]string{
		fmt.Sprintf("%s %s %s (%s -> %s)", m.SettleSide, m.Quantity.StringFixed(4), m.Asset, m.ExchangeFrom, m.ExchangeTo),
		m.DateFrom.Format(formDate),
		m.DateTo.Format(formDate),
		m.Proceeds().StringFixed(2),
		m.Cost().StringFixed(2),
		mergedFlag(m.Merged),
		"0",
		m.Gain().StringFixed(2),
	}, "\t")
}

func mergedFlag(merged bool) string {
	if merged {
		return "M"
	}
	return ""
}

func Matches(w io.Writer, matches []ledger.Match) error {
	for _, m := range matches {
		if _, err := fmt.Fprintln(w, FormLine(m)); err != nil {
			return err
		}
	}
	return nil
}

// Aggregate totals a list of executions. The average price is zero when nothing is held.
type Aggregate struct {
	Quantity decimal.Decimal
	AvgPrice decimal.Decimal
	Fees     decimal.Decimal
}

func Aggregated(executions []*ledger.Execution) Aggregate {
	var a Aggregate
	amount := decimal.Zero
	for _, e := range executions {
		a.Quantity = a.Quantity.Add(e.Quantity)
		amount = amount.Add(e.Notional())
		a.Fees = a.Fees.Add(e.Fee)
	}
	if !a.Quantity.IsZero() {
		a.AvgPrice = amount.Div(a.Quantity)
	}
	return a
}

// Basis prints one cost basis line per open asset, then transfer fee losses.
func Basis(w io.Writer, res *match.Result, currency string) error {
	return Open(w, res, currency, true, false)
}

func Unmatched(w io.Writer, res *match.Result) error {
	return Open(w, res, "", false, true)
}

// Summary is Basis with each asset's open executions listed under its basis line.
func Summary(w io.Writer, res *match.Result, currency string) error {
	return Open(w, res, currency, true, true)
}

// Open prints each asset with open executions, in name order: the basis line, the
// executions themselves, or both.
func Open(w io.Writer, res *match.Result, currency string, basis, unmatched bool) error {
	assets := make([]string, 0, len(res.Leftovers))
	for a, executions := range res.Leftovers {
		if len(executions) > 0 {
			assets = append(assets, a)
		}
	}
	sort.Strings(assets)

	for _, asset := range assets {
		executions := res.Leftovers[asset]
		if basis {
			a := Aggregated(executions)
			if _, err := fmt.Fprintf(w, "%s : %s @ %s %s with %s %s fees\n",
				asset, a.Quantity.StringFixed(4), currency, a.AvgPrice.StringFixed(4), currency, a.Fees.StringFixed(2)); err != nil {
				return err
			}
		}
		if unmatched {
			for _, e := range executions {
				if _, err := fmt.Fprintf(w, "  %s\n", e); err != nil {
					return err
				}
			}
		}
	}
	if basis {
		return transferFees(w, res.TransferFees)
	}
	return nil
}

func transferFees(w io.Writer, fees map[string]decimal.Decimal) error {
	assets := make([]string, 0, len(fees))
	for a, f := range fees {
		if !f.IsZero() {
			assets = append(assets, a)
		}
	}
	sort.Strings(assets)
	for _, a := range assets {
		if _, err := fmt.Fprintf(w, "%s : %s lost to transfer fees\n", a, fees[a].String()); err != nil {
			return err
		}
	}
	return nil
}

func JSON(w io.Writer, res *match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
