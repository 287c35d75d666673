// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package match realizes gains by matching opposing executions of each asset FIFO or LIFO.
package match

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cryptolots/internal/ledger"
)

var ErrNegativeQuantity = errors.New("negative execution quantity")

// AssetResult is the outcome of matching one asset's executions.
type AssetResult struct {
	Asset        string
	Matches      []ledger.Match
	Leftovers    []*ledger.Execution // still open, in arrival order
	TransferFees decimal.Decimal     // transfer fees kept apart as a loss of basis
	Discarded    decimal.Decimal     // transfer fee that found nothing left to reduce
}

type Result struct {
	Matches      []ledger.Match                 `json:"matches"`
	Leftovers    map[string][]*ledger.Execution `json:"leftovers"`
	TransferFees map[string]decimal.Decimal     `json:"transfer_fees"`
	Discarded    map[string]decimal.Decimal     `json:"discarded,omitempty"`
}

func NewResult() *Result {
	return &Result{
		Leftovers:    make(map[string][]*ledger.Execution),
		TransferFees: make(map[string]decimal.Decimal),
		Discarded:    make(map[string]decimal.Decimal),
	}
}

// Add appends one asset's outcome. Assets with nothing open or lost leave no map entry.
func (r *Result) Add(a AssetResult) {
	r.Matches = append(r.Matches, a.Matches...)
	if len(a.Leftovers) > 0 {
		r.Leftovers[a.Asset] = a.Leftovers
	}
	if !a.TransferFees.IsZero() {
		r.TransferFees[a.Asset] = r.TransferFees[a.Asset].Add(a.TransferFees)
	}
	if !a.Discarded.IsZero() {
		r.Discarded[a.Asset] = r.Discarded[a.Asset].Add(a.Discarded)
	}
}

type Matcher struct {
	strategy   Strategy
	xferUpdate bool
	log        logrus.FieldLogger
}

// New returns a Matcher. With xferUpdate, transfer fees reduce the waiting executions in
// place instead of being tallied as a separate loss.
func New(strategy Strategy, xferUpdate bool, log logrus.FieldLogger) *Matcher {
	return &Matcher{strategy: strategy, xferUpdate: xferUpdate, log: log}
}

// All matches every asset, in asset name order.
func (m *Matcher) All(byAsset map[string][]*ledger.Execution) (*Result, error) {
	assets := make([]string, 0, len(byAsset))
	for a := range byAsset {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	res := NewResult()
	for _, a := range assets {
		ar, err := m.Asset(a, byAsset[a])
		if err != nil {
			return nil, err
		}
		res.Add(ar)
	}
	return res, nil
}

// Asset runs the queue for one asset. executions must be in date order and are owned by
// the matcher from here on: their quantities and fees are consumed in place.
func (m *Matcher) Asset(asset string, executions []*ledger.Execution) (AssetResult, error) {
	res := AssetResult{Asset: asset}
	log := m.log.WithField("asset", asset)
	q := newQueue(m.strategy)

	for _, e := range executions {
		if e.Quantity.IsNegative() || e.Fee.IsNegative() {
			return AssetResult{}, errors.Wrapf(ErrNegativeQuantity, "%s", e)
		}
		switch {
		case e.IsTransfer():
			m.transfer(q, e, &res, log)
		case e.Quantity.IsZero():
			log.Debugf("skipping empty execution %s", e)
		case q.empty() || q.peek().Side == e.Side:
			q.push(e)
		default:
			res.Matches = settle(q, e, res.Matches)
		}
	}

	res.Leftovers = q.drain()
	return res, nil
}

// settle closes waiting executions against e until one side runs out. Whatever is left of
// e when the queue empties waits on the opposite side.
func settle(q *queue, e *ledger.Execution, matches []ledger.Match) []ledger.Match {
	for {
		first := q.take()
		qty := minDecimal(first.Quantity, e.Quantity)
		feeFirst := consume(first, qty)
		feeExec := consume(e, qty)
		matches = append(matches, ledger.NewMatch(first, e, qty, feeFirst, feeExec))

		if !e.Quantity.IsPositive() {
			if first.Quantity.IsPositive() {
				q.add(first)
			}
			return matches
		}
		if q.empty() {
			q.push(e)
			return matches
		}
	}
}

func (m *Matcher) transfer(q *queue, e *ledger.Execution, res *AssetResult, log logrus.FieldLogger) {
	if !m.xferUpdate {
		res.TransferFees = res.TransferFees.Add(e.Quantity)
		return
	}
	if e.Fee.IsZero() {
		return
	}
	for !q.empty() {
		first := q.take()
		qty := minDecimal(first.Quantity, e.Fee)
		consume(first, qty)
		e.Fee = e.Fee.Sub(qty)
		e.Quantity = e.Fee

		if !e.Fee.IsPositive() {
			if first.Quantity.IsPositive() {
				q.add(first)
			}
			return
		}
	}
	log.WithField("exchange", e.Exchange).Errorf("transfer fee %s has nothing left to reduce, ignoring it", e.Fee)
	res.Discarded = res.Discarded.Add(e.Fee)
}

// consume removes qty from e along with the same share of its remaining fee, and returns
// that fee share. Taking everything takes the whole fee so nothing is stranded by rounding.
func consume(e *ledger.Execution, qty decimal.Decimal) decimal.Decimal {
	fee := e.Fee
	if !qty.Equal(e.Quantity) {
		fee = e.Fee.Mul(qty).Div(e.Quantity)
	}
	e.Fee = e.Fee.Sub(fee)
	e.Quantity = e.Quantity.Sub(qty)
	return fee
}

func minDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
