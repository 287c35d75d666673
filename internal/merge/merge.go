// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package merge coalesces near-identical consecutive executions of one asset.
package merge

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cryptolots/internal/ledger"
)

// priceBand is the largest relative price difference two executions may have and still merge.
var priceBand = decimal.New(4, -1)

// Window is the time two executions may be apart and still merge. Zero disables merging.
type Window time.Duration

func Minutes(m int) Window {
	return Window(time.Duration(m) * time.Minute)
}

func (w Window) Enabled() bool {
	return w > 0
}

// Executions folds executions left to right in a single pass. An execution joins the
// current accumulator when both are on the same exchange and side and their prices and
// times are close; otherwise it starts a new accumulator. Accumulators are mutated in place.
func Executions(executions []*ledger.Execution, w Window, log logrus.FieldLogger) []*ledger.Execution {
	if !w.Enabled() || len(executions) < 2 {
		return executions
	}
	out := make([]*ledger.Execution, 0, len(executions))
	var current *ledger.Execution
	for _, e := range executions {
		if current != nil && Mergeable(current, e, w) {
			log.WithField("asset", e.Asset).Debugf("merging %s into %s", e, current)
			current.Absorb(e)
			continue
		}
		current = e
		out = append(out, e)
	}
	return out
}

// All merges every asset's executions with the same window.
func All(byAsset map[string][]*ledger.Execution, w Window, log logrus.FieldLogger) map[string][]*ledger.Execution {
	out := make(map[string][]*ledger.Execution, len(byAsset))
	for asset, executions := range byAsset {
		out[asset] = Executions(executions, w, log)
	}
	return out
}

func Mergeable(a, b *ledger.Execution, w Window) bool {
	if a.IsTransfer() || b.IsTransfer() {
		return false
	}
	return a.Exchange == b.Exchange &&
		a.Side == b.Side &&
		PriceClose(a.Price, b.Price) &&
		TimeClose(a.Date, b.Date, w)
}

// PriceClose reports |p1-p2|/p1 < 0.4. It is false when p1 is zero.
func PriceClose(p1, p2 decimal.Decimal) bool {
	if p1.IsZero() {
		return false
	}
	return p1.Sub(p2).Abs().Div(p1).Abs().LessThan(priceBand)
}

// TimeClose compares whole seconds, as the trade dates carry no finer precision.
func TimeClose(t1, t2 time.Time, w Window) bool {
	if !w.Enabled() {
		return false
	}
	secs := t1.Unix() - t2.Unix()
	if secs < 0 {
		secs = -secs
	}
	return secs < int64(time.Duration(w)/time.Second)
}
