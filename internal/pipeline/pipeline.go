// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package pipeline runs trades and transfers through normalization, merging and matching.
package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"cryptolots/internal/ledger"
	"cryptolots/internal/match"
	"cryptolots/internal/merge"
	"cryptolots/internal/normalize"
)

type Input struct {
	Trades    []ledger.Trade
	Transfers []*ledger.Execution // consumed in place by matching
}

type Options struct {
	Pricer     normalize.Pricer
	Fiat       []string // executions in these assets are never matched
	Window     merge.Window
	Strategy   match.Strategy
	XferUpdate bool
}

// Run produces matches, open positions and transfer losses. Assets share nothing, so each
// one is merged and matched on its own goroutine; results are assembled in asset order.
func Run(ctx context.Context, in Input, opts Options, log logrus.FieldLogger) (*match.Result, error) {
	fiat := map[string]bool{}
	for _, f := range opts.Fiat {
		if f = strings.TrimSpace(f); f != "" {
			fiat[f] = true
		}
	}

	byAsset, err := Executions(in.Trades, opts.Pricer, fiat, log)
	if err != nil {
		return nil, err
	}
	transfers := map[string][]*ledger.Execution{}
	for _, t := range in.Transfers {
		if fiat[t.Asset] {
			continue
		}
		transfers[t.Asset] = append(transfers[t.Asset], t)
	}

	assets := make([]string, 0, len(byAsset)+len(transfers))
	for a := range byAsset {
		assets = append(assets, a)
	}
	for a := range transfers {
		if _, ok := byAsset[a]; !ok {
			assets = append(assets, a)
		}
	}
	sort.Strings(assets)

	matcher := match.New(opts.Strategy, opts.XferUpdate, log)
	results := make([]match.AssetResult, len(assets))
	g, ctx := errgroup.WithContext(ctx)
	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			executions := merge.Executions(byAsset[asset], opts.Window, log)
			executions = append(executions, transfers[asset]...)
			sortByDate(executions)
			ar, err := matcher.Asset(asset, executions)
			if err != nil {
				return errors.Wrapf(err, "matching %s", asset)
			}
			results[i] = ar
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := match.NewResult()
	for _, ar := range results {
		res.Add(ar)
	}
	return res, nil
}

// Executions normalizes trades in date order and groups the resulting executions by asset,
// dropping fiat assets.
func Executions(trades []ledger.Trade, p normalize.Pricer, fiat map[string]bool, log logrus.FieldLogger) (map[string][]*ledger.Execution, error) {
	sorted := make([]ledger.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	byAsset := map[string][]*ledger.Execution{}
	for i, t := range sorted {
		legs, err := normalize.Normalize(t, p, log)
		if err != nil {
			return nil, errors.Wrapf(err, "trade %d", i+1)
		}
		if legs.Empty() {
			log.WithField("date", t.Date).Debugf("%s has no reportable leg", t.Pair())
			continue
		}
		for _, e := range legs.All() {
			if fiat[e.Asset] {
				continue
			}
			byAsset[e.Asset] = append(byAsset[e.Asset], e)
		}
	}
	return byAsset, nil
}

// sortByDate keeps arrival order for executions at the same instant, so trades
// settle before transfers stamped with the same second.
func sortByDate(executions []*ledger.Execution) {
	sort.SliceStable(executions, func(i, j int) bool {
		return executions[i].Date.Before(executions[j].Date)
	})
}
