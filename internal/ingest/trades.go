// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ingest

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"cryptolots/internal/ledger"
)

const (
	tradeFields    = 10
	tradeAltFields = 11
)

// ReadTrades reads rows of
// exchange, date, pair, side, price, quantity, fee, fee currency, fee in base, fee attached[, alt qty].
func ReadTrades(r io.Reader) ([]ledger.Trade, error) {
	var trades []ledger.Trade
	err := rows(r, func(_ int, f []string) error {
		t, err := parseTrade(f)
		if err != nil {
			return err
		}
		trades = append(trades, t)
		return nil
	})
	return trades, err
}

func OpenTrades(path string) ([]ledger.Trade, error) {
	return openFile(path, ReadTrades)
}

func parseTrade(f []string) (ledger.Trade, error) {
	if len(f) != tradeFields && len(f) != tradeAltFields {
		return ledger.Trade{}, errors.Wrapf(ErrMalformedRecord, "trade has %d fields", len(f))
	}
	var (
		t   ledger.Trade
		err error
	)
	t.Exchange = strings.TrimSpace(f[0])
	if t.Date, err = parseTime(f[1]); err != nil {
		return t, err
	}
	pair := strings.Split(strings.TrimSpace(f[2]), "/")
	if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
		return t, errors.Wrapf(ErrMalformedRecord, "pair %q", f[2])
	}
	t.Asset, t.Underlying = pair[0], pair[1]
	if t.Side, err = ledger.ParseSide(f[3]); err != nil || t.Side == ledger.Transfer {
		return t, errors.Wrapf(ErrMalformedRecord, "side %q", f[3])
	}
	if t.Price, err = parseDecimal(f[4]); err != nil {
		return t, err
	}
	if t.Quantity, err = parseDecimal(f[5]); err != nil {
		return t, err
	}
	if t.Fee, err = parseDecimal(f[6]); err != nil {
		return t, err
	}
	t.FeeCurrency = strings.TrimSpace(f[7])
	if t.FeeBase, err = parseDecimal(f[8]); err != nil {
		return t, err
	}
	if t.FeeAttached, err = parseBool(f[9]); err != nil {
		return t, err
	}
	if len(f) == tradeAltFields && strings.TrimSpace(f[10]) != "" {
		alt, err := parseDecimal(f[10])
		if err != nil {
			return t, err
		}
		t.AltQty = &alt
	}
	return t, nil
}
