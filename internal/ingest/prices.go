// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ingest

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"cryptolots/internal/price"
)

// ReadPrices reads a price sheet whose header names one currency per column. Only bare
// "XXX" and "XXX OPEN" columns are kept; empty cells are gaps.
func ReadPrices(r io.Reader) (price.Table, error) {
	table := price.Table{}
	var columns map[int]string
	err := rows(r, func(_ int, f []string) error {
		if columns == nil {
			columns = priceColumns(f)
			return nil
		}
		day, err := parseTime(f[0])
		if err != nil {
			return err
		}
		for i, cell := range f[1:] {
			currency, ok := columns[i]
			if !ok || strings.TrimSpace(cell) == "" {
				continue
			}
			p, err := parseDecimal(cell)
			if err != nil {
				return errors.Wrap(err, currency)
			}
			table.Set(currency, price.Day(day), p)
		}
		return nil
	})
	return table, err
}

func OpenPrices(path string) (price.Table, error) {
	return openFile(path, ReadPrices)
}

func priceColumns(header []string) map[int]string {
	columns := map[int]string{}
	for i, h := range header[1:] {
		h = strings.TrimSpace(h)
		if h == "" || strings.Contains(h, " ") && !strings.Contains(h, " OPEN") {
			continue
		}
		columns[i] = strings.Fields(h)[0]
	}
	return columns
}
