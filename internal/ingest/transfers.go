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

const transferFields = 6

// ReadTransfers reads rows of from, to, date, asset, quantity, fee. Only the fee matters
// for matching; the moved quantity stays on the books.
func ReadTransfers(r io.Reader) ([]*ledger.Execution, error) {
	var transfers []*ledger.Execution
	err := rows(r, func(_ int, f []string) error {
		if len(f) != transferFields {
			return errors.Wrapf(ErrMalformedRecord, "transfer has %d fields", len(f))
		}
		date, err := parseTime(f[2])
		if err != nil {
			return err
		}
		if _, err := parseDecimal(f[4]); err != nil {
			return err
		}
		fee, err := parseDecimal(f[5])
		if err != nil {
			return err
		}
		if fee.IsNegative() {
			return errors.Wrapf(ErrMalformedRecord, "negative fee %s", fee)
		}
		asset := strings.TrimSpace(f[3])
		if asset == "" {
			return errors.Wrap(ErrMalformedRecord, "missing asset")
		}
		exchange := strings.TrimSpace(f[0]) + " -> " + strings.TrimSpace(f[1])
		transfers = append(transfers, ledger.NewTransfer(exchange, date, asset, fee))
		return nil
	})
	return transfers, err
}

func OpenTransfers(path string) ([]*ledger.Execution, error) {
	return openFile(path, ReadTransfers)
}
