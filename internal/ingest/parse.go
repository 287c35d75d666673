// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package ingest reads the tab-separated trade, price and transfer files.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// ErrMalformedRecord marks a row that cannot be turned into a record.
var ErrMalformedRecord = errors.New("malformed record")

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 MST",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(ErrMalformedRecord, "unable to parse time %q", s)
}

// parseDecimal strips thousands separators. Unlike a spreadsheet export guesser, anything
// still not a number is an error.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(ErrMalformedRecord, "not a number: %q", s)
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	b, err := cast.ToBoolE(strings.TrimSpace(s))
	if err != nil {
		return false, errors.Wrapf(ErrMalformedRecord, "not a bool: %q", s)
	}
	return b, nil
}

// rows yields tab-separated rows with their 1-based line numbers, skipping blank and
// commented lines.
func rows(r io.Reader, fn func(line int, fields []string) error) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(ErrMalformedRecord, "%v", err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if err := fn(line, fields); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
	}
}

func openFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	v, err := read(f)
	if err != nil {
		return zero, errors.Wrap(err, path)
	}
	return v, nil
}
