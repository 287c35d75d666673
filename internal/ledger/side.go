// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package ledger holds the records passed between ingestion, the tax lot core and reporting.
package ledger

import (
	"strings"

	"github.com/pkg/errors"
)

type Side uint8

const (
	Buy Side = iota + 1
	Sell
	Transfer

	sideBuyStr      = "Buy"
	sideSellStr     = "Sell"
	sideTransferStr = "Transfer"
)

func (s Side) String() string {
	switch s {
	case Buy:
		return sideBuyStr
	case Sell:
		return sideSellStr
	case Transfer:
		return sideTransferStr
	}
	return "Unknown"
}

// Opposite flips Buy and Sell. Transfer has no opposite and is returned unchanged.
func (s Side) Opposite() Side {
	switch s {
	case Buy:
		return Sell
	case Sell:
		return Buy
	}
	return s
}

func (s Side) MarshalText() ([]byte, error) {
	switch s {
	case Buy, Sell, Transfer:
		return []byte(s.String()), nil
	}
	return nil, errors.Errorf("invalid side %d", s)
}

func (s *Side) UnmarshalText(data []byte) error {
	parsed, err := ParseSide(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSide accepts the side names case-insensitively.
func ParseSide(value string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	case "transfer":
		return Transfer, nil
	}
	return 0, errors.Errorf("unsupported side: %q", value)
}
