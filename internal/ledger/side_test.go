// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package ledger_test

import (
	"encoding/json"
	"testing"

	gojson "github.com/goccy/go-json"
	"gotest.tools/v3/assert"

	"cryptolots/internal/ledger"
)

func TestParseSide(t *testing.T) {
	for in, want := range map[string]ledger.Side{
		"Buy":      ledger.Buy,
		"sell":     ledger.Sell,
		" SELL ":   ledger.Sell,
		"Transfer": ledger.Transfer,
	} {
		got, err := ledger.ParseSide(in)
		assert.NilError(t, err, in)
		assert.Equal(t, got, want, in)
	}

	_, err := ledger.ParseSide("short")
	assert.ErrorContains(t, err, `unsupported side: "short"`)
}

func TestSide_Opposite(t *testing.T) {
	assert.Equal(t, ledger.Buy.Opposite(), ledger.Sell)
	assert.Equal(t, ledger.Sell.Opposite(), ledger.Buy)
	assert.Equal(t, ledger.Transfer.Opposite(), ledger.Transfer)
}

func TestSide_JSON(t *testing.T) {
	type holder struct {
		Side ledger.Side `json:"side"`
	}
	val, err := json.Marshal(holder{ledger.Sell})
	assert.NilError(t, err)
	assert.Equal(t, string(val), `{"side":"Sell"}`)

	var h holder
	assert.NilError(t, json.Unmarshal([]byte(`{"side":"Transfer"}`), &h))
	assert.Equal(t, h.Side, ledger.Transfer)

	_, err = json.Marshal(holder{ledger.Side(9)})
	assert.ErrorContains(t, err, "invalid side 9")

	val, err = gojson.Marshal(holder{ledger.Buy})
	assert.NilError(t, err)
	assert.Equal(t, string(val), `{"side":"Buy"}`, "go-json buy")

	assert.NilError(t, gojson.Unmarshal([]byte(`{"side":"Sell"}`), &h))
	assert.Equal(t, h.Side, ledger.Sell, "go-json sell")

	_, err = gojson.Marshal(holder{ledger.Side(9)})
	assert.ErrorContains(t, err, "invalid side 9")
}
