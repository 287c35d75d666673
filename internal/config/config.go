// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

// Package config loads run settings from defaults, an optional YAML file, .env and the
// environment, in that order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"cryptolots/internal/match"
	"cryptolots/internal/report"
)

const envPrefix = "CRYPTOLOTS_"

type Config struct {
	CurrencyHist string   `yaml:"currency_hist"` // currency of the price sheet
	CurrencyOut  string   `yaml:"currency_out"`  // reporting currency, defaults to CurrencyHist
	Direct       bool     `yaml:"direct"`
	MergeMinutes int      `yaml:"merge_minutes"`
	Strategy     string   `yaml:"strategy"`
	Fiat         []string `yaml:"fiat"`
	XferUpdate   bool     `yaml:"xfer_update"`
	Output       string   `yaml:"output"`
	Verbose      bool     `yaml:"verbose"`

	Trades    string `yaml:"trades"`
	Prices    string `yaml:"prices"`
	Transfers string `yaml:"transfers"`
}

func Default() *Config {
	return &Config{
		CurrencyHist: "USD",
		Strategy:     match.FIFO.String(),
		Output:       string(report.OutputMatch),
	}
}

// Load applies the YAML file at path (if any), then .env and CRYPTOLOTS_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading config")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config %s", path)
		}
	}

	_ = godotenv.Load() // .env is optional
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs error
	if v, ok := lookupEnv("CURRENCY_HIST"); ok {
		c.CurrencyHist = v
	}
	if v, ok := lookupEnv("CURRENCY_OUT"); ok {
		c.CurrencyOut = v
	}
	if v, ok := lookupEnv("STRATEGY"); ok {
		c.Strategy = v
	}
	if v, ok := lookupEnv("OUTPUT"); ok {
		c.Output = v
	}
	if v, ok := lookupEnv("FIAT"); ok {
		c.Fiat = SplitList(v)
	}
	if v, ok := lookupEnv("TRADES"); ok {
		c.Trades = v
	}
	if v, ok := lookupEnv("PRICES"); ok {
		c.Prices = v
	}
	if v, ok := lookupEnv("TRANSFERS"); ok {
		c.Transfers = v
	}
	for name, dst := range map[string]*bool{"DIRECT": &c.Direct, "XFER_UPDATE": &c.XferUpdate, "VERBOSE": &c.Verbose} {
		if v, ok := lookupEnv(name); ok {
			b, err := cast.ToBoolE(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				continue
			}
			*dst = b
		}
	}
	if v, ok := lookupEnv("MERGE_MINUTES"); ok {
		n, err := cast.ToIntE(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%sMERGE_MINUTES: %w", envPrefix, err))
		} else {
			c.MergeMinutes = n
		}
	}
	return errs
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + name)
	return strings.TrimSpace(v), ok
}

// OutputCurrency is CurrencyOut, or CurrencyHist when unset.
func (c *Config) OutputCurrency() string {
	if c.CurrencyOut != "" {
		return c.CurrencyOut
	}
	return c.CurrencyHist
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs error
	if c.CurrencyHist == "" {
		errs = multierr.Append(errs, errors.New("currency_hist is required"))
	}
	if c.MergeMinutes < 0 {
		errs = multierr.Append(errs, errors.Errorf("merge_minutes must not be negative, got %d", c.MergeMinutes))
	}
	if _, err := match.ParseStrategy(c.Strategy); err != nil {
		errs = multierr.Append(errs, err)
	}
	if _, err := report.ParseOutput(c.Output); err != nil {
		errs = multierr.Append(errs, err)
	}
	if c.Trades == "" {
		errs = multierr.Append(errs, errors.New("trades file is required"))
	}
	return errs
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
