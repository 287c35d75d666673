// Copyright (c) 2025-present Marko Kocić <marko@euptera.com>
// SPDX-License-Identifier: EPL-2.0
// See LICENSE for full license text.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"cryptolots/internal/config"
	"cryptolots/internal/ingest"
	"cryptolots/internal/ledger"
	"cryptolots/internal/match"
	"cryptolots/internal/merge"
	"cryptolots/internal/pipeline"
	"cryptolots/internal/price"
	"cryptolots/internal/report"
)

// Form 8949 lot matching for crypto trades.
// Usage: cryptolots -t trades.tsv [-p prices.tsv] [-x transfers.tsv] [-s fifo|lifo] [-m MINUTES] [--fiat USD,EUR] [-o match] [-v]

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, config.SplitList(v)...)
	return nil
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return logger
}

func main() {
	var fiat listFlag
	configPath := flag.String("c", "", "optional YAML config file")
	trades := flag.String("t", "", "filename for trade data")
	prices := flag.String("p", "", "optional filename for historical price data")
	transfers := flag.String("x", "", "optional filename for transfers between venues")
	currencyHist := flag.String("currency-hist", "", "the currency the prices file is in (default USD)")
	currencyOut := flag.String("currency-out", "", "the currency the output is in (default = currency-hist)")
	strategy := flag.String("s", "", "the matching strategy: fifo or lifo (default fifo)")
	mergeMinutes := flag.Int("m", 0, "merge similar executions within this many minutes of each other")
	direct := flag.Bool("d", false, "price A in an A/B pair from historical data directly")
	xferUpdate := flag.Bool("u", false, "apply transfer fees to the open lots instead of tallying them")
	output := flag.String("o", "", "match, basis, unmatched, summary or json (default match)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Var(&fiat, "fiat", "comma-separated fiat currencies to exclude from matching (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	// flags given on the command line win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.Trades = *trades
		case "p":
			cfg.Prices = *prices
		case "x":
			cfg.Transfers = *transfers
		case "currency-hist":
			cfg.CurrencyHist = *currencyHist
		case "currency-out":
			cfg.CurrencyOut = *currencyOut
		case "s":
			cfg.Strategy = *strategy
		case "m":
			cfg.MergeMinutes = *mergeMinutes
		case "d":
			cfg.Direct = *direct
		case "u":
			cfg.XferUpdate = *xferUpdate
		case "o":
			cfg.Output = *output
		case "v":
			cfg.Verbose = *verbose
		case "fiat":
			cfg.Fiat = fiat
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Usage: %s -t trades.tsv [options]\n%v\n", os.Args[0], err)
		flag.PrintDefaults()
		os.Exit(2)
	}

	log := newLogger(cfg.Verbose)
	log.WithFields(logrus.Fields{
		"trades":   cfg.Trades,
		"prices":   cfg.Prices,
		"ccy_hist": cfg.CurrencyHist,
		"ccy_out":  cfg.OutputCurrency(),
		"strategy": cfg.Strategy,
		"merge":    cfg.MergeMinutes,
	}).Debug("using arguments")

	if err := run(context.Background(), cfg, os.Stdout, log); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, w io.Writer, log logrus.FieldLogger) error {
	table := price.Table{}
	if cfg.Prices != "" {
		t, err := ingest.OpenPrices(cfg.Prices)
		if err != nil {
			return err
		}
		table = t
	}
	trades, err := ingest.OpenTrades(cfg.Trades)
	if err != nil {
		return err
	}
	var transfers []*ledger.Execution
	if cfg.Transfers != "" {
		if transfers, err = ingest.OpenTransfers(cfg.Transfers); err != nil {
			return err
		}
	}

	strategy, err := match.ParseStrategy(cfg.Strategy)
	if err != nil {
		return err
	}
	output, err := report.ParseOutput(cfg.Output)
	if err != nil {
		return err
	}

	oracle := price.NewOracle(table, price.Config{
		InputCurrency:  cfg.CurrencyHist,
		OutputCurrency: cfg.CurrencyOut,
		Direct:         cfg.Direct,
		Quiet:          cfg.Fiat,
	}, log)

	res, err := pipeline.Run(ctx, pipeline.Input{Trades: trades, Transfers: transfers}, pipeline.Options{
		Pricer:     oracle,
		Fiat:       cfg.Fiat,
		Window:     merge.Minutes(cfg.MergeMinutes),
		Strategy:   strategy,
		XferUpdate: cfg.XferUpdate,
	}, log)
	if err != nil {
		return err
	}
	return report.Write(w, output, res, oracle.OutputCurrency())
}
