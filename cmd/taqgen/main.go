// Command taqgen writes a deterministic synthetic TAQ feed.
//
// Usage:
//
//	taqgen --lines 1000000 --out day.csv      # one million body lines
//	taqgen --seed 7 --out day.csv.gz          # gzip by suffix
//	taqgen --halt-rate 0 --excluded-rate 0    # trades only, no halts
package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ndrandal/taqfeed/internal/config"
	"github.com/ndrandal/taqfeed/internal/logging"
	"github.com/ndrandal/taqfeed/internal/synth"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	def := synth.DefaultConfig(1)
	seed := pflag.Int64("seed", 1, "PRNG seed; equal seeds produce equal feeds")
	lines := pflag.Int("lines", 100_000, "body lines after the mapping header")
	out := pflag.String("out", "-", "output path, - for stdout; .gz compresses")
	excluded := pflag.Float64("excluded-rate", def.ExcludedRate, "share of trades printed as official open/close")
	halts := pflag.Float64("halt-rate", def.HaltRate, "per-line chance of a halt or resume")
	oddLots := pflag.Float64("odd-lot-rate", def.OddLotRate, "share of trades under one round lot")
	logLevel := pflag.String("log-level", "info", "log level")
	pflag.Parse()

	log, err := logging.New(config.LogConfig{Level: *logLevel, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	cfg := synth.DefaultConfig(*seed)
	cfg.ExcludedRate = *excluded
	cfg.HaltRate = *halts
	cfg.OddLotRate = *oddLots

	start := time.Now()
	if err := write(*out, synth.New(cfg), *lines); err != nil {
		log.Fatal("generate feed", zap.Error(err))
	}
	log.Info("feed written",
		zap.String("out", *out),
		zap.Int64("seed", *seed),
		zap.String("lines", humanize.Comma(int64(*lines))),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func write(path string, g *synth.Generator, n int) error {
	if path == "-" {
		return g.Write(os.Stdout, n)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, 1<<20)
	var (
		w  io.Writer = bw
		gz *gzip.Writer
	)
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(bw)
		w = gz
	}

	if err := g.Write(w, n); err != nil {
		f.Close()
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			f.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
