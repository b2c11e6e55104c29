// Command decoder reads NYSE TAQ feed files and prints every decoded record
// in human-readable form.
//
// Usage:
//
//	decoder day1.csv                  # decode a file
//	decoder -                         # read stdin
//	decoder --json day1.csv.gz        # one JSON object per record
//	decoder --type trade day1.csv     # only trades (trade, status, mapping)
//	decoder --symbol IBM day1.csv     # only one symbol
//	decoder --limit 100 day1.csv      # stop after 100 records
package main

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/spf13/pflag"
)

type options struct {
	json   bool
	kind   string
	symbol string
	limit  int
}

func main() {
	var opts options
	pflag.BoolVar(&opts.json, "json", false, "print records as JSON")
	pflag.StringVar(&opts.kind, "type", "", "only records of this type: trade, status or mapping")
	pflag.StringVar(&opts.symbol, "symbol", "", "only records for this symbol")
	pflag.IntVar(&opts.limit, "limit", 0, "stop after this many records (0 = no limit)")
	pflag.Parse()

	want, err := parseKind(opts.kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	paths := pflag.Args()
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	d := &decoder{opts: opts, want: want, out: out}
	for _, path := range paths {
		if err := d.file(path); err != nil {
			out.Flush()
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if d.done() {
			break
		}
	}
	fmt.Fprintf(os.Stderr, "%s records printed, %s lines failed to decode\n",
		humanize.Comma(d.printed), humanize.Comma(d.failed))
}

func parseKind(s string) (taq.MsgKind, error) {
	switch s {
	case "":
		return taq.MsgUnknown, nil
	case "trade":
		return taq.MsgTrade, nil
	case "status":
		return taq.MsgSecurityStatus, nil
	case "mapping":
		return taq.MsgSymbolIndexMapping, nil
	}
	return taq.MsgUnknown, fmt.Errorf("unknown --type %q: want trade, status or mapping", s)
}

type decoder struct {
	opts    options
	want    taq.MsgKind // MsgUnknown means every kind
	out     *bufio.Writer
	printed int64
	failed  int64
}

func (d *decoder) done() bool {
	return d.opts.limit > 0 && d.printed >= int64(d.opts.limit)
}

func (d *decoder) file(path string) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
		if strings.HasSuffix(path, ".gz") {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return fmt.Errorf("gzip %s: %w", path, err)
			}
			defer gz.Close()
			r = gz
		}
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() && !d.done() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		tokens := taq.Split(text)
		if d.want != taq.MsgUnknown && taq.Classify(tokens[0]) != d.want {
			continue
		}
		rec, err := taq.Decode(tokens)
		if err != nil {
			d.failed++
			fmt.Fprintf(d.out, "ERROR    %s:%d  %v\n", path, line, err)
			continue
		}
		if d.opts.symbol != "" && symbolOf(rec) != d.opts.symbol {
			continue
		}
		if err := d.print(rec); err != nil {
			return err
		}
		d.printed++
	}
	return sc.Err()
}

func symbolOf(rec taq.Record) string {
	switch m := rec.(type) {
	case *taq.TradeRecord:
		return m.Symbol
	case *taq.SymbolMapping:
		return m.Symbol
	case *taq.SecurityStatusRecord:
		return m.Symbol
	}
	return ""
}

func (d *decoder) print(rec taq.Record) error {
	if d.opts.json {
		b, err := taq.EncodeJSON(rec)
		if err != nil {
			return err
		}
		d.out.Write(b)
		d.out.WriteByte('\n')
		return nil
	}

	switch m := rec.(type) {
	case *taq.TradeRecord:
		excl := ""
		if m.Excluded() {
			excl = "  EXCLUDED"
		}
		fmt.Fprintf(d.out, "TRADE    %s  seq=%-8d  stock=%-8s  id=%-8d  %7d @ %s  [%s %s %s %s]%s\n",
			taq.FormatHHMMSSNanos(m.SourceTime), m.SeqNum, m.Symbol, m.TradeID, m.Volume, m.Price,
			m.Cond1, m.Cond2, m.Cond3, m.Cond4, excl)

	case *taq.SymbolMapping:
		fmt.Fprintf(d.out, "MAPPING  seq=%-8d  stock=%-8s  market=%s  type=%s  lot=%d  prevClose=%s  mpv=%s\n",
			m.SeqNum, m.Symbol, m.MarketID, m.SecurityType, m.LotSize, m.PrevClosePrice, m.MPV)

	case *taq.SecurityStatusRecord:
		fmt.Fprintf(d.out, "STATUS   %s  seq=%-8d  stock=%-8s  status=%s  halt=%s  state=%s\n",
			taq.FormatHHMMSSNanos(m.SourceTime), m.SeqNum, m.Symbol, m.Status, m.HaltCondition, m.MarketState)
	}
	return nil
}
