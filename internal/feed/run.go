package feed

import (
	"bufio"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Policy decides what Run does with a line that fails.
type Policy int

const (
	PolicyAbort Policy = iota // stop at the first bad line
	PolicySkip                // log the line and continue
)

// ParsePolicy maps "abort" and "skip" to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("unknown error policy %q", s)
	}
}

func (p Policy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}

const (
	maxLineBytes = 1 << 20
	ctxCheckMask = 1<<12 - 1 // check ctx every 4096 lines
	maxWarnings  = 100       // per stream, under PolicySkip
)

// LineError locates a failed line.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Report summarises one stream.
type Report struct {
	Path      string        `json:"path"`
	Lines     int           `json:"lines"`
	Applied   int           `json:"applied"`
	Skipped   int           `json:"skipped"`
	Blank     int           `json:"blank"`
	Elapsed   time.Duration `json:"elapsed"`
	FirstFail *LineError    `json:"-"`
}

// Run processes every line of r. name labels errors and logs. Blank lines
// are ignored. Under PolicyAbort the first failing line ends the run with a
// *LineError; under PolicySkip failures are counted and logged.
func (p *Processor) Run(ctx context.Context, r io.Reader, name string) (Report, error) {
	rep := Report{Path: name}
	start := time.Now()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	for sc.Scan() {
		rep.Lines++
		if rep.Lines&ctxCheckMask == 0 {
			if err := ctx.Err(); err != nil {
				rep.Elapsed = time.Since(start)
				return rep, err
			}
		}

		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			rep.Blank++
			continue
		}

		if err := p.ProcessLine(line); err != nil {
			le := &LineError{Path: name, Line: rep.Lines, Err: err}
			if p.Policy == PolicyAbort {
				rep.FirstFail = le
				rep.Elapsed = time.Since(start)
				return rep, le
			}
			if rep.FirstFail == nil {
				rep.FirstFail = le
			}
			rep.Skipped++
			switch {
			case rep.Skipped <= maxWarnings:
				p.log.Warn("skipping line", zap.String("path", name), zap.Int("line", rep.Lines), zap.Error(err))
			case rep.Skipped == maxWarnings+1:
				p.log.Warn("further bad lines suppressed", zap.String("path", name))
			}
			continue
		}
		rep.Applied++
	}
	if err := sc.Err(); err != nil {
		rep.Elapsed = time.Since(start)
		if errors.Is(err, bufio.ErrTooLong) {
			// The scanner cannot resync past an oversized line, so this ends
			// the run under either policy.
			le := &LineError{Path: name, Line: rep.Lines + 1, Err: err}
			if rep.FirstFail == nil {
				rep.FirstFail = le
			}
			return rep, le
		}
		return rep, fmt.Errorf("read %s: %w", name, err)
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

// RunFiles runs each path in order. Files ending in .gz are decompressed.
// It stops at the first error and returns the reports gathered so far.
func (p *Processor) RunFiles(ctx context.Context, paths []string) ([]Report, error) {
	reports := make([]Report, 0, len(paths))
	for _, path := range paths {
		rep, err := p.runFile(ctx, path)
		reports = append(reports, rep)
		if err != nil {
			return reports, err
		}
		p.log.Info("processed file",
			zap.String("path", path),
			zap.Int("lines", rep.Lines),
			zap.Int("skipped", rep.Skipped),
			zap.Duration("elapsed", rep.Elapsed),
		)
	}
	return reports, nil
}

func (p *Processor) runFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{Path: path}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return Report{Path: path}, fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return p.Run(ctx, r, path)
}

// ListFiles returns every regular file under dir in lexical order, skipping
// dot files and dot directories.
func ListFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	return out, nil
}
