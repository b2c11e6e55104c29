// Package archive exports finished runs as gzipped NDJSON for offline
// plotting, keeping the export directory under a size cap.
package archive

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
	"go.uber.org/zap"
)

const summaryFile = "summary.json"

var ErrBadRunID = errors.New("invalid run id")

// Exporter writes each run to dir/<runID>/: one SeriesFile per symbol with the
// per-second buckets, plus summary.json. Older runs are removed once the
// directory grows past maxBytes.
type Exporter struct {
	dir      string
	maxBytes int64
	log      *zap.Logger
}

// New creates an Exporter. maxMB <= 0 disables rotation.
func New(dir string, maxMB int, log *zap.Logger) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		dir:      dir,
		maxBytes: int64(maxMB) << 20,
		log:      log,
	}
}

// bucketLine is one NDJSON record.
type bucketLine struct {
	Symbol string `json:"symbol"`
	events.Bucket
}

// Export writes snap under runID and then rotates. It returns the run
// directory.
func (e *Exporter) Export(runID string, snap feed.Snapshot) (string, error) {
	if err := checkRunID(runID); err != nil {
		return "", err
	}
	runDir := filepath.Join(e.dir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	var written int64
	for _, s := range snap.Symbols {
		n, err := writeSeries(filepath.Join(runDir, SeriesFile(s.Symbol)), s)
		if err != nil {
			return "", fmt.Errorf("export %s: %w", s.Symbol, err)
		}
		written += n
	}

	sum, err := json.MarshalIndent(snap.Summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, summaryFile), sum, 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}

	e.log.Info("run exported",
		zap.String("run", runID),
		zap.String("dir", runDir),
		zap.Int("symbols", len(snap.Symbols)),
		zap.String("size", humanize.Bytes(uint64(written+int64(len(sum))))),
	)
	e.rotate(runID)
	return runDir, nil
}

// SeriesFile names a symbol's export file. Symbols come from the feed, so
// path separators are escaped to keep the file inside its run directory.
func SeriesFile(symbol string) string {
	return url.PathEscape(symbol) + ".jsonl.gz"
}

func checkRunID(id string) error {
	if id == "" || strings.HasPrefix(id, ".") || filepath.Base(id) != id {
		return fmt.Errorf("%w: %q", ErrBadRunID, id)
	}
	return nil
}

// writeSeries writes one symbol's buckets and returns the compressed size.
func writeSeries(path string, s feed.SymbolSummary) (int64, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	for _, b := range s.Buckets {
		if err := enc.Encode(bucketLine{Symbol: s.Symbol, Bucket: b}); err != nil {
			gz.Close()
			return 0, fmt.Errorf("encode: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return 0, fmt.Errorf("gzip close: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return int64(buf.Len()), nil
}

type runEntry struct {
	name    string
	size    int64
	modTime time.Time
}

// rotate deletes whole runs, oldest first, until the directory fits under
// maxBytes. The run named keep is never removed.
func (e *Exporter) rotate(keep string) {
	if e.maxBytes <= 0 {
		return
	}
	runs, total, err := e.runs()
	if err != nil {
		e.log.Warn("rotate: list runs", zap.Error(err))
		return
	}
	if total <= e.maxBytes {
		return
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].modTime.Equal(runs[j].modTime) {
			return runs[i].modTime.Before(runs[j].modTime)
		}
		return runs[i].name < runs[j].name
	})

	for _, r := range runs {
		if total <= e.maxBytes {
			break
		}
		if r.name == keep {
			continue
		}
		if err := os.RemoveAll(filepath.Join(e.dir, r.name)); err != nil {
			e.log.Warn("rotate: remove run", zap.String("run", r.name), zap.Error(err))
			continue
		}
		total -= r.size
		e.log.Info("rotated out run", zap.String("run", r.name), zap.String("size", humanize.Bytes(uint64(r.size))))
	}
}

// runs sizes every run directory; a run's age is its newest file.
func (e *Exporter) runs() ([]runEntry, int64, error) {
	dirs, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, 0, err
	}
	var (
		out   []runEntry
		total int64
	)
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		r := runEntry{name: d.Name()}
		filepath.WalkDir(filepath.Join(e.dir, d.Name()), func(path string, de os.DirEntry, err error) error {
			if err != nil || de.IsDir() {
				return nil
			}
			info, err := de.Info()
			if err != nil {
				return nil
			}
			r.size += info.Size()
			if info.ModTime().After(r.modTime) {
				r.modTime = info.ModTime()
			}
			return nil
		})
		out = append(out, r)
		total += r.size
	}
	return out, total, nil
}

// ReadSeries decodes an exported symbol file.
func ReadSeries(path string) ([]events.Bucket, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer gz.Close()

	var out []events.Bucket
	dec := json.NewDecoder(gz)
	for dec.More() {
		var l bucketLine
		if err := dec.Decode(&l); err != nil {
			return nil, fmt.Errorf("decode: %w", err)
		}
		out = append(out, l.Bucket)
	}
	return out, nil
}
