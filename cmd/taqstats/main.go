// Command taqstats processes NYSE TAQ feed files and prints message counts,
// trade totals and symbol rankings. Results can also be saved to MongoDB or
// SQLite, exported as gzipped NDJSON, and served over HTTP.
//
// Usage:
//
//	taqstats --data-dir /data/taq                 # every file under a directory
//	taqstats day1.csv day2.csv.gz                 # explicit files
//	taqstats --error-policy skip --top 20 f.csv   # tolerate bad lines
//	taqstats --sqlite runs.db --http :8100 f.csv  # save, then serve the run
//	taqstats --print-config > taq.yaml            # dump effective config
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ndrandal/taqfeed/internal/api"
	"github.com/ndrandal/taqfeed/internal/archive"
	"github.com/ndrandal/taqfeed/internal/config"
	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/ndrandal/taqfeed/internal/logging"
	"github.com/ndrandal/taqfeed/internal/persist"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if cfg.PrintConfig {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer log.Sync()

	// Context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("taqstats failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	policy, err := feed.ParsePolicy(cfg.ErrorPolicy)
	if err != nil {
		return err
	}

	paths := append([]string(nil), cfg.Files...)
	if cfg.DataDir != "" {
		found, err := feed.ListFiles(cfg.DataDir)
		if err != nil {
			return err
		}
		paths = append(paths, found...)
	}
	if len(paths) == 0 {
		return errors.New("no input files found")
	}

	runID := cfg.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	log.Info("taqstats starting",
		zap.String("run", runID),
		zap.Int("files", len(paths)),
		zap.Stringer("policy", policy),
	)

	p := feed.NewProcessor(log)
	p.Policy = policy
	start := time.Now()
	if _, err := p.RunFiles(ctx, paths); err != nil {
		return err
	}
	log.Info("input processed", zap.Duration("elapsed", time.Since(start)))

	snap := p.Snapshot(cfg.TopK)
	if err := feed.WriteReport(os.Stdout, snap.Summary); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	var reader persist.RunReader

	if cfg.SQLite.Path != "" {
		db, err := persist.OpenSQLite(cfg.SQLite.Path, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveRun(ctx, runID, snap); err != nil {
			return fmt.Errorf("sqlite: %w", err)
		}
		reader = db
	}

	if cfg.Mongo.URI != "" {
		store, err := persist.NewStore(ctx, cfg.Mongo.URI, log)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		sink := persist.NewMongoSink(store, log)
		if err := sink.SaveRun(ctx, runID, snap); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
		if cfg.Mongo.RetentionDays > 0 {
			if _, err := sink.Prune(ctx, cfg.Mongo.RetentionDays); err != nil {
				log.Warn("retention prune failed", zap.Error(err))
			}
		}
		reader = sink
	}

	if cfg.Export.Dir != "" {
		if _, err := archive.New(cfg.Export.Dir, cfg.Export.MaxMB, log).Export(runID, snap); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}

	if cfg.HTTP.Addr == "" {
		return nil
	}
	return serve(ctx, cfg.HTTP.Addr, api.NewServer(p, reader, log), log)
}

// serve blocks until ctx is cancelled.
func serve(ctx context.Context, addr string, apiServer *api.Server, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	apiServer.Register(mux)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("HTTP server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	log.Info("HTTP server stopped")
	return nil
}
