// Command screening runs a batch risk screening over newline-delimited
// attempt JSON read from a file argument or stdin, then reports the
// highest-risk students.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/common/expfmt"

	app "github.com/edulens/screening/internal/app"
	"github.com/edulens/screening/internal/config"
	"github.com/edulens/screening/internal/domain/model"
	"github.com/edulens/screening/internal/domain/scoring"
	"github.com/edulens/screening/pkg/logger"
	"github.com/edulens/screening/pkg/metrics"
)

const (
	serviceMetricsInterval = 5 * time.Second
	queueFullRetryDelay    = 10 * time.Millisecond
	// NDJSON lines can carry full stroke paths, so allow large lines.
	maxLineBytes = 4 << 20
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	input, name, err := openInput()
	if err != nil {
		return err
	}
	defer input.Close()

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithHistorySize(cfg.HistorySize),
		app.WithSeed(cfg.ModelSeed),
		app.WithThresholds(scoring.Thresholds{
			Low:    cfg.LowThreshold,
			Medium: cfg.MediumThreshold,
			High:   cfg.HighThreshold,
		}),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}

	go startServiceMetricsUpdater(ctx, svc)

	log.Info(ctx, "screening attempts", logger.String("input", name))

	submitted, failed, err := submitAttempts(ctx, svc, input, log)
	if err != nil {
		svc.Stop()
		return err
	}

	// Stop drains the queue before workers exit, so every submitted
	// attempt is assessed before the report prints.
	svc.Stop()

	log.Info(ctx, "screening complete",
		logger.Int("submitted", submitted),
		logger.Int("failed", failed),
	)

	if err := printWatchlist(ctx, svc, cfg.WatchlistLimit); err != nil {
		return err
	}

	if cfg.MetricsDump {
		if err := dumpMetrics(os.Stderr); err != nil {
			log.Warn(ctx, "metrics dump failed", logger.Error(err))
		}
	}
	return nil
}

// dumpMetrics writes the gathered pipeline metrics in Prometheus text
// format, so a batch run's instrumentation is inspectable without a
// scrape endpoint.
func dumpMetrics(w io.Writer) error {
	families, err := metrics.Registry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metrics: %w", err)
		}
	}
	return nil
}

// openInput returns the attempt stream: the file named by the first
// argument, or stdin when no argument is given.
func openInput() (io.ReadCloser, string, error) {
	if len(os.Args) < 2 {
		return io.NopCloser(os.Stdin), "stdin", nil
	}
	path := os.Args[1]
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open attempts file: %w", err)
	}
	return f, path, nil
}

// submitAttempts reads one attempt per line and submits each for
// asynchronous screening. Malformed lines and duplicates are counted
// and skipped; a full queue is retried until there is room.
func submitAttempts(ctx context.Context, svc *app.Service, r io.Reader, log logger.Logger) (submitted, failed int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var attempt model.Attempt
		if err := json.Unmarshal(raw, &attempt); err != nil {
			failed++
			log.Warn(ctx, "skipping malformed attempt",
				logger.Int("line", line), logger.Error(err))
			continue
		}

		for {
			_, submitErr := svc.Submit(ctx, attempt)
			if submitErr == nil {
				submitted++
				break
			}
			if errors.Is(submitErr, app.ErrDuplicateAttempt) {
				break
			}
			if errors.Is(submitErr, app.ErrQueueFull) {
				select {
				case <-ctx.Done():
					return submitted, failed, ctx.Err()
				case <-time.After(queueFullRetryDelay):
				}
				continue
			}
			failed++
			log.Warn(ctx, "attempt rejected",
				logger.Int("line", line), logger.Error(submitErr))
			break
		}

		if ctx.Err() != nil {
			return submitted, failed, ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return submitted, failed, fmt.Errorf("failed to read attempts: %w", err)
	}
	return submitted, failed, nil
}

// printWatchlist writes the ranked caseload report to stdout.
func printWatchlist(ctx context.Context, svc *app.Service, limit int) error {
	entries, err := svc.Watchlist(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to read watchlist: %w", err)
	}

	fmt.Printf("%-6s %-24s %-18s %-10s %s\n", "RANK", "STUDENT", "RISK LEVEL", "SCORE", "ASSESSMENTS")
	for _, e := range entries {
		fmt.Printf("%-6d %-24s %-18s %-10.4f %d\n",
			e.Rank, e.StudentID, e.RiskLevel, e.RiskScore, e.Assessments)
	}
	return nil
}

// startServiceMetricsUpdater refreshes queue and caseload gauges while
// the batch runs.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = svc.Stats()
		}
	}
}
