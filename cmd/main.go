// Command aimdrift analyzes recorded pointing-device sessions against their
// target sequences and reports the systematic aim bias in physical units,
// with a suggested corrective shift of the active area.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/aimdrift/aimdrift/internal/app"
	"github.com/aimdrift/aimdrift/internal/config"
	"github.com/aimdrift/aimdrift/internal/domain/model"
	"github.com/aimdrift/aimdrift/pkg/logger"
	"github.com/aimdrift/aimdrift/pkg/metrics"
)

// Metrics listener timeout constants.
const (
	metricsReadTimeout       = 5 * time.Second
	metricsReadHeaderTimeout = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		os.Stderr.WriteString("aimdrift: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run() error {
	// Initialize logging before anything else can fail.
	if err := logger.Init(); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env), then let flags
	// override: flag defaults are seeded from the loaded config, so unset
	// flags keep the configured values.
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flag.StringVar(&cfg.LibraryDir, "library", cfg.LibraryDir, "target-sequence library directory")
	flag.StringVar(&cfg.ReplaysDir, "replays", cfg.ReplaysDir, "directory of recorded sessions (.osr)")
	flag.Float64Var(&cfg.AreaWidthMM, "width", cfg.AreaWidthMM, "active area width in mm (prompted if 0)")
	flag.Float64Var(&cfg.AreaHeightMM, "height", cfg.AreaHeightMM, "active area height in mm (prompted if 0)")
	flag.Int64Var(&cfg.MaxDeltaMS, "max-delta", cfg.MaxDeltaMS, "alignment tolerance in ms")
	flag.Float64Var(&cfg.IncludeRadius, "radius", cfg.IncludeRadius, "inclusion radius in source units")
	flag.Float64Var(&cfg.AdjustThresholdMM, "threshold", cfg.AdjustThresholdMM, "minimum bias in mm before suggesting a shift")
	flag.StringVar(&cfg.CloudPath, "cloud", cfg.CloudPath, "deviation-cloud PNG output path (empty disables)")
	flag.StringVar(&cfg.IndexPath, "index", cfg.IndexPath, "sqlite digest index path (empty disables)")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "metrics listen address (empty disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	stdin := bufio.NewReader(os.Stdin)
	if cfg.AreaWidthMM <= 0 {
		cfg.AreaWidthMM = promptFloat(stdin, "Enter your active area WIDTH in mm (e.g. 72.9): ")
	}
	if cfg.AreaHeightMM <= 0 {
		cfg.AreaHeightMM = promptFloat(stdin, "Enter your active area HEIGHT in mm (e.g. 52): ")
	}
	if cfg.LibraryDir == "" {
		cfg.LibraryDir = promptLine(stdin, "Enter your target-sequence library path: ")
	}

	if err := os.MkdirAll(cfg.ReplaysDir, 0o750); err != nil {
		return fmt.Errorf("create replays dir: %w", err)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, log, cfg.MetricsAddr)
	}

	svc, err := app.New(
		app.WithLogger(log),
		app.WithLibraryDir(cfg.LibraryDir),
		app.WithReplaysDir(cfg.ReplaysDir),
		app.WithMaxDelta(cfg.MaxDeltaMS),
		app.WithIncludeRadius(cfg.IncludeRadius),
		app.WithArea(cfg.AreaWidthMM, cfg.AreaHeightMM),
		app.WithAdjustThreshold(cfg.AdjustThresholdMM),
		app.WithCloudPath(cfg.CloudPath),
		app.WithIndexPath(cfg.IndexPath),
	)
	if err != nil {
		return err
	}
	defer func() {
		_ = svc.Close()
	}()

	// Block until there is something to analyze; the user may still be
	// dropping session files into the directory.
	if err := svc.WaitForSessions(ctx); err != nil {
		return err
	}

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	printReport(os.Stdout, report, cfg)
	return nil
}

// serveMetrics exposes Prometheus metrics for the duration of the run.
func serveMetrics(ctx context.Context, log logger.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       metricsReadTimeout,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()
	log.Info(ctx, "metrics listening", logger.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Warn(ctx, "metrics listener failed", logger.Error(err))
	}
}

// promptFloat reads a positive number from stdin, re-prompting on bad input.
func promptFloat(r *bufio.Reader, prompt string) float64 {
	for {
		fmt.Print(prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return 0
		}
		v, convErr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if convErr == nil && v > 0 {
			return v
		}
		fmt.Println("Invalid number, please try again.")
	}
}

// promptLine reads a non-empty line from stdin.
func promptLine(r *bufio.Reader, prompt string) string {
	for {
		fmt.Print(prompt)
		line, err := r.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
		if err != nil {
			return ""
		}
	}
}

// printReport writes the textual bias summary the way a user reads it:
// counts, mean bias in both unit spaces, the quadrant table, and the
// suggestion.
func printReport(w io.Writer, r model.BiasReport, cfg *config.Config) {
	if r.InsufficientData {
		fmt.Fprintln(w, "\n[!] No usable deviations collected.")
		return
	}

	fmt.Fprintln(w, "\n=== Global aim bias summary ===")
	fmt.Fprintf(w, "Total samples: %s\n", humanize.Comma(int64(r.Samples)))
	fmt.Fprintf(w, "Mean bias (source px): dx = %.2f, dy = %.2f\n", r.MeanDX, r.MeanDY)
	fmt.Fprintln(w, "Mean bias on your active area:")
	fmt.Fprintf(w, "  dx = %.3f mm  (positive = to the right)\n", r.MeanDXMM)
	fmt.Fprintf(w, "  dy = %.3f mm  (positive = downwards)\n", r.MeanDYMM)

	fmt.Fprintln(w, "\nError distribution by quadrant (%):")
	fmt.Fprintf(w, "  %-12s: %5.1f%%\n", "top-left", r.Quadrants.TopLeft)
	fmt.Fprintf(w, "  %-12s: %5.1f%%\n", "top-right", r.Quadrants.TopRight)
	fmt.Fprintf(w, "  %-12s: %5.1f%%\n", "bottom-left", r.Quadrants.BottomLeft)
	fmt.Fprintf(w, "  %-12s: %5.1f%%\n", "bottom-right", r.Quadrants.BottomRight)

	fmt.Fprintln(w, "\n=== Area adjustment suggestion ===")
	if r.Adjustment == nil {
		fmt.Fprintf(w,
			"Your average bias is below %.2f mm on both axes. No meaningful adjustment seems necessary.\n",
			cfg.AdjustThresholdMM)
		return
	}

	dirX := "left"
	if r.MeanDXMM > 0 {
		dirX = "right"
	}
	dirY := "up"
	if r.MeanDYMM > 0 {
		dirY = "down"
	}
	fmt.Fprintln(w, "On average, you tend to aim:")
	fmt.Fprintf(w, "  -> %.2f mm too far to the %s\n", abs(r.MeanDXMM), dirX)
	fmt.Fprintf(w, "  -> %.2f mm too far %s\n", abs(r.MeanDYMM), dirY)

	corrX := "left"
	if r.Adjustment.DXMM > 0 {
		corrX = "right"
	}
	corrY := "up"
	if r.Adjustment.DYMM > 0 {
		corrY = "down"
	}
	fmt.Fprintln(w, "\nTo compensate, try shifting your active area by approximately:")
	fmt.Fprintf(w, "  %.2f mm towards the %s\n", abs(r.Adjustment.DXMM), corrX)
	fmt.Fprintf(w, "  %.2f mm towards %s\n", abs(r.Adjustment.DYMM), corrY)
	fmt.Fprintln(w, "Adjust this according to how your device driver handles offsets.")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
