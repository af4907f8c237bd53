// Package app wires the parsers, the alignment pipeline, and the aggregator
// into one analysis run over a directory of recorded sessions.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/aimdrift/aimdrift/internal/adapters/beatmap"
	"github.com/aimdrift/aimdrift/internal/adapters/library"
	"github.com/aimdrift/aimdrift/internal/adapters/render"
	"github.com/aimdrift/aimdrift/internal/adapters/replay"
	"github.com/aimdrift/aimdrift/internal/domain/align"
	"github.com/aimdrift/aimdrift/internal/domain/bias"
	"github.com/aimdrift/aimdrift/internal/domain/deviation"
	"github.com/aimdrift/aimdrift/internal/domain/model"
	"github.com/aimdrift/aimdrift/pkg/logger"
	"github.com/aimdrift/aimdrift/pkg/metrics"
)

const sessionExt = ".osr"

// SessionResult summarizes one analyzed session.
type SessionResult struct {
	SessionID string
	Path      string
	Targets   int
	Matched   int
	Kept      int
	Vectors   []model.DeviationVector
}

// Service runs the full analysis: per session, resolve the target sequence
// by digest, parse both streams, align, and filter; then aggregate the
// concatenated deviation set once.
type Service struct {
	libraryDir string
	replaysDir string
	settings   settings

	aligner    *align.Aligner
	filter     *deviation.Filter
	aggregator *bias.Aggregator
	locator    *library.Locator
	index      *library.Index

	cloudPath string

	log     logger.Logger
	metrics *metrics.Manager
}

// New creates the service and its pipeline components. The configuration is
// validated here: component constructors fail fast on malformed parameters.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		settings: defaultSettings(),
		metrics:  metrics.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}

	var err error
	s.filter, err = deviation.NewFilter(s.settings.includeRadius)
	if err != nil {
		return nil, fmt.Errorf("deviation filter: %w", err)
	}
	s.aggregator, err = bias.NewAggregator(
		bias.WithArea(s.settings.areaWidthMM, s.settings.areaHeightMM),
		bias.WithThreshold(s.settings.thresholdMM),
	)
	if err != nil {
		return nil, fmt.Errorf("bias aggregator: %w", err)
	}
	s.aligner = align.NewAligner(align.WithMaxDelta(s.settings.maxDeltaMS))

	locatorOpts := []library.LocatorOption{
		library.WithLogger(s.log),
		library.WithMetrics(s.metrics),
	}
	if s.settings.indexPath != "" {
		s.index, err = library.OpenIndex(s.settings.indexPath)
		if err != nil {
			return nil, fmt.Errorf("digest index: %w", err)
		}
		locatorOpts = append(locatorOpts, library.WithIndex(s.index))
	}
	s.locator = library.NewLocator(s.libraryDir, locatorOpts...)

	s.cloudPath = s.settings.cloudPath
	return s, nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	return s.index.Close()
}

// Run analyzes every session in the replays directory and returns the
// aggregate report. Sessions that cannot be analyzed are logged and skipped;
// only structural failures (unreadable replays directory) are errors.
func (s *Service) Run(ctx context.Context) (model.BiasReport, error) {
	runID := uuid.NewString()
	log := s.log.Named("run")

	paths, err := s.ListSessions()
	if err != nil {
		return model.BiasReport{}, err
	}
	log.Info(ctx, "starting analysis",
		logger.String("run_id", runID),
		logger.Int("sessions", len(paths)))

	var all []model.DeviationVector
	for _, path := range paths {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return model.BiasReport{}, ctxErr
		}
		result, err := s.AnalyzeSession(ctx, path)
		if err != nil {
			s.metrics.RecordSessionFailed()
			log.Warn(ctx, "skipping session",
				logger.String("run_id", runID),
				logger.String("path", path),
				logger.Error(err))
			continue
		}
		s.metrics.RecordSessionAnalyzed()
		all = append(all, result.Vectors...)
	}

	report := s.aggregator.Summarize(all)
	if s.cloudPath != "" && len(all) > 0 {
		if err := render.WriteCloud(s.cloudPath, all); err != nil {
			log.Warn(ctx, "cloud render failed",
				logger.String("run_id", runID), logger.Error(err))
		} else {
			log.Info(ctx, "cloud written",
				logger.String("run_id", runID),
				logger.String("path", s.cloudPath))
		}
	}
	return report, nil
}

// AnalyzeSession runs the per-session pipeline and returns the accepted
// deviation vectors for it.
func (s *Service) AnalyzeSession(ctx context.Context, path string) (SessionResult, error) {
	result := SessionResult{SessionID: uuid.NewString(), Path: path}
	log := s.log.Named("session")

	sess, err := replay.ParseFile(path)
	if err != nil {
		return result, fmt.Errorf("parse session: %w", err)
	}

	sourcePath, err := s.locator.FindByDigest(ctx, sess.BeatmapDigest)
	if err != nil {
		return result, fmt.Errorf("resolve target sequence: %w", err)
	}

	targets, err := beatmap.ParseFile(sourcePath)
	if err != nil {
		return result, fmt.Errorf("parse target sequence: %w", err)
	}
	result.Targets = len(targets)

	for _, match := range s.aligner.Align(targets, sess.Timeline) {
		if !match.Matched {
			s.metrics.RecordTargetUnmatched()
			continue
		}
		s.metrics.RecordTargetMatched(float64(match.DeltaMS))
		result.Matched++

		vector, ok := s.filter.Evaluate(match)
		if !ok {
			s.metrics.RecordDeviationRejected()
			continue
		}
		s.metrics.RecordDeviationKept()
		result.Vectors = append(result.Vectors, vector)
	}
	result.Kept = len(result.Vectors)

	log.Info(ctx, "session analyzed",
		logger.String("session_id", result.SessionID),
		logger.String("path", path),
		logger.String("player", sess.Player),
		logger.Int("targets", result.Targets),
		logger.Int("frames", len(sess.Timeline)),
		logger.Int("matched", result.Matched),
		logger.Int("kept", result.Kept))

	return result, nil
}

// ListSessions returns the session files in the replays directory, sorted by
// name for deterministic output.
func (s *Service) ListSessions() ([]string, error) {
	entries, err := os.ReadDir(s.replaysDir)
	if err != nil {
		return nil, fmt.Errorf("read replays dir: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), sessionExt) {
			continue
		}
		paths = append(paths, filepath.Join(s.replaysDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
