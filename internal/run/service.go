package run

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog/log"

	"github.com/scrumbot/internal/board"
	"github.com/scrumbot/internal/config"
	"github.com/scrumbot/internal/logging"
)

// Transcriber produces a transcript from an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Extractor turns a transcript into candidate board items.
type Extractor interface {
	Extract(ctx context.Context, transcript string, runLog *logging.RunLogger) ([]board.Candidate, error)
}

// Service executes one full run: lock, load, transcribe, summarize, ingest,
// save. Mutation happens on the in-memory board only; the single save at the
// end is the only write.
type Service struct {
	store       *board.Store
	transcriber Transcriber
	extractor   Extractor
	engine      *board.Engine
	logDir      string
}

// Outcome reports what a run did.
type Outcome struct {
	RunID      string
	Transcript string
	Report     *board.Report
	Board      *board.Board
	DryRun     bool
}

// NewService wires a run service from configuration.
func NewService(cfg *config.Config, store *board.Store, transcriber Transcriber, extractor Extractor) (*Service, error) {
	matcher, err := board.NewMatcher(
		cfg.Board.SimilarityStrategy,
		cfg.Board.SimilarityThreshold,
		cfg.Board.SimhashMaxDistance,
	)
	if err != nil {
		return nil, err
	}
	return &Service{
		store:       store,
		transcriber: transcriber,
		extractor:   extractor,
		engine:      board.NewEngine(matcher, board.MergePolicy(cfg.Board.MergePolicy)),
		logDir:      "run_logs",
	}, nil
}

// Execute performs a single load-merge-save cycle for the given audio file.
// Any board store failure is fatal and happens either before the pipeline
// starts or as the single save at the end; a dry run skips the save.
func (s *Service) Execute(ctx context.Context, audioPath string, dryRun bool) (*Outcome, error) {
	start := time.Now()
	runID := NewRunID(audioPath, start)

	runLog, err := logging.StartRunLogging(s.logDir, runID)
	if err != nil {
		log.Warn().Err(err).Msg("run log unavailable, continuing without it")
	}
	defer runLog.Close()
	runLog.Log("Audio source: %s", audioPath)

	// One writer at a time; a second concurrent run fails fast instead of
	// silently racing the save.
	lock := flock.New(s.store.Path() + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring board lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another run is already updating %s", s.store.Path())
	}
	defer lock.Unlock()

	b, err := s.store.Load()
	if err != nil {
		runLog.LogError("board load", err)
		return nil, err
	}
	log.Info().
		Str("run_id", runID).
		Int64("board_version", b.Version).
		Int("items", b.Total()).
		Msg("board loaded")

	transcript, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		runLog.LogError("transcription", err)
		return nil, err
	}
	runLog.LogTranscript(transcript)

	candidates, err := s.extractor.Extract(ctx, transcript, runLog)
	if err != nil {
		return nil, err
	}

	report, err := s.engine.Ingest(b, candidates, runID)
	if err != nil {
		runLog.LogError("merge", err)
		return nil, err
	}
	runLog.Log("Merge result: %d added, %d merged, %d dropped", report.Added, report.Merged, report.Dropped)

	if dryRun {
		log.Info().Str("run_id", runID).Msg("dry run, skipping save")
	} else {
		if err := s.store.Save(b); err != nil {
			runLog.LogError("board save", err)
			return nil, err
		}
	}

	log.Info().
		Str("run_id", runID).
		Int("added", report.Added).
		Int("merged", report.Merged).
		Int("dropped", report.Dropped).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")

	return &Outcome{
		RunID:      runID,
		Transcript: transcript,
		Report:     report,
		Board:      b,
		DryRun:     dryRun,
	}, nil
}
