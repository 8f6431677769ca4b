package board

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// MergePolicy controls what happens to an existing item's text when a
// near-duplicate candidate arrives.
type MergePolicy string

const (
	// MergeKeepLonger keeps whichever text carries more normalized tokens
	// (default). Ties keep the existing text, so the first occurrence wins
	// over a rephrasing that adds no information.
	MergeKeepLonger MergePolicy = "longer"
	// MergeKeepNewer always takes the incoming text.
	MergeKeepNewer MergePolicy = "newer"
	// MergeKeepExisting never touches the existing text.
	MergeKeepExisting MergePolicy = "keep"
)

// Engine merges candidate items into a board: classify, dedupe against the
// target column, append or merge. It owns no I/O.
type Engine struct {
	matcher Matcher
	policy  MergePolicy
	now     func() time.Time
	newID   func() string
}

// Option configures the engine.
type Option func(*Engine)

// WithClock injects the timestamp source (for tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDGenerator injects the item id source (for tests).
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// NewEngine builds a merge engine. An empty policy means MergeKeepLonger.
func NewEngine(matcher Matcher, policy MergePolicy, opts ...Option) *Engine {
	if policy == "" {
		policy = MergeKeepLonger
	}
	e := &Engine{
		matcher: matcher,
		policy:  policy,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Report summarizes one ingest pass.
type Report struct {
	Added   int `json:"added"`
	Merged  int `json:"merged"`
	Dropped int `json:"dropped"`
}

// Ingest processes candidates in input order against the board. Empty
// candidates are dropped, duplicates are merged per the engine's policy, and
// everything else is appended to its classified column. Later candidates see
// the effect of earlier ones, so near-identical candidates within one run
// collapse into a single item.
func (e *Engine) Ingest(b *Board, candidates []Candidate, runID string) (*Report, error) {
	report := &Report{}
	for _, cand := range candidates {
		norm := Normalize(cand.RawText)
		if norm.IsEmpty() {
			report.Dropped++
			continue
		}
		col, ok := Classify(cand)
		if !ok {
			report.Dropped++
			continue
		}
		if existing := e.findDuplicate(b, col, norm); existing != nil {
			e.mergeText(existing, cand.RawText, norm)
			report.Merged++
			log.Debug().
				Str("column", string(col)).
				Str("item_id", existing.ID).
				Str("incoming", cand.RawText).
				Msg("merged candidate into existing item")
			continue
		}
		item := &Item{
			ID:        e.newID(),
			Text:      cand.RawText,
			CreatedAt: e.now(),
			SourceRun: runID,
		}
		if err := b.Append(col, item); err != nil {
			return report, fmt.Errorf("append to %q: %w", col, err)
		}
		report.Added++
		log.Debug().
			Str("column", string(col)).
			Str("item_id", item.ID).
			Str("text", item.Text).
			Msg("added board item")
	}
	return report, nil
}

// findDuplicate scans only the target column, in order, and returns the
// first match. Cross-column comparison is deliberately absent.
func (e *Engine) findDuplicate(b *Board, col Column, norm NormalizedText) *Item {
	for _, it := range b.Items(col) {
		if e.matcher.IsDuplicate(norm, Normalize(it.Text)) {
			return it
		}
	}
	return nil
}

func (e *Engine) mergeText(existing *Item, incoming string, norm NormalizedText) {
	switch e.policy {
	case MergeKeepNewer:
		existing.Text = incoming
	case MergeKeepExisting:
	default: // MergeKeepLonger
		// Raw byte length is a poor informativeness measure: a rephrasing
		// can be a byte longer without saying anything new. Compare
		// normalized token counts instead.
		if len(norm.Tokens()) > len(Normalize(existing.Text).Tokens()) {
			existing.Text = incoming
		}
	}
}
