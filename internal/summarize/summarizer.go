package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scrumbot/internal/board"
	"github.com/scrumbot/internal/logging"
	"github.com/scrumbot/internal/retry"
)

// maxTranscriptChars bounds the transcript passed to the model; stand-up
// recordings rarely exceed this, and oversized prompts degrade extraction.
const maxTranscriptChars = 12000

const extractionPrompt = `You are given the transcript of a daily stand-up meeting.
Extract the individual work items mentioned and return ONLY a JSON array, no prose.
Each element must be {"text": "<short item description>", "status": "<done|planned|blocked>"}:
- "done": work that was completed
- "planned": work the team will do next
- "blocked": blockers, impediments, or things the team is waiting on

Transcript:
%s`

// Caller abstracts the LLM connector (for tests).
type Caller interface {
	Call(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Summarizer extracts candidate board items from a meeting transcript.
type Summarizer struct {
	caller   Caller
	retryCfg retry.Config
}

// NewSummarizer builds a summarizer over an LLM caller.
func NewSummarizer(caller Caller) *Summarizer {
	return &Summarizer{caller: caller, retryCfg: retry.LLMConfig()}
}

// Extract asks the model for the work items in the transcript and parses
// them into candidates. Transient call failures are retried with backoff;
// an unparseable response is surfaced as an error (the run aborts before
// touching the board).
func (s *Summarizer) Extract(ctx context.Context, transcript string, runLog *logging.RunLogger) ([]board.Candidate, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}

	prompt := fmt.Sprintf(extractionPrompt, transcript)
	runLog.LogRequest(s.caller.Model(), prompt)

	var response string
	result := retry.WithBackoff(ctx, s.retryCfg, func() error {
		var err error
		response, err = s.caller.Call(ctx, prompt)
		return err
	})
	if !result.Success {
		runLog.LogError("summarization", result.LastError)
		return nil, fmt.Errorf("summarization failed after %d attempts: %w", result.Attempts, result.LastError)
	}
	runLog.LogResponse(response)

	candidates, err := ParseCandidates(response)
	if err != nil {
		runLog.LogError("response parsing", err)
		return nil, err
	}

	log.Info().
		Int("candidates", len(candidates)).
		Str("model", s.caller.Model()).
		Msg("extracted candidate items")
	return candidates, nil
}
