package summarize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog/log"

	"github.com/scrumbot/internal/board"
)

// extractedItem is the JSON shape the model is asked to produce.
type extractedItem struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

var codeBlockRegex = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ParseCandidates turns a raw model response into candidate items. It
// tolerates markdown code fences, leading prose, and mildly malformed JSON
// (repaired via the jsonrepair library). Entries with blank text are skipped;
// entries with an unrecognized status fall back to a planned hint.
func ParseCandidates(response string) ([]board.Candidate, error) {
	jsonStr := extractJSONArray(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON array found in model response")
	}

	var items []extractedItem
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(jsonStr)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse model response: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			return nil, fmt.Errorf("failed to parse repaired model response: %w", err)
		}
		log.Debug().
			Int("original_bytes", len(jsonStr)).
			Int("repaired_bytes", len(repaired)).
			Msg("model response needed JSON repair")
	}

	candidates := make([]board.Candidate, 0, len(items))
	for _, item := range items {
		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}
		candidates = append(candidates, board.Candidate{
			RawText: text,
			Hint:    hintFromStatus(item.Status),
		})
	}
	return candidates, nil
}

// extractJSONArray pulls the JSON array out of a response that may wrap it in
// a markdown code block or surrounding prose.
func extractJSONArray(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		return trimmed
	}
	if matches := codeBlockRegex.FindStringSubmatch(response); len(matches) > 1 {
		inner := strings.TrimSpace(matches[1])
		if strings.HasPrefix(inner, "[") {
			return inner
		}
	}
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start >= 0 && end > start {
		return response[start : end+1]
	}
	return ""
}

func hintFromStatus(status string) board.Hint {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "done", "accomplished", "completed", "finished":
		return board.HintAccomplished
	case "blocked", "blocker", "impediment":
		return board.HintBlocked
	case "planned", "todo", "today", "in progress":
		return board.HintPlanned
	default:
		return board.HintPlanned
	}
}
