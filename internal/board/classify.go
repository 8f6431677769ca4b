package board

import "strings"

// Keyword fallbacks used when the summarizer's hint is weak. A Planned (or
// missing) hint can be overridden by these; Blocked and Accomplished hints
// are trusted as-is.
var (
	blockerKeywords = []string{
		"blocked", "blocker", "waiting on", "waiting for",
		"stuck", "impediment",
	}
	doneKeywords = []string{
		"finished", "completed", "done", "shipped",
	}
)

// Classify maps a candidate to its target column. The second return is false
// when the candidate has no usable text and should be dropped; classification
// itself never fails.
func Classify(c Candidate) (Column, bool) {
	if strings.TrimSpace(c.RawText) == "" {
		return "", false
	}
	switch c.Hint {
	case HintBlocked:
		return ColumnBlockers, true
	case HintAccomplished:
		return ColumnDone, true
	}
	lower := strings.ToLower(c.RawText)
	for _, kw := range blockerKeywords {
		if strings.Contains(lower, kw) {
			return ColumnBlockers, true
		}
	}
	for _, kw := range doneKeywords {
		if strings.Contains(lower, kw) {
			return ColumnDone, true
		}
	}
	return ColumnToDo, true
}
