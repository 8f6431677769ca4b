package board

import (
	"encoding/json"
	"fmt"
	"time"
)

// Column identifies one of the fixed board categories. The values double as
// the JSON keys in the persisted board file.
type Column string

const (
	ColumnToDo     Column = "To Do"
	ColumnBlockers Column = "Blockers"
	ColumnDone     Column = "Done"
)

// Columns returns the fixed columns in display order.
func Columns() []Column {
	return []Column{ColumnToDo, ColumnBlockers, ColumnDone}
}

// Hint is the coarse label attached to a candidate by the summarizer.
type Hint string

const (
	HintAccomplished Hint = "accomplished"
	HintPlanned      Hint = "planned"
	HintBlocked      Hint = "blocked"
)

// Item is a single persisted board entry. Once created only Text changes,
// and only through a merge-update.
type Item struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	SourceRun string    `json:"source_run"`
}

// Candidate is a raw text fragment plus hint proposed for the board. It is
// consumed by the merge engine and never persisted directly.
type Candidate struct {
	RawText string
	Hint    Hint
}

// Board is the in-memory task board. Unknown columns and unknown top-level
// fields read from disk are carried so a save does not discard them.
type Board struct {
	Version     int64
	LastUpdated time.Time

	columns map[Column][]*Item
	extra   map[string]json.RawMessage
}

// NewBoard returns an empty board with the fixed columns initialized.
func NewBoard() *Board {
	b := &Board{columns: make(map[Column][]*Item)}
	for _, c := range Columns() {
		b.columns[c] = nil
	}
	return b
}

// Items returns the ordered items of a column. The returned slice is the
// board's own; callers must not reorder it.
func (b *Board) Items(c Column) []*Item {
	return b.columns[c]
}

// Total returns the number of items across all columns.
func (b *Board) Total() int {
	n := 0
	for _, items := range b.columns {
		n += len(items)
	}
	return n
}

// Append adds an item to the end of a column after checking the board
// invariants: board-wide id uniqueness and non-empty text.
func (b *Board) Append(c Column, it *Item) error {
	if it == nil || it.Text == "" {
		return fmt.Errorf("refusing to add item with empty text to %q", c)
	}
	if it.ID == "" {
		return fmt.Errorf("refusing to add item without id to %q", c)
	}
	for col, items := range b.columns {
		for _, existing := range items {
			if existing.ID == it.ID {
				return fmt.Errorf("item id %s already present in %q", it.ID, col)
			}
		}
	}
	b.columns[c] = append(b.columns[c], it)
	return nil
}

// Validate checks the structural invariants: every item has an id and
// non-empty text, and no id appears twice anywhere on the board.
func (b *Board) Validate() error {
	seen := make(map[string]Column)
	for col, items := range b.columns {
		for _, it := range items {
			if it.ID == "" {
				return fmt.Errorf("column %q has an item without id", col)
			}
			if it.Text == "" {
				return fmt.Errorf("item %s in %q has empty text", it.ID, col)
			}
			if prev, ok := seen[it.ID]; ok {
				return fmt.Errorf("item id %s appears in both %q and %q", it.ID, prev, col)
			}
			seen[it.ID] = col
		}
	}
	return nil
}
