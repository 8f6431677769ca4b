package board

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsEmptyBoard(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "board.json"))
	b, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Version)
	assert.Equal(t, 0, b.Total())
	for _, col := range Columns() {
		assert.Empty(t, b.Items(col))
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	store := NewStore(path)

	b := NewBoard()
	require.NoError(t, b.Append(ColumnToDo, &Item{
		ID:        "a1",
		Text:      "Deploy service",
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		SourceRun: "run-1",
	}))
	require.NoError(t, b.Append(ColumnBlockers, &Item{
		ID:        "b1",
		Text:      "Waiting on API keys",
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		SourceRun: "run-1",
	}))

	require.NoError(t, store.Save(b))
	assert.Equal(t, int64(1), b.Version)
	assert.False(t, b.LastUpdated.IsZero())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	if diff := cmp.Diff(b.Items(ColumnToDo), loaded.Items(ColumnToDo)); diff != "" {
		t.Fatalf("To Do column mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(b.Items(ColumnBlockers), loaded.Items(ColumnBlockers)); diff != "" {
		t.Fatalf("Blockers column mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, loaded.Items(ColumnDone))
}

func TestSaveIncrementsVersionOncePerSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	store := NewStore(path)
	b := NewBoard()
	require.NoError(t, store.Save(b))
	require.NoError(t, store.Save(b))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, int64(2), loaded.Version)
}

func TestLoadCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewStore(path).Load()
	require.ErrorIs(t, err, ErrCorruptBoard)
}

func TestLoadDuplicateIDsAcrossColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	payload := `{
  "version": 3,
  "last_updated": "2026-03-01T10:00:00Z",
  "columns": {
    "To Do": [{"id": "x", "text": "one", "created_at": "2026-03-01T10:00:00Z", "source_run": "r"}],
    "Done": [{"id": "x", "text": "two", "created_at": "2026-03-01T10:00:00Z", "source_run": "r"}],
    "Blockers": []
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	_, err := NewStore(path).Load()
	require.ErrorIs(t, err, ErrCorruptBoard)
}

func TestLoadEmptyItemTextIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	payload := `{"columns": {"To Do": [{"id": "x", "text": ""}]}}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	_, err := NewStore(path).Load()
	require.ErrorIs(t, err, ErrCorruptBoard)
}

func TestUnknownFieldsSurviveRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	payload := `{
  "version": 1,
  "last_updated": "2026-03-01T10:00:00Z",
  "schema_hint": "v2-preview",
  "columns": {
    "To Do": [],
    "Blockers": [],
    "Done": [],
    "Icebox": [{"id": "z", "text": "someday", "created_at": "2026-03-01T10:00:00Z", "source_run": "r0"}]
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	store := NewStore(path)
	b, err := store.Load()
	require.NoError(t, err)
	require.NoError(t, store.Save(b))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var top map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &top))
	assert.Contains(t, top, "schema_hint")

	var cols map[string][]*Item
	require.NoError(t, json.Unmarshal(top["columns"], &cols))
	require.Len(t, cols["Icebox"], 1)
	assert.Equal(t, "someday", cols["Icebox"][0].Text)
}

func TestFailedSaveLeavesPreviousFileIntact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.json")
	store := NewStore(path)

	b := NewBoard()
	require.NoError(t, b.Append(ColumnToDo, &Item{ID: "a1", Text: "Deploy service", CreatedAt: time.Now(), SourceRun: "r1"}))
	require.NoError(t, store.Save(b))
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	versionBefore := b.Version

	// point the store at a path whose directory does not exist so the
	// temp-file step fails before anything is replaced
	broken := NewStore(filepath.Join(dir, "no-such-dir", "board.json"))
	err = broken.Save(b)
	require.ErrorIs(t, err, ErrIOFailure)
	assert.Equal(t, versionBefore, b.Version)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "previous board file must be byte-identical")
}

func TestSaveRejectsInvalidBoard(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "board.json"))
	b := NewBoard()
	b.columns[ColumnToDo] = []*Item{{ID: "", Text: "missing id"}}
	require.Error(t, store.Save(b))
}
