package board

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	// ErrCorruptBoard marks a durable board file that exists but cannot be
	// parsed or violates the board invariants. Fatal; nothing is written.
	ErrCorruptBoard = errors.New("corrupt board file")
	// ErrIOFailure marks a failed write or replace. The previous durable
	// file is left untouched.
	ErrIOFailure = errors.New("board write failed")
)

// Store is the sole authority for reading and writing durable board state.
type Store struct {
	path string
}

func NewStore(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// Load reads the board file. A missing file yields a fresh empty board;
// anything unreadable or invariant-violating fails with ErrCorruptBoard.
// Unknown top-level fields and unknown columns are retained for the next
// save.
func (s *Store) Load() (*Board, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().Str("path", s.path).Msg("board file absent, starting empty")
		return NewBoard(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorruptBoard, s.path, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorruptBoard, s.path, err)
	}

	b := NewBoard()
	if v, ok := top["version"]; ok {
		if err := json.Unmarshal(v, &b.Version); err != nil {
			return nil, fmt.Errorf("%w: version field in %s: %v", ErrCorruptBoard, s.path, err)
		}
	}
	if v, ok := top["last_updated"]; ok {
		var stamp string
		if err := json.Unmarshal(v, &stamp); err != nil {
			return nil, fmt.Errorf("%w: last_updated field in %s: %v", ErrCorruptBoard, s.path, err)
		}
		if stamp != "" {
			ts, err := time.Parse(time.RFC3339, stamp)
			if err != nil {
				return nil, fmt.Errorf("%w: last_updated field in %s: %v", ErrCorruptBoard, s.path, err)
			}
			b.LastUpdated = ts
		}
	}
	if v, ok := top["columns"]; ok {
		var cols map[string][]*Item
		if err := json.Unmarshal(v, &cols); err != nil {
			return nil, fmt.Errorf("%w: columns in %s: %v", ErrCorruptBoard, s.path, err)
		}
		for name, items := range cols {
			if items == nil {
				items = []*Item{}
			}
			b.columns[Column(name)] = items
		}
	}
	delete(top, "version")
	delete(top, "last_updated")
	delete(top, "columns")
	if len(top) > 0 {
		b.extra = top
	}

	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptBoard, s.path, err)
	}
	return b, nil
}

// Save writes the whole board atomically: temp file in the target directory,
// then rename over the destination. Version and last_updated are committed to
// the in-memory board only after the rename succeeds, so a failed save leaves
// both the file and the board as they were.
func (s *Store) Save(b *Board) error {
	if err := b.Validate(); err != nil {
		return fmt.Errorf("invalid board: %w", err)
	}

	version := b.Version + 1
	now := time.Now().UTC()
	payload, err := marshalBoard(b, version, now)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if err := writeFileAtomic(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	b.Version = version
	b.LastUpdated = now
	log.Info().
		Str("path", s.path).
		Int64("version", version).
		Int("items", b.Total()).
		Msg("board saved")
	return nil
}

func marshalBoard(b *Board, version int64, updated time.Time) ([]byte, error) {
	cols := make(map[Column][]*Item, len(b.columns))
	for name, items := range b.columns {
		if items == nil {
			items = []*Item{}
		}
		cols[name] = items
	}

	top := make(map[string]json.RawMessage, len(b.extra)+3)
	for k, v := range b.extra {
		top[k] = v
	}
	var err error
	if top["version"], err = json.Marshal(version); err != nil {
		return nil, err
	}
	if top["last_updated"], err = json.Marshal(updated.Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if top["columns"], err = json.Marshal(cols); err != nil {
		return nil, err
	}
	return json.MarshalIndent(top, "", "  ")
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "board-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
