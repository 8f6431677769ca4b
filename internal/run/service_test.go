package run

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrumbot/internal/board"
	"github.com/scrumbot/internal/config"
	"github.com/scrumbot/internal/logging"
)

type stubTranscriber struct {
	transcript string
	err        error
	calls      int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	return s.transcript, s.err
}

type stubExtractor struct {
	candidates []board.Candidate
	err        error
}

func (s *stubExtractor) Extract(ctx context.Context, transcript string, runLog *logging.RunLogger) ([]board.Candidate, error) {
	return s.candidates, s.err
}

func newTestService(t *testing.T, boardPath string, tr Transcriber, ex Extractor) *Service {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	svc, err := NewService(cfg, board.NewStore(boardPath), tr, ex)
	require.NoError(t, err)
	svc.logDir = filepath.Join(t.TempDir(), "run_logs")
	return svc
}

func TestExecutePersistsMergedBoard(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.json")
	svc := newTestService(t, boardPath,
		&stubTranscriber{transcript: "We deployed and now we wait for api keys."},
		&stubExtractor{candidates: []board.Candidate{
			{RawText: "Waiting on API keys", Hint: board.HintBlocked},
			{RawText: "waiting for api keys", Hint: board.HintBlocked},
			{RawText: "Deploy service", Hint: board.HintPlanned},
		}},
	)

	outcome, err := svc.Execute(context.Background(), "standup.wav", false)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Report.Added)
	assert.Equal(t, 1, outcome.Report.Merged)
	assert.NotEmpty(t, outcome.RunID)

	loaded, err := board.NewStore(boardPath).Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Items(board.ColumnBlockers), 1)
	assert.Equal(t, "Waiting on API keys", loaded.Items(board.ColumnBlockers)[0].Text)
	require.Len(t, loaded.Items(board.ColumnToDo), 1)
}

func TestExecuteDryRunDoesNotSave(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.json")
	svc := newTestService(t, boardPath,
		&stubTranscriber{transcript: "transcript"},
		&stubExtractor{candidates: []board.Candidate{{RawText: "Deploy service", Hint: board.HintPlanned}}},
	)

	outcome, err := svc.Execute(context.Background(), "standup.wav", true)
	require.NoError(t, err)
	assert.True(t, outcome.DryRun)
	assert.Equal(t, 1, outcome.Report.Added)

	_, statErr := os.Stat(boardPath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the board file")
}

func TestExecuteAbortsOnCorruptBoardBeforeTranscription(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, os.WriteFile(boardPath, []byte("{broken"), 0o644))

	tr := &stubTranscriber{transcript: "unused"}
	svc := newTestService(t, boardPath, tr, &stubExtractor{})

	_, err := svc.Execute(context.Background(), "standup.wav", false)
	require.ErrorIs(t, err, board.ErrCorruptBoard)
	assert.Equal(t, 0, tr.calls, "corrupt board must abort before the pipeline runs")
}

func TestExecuteSurfacesTranscriptionFailure(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.json")
	svc := newTestService(t, boardPath,
		&stubTranscriber{err: errors.New("whisper exploded")},
		&stubExtractor{},
	)
	_, err := svc.Execute(context.Background(), "standup.wav", false)
	require.Error(t, err)

	_, statErr := os.Stat(boardPath)
	assert.True(t, os.IsNotExist(statErr), "failed run must not write the board")
}

func TestExecuteFailsWhenAnotherRunHoldsTheLock(t *testing.T) {
	boardPath := filepath.Join(t.TempDir(), "board.json")
	other := flock.New(boardPath + ".lock")
	locked, err := other.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	defer other.Unlock()

	svc := newTestService(t, boardPath,
		&stubTranscriber{transcript: "transcript"},
		&stubExtractor{},
	)
	_, err = svc.Execute(context.Background(), "standup.wav", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another run")
}
