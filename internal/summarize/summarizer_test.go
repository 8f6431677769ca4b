package summarize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	responses []string
	errs      []error
	calls     int
	prompt    string
}

func (f *fakeCaller) Call(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	i := f.calls
	f.calls++
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var resp string
	if i < len(f.responses) {
		resp = f.responses[i]
	}
	return resp, err
}

func (f *fakeCaller) Model() string { return "test-model" }

func fastSummarizer(caller Caller) *Summarizer {
	s := NewSummarizer(caller)
	s.retryCfg.BaseDelay = 0
	s.retryCfg.MaxDelay = 0
	return s
}

func TestExtractHappyPath(t *testing.T) {
	caller := &fakeCaller{responses: []string{`[{"text": "Deploy service", "status": "planned"}]`}}
	s := fastSummarizer(caller)

	candidates, err := s.Extract(context.Background(), "We will deploy the service today.", nil)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "Deploy service", candidates[0].RawText)
	assert.Contains(t, caller.prompt, "We will deploy the service today.")
}

func TestExtractRetriesTransientFailure(t *testing.T) {
	caller := &fakeCaller{
		errs:      []error{errors.New("503 service unavailable"), nil},
		responses: []string{"", `[{"text": "Deploy service", "status": "planned"}]`},
	}
	s := fastSummarizer(caller)

	candidates, err := s.Extract(context.Background(), "transcript text", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, caller.calls)
	require.Len(t, candidates, 1)
}

func TestExtractEmptyTranscript(t *testing.T) {
	s := fastSummarizer(&fakeCaller{})
	_, err := s.Extract(context.Background(), "   ", nil)
	require.Error(t, err)
}

func TestExtractUnparseableResponse(t *testing.T) {
	caller := &fakeCaller{responses: []string{"no items here"}}
	s := fastSummarizer(caller)
	_, err := s.Extract(context.Background(), "transcript", nil)
	require.Error(t, err)
}
