package transcribe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	binary string
	args   []string
	out    string
	err    error
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	f.binary = binary
	f.args = args
	return f.out, f.err
}

func writeAudioStub(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standup.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return path
}

func TestTranscribeRunsConfiguredBinary(t *testing.T) {
	fake := &fakeExecutor{out: " Yesterday we shipped the login fix.\n"}
	client, err := New("whisper-cli", "models/ggml-base.en.bin", "en", 60, WithExecutor(fake))
	require.NoError(t, err)

	audio := writeAudioStub(t)
	transcript, err := client.Transcribe(context.Background(), audio)
	require.NoError(t, err)
	assert.Equal(t, "Yesterday we shipped the login fix.", transcript)
	assert.Equal(t, "whisper-cli", fake.binary)
	assert.Equal(t, []string{"-m", "models/ggml-base.en.bin", "-f", audio, "-nt", "-l", "en"}, fake.args)
}

func TestTranscribeMissingAudioFile(t *testing.T) {
	client, err := New("whisper-cli", "", "", 60, WithExecutor(&fakeExecutor{}))
	require.NoError(t, err)
	_, err = client.Transcribe(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio file not found")
}

func TestTranscribePropagatesExecError(t *testing.T) {
	fake := &fakeExecutor{err: errors.New("model load failed")}
	client, err := New("whisper-cli", "", "", 60, WithExecutor(fake))
	require.NoError(t, err)
	_, err = client.Transcribe(context.Background(), writeAudioStub(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transcription failed")
}

func TestNewRequiresBinary(t *testing.T) {
	_, err := New("  ", "", "", 0)
	require.Error(t, err)
}
