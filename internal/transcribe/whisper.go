package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Transcriber converts an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps a local whisper.cpp CLI installation.
type Client struct {
	binary    string
	modelPath string
	language  string
	timeout   time.Duration
	exec      Executor
}

// New constructs a whisper client.
func New(binary, modelPath, language string, timeoutSeconds int, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("transcription binary required")
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 600
	}
	client := &Client{
		binary:    binary,
		modelPath: modelPath,
		language:  language,
		timeout:   time.Duration(timeoutSeconds) * time.Second,
		exec:      commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Transcribe runs the whisper binary over the audio file and returns the
// plain-text transcript.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio file not found: %s: %w", audioPath, err)
	}

	args := []string{"-f", audioPath, "-nt"}
	if c.modelPath != "" {
		args = append([]string{"-m", c.modelPath}, args...)
	}
	if c.language != "" {
		args = append(args, "-l", c.language)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	log.Info().
		Str("binary", c.binary).
		Str("audio", audioPath).
		Msg("transcribing audio")
	start := time.Now()

	out, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	transcript := strings.TrimSpace(out)
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("chars", len(transcript)).
		Msg("transcription complete")
	return transcript, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%s: %s: %w", binary, msg, err)
		}
		return "", fmt.Errorf("%s: %w", binary, err)
	}
	return stdout.String(), nil
}
