package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger for CLI use.
func Setup(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// RunLogger manages the detailed log file for a single ingestion run. It
// captures the transcript, the LLM prompt/response, and per-item decisions
// for later inspection.
type RunLogger struct {
	runID     string
	logFile   *os.File
	mutex     sync.Mutex
	startTime time.Time
}

// StartRunLogging initializes the log file for a new run under dir.
func StartRunLogging(dir, runID string) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(dir, fmt.Sprintf("run_%s_%s.log", runID, timestamp))
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &RunLogger{
		runID:     runID,
		logFile:   logFile,
		startTime: time.Now(),
	}
	logger.writeHeader()
	return logger, nil
}

// Log writes a timestamped message to the run log.
func (r *RunLogger) Log(format string, args ...interface{}) {
	if r == nil {
		return
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	timestamp := time.Now().Format("15:04:05.000")
	elapsed := time.Since(r.startTime)
	message := fmt.Sprintf("[%s] [+%v] %s\n", timestamp, elapsed.Round(time.Millisecond), fmt.Sprintf(format, args...))
	r.logFile.WriteString(message)
	r.logFile.Sync()
}

// LogSection writes a section header to the log.
func (r *RunLogger) LogSection(title string) {
	if r == nil {
		return
	}
	separator := strings.Repeat("=", 80)
	r.Log("%s", separator)
	r.Log("= %s", title)
	r.Log("%s", separator)
}

// LogTranscript records the full transcript produced for this run.
func (r *RunLogger) LogTranscript(transcript string) {
	if r == nil {
		return
	}
	r.LogSection("TRANSCRIPT")
	r.Log("Transcript length: %d characters", len(transcript))
	r.writeRaw(transcript)
}

// LogRequest logs an LLM extraction request.
func (r *RunLogger) LogRequest(model, prompt string) {
	if r == nil {
		return
	}
	r.LogSection("LLM REQUEST")
	r.Log("Model: %s", model)
	r.Log("Prompt length: %d characters", len(prompt))
	r.writeRaw(prompt)
}

// LogResponse logs an LLM extraction response.
func (r *RunLogger) LogResponse(response string) {
	if r == nil {
		return
	}
	r.LogSection("LLM RESPONSE")
	r.Log("Response length: %d characters", len(response))
	r.writeRaw(response)
}

// LogError logs an error with its context.
func (r *RunLogger) LogError(context string, err error) {
	if r == nil {
		return
	}
	r.Log("ERROR in %s: %v", context, err)
}

// Close finalizes and closes the run log.
func (r *RunLogger) Close() {
	if r == nil {
		return
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.logFile == nil {
		return
	}
	elapsed := time.Since(r.startTime)
	fmt.Fprintf(r.logFile, "\n=== RUN %s COMPLETE (%v) ===\n", r.runID, elapsed.Round(time.Millisecond))
	r.logFile.Close()
	r.logFile = nil
}

func (r *RunLogger) writeHeader() {
	fmt.Fprintf(r.logFile, "=== SCRUMBOT RUN LOG ===\n")
	fmt.Fprintf(r.logFile, "Run ID: %s\n", r.runID)
	fmt.Fprintf(r.logFile, "Started: %s\n\n", r.startTime.Format(time.RFC3339))
}

func (r *RunLogger) writeRaw(content string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	io.WriteString(r.logFile, content)
	if !strings.HasSuffix(content, "\n") {
		io.WriteString(r.logFile, "\n")
	}
	r.logFile.Sync()
}
