package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Config configures retry behavior with exponential backoff
type Config struct {
	MaxRetries int           `json:"max_retries"` // Maximum number of retry attempts
	BaseDelay  time.Duration `json:"base_delay"`  // Base delay between retries
	MaxDelay   time.Duration `json:"max_delay"`   // Maximum delay between retries
	Multiplier float64       `json:"multiplier"`  // Exponential backoff multiplier
	Jitter     bool          `json:"jitter"`      // Add random jitter to prevent thundering herd
}

// Result contains information about the retry operation
type Result struct {
	Attempts      int           `json:"attempts"`
	TotalDuration time.Duration `json:"total_duration"`
	LastError     error         `json:"-"`
	Success       bool          `json:"success"`
}

// DefaultConfig returns a retry configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// LLMConfig returns a retry configuration tuned for LLM requests
func LLMConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   60 * time.Second,
		Multiplier: 2.5,
		Jitter:     true,
	}
}

// WithBackoff executes an operation with exponential backoff retry logic
func WithBackoff(ctx context.Context, config Config, operation func() error) Result {
	startTime := time.Now()
	result := Result{}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		err := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(startTime)
			if attempt > 0 {
				log.Debug().
					Int("retries", attempt).
					Dur("total", result.TotalDuration).
					Msg("operation succeeded after retries")
			}
			return result
		}
		result.LastError = err

		if attempt >= config.MaxRetries {
			result.TotalDuration = time.Since(startTime)
			log.Warn().
				Err(err).
				Int("attempts", result.Attempts).
				Msg("operation failed, retries exhausted")
			return result
		}
		if !IsRetryableError(err) {
			result.TotalDuration = time.Since(startTime)
			log.Debug().Err(err).Msg("operation failed with non-retryable error")
			return result
		}

		delay := calculateDelay(config, attempt)
		log.Debug().
			Err(err).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("operation failed, backing off before retry")

		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		case <-time.After(delay):
		}
	}

	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateDelay computes the delay for the next attempt: baseDelay *
// multiplier^attempt, capped at MaxDelay, with up to 10% jitter.
func calculateDelay(config Config, attempt int) time.Duration {
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}
	if config.Jitter {
		jitterRange := delay * 0.1
		delay += (rand.Float64() - 0.5) * 2 * jitterRange
		if delay < 0 {
			delay = float64(config.BaseDelay)
		}
	}
	return time.Duration(delay)
}

// IsRetryableError determines if an error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryable := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"429",
		"502",
		"503",
		"504",
	}
	for _, marker := range retryable {
		if strings.Contains(errStr, marker) {
			return true
		}
	}
	return false
}
