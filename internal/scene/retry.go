package scene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	geminiAttempts   = 2
	geminiRetryDelay = 1500 * time.Millisecond
)

var (
	// ErrPermissionDenied is returned when Gemini rejects the API key for
	// the requested model (HTTP 403), usually because billing is not enabled.
	ErrPermissionDenied = errors.New("gemini: API key has no access to this model (403); use a key with billing enabled")

	// ErrKeyNotFound is returned when Gemini does not recognise the API key
	// or model.
	ErrKeyNotFound = errors.New("gemini: API key or model not found; select the key again")
)

// generateFunc performs one Gemini call. It is a field on the Gemini types so
// tests can replace the network.
type generateFunc func(ctx context.Context, model string, cfg genai.GenerationConfig, parts ...genai.Part) (*genai.GenerateContentResponse, error)

// geminiGenerate returns a generateFunc that opens a client with apiKey for
// each call.
func geminiGenerate(apiKey string) generateFunc {
	return func(ctx context.Context, model string, cfg genai.GenerationConfig, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
		cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}
		defer cl.Close()

		m := cl.GenerativeModel(model)
		m.GenerationConfig = cfg
		return m.GenerateContent(ctx, parts...)
	}
}

// retrier repeats a failing call a fixed number of times, pausing between
// attempts. Only errors from the call itself are retried.
type retrier struct {
	attempts int
	delay    time.Duration
	logger   *slog.Logger
	op       string
}

// do runs call until it succeeds or the attempts are used up, and returns
// the last error. A cancelled ctx ends the wait between attempts.
func (r retrier) do(ctx context.Context, call func(ctx context.Context) error) error {
	attempts := r.attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = call(ctx)
		if lastErr == nil {
			return nil
		}
		r.logger.Warn(r.op+" failed", "attempt", attempt, "error", lastErr)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay):
		}
	}
	return lastErr
}

// ClassifyError maps Gemini key and permission failures to ErrPermissionDenied
// and ErrKeyNotFound, keeping the original error in the chain. Other errors
// are returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}

	msg := err.Error()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg += " " + gerr.Message
		if gerr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		}
	}

	switch {
	case strings.Contains(msg, "Requested entity was not found"):
		return fmt.Errorf("%w: %w", ErrKeyNotFound, err)
	case strings.Contains(msg, "403"), strings.Contains(strings.ToLower(msg), "permission denied"):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return err
}
