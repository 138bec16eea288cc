package scene

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	timeout := errors.New("context deadline exceeded")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"forbidden", &googleapi.Error{Code: http.StatusForbidden, Message: "The caller does not have permission"}, ErrPermissionDenied},
		{"wrapped forbidden", fmt.Errorf("generate: %w", &googleapi.Error{Code: http.StatusForbidden}), ErrPermissionDenied},
		{"permission text", errors.New("rpc error: code = PermissionDenied desc = Permission denied on resource"), ErrPermissionDenied},
		{"entity not found", &googleapi.Error{Code: http.StatusNotFound, Message: "Requested entity was not found."}, ErrKeyNotFound},
		{"entity not found text", errors.New("Requested entity was not found."), ErrKeyNotFound},
		{"other", timeout, timeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			if !errors.Is(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if !errors.Is(got, tt.err) {
				t.Error("original error should stay in the chain")
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("nil should stay nil")
	}
	if got := ClassifyError(timeout); errors.Is(got, ErrPermissionDenied) || errors.Is(got, ErrKeyNotFound) {
		t.Errorf("unrelated error classified: %v", got)
	}
}

func TestRetrier_Do(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		failures  int
		wantCalls int
		wantErr   bool
	}{
		{"first try", 2, 0, 1, false},
		{"second try", 2, 1, 2, false},
		{"exhausted", 2, 5, 2, true},
		{"zero attempts still calls once", 0, 5, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := retrier{attempts: tt.attempts, delay: time.Millisecond, logger: discardLogger(), op: "test call"}
			calls := 0
			err := r.do(context.Background(), func(ctx context.Context) error {
				calls++
				if calls <= tt.failures {
					return fmt.Errorf("failure %d", calls)
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls: got %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err: got %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && err.Error() != fmt.Sprintf("failure %d", calls) {
				t.Errorf("should return the last error, got %v", err)
			}
		})
	}
}
