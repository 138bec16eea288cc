package scene

import (
	"context"
	"encoding/json"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ollama/ollama/api"
)

// ollamaServer answers /api/chat with a single non-streamed message.
func ollamaServer(t *testing.T, status int, body map[string]any, seen *api.ChatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("failed to decode chat request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOllamaAnalyzer_Analyze(t *testing.T) {
	var req api.ChatRequest
	srv := ollamaServer(t, http.StatusOK, map[string]any{
		"model": "qwen2.5vl:7b",
		"message": map[string]any{
			"role":    "assistant",
			"content": "Here you go:\n```json\n" + furnitureJSON + "\n```",
		},
		"done": true,
	}, &req)

	o, err := NewOllamaAnalyzer(srv.URL+"/ignored/path", "qwen2.5vl:7b", 256, 85, discardLogger())
	if err != nil {
		t.Fatalf("NewOllamaAnalyzer: %v", err)
	}

	regions, err := o.Analyze(context.Background(), createTestImage(400, 300, color.White))
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(regions))
	}
	b := regions[0].BBox
	if regions[0].Label != "sofa" || !near(b.X, 10) || !near(b.Y, 20) || !near(b.Width, 30) || !near(b.Height, 15) {
		t.Errorf("region 0: %+v", regions[0])
	}

	if req.Model != "qwen2.5vl:7b" {
		t.Errorf("model: got %q", req.Model)
	}
	if req.Stream == nil || *req.Stream {
		t.Error("request should disable streaming")
	}
	if string(req.Format) != `"json"` {
		t.Errorf("format: got %s", req.Format)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != Prompt || len(req.Messages[0].Images) != 1 {
		t.Fatalf("messages: %+v", req.Messages)
	}
	if img := req.Messages[0].Images[0]; len(img) < 3 || img[0] != 0xFF || img[1] != 0xD8 {
		t.Error("photo should be sent as JPEG")
	}
}

func TestOllamaAnalyzer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   map[string]any
		want   string
	}{
		{"server error", http.StatusNotFound, map[string]any{"error": "model \"qwen2.5vl:7b\" not found"}, "not found"},
		{"prose reply", http.StatusOK, map[string]any{
			"message": map[string]any{"role": "assistant", "content": "I cannot see any furniture."},
			"done":    true,
		}, "ollama"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := ollamaServer(t, tt.status, tt.body, nil)
			o, err := NewOllamaAnalyzer(srv.URL, "qwen2.5vl:7b", 256, 85, discardLogger())
			if err != nil {
				t.Fatalf("NewOllamaAnalyzer: %v", err)
			}
			_, err = o.Analyze(context.Background(), createTestImage(40, 30, color.White))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}
