package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/ironsheep/roomswap-mcp/internal/config"
	"github.com/ironsheep/roomswap-mcp/internal/imaging"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
	"github.com/ironsheep/roomswap-mcp/internal/placement"
	"github.com/ironsheep/roomswap-mcp/internal/scene"
)

// Version is reported in the initialize handshake. main overrides it from
// build flags.
var Version = "0.1.0"

// Server handles MCP protocol communication and owns the wizard workspace:
// the room photo with its region overlay, and the placement editor.
//
// Requests are handled one at a time on the goroutine calling Run, so the
// renderer and editor are never touched concurrently.
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	analyzer   scene.Analyzer
	compositor scene.Compositor
	cache      *imaging.ImageCache

	room      roomState
	placement *placementState
}

// roomState is the "select furniture" step: a photo, its regions and the
// pointer state over them.
type roomState struct {
	path     string
	renderer *overlay.Renderer
	selected string
}

// placementState is the manual placement step.
type placementState struct {
	backgroundPath string
	productPath    string
	background     image.Image
	product        image.Image
	editor         *placement.Editor
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance. analyzer may be nil, in which case
// rooms are loaded without regions until the client supplies them.
//
// An invalid stroke or accent colour in cfg is logged and the default
// palette is used.
func New(cfg *config.Config, logger *slog.Logger, analyzer scene.Analyzer) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	style := overlay.DefaultStyle()
	if cfg.StrokeColor != "" || cfg.AccentColor != "" {
		custom, err := style.WithColors(cfg.StrokeColor, cfg.AccentColor)
		if err != nil {
			logger.Warn("ignoring overlay colours", "error", err)
		} else {
			style = custom
		}
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		analyzer: analyzer,
		cache:    imaging.NewImageCache(),
	}
	s.room.renderer = overlay.NewRenderer(style)
	s.room.renderer.OnSelect = func(id string) {
		s.room.selected = id
		s.logger.Info("region selected", "id", id)
	}
	return s
}

// SetCompositor installs the generative backend used by placement_composite.
// A nil compositor disables the tool.
func (s *Server) SetCompositor(c scene.Compositor) {
	s.compositor = c
}

// Run starts the MCP server, reading from stdin and writing to stdout
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads one JSON-RPC request per line from r and writes responses to
// w until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	// Tool results carry base64 images; requests can carry region lists.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 16*1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.logger.Warn("failed to parse request", "error", err)
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.logger.Error("failed to encode response", "error", err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.logger.Debug("request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		// Client acknowledgment, no response needed
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "roomswap-mcp",
				"version": Version,
			},
		},
	}
}
