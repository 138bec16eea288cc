package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/roomswap-mcp/internal/geometry"
	"github.com/ironsheep/roomswap-mcp/internal/imaging"
	"github.com/ironsheep/roomswap-mcp/internal/overlay"
	"github.com/ironsheep/roomswap-mcp/internal/placement"
	"github.com/ironsheep/roomswap-mcp/internal/scene"
)

// targetPadding is the margin, in percent of the image, added around the
// selected region when it is handed to the compositing step.
const targetPadding = 5.0

var (
	errNoRoom      = errors.New("no room photo loaded; call room_load first")
	errNoPlacement = errors.New("placement editor is not open; call placement_open first")
	errNoComposite = errors.New("generative compositing is not configured; set GEMINI_API_KEY")
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "room_load", "placement_pointer").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Basic Image Information
	case "image_info":
		return s.handleImageInfo(args)

	// Room Overlay
	case "room_load":
		return s.handleRoomLoad(ctx, args)
	case "room_set_regions":
		return s.handleRoomSetRegions(args)
	case "room_render":
		return s.handleRoomRender(args)
	case "room_pointer":
		return s.handleRoomPointer(args)
	case "room_locate":
		return s.handleRoomLocate(args)

	// Placement Editor
	case "placement_open":
		return s.handlePlacementOpen(args)
	case "placement_pointer":
		return s.handlePlacementPointer(args)
	case "placement_confirm":
		return s.handlePlacementConfirm()
	case "placement_preview":
		return s.handlePlacementPreview(args)
	case "placement_composite":
		return s.handlePlacementComposite(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// outputFormat resolves a requested format against the configured default.
func (s *Server) outputFormat(requested string) (string, error) {
	return imaging.ParseFormat(requested, s.cfg.OutputFormat)
}

// === Basic Image Information Handlers ===

type imageInfoArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageInfo(args json.RawMessage) (interface{}, error) {
	var a imageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Room Overlay Handlers ===

type roomLoadArgs struct {
	Path    string `json:"path"`
	Analyze *bool  `json:"analyze"`
}

// RoomLoadResult is returned by room_load.
type RoomLoadResult struct {
	Path          string           `json:"path"`
	Width         int              `json:"width"`
	Height        int              `json:"height"`
	Analyzer      string           `json:"analyzer,omitempty"`
	Regions       []overlay.Region `json:"regions"`
	AnalysisError string           `json:"analysis_error,omitempty"`
}

// handleRoomLoad swaps a new photo into the renderer. Analysis failures do
// not fail the tool: the room is loaded with no regions and the error is
// reported alongside.
func (s *Server) handleRoomLoad(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a roomLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Path) == "" {
		return nil, fmt.Errorf("path is required")
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	if old := s.room.path; old != "" && old != a.Path && !s.placementUses(old) {
		s.cache.Evict(old)
	}
	s.room.path = a.Path
	s.room.selected = ""
	s.room.renderer.SetImage(img)
	s.room.renderer.SetRegions(nil)

	b := img.Bounds()
	result := &RoomLoadResult{
		Path:    a.Path,
		Width:   b.Dx(),
		Height:  b.Dy(),
		Regions: []overlay.Region{},
	}

	analyze := a.Analyze == nil || *a.Analyze
	if analyze && s.analyzer != nil {
		result.Analyzer = s.analyzer.Name()

		actx, cancel := context.WithTimeout(ctx, s.cfg.AnalyzeTimeout)
		regions, err := s.analyzer.Analyze(actx, img)
		cancel()

		if err != nil {
			s.logger.Error("scene analysis failed", "analyzer", s.analyzer.Name(), "path", a.Path, "error", err)
			result.AnalysisError = err.Error()
		} else {
			regions = scene.Normalize(regions)
			s.room.renderer.SetRegions(regions)
			result.Regions = s.room.renderer.Regions()
		}
	}

	s.logger.Info("room loaded", "path", a.Path, "width", result.Width, "height", result.Height, "regions", len(result.Regions))
	return result, nil
}

type roomSetRegionsArgs struct {
	Regions []overlay.Region `json:"regions"`
}

// RegionsResult lists the regions in draw order.
type RegionsResult struct {
	Regions []overlay.Region `json:"regions"`
}

func (s *Server) handleRoomSetRegions(args json.RawMessage) (interface{}, error) {
	var a roomSetRegionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.room.renderer.Loaded() {
		return nil, errNoRoom
	}

	native := s.room.renderer.Size()
	regions := make([]overlay.Region, len(a.Regions))
	for i, r := range a.Regions {
		r.BBox = r.BBox.ToPercent(native)
		regions[i] = r
	}
	regions = scene.Sanitize(regions)

	s.room.renderer.SetRegions(regions)
	if s.room.selected != "" && !hasRegion(regions, s.room.selected) {
		s.room.selected = ""
	}
	return &RegionsResult{Regions: s.room.renderer.Regions()}, nil
}

// placementUses reports whether the open editor holds an image from path.
func (s *Server) placementUses(path string) bool {
	return s.placement != nil && (s.placement.backgroundPath == path || s.placement.productPath == path)
}

func hasRegion(regions []overlay.Region, id string) bool {
	for _, r := range regions {
		if r.ID == id {
			return true
		}
	}
	return false
}

type renderArgs struct {
	Format string `json:"format"`
	Force  bool   `json:"force"`
}

// RenderResult carries an encoded frame.
type RenderResult struct {
	*imaging.EncodedImage
	HoveredID string `json:"hovered_id,omitempty"`
	Repainted bool   `json:"repainted"`
}

func (s *Server) handleRoomRender(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	format, err := s.outputFormat(a.Format)
	if err != nil {
		return nil, err
	}
	if !s.room.renderer.Loaded() {
		return nil, errNoRoom
	}

	if a.Force {
		s.room.renderer.MarkDirty()
	}
	before := s.room.renderer.Repaints()
	frame := s.room.renderer.Frame()
	enc, err := imaging.Encode(frame, format, imaging.DefaultQuality)
	if err != nil {
		return nil, err
	}
	return &RenderResult{
		EncodedImage: enc,
		HoveredID:    s.room.renderer.Hovered(),
		Repainted:    s.room.renderer.Repaints() != before,
	}, nil
}

type roomPointerArgs struct {
	Action        string  `json:"action"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	DisplayWidth  float64 `json:"display_width"`
	DisplayHeight float64 `json:"display_height"`
}

// PointerResult reports hover and selection after a room pointer event.
type PointerResult struct {
	HoveredID  string `json:"hovered_id"`
	SelectedID string `json:"selected_id"`
	Hit        bool   `json:"hit"`
	Dirty      bool   `json:"dirty"`
}

func (s *Server) handleRoomPointer(args json.RawMessage) (interface{}, error) {
	var a roomPointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.room.renderer.Loaded() {
		return nil, errNoRoom
	}

	client := geometry.Point{X: a.X, Y: a.Y}
	displayed := geometry.Size{Width: a.DisplayWidth, Height: a.DisplayHeight}
	if !displayed.Valid() {
		displayed = s.room.renderer.Size()
	}

	var hit bool
	switch a.Action {
	case "move":
		hit = s.room.renderer.Hover(client, displayed) != ""
	case "click":
		_, hit = s.room.renderer.Click(client, displayed)
	case "leave":
		s.room.renderer.Leave()
	default:
		return nil, fmt.Errorf("unknown pointer action: %q (want move, click or leave)", a.Action)
	}

	return &PointerResult{
		HoveredID:  s.room.renderer.Hovered(),
		SelectedID: s.room.selected,
		Hit:        hit,
		Dirty:      s.room.renderer.Dirty(),
	}, nil
}

type pointArgs struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LocateResult is the outcome of a native-pixel hit-test.
type LocateResult struct {
	ID    string         `json:"id,omitempty"`
	Found bool           `json:"found"`
	Point geometry.Point `json:"point"`
	Label string         `json:"label,omitempty"`
	BBox  *geometry.Rect `json:"bbox,omitempty"`
}

func (s *Server) handleRoomLocate(args json.RawMessage) (interface{}, error) {
	var a pointArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !s.room.renderer.Loaded() {
		return nil, errNoRoom
	}

	p := geometry.Point{X: a.X, Y: a.Y}
	result := &LocateResult{Point: p}
	id, ok := s.room.renderer.Locate(p)
	if !ok {
		return result, nil
	}
	result.ID, result.Found = id, true
	if r, found := s.region(id); found {
		bbox := r.BBox
		result.Label, result.BBox = r.Label, &bbox
	}
	return result, nil
}

func (s *Server) region(id string) (overlay.Region, bool) {
	for _, r := range s.room.renderer.Regions() {
		if r.ID == id {
			return r, true
		}
	}
	return overlay.Region{}, false
}

// === Placement Editor Handlers ===

type placementOpenArgs struct {
	BackgroundPath  string  `json:"background_path"`
	ProductPath     string  `json:"product_path"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
}

// PlacementState describes the editor after an operation.
type PlacementState struct {
	Container geometry.Size    `json:"container"`
	Rect      geometry.Rect    `json:"rect"`
	Percent   *geometry.Rect   `json:"percent,omitempty"`
	Mode      placement.Mode   `json:"mode"`
	Target    placement.Target `json:"target"`
}

func (s *Server) editorState(target placement.Target) *PlacementState {
	e := s.placement.editor
	state := &PlacementState{
		Container: e.Container(),
		Rect:      e.Rect(),
		Mode:      e.Session().Mode,
		Target:    target,
	}
	if pct, ok := e.Confirm(); ok {
		state.Percent = &pct
	}
	return state
}

// handlePlacementOpen starts a placement over a background. Reopening with
// an editor already open swaps the background and reseeds the box.
func (s *Server) handlePlacementOpen(args json.RawMessage) (interface{}, error) {
	var a placementOpenArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.BackgroundPath == "" {
		a.BackgroundPath = s.room.path
	}
	if a.BackgroundPath == "" {
		return nil, fmt.Errorf("background_path is required when no room photo is loaded")
	}
	if a.ProductPath == "" {
		return nil, fmt.Errorf("product_path is required")
	}

	background, err := s.cache.Load(a.BackgroundPath)
	if err != nil {
		return nil, fmt.Errorf("background: %w", err)
	}
	product, err := s.cache.Load(a.ProductPath)
	if err != nil {
		return nil, fmt.Errorf("product: %w", err)
	}

	container := geometry.Size{Width: a.ContainerWidth, Height: a.ContainerHeight}
	if !container.Valid() {
		container = geometry.SizeOf(background.Bounds())
	}

	if s.placement == nil {
		s.placement = &placementState{editor: placement.NewEditor(container)}
	} else {
		s.placement.editor.SetContainer(container)
		s.placement.editor.Invalidate()
	}
	s.placement.backgroundPath = a.BackgroundPath
	s.placement.productPath = a.ProductPath
	s.placement.background = background
	s.placement.product = product

	s.logger.Info("placement opened", "background", a.BackgroundPath, "product", a.ProductPath,
		"container_width", container.Width, "container_height", container.Height)
	return s.editorState(placement.TargetNone), nil
}

type placementPointerArgs struct {
	Event           string  `json:"event"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	ContainerWidth  float64 `json:"container_width"`
	ContainerHeight float64 `json:"container_height"`
}

func (s *Server) handlePlacementPointer(args json.RawMessage) (interface{}, error) {
	var a placementPointerArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if s.placement == nil {
		return nil, errNoPlacement
	}
	kind, err := placement.ParseEventKind(a.Event)
	if err != nil {
		return nil, err
	}

	if c := (geometry.Size{Width: a.ContainerWidth, Height: a.ContainerHeight}); c.Valid() {
		s.placement.editor.SetContainer(c)
	}

	target := s.placement.editor.Dispatch(placement.Event{
		Kind: kind,
		Pos:  geometry.Point{X: a.X, Y: a.Y},
	})
	return s.editorState(target), nil
}

// ConfirmResult is the confirmed placement handed to the compositing step.
type ConfirmResult struct {
	Placement      geometry.Rect  `json:"placement"`
	BackgroundPath string         `json:"background_path"`
	ProductPath    string         `json:"product_path"`
	RegionID       string         `json:"region_id,omitempty"`
	RegionLabel    string         `json:"region_label,omitempty"`
	TargetBBox     *geometry.Rect `json:"target_bbox,omitempty"`
}

func (s *Server) handlePlacementConfirm() (interface{}, error) {
	if s.placement == nil {
		return nil, errNoPlacement
	}
	pct, ok := s.placement.editor.Confirm()
	if !ok {
		return nil, fmt.Errorf("placement container size is unknown")
	}

	result := &ConfirmResult{
		Placement:      pct,
		BackgroundPath: s.placement.backgroundPath,
		ProductPath:    s.placement.productPath,
	}
	if s.placement.backgroundPath == s.room.path && s.room.selected != "" {
		if r, found := s.region(s.room.selected); found {
			target := r.BBox.Expand(targetPadding)
			result.RegionID, result.RegionLabel, result.TargetBBox = r.ID, r.Label, &target
		}
	}

	s.placement = nil
	s.logger.Info("placement confirmed", "x", pct.X, "y", pct.Y, "width", pct.Width, "height", pct.Height)
	return result, nil
}

func (s *Server) handlePlacementPreview(args json.RawMessage) (interface{}, error) {
	var a renderArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	format, err := s.outputFormat(a.Format)
	if err != nil {
		return nil, err
	}
	if s.placement == nil {
		return nil, errNoPlacement
	}
	pct, ok := s.placement.editor.Confirm()
	if !ok {
		return nil, fmt.Errorf("placement container size is unknown")
	}

	img := placement.Composite(s.placement.background, s.placement.product, pct)
	enc, err := imaging.Encode(img, format, imaging.DefaultQuality)
	if err != nil {
		return nil, err
	}
	return &struct {
		*imaging.EncodedImage
		Placement geometry.Rect `json:"placement"`
	}{enc, pct}, nil
}

type compositeArgs struct {
	ProductPath string `json:"product_path"`
	RegionID    string `json:"region_id"`
	Format      string `json:"format"`
}

// CompositeResult is the room photo with the target region replaced.
type CompositeResult struct {
	*imaging.EncodedImage
	Compositor  string        `json:"compositor"`
	RegionID    string        `json:"region_id"`
	RegionLabel string        `json:"region_label"`
	TargetBBox  geometry.Rect `json:"target_bbox"`
}

// handlePlacementComposite replaces a region of the room photo with the
// product using the generative compositor. The region defaults to the
// selected one and is padded by targetPadding before it is sent.
func (s *Server) handlePlacementComposite(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a compositeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ProductPath == "" {
		return nil, fmt.Errorf("product_path is required")
	}
	format, err := s.outputFormat(a.Format)
	if err != nil {
		return nil, err
	}
	if !s.room.renderer.Loaded() {
		return nil, errNoRoom
	}
	if s.compositor == nil {
		return nil, errNoComposite
	}

	id := a.RegionID
	if id == "" {
		id = s.room.selected
	}
	if id == "" {
		return nil, fmt.Errorf("no region selected; click a region or pass region_id")
	}
	r, found := s.region(id)
	if !found {
		return nil, fmt.Errorf("unknown region %q", id)
	}

	room, err := s.cache.Load(s.room.path)
	if err != nil {
		return nil, err
	}
	product, err := s.cache.Load(a.ProductPath)
	if err != nil {
		return nil, err
	}

	target := r.BBox.Expand(targetPadding)
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CompositeTimeout)
	defer cancel()

	s.logger.Info("compositing", "compositor", s.compositor.Name(), "region", r.ID, "product", a.ProductPath)
	img, err := s.compositor.Composite(cctx, room, product, target)
	if err != nil {
		return nil, err
	}

	enc, err := imaging.Encode(img, format, imaging.DefaultQuality)
	if err != nil {
		return nil, err
	}
	return &CompositeResult{
		EncodedImage: enc,
		Compositor:   s.compositor.Name(),
		RegionID:     r.ID,
		RegionLabel:  r.Label,
		TargetBBox:   target,
	}, nil
}
