package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

func numberProperty(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": desc,
	}
}

func formatProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"png", "jpeg", "webp"},
		"description": "Output image format (default: server's configured format)",
	}
}

// bboxSchema describes a geometry.Rect on the wire.
func bboxSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x":      numberProperty("Left edge"),
			"y":      numberProperty("Top edge"),
			"width":  numberProperty("Width"),
			"height": numberProperty("Height"),
			"unit": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"percent", "pixel"},
				"description": "Coordinate space of the box (default: percent of the image)",
			},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_info",
			Description: "Get the dimensions, format and file size of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Room Overlay
		{
			Name:        "room_load",
			Description: "Load a room photo as the active image for furniture selection and propose furniture regions with the configured scene analyzer. Hover and selection are reset.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the room photo"),
					"analyze": map[string]interface{}{
						"type":        "boolean",
						"description": "Run scene analysis to propose regions (default: true)",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "room_set_regions",
			Description: "Replace the regions drawn over the room photo. Percent boxes are used as given and pixel boxes are converted against the photo size; missing or duplicate ids are assigned.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"regions": map[string]interface{}{
						"type":        "array",
						"description": "Regions in draw order; later regions draw on top",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"id":    map[string]interface{}{"type": "string"},
								"label": map[string]interface{}{"type": "string"},
								"bbox":  bboxSchema(),
							},
							"required": []string{"bbox"},
						},
					},
				},
				"required": []string{"regions"},
			},
		},
		{
			Name:        "room_render",
			Description: "Render the room photo with its region overlay at native resolution and return it as a base64-encoded image. The hovered region is drawn solid and highlighted.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": formatProperty(),
					"force": map[string]interface{}{
						"type":        "boolean",
						"description": "Repaint even if nothing changed since the last render",
					},
				},
			},
		},
		{
			Name:        "room_pointer",
			Description: "Forward a pointer event from the displayed room photo. Client coordinates are rescaled from the displayed size to the native image size before hit-testing. A click on a region selects it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"action": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"move", "click", "leave"},
						"description": "Pointer action",
					},
					"x":              numberProperty("Client X coordinate relative to the displayed image"),
					"y":              numberProperty("Client Y coordinate relative to the displayed image"),
					"display_width":  numberProperty("Width at which the image is displayed"),
					"display_height": numberProperty("Height at which the image is displayed"),
				},
				"required": []string{"action"},
			},
		},
		{
			Name:        "room_locate",
			Description: "Find the topmost region containing a point given in native image pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"x": numberProperty("X coordinate in native image pixels"),
					"y": numberProperty("Y coordinate in native image pixels"),
				},
				"required": []string{"x", "y"},
			},
		},

		// Placement Editor
		{
			Name:        "placement_open",
			Description: "Open the placement editor over a background photo with a product image. The placement box starts at 40% of the container width with a 4:3 aspect, centred.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"background_path":  pathProperty("Absolute path to the background photo (default: the loaded room photo)"),
					"product_path":     pathProperty("Absolute path to the product image"),
					"container_width":  numberProperty("Displayed width of the background in pixels (default: native width)"),
					"container_height": numberProperty("Displayed height of the background in pixels (default: native height)"),
				},
				"required": []string{"product_path"},
			},
		},
		{
			Name:        "placement_pointer",
			Description: "Forward a pointer event from the placement editor. Pressing on the bottom-right handle resizes; pressing on the box moves it. Coordinates are container pixels.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"event": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"down", "move", "up", "leave", "reset"},
						"description": "Pointer event kind",
					},
					"x": numberProperty("X coordinate in container pixels"),
					"y": numberProperty("Y coordinate in container pixels"),
					"container_width": numberProperty(
						"New container width when the layout changed (optional)"),
					"container_height": numberProperty(
						"New container height when the layout changed (optional)"),
				},
				"required": []string{"event"},
			},
		},
		{
			Name:        "placement_confirm",
			Description: "Confirm the placement. Returns the box as percentages of the background and closes the editor.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "placement_preview",
			Description: "Composite the product into the background at the current placement and return it as a base64-encoded image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"format": formatProperty(),
				},
			},
		},
		{
			Name:        "placement_composite",
			Description: "Replace a region of the room photo with the product using a generative image model. The region, padded by 5% of the photo, is erased and the product is drawn in its place with matching light and perspective. Requires GEMINI_API_KEY.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"product_path": pathProperty("Path to the product photo"),
					"region_id": map[string]interface{}{
						"type":        "string",
						"description": "Region to replace (default: the selected region)",
					},
					"format": formatProperty(),
				},
				"required": []string{"product_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
