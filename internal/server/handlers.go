package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/plate-tools-mcp/internal/detection"
	"github.com/ironsheep/plate-tools-mcp/internal/enhance"
	"github.com/ironsheep/plate-tools-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "plate_detect", "image_crop").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.WithError(err).WithField("tool", params.Name).Warn("Tool execution failed")
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_crop":
		return s.handleImageCrop(args)

	// Plate Detection
	case "plate_detect":
		return s.handlePlateDetect(args)
	case "plate_enhance":
		return s.handlePlateEnhance(args)
	case "plate_process":
		return s.handlePlateProcess(args)
	case "plate_annotate":
		return s.handlePlateAnnotate(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

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
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating an absent object as empty.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing arguments")
	}
	return json.Unmarshal(args, v)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageCropArgs struct {
	Path  string  `json:"path"`
	X1    int     `json:"x1"`
	Y1    int     `json:"y1"`
	X2    int     `json:"x2"`
	Y2    int     `json:"y2"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleImageCrop(args json.RawMessage) (interface{}, error) {
	var a imageCropArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, imaging.Region{X1: a.X1, Y1: a.Y1, X2: a.X2, Y2: a.Y2}, a.Scale)
}

// === Plate Detection Handlers ===

// DetectResult is the plate_detect tool result.
type DetectResult struct {
	// Found is false when no contour passed both the quad and aspect gates.
	Found bool `json:"found"`

	// Candidate is the selected plate. Omitted when Found is false.
	Candidate *detection.PlateCandidate `json:"candidate,omitempty"`

	// Region is the cropped color region as PNG. Omitted when Found is false
	// or when the caller opted out.
	Region *imaging.EncodedImage `json:"region,omitempty"`

	// FrameWidth and FrameHeight are the analysed image dimensions.
	FrameWidth  int `json:"frame_width"`
	FrameHeight int `json:"frame_height"`
}

// EnhanceResult is the plate_enhance tool result.
type EnhanceResult struct {
	// SourceWidth and SourceHeight are the dimensions of the region that was enhanced.
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`

	// Enhanced is the binarised plate as PNG.
	Enhanced *imaging.EncodedImage `json:"enhanced"`
}

// ProcessResult is the plate_process tool result.
type ProcessResult struct {
	DetectResult

	// Enhanced is the enhanced plate. Omitted when no plate was found.
	Enhanced *imaging.EncodedImage `json:"enhanced,omitempty"`
}

type plateDetectArgs struct {
	Path          string `json:"path"`
	IncludeRegion *bool  `json:"include_region"`
}

func (s *Server) handlePlateDetect(args json.RawMessage) (interface{}, error) {
	var a plateDetectArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	candidate, region, err := detection.SelectCandidate(frame, s.processor.DetectionParams())
	if err != nil {
		return nil, err
	}

	includeRegion := a.IncludeRegion == nil || *a.IncludeRegion
	return buildDetectResult(frame, candidate, region, includeRegion)
}

type plateEnhanceArgs struct {
	Path   string          `json:"path"`
	Region *imaging.Region `json:"region,omitempty"`
}

func (s *Server) handlePlateEnhance(args json.RawMessage) (interface{}, error) {
	var a plateEnhanceArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	region := frame
	if a.Region != nil {
		if err := a.Region.Validate(frame.Bounds()); err != nil {
			return nil, err
		}
		region, err = frame.Crop(a.Region.Rect())
		if err != nil {
			return nil, err
		}
	}

	enhanced, err := enhance.Enhance(region, s.processor.EnhanceParams())
	if err != nil {
		return nil, err
	}
	encoded, err := imaging.EncodePNG(enhanced.ToImage())
	if err != nil {
		return nil, err
	}

	return &EnhanceResult{
		SourceWidth:  region.Width,
		SourceHeight: region.Height,
		Enhanced:     encoded,
	}, nil
}

func (s *Server) handlePlateProcess(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	res, err := s.processor.Process(frame)
	if err != nil {
		return nil, err
	}

	detected, err := buildDetectResult(frame, res.Candidate, res.Region, true)
	if err != nil {
		return nil, err
	}
	out := &ProcessResult{DetectResult: *detected}
	if res.Enhanced != nil {
		out.Enhanced, err = imaging.EncodePNG(res.Enhanced.ToImage())
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type plateAnnotateArgs struct {
	Path       string  `json:"path"`
	BoxColor   string  `json:"box_color"`
	LabelColor string  `json:"label_color"`
	Label      *string `json:"label"`
}

func (s *Server) handlePlateAnnotate(args json.RawMessage) (interface{}, error) {
	var a plateAnnotateArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	style := detection.DefaultAnnotationStyle()
	if a.BoxColor != "" {
		style.BoxColor = a.BoxColor
	}
	if a.LabelColor != "" {
		style.LabelColor = a.LabelColor
	}
	if a.Label != nil {
		style.Label = *a.Label
	}

	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	candidate, _, err := detection.SelectCandidate(frame, s.processor.DetectionParams())
	if err != nil {
		return nil, err
	}
	annotated, err := detection.Annotate(frame, candidate, style)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(annotated.ToImage())
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	frame, err := s.cache.LoadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	edges, err := detection.EdgeMap(frame, s.processor.DetectionParams())
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(edges.ToImage())
}

func buildDetectResult(frame *imaging.Frame, candidate *detection.PlateCandidate, region *imaging.Frame, includeRegion bool) (*DetectResult, error) {
	out := &DetectResult{
		Found:       candidate != nil,
		Candidate:   candidate,
		FrameWidth:  frame.Width,
		FrameHeight: frame.Height,
	}
	if candidate != nil && region != nil && includeRegion {
		encoded, err := imaging.EncodePNG(region.ToImage())
		if err != nil {
			return nil, err
		}
		out.Region = encoded
	}
	return out, nil
}
