// Package server implements the MCP (Model Context Protocol) server for the
// license plate tools.
//
// This package provides a JSON-RPC 2.0 server that exposes plate detection and
// enhancement through the MCP protocol, so an AI client can locate a plate in a
// photograph or video still and receive a cleaned-up crop ready for reading.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//   - image_crop: Extract rectangular region
//
// Plate Detection:
//   - plate_detect: Find the plate candidate (bounding box, polygon, aspect ratio)
//   - plate_enhance: Binarize and denoise a plate region
//   - plate_process: Detect and enhance in one call
//   - plate_annotate: Draw the detected plate onto the image
//   - image_edge_detect: Show the edge map the detector works from
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images keyed by path.
// Every tool call packs its own Frame from the cached image, so concurrent
// pipelines never share pixel buffers.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// An image without a plate is not an error: plate_detect reports found=false.
package server
