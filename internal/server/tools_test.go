package server

import (
	"testing"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_crop",
		"plate_detect",
		"plate_enhance",
		"plate_process",
		"plate_annotate",
		"image_edge_detect",
	}

	tools := GetToolDefinitions()
	if len(tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(tools))
	}

	seen := make(map[string]bool)
	for _, tool := range tools {
		if seen[tool.Name] {
			t.Errorf("Duplicate tool %s", tool.Name)
		}
		seen[tool.Name] = true
	}
	for _, name := range expectedTools {
		if !seen[name] {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}

			// Every tool works on an image file
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			hasPath := false
			for _, r := range required {
				if r == "path" {
					hasPath = true
				}
			}
			if !hasPath {
				t.Error("Tool should require 'path' parameter")
			}
		})
	}
}

func TestToolDefinitions_CropCoordinates(t *testing.T) {
	required, ok := toolByName(t, "image_crop").InputSchema["required"].([]string)
	if !ok {
		t.Fatal("required should be a string slice")
	}

	expectedRequired := map[string]bool{"path": true, "x1": true, "y1": true, "x2": true, "y2": true}
	for _, r := range required {
		delete(expectedRequired, r)
	}
	for missing := range expectedRequired {
		t.Errorf("image_crop should require '%s' parameter", missing)
	}
}

func TestToolDefinitions_OptionalArguments(t *testing.T) {
	tests := []struct {
		tool string
		arg  string
	}{
		{"plate_detect", "include_region"},
		{"plate_enhance", "region"},
		{"plate_annotate", "box_color"},
		{"plate_annotate", "label_color"},
		{"plate_annotate", "label"},
	}

	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.arg, func(t *testing.T) {
			tool := toolByName(t, tt.tool)
			props := tool.InputSchema["properties"].(map[string]interface{})
			if _, ok := props[tt.arg]; !ok {
				t.Errorf("%s should accept '%s'", tt.tool, tt.arg)
			}
			for _, r := range tool.InputSchema["required"].([]string) {
				if r == tt.arg {
					t.Errorf("'%s' should be optional", tt.arg)
				}
			}
		})
	}
}
