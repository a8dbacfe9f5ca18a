package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Operation ids handled by the engine itself.
const (
	// OpExport encodes the current canvas as a checkpoint artifact.
	OpExport = "workflow-export"

	// Aggregation capture ids. The engine records a frame of the current
	// canvas; assembly happens later across a whole batch.
	OpContactSheet   = "workflow-contact-sheet"
	OpAnimationFrame = "workflow-animation-frame"
	OpVideoFrame     = "workflow-video-frame"

	// OpNote is a no-op marker for annotating recipes.
	OpNote = "workflow-note"
)

// IsAggregation reports whether id captures an aggregation frame.
func IsAggregation(id string) bool {
	switch id {
	case OpContactSheet, OpAnimationFrame, OpVideoFrame:
		return true
	}
	return false
}

// IsControl reports whether id is intercepted by the engine.
func IsControl(id string) bool {
	return id == OpExport || id == OpNote || IsAggregation(id)
}

// Recipe is a named, ordered list of steps. Step order is execution order.
type Recipe struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []Step `json:"steps" yaml:"steps"`
}

// Step is one invocation of an operation.
type Step struct {
	ID          string     `json:"id" yaml:"id"`
	OperationID string     `json:"operationId" yaml:"operationId"`
	Params      Params     `json:"params,omitempty" yaml:"params,omitempty"`
	Disabled    bool       `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Condition   *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// HasOutputs reports whether r contains a checkpoint or aggregation step.
// Disabled steps count: the default artifact depends on recipe shape only.
func (r *Recipe) HasOutputs() bool {
	for _, s := range r.Steps {
		if s.OperationID == OpExport || IsAggregation(s.OperationID) {
			return true
		}
	}
	return false
}

// Normalize fills a missing recipe id and missing step ids with UUIDs.
func (r *Recipe) Normalize() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	for i := range r.Steps {
		if r.Steps[i].ID == "" {
			r.Steps[i].ID = uuid.NewString()
		}
	}
}

// ParseJSON decodes a JSON recipe document.
func ParseJSON(data []byte) (*Recipe, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if err := checkSteps(raw); err != nil {
		return nil, err
	}
	var r Recipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	r.Normalize()
	return &r, nil
}

// ParseYAML decodes a YAML recipe document.
func ParseYAML(data []byte) (*Recipe, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if err := checkSteps(raw); err != nil {
		return nil, err
	}
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	r.Normalize()
	return &r, nil
}

// Parse decodes data as JSON when it looks like a JSON object and as YAML
// otherwise.
func Parse(data []byte) (*Recipe, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// Load reads a recipe file. ".json" files are decoded as JSON, everything
// else as YAML.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// WriteJSON encodes r as indented JSON.
func (r *Recipe) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML encodes r as YAML.
func (r *Recipe) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func checkSteps(raw map[string]any) error {
	if raw == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidRecipe)
	}
	v, ok := raw["steps"]
	if !ok {
		return fmt.Errorf("%w: missing steps", ErrInvalidRecipe)
	}
	if _, ok := v.([]any); !ok {
		return fmt.Errorf("%w: steps is %T, want a list", ErrInvalidRecipe, v)
	}
	return nil
}
