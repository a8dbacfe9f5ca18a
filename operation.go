package recipe

import (
	"context"

	"github.com/gogpu/recipe/raster"
)

// ParamType is the editor hint for a parameter.
type ParamType string

// Parameter types.
const (
	ParamText    ParamType = "text"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamSelect  ParamType = "select"
	ParamColor   ParamType = "color"
	ParamRange   ParamType = "range"
)

// ParamDef describes one parameter of an operation. The engine never
// validates params against it; it exists for editors and documentation.
type ParamDef struct {
	Name    string    `json:"name" yaml:"name"`
	Label   string    `json:"label" yaml:"label"`
	Type    ParamType `json:"type" yaml:"type"`
	Default any       `json:"default,omitempty" yaml:"default,omitempty"`
	Options []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Min     *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Step    *float64  `json:"step,omitempty" yaml:"step,omitempty"`
}

// Descriptor identifies an operation and its parameter schema.
type Descriptor struct {
	ID          string     `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Params      []ParamDef `json:"params,omitempty" yaml:"params,omitempty"`
}

// Operation transforms the working canvas in place.
//
// Apply may replace the canvas backing wholesale (resize, crop, rotate)
// and may record warnings or metadata through rc. A returned error aborts
// the run.
type Operation interface {
	Descriptor() Descriptor
	Apply(ctx context.Context, c *raster.Canvas, p Params, rc *Context) error
}

// ApplyFunc is the function form of [Operation.Apply].
type ApplyFunc func(ctx context.Context, c *raster.Canvas, p Params, rc *Context) error

type funcOperation struct {
	desc Descriptor
	fn   ApplyFunc
}

// NewOperation adapts fn to the Operation interface. A nil fn yields an
// operation that does nothing, which is how control steps are documented
// in a catalog.
func NewOperation(desc Descriptor, fn ApplyFunc) Operation {
	return &funcOperation{desc: desc, fn: fn}
}

func (o *funcOperation) Descriptor() Descriptor { return o.desc }

func (o *funcOperation) Apply(ctx context.Context, c *raster.Canvas, p Params, rc *Context) error {
	if o.fn == nil {
		return nil
	}
	return o.fn(ctx, c, p, rc)
}

// Range returns a pointer to v, for ParamDef bounds.
func Range(v float64) *float64 { return &v }
