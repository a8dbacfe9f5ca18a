package recipe

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/recipe/raster"
)

// ArtifactKind tells how an artifact was produced.
type ArtifactKind string

// Artifact kinds.
const (
	// KindFinal is the implicit export of a recipe without output steps.
	KindFinal ArtifactKind = "final"
	// KindCheckpoint is produced by a workflow-export step.
	KindCheckpoint ArtifactKind = "checkpoint"
	// KindFrame is an aggregation frame awaiting assembly.
	KindFrame ArtifactKind = "frame"
)

// Artifact is one encoded output of a run.
type Artifact struct {
	Bytes         []byte
	Filename      string
	Subfolder     string
	AggregationID string
	Kind          ArtifactKind
	Format        raster.Format
}

// FrameQuality is the JPEG quality of aggregation frames.
const FrameQuality = 90

// Engine executes recipes against images. An Engine holds no per-run
// state and may be shared by concurrent runs.
type Engine struct {
	catalog        *Catalog
	injector       Injector
	frameQuality   int
	previewQuality int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithInjector replaces the metadata injector. A nil injector disables
// metadata embedding.
func WithInjector(inj Injector) EngineOption {
	return func(e *Engine) { e.injector = inj }
}

// WithFrameQuality sets the JPEG quality of aggregation frames.
func WithFrameQuality(q int) EngineOption {
	return func(e *Engine) { e.frameQuality = q }
}

// WithPreviewQuality sets the JPEG quality used by Preview.
func WithPreviewQuality(q int) EngineOption {
	return func(e *Engine) { e.previewQuality = q }
}

// NewEngine creates an engine resolving operations from cat.
func NewEngine(cat *Catalog, opts ...EngineOption) *Engine {
	if cat == nil {
		cat = NewCatalog()
	}
	e := &Engine{
		catalog:        cat,
		injector:       ExifInjector{},
		frameQuality:   FrameQuality,
		previewQuality: raster.DefaultQuality,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.catalog }

type runOptions struct {
	stopAfter int
}

// RunOption configures a single run.
type RunOption func(*runOptions)

// StopAfter ends the run right after the step at index i, whatever that
// step did. Disabled and condition-skipped steps count. The default
// artifact is not produced for a truncated run. An index outside the
// recipe leaves the run untruncated.
func StopAfter(i int) RunOption {
	return func(o *runOptions) { o.stopAfter = i }
}

// Run applies r to src and returns the produced artifacts in step order.
//
// rc may be nil, in which case a fresh context is used. Warnings for
// recoverable problems are appended to rc.Warnings. An error returned by
// an operation aborts the run as a *StepError.
func (e *Engine) Run(ctx context.Context, src image.Image, r *Recipe, rc *Context, opts ...RunOption) ([]Artifact, error) {
	res, err := e.execute(ctx, src, r, rc, opts)
	if err != nil {
		return nil, err
	}
	return res.artifacts, nil
}

// Preview applies r to src and returns the final canvas state as JPEG,
// regardless of the artifacts the recipe produces.
func (e *Engine) Preview(ctx context.Context, src image.Image, r *Recipe, rc *Context, opts ...RunOption) ([]byte, error) {
	res, err := e.execute(ctx, src, r, rc, opts)
	if err != nil {
		return nil, err
	}
	return res.canvas.EncodeBytes(raster.JPEG, e.previewQuality)
}

type runResult struct {
	canvas    *raster.Canvas
	artifacts []Artifact
	truncated bool
}

func (e *Engine) execute(ctx context.Context, src image.Image, r *Recipe, rc *Context, opts []RunOption) (*runResult, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil recipe", ErrInvalidRecipe)
	}
	o := runOptions{stopAfter: -1}
	for _, opt := range opts {
		opt(&o)
	}
	if rc == nil {
		rc = NewContext(src, "")
	}
	if rc.Source == nil {
		rc.Source = src
	}
	if rc.Variables == nil {
		rc.Variables = NewVariables()
	}
	if rc.Metadata == nil {
		rc.Metadata = make(map[string]any)
	}

	start := time.Now()
	defer func() { runDuration.Observe(time.Since(start).Seconds()) }()

	canvas, err := raster.New(src)
	if err != nil {
		return nil, err
	}

	log := Logger().With("recipe", r.Name, "file", rc.Filename)
	res := &runResult{canvas: canvas}
	defer rc.leaveSteps()

	for i, step := range r.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rc.enterStep(i, step.ID)

		if step.Disabled {
			log.Debug("recipe: step disabled", "step", i, "op", step.OperationID)
			stepsTotal.WithLabelValues(outcomeDisabled).Inc()
		} else if e.conditionHolds(step, canvas, rc) {
			if err := e.dispatch(ctx, i, step, canvas, rc, res); err != nil {
				stepsTotal.WithLabelValues(outcomeFailed).Inc()
				return nil, err
			}
		} else {
			log.Debug("recipe: step condition false", "step", i, "op", step.OperationID)
			stepsTotal.WithLabelValues(outcomeSkipped).Inc()
		}

		if o.stopAfter == i {
			log.Debug("recipe: stopped", "step", i)
			res.truncated = true
			break
		}
	}
	rc.leaveSteps()

	if !res.truncated && !r.HasOutputs() {
		a, err := e.finalArtifact(canvas, rc)
		if err != nil {
			return nil, err
		}
		res.artifacts = append(res.artifacts, a)
	}
	for _, a := range res.artifacts {
		artifactsTotal.WithLabelValues(string(a.Kind)).Inc()
	}
	log.Info("recipe: run complete", "artifacts", len(res.artifacts), "warnings", len(rc.Warnings), "elapsed", time.Since(start))
	return res, nil
}

func (e *Engine) conditionHolds(step Step, c *raster.Canvas, rc *Context) bool {
	ok, err := check(step.Condition, Geometry{Width: c.Width(), Height: c.Height()}, rc.Metadata)
	if err != nil {
		rc.Warn(WarnCondition, "%v", err)
		return false
	}
	return ok
}

func (e *Engine) dispatch(ctx context.Context, i int, step Step, c *raster.Canvas, rc *Context, res *runResult) error {
	Logger().Debug("recipe: step", "step", i, "id", step.ID, "op", step.OperationID)

	switch {
	case step.OperationID == OpExport:
		stepsTotal.WithLabelValues(outcomeControl).Inc()
		a, err := e.checkpoint(c, step.Params, rc)
		if err != nil {
			return &StepError{Index: i, StepID: step.ID, OperationID: step.OperationID, Err: err}
		}
		res.artifacts = append(res.artifacts, a)
		return nil

	case IsAggregation(step.OperationID):
		stepsTotal.WithLabelValues(outcomeControl).Inc()
		data, err := c.EncodeBytes(raster.JPEG, e.frameQuality)
		if err != nil {
			return &StepError{Index: i, StepID: step.ID, OperationID: step.OperationID, Err: err}
		}
		res.artifacts = append(res.artifacts, Artifact{
			Bytes:         data,
			Filename:      rc.BaseName() + "_" + step.ID + ".jpg",
			AggregationID: step.ID,
			Kind:          KindFrame,
			Format:        raster.JPEG,
		})
		return nil

	case step.OperationID == OpNote:
		stepsTotal.WithLabelValues(outcomeControl).Inc()
		return nil
	}

	op, ok := e.catalog.Get(step.OperationID)
	if !ok {
		stepsTotal.WithLabelValues(outcomeUnknown).Inc()
		rc.Warn(WarnUnknownOperation, "operation %q not found", step.OperationID)
		return nil
	}
	params := step.Params
	if params == nil {
		params = Params{}
	}
	if err := op.Apply(ctx, c, params, rc); err != nil {
		return &StepError{Index: i, StepID: step.ID, OperationID: step.OperationID, Err: err}
	}
	stepsTotal.WithLabelValues(outcomeApplied).Inc()
	return nil
}

// checkpoint encodes the canvas according to an export step's params:
// format (MIME type or short name, default JPEG), quality (fraction or
// 1-100, default 95), suffix and subfolder.
func (e *Engine) checkpoint(c *raster.Canvas, p Params, rc *Context) (Artifact, error) {
	format := raster.JPEG
	if s := p.String("format", ""); s != "" {
		f, ok := raster.ParseFormat(s)
		switch {
		case !ok:
			rc.Warn(WarnFormatFallback, "unknown export format %q, using jpeg", s)
		case !f.Encodable():
			rc.Warn(WarnFormatFallback, "no encoder for %s, using png", f)
			format = raster.PNG
		default:
			format = f
		}
	}

	data, err := c.EncodeBytes(format, exportQuality(p))
	if err != nil {
		return Artifact{}, err
	}
	data = e.inject(data, format, rc)

	subfolder := rc.OutputSubfolder
	if p.Has("subfolder") {
		subfolder = p.String("subfolder", subfolder)
	}
	return Artifact{
		Bytes:     data,
		Filename:  rc.BaseName() + p.String("suffix", "") + "." + format.Extension(),
		Subfolder: subfolder,
		Kind:      KindCheckpoint,
		Format:    format,
	}, nil
}

func exportQuality(p Params) int {
	q := p.Float("quality", 0.95)
	if q <= 1 {
		q *= 100
	}
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	}
	return int(q + 0.5)
}

func (e *Engine) finalArtifact(c *raster.Canvas, rc *Context) (Artifact, error) {
	format, ok := raster.FormatFromFilename(rc.Filename)
	if !ok || !format.Encodable() {
		format = raster.JPEG
	}
	data, err := c.EncodeBytes(format, raster.DefaultQuality)
	if err != nil {
		return Artifact{}, err
	}
	name := rc.Filename
	if name == "" {
		name = "image." + format.Extension()
	}
	return Artifact{
		Bytes:     e.inject(data, format, rc),
		Filename:  name,
		Subfolder: rc.OutputSubfolder,
		Kind:      KindFinal,
		Format:    format,
	}, nil
}

func (e *Engine) inject(data []byte, f raster.Format, rc *Context) []byte {
	if e.injector == nil {
		return data
	}
	out, err := e.injector.Inject(data, f, rc.Metadata)
	if err != nil {
		rc.Warn(WarnMetadata, "metadata injection failed: %v", err)
		return data
	}
	return out
}
