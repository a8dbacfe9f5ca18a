// Package batch runs one recipe over many images concurrently.
package batch

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

// Input is one image to process.
type Input struct {
	// Filename names the image and its default artifact.
	Filename string

	// Data is the encoded image.
	Data []byte

	// Metadata seeds the run's metadata record. It is copied.
	Metadata map[string]any
}

// Result is the outcome for one input.
type Result struct {
	Filename  string
	Artifacts []recipe.Artifact
	Warnings  []recipe.Warning
	Err       error
	Elapsed   time.Duration
}

// Runner applies a recipe to a set of inputs with bounded concurrency.
// Each input gets its own context and canvas.
type Runner struct {
	Engine *recipe.Engine

	// Workers bounds the number of concurrent runs. Zero or less means
	// runtime.NumCPU.
	Workers int

	// Options are passed to every run.
	Options []recipe.RunOption

	// OutputSubfolder is copied into every run context.
	OutputSubfolder string
}

// Process runs r over inputs. Results keep the order of inputs. A failing
// input never stops the others; its error is reported in its Result.
// Process only returns an error when ctx is canceled, alongside the
// results gathered so far.
func (b *Runner) Process(ctx context.Context, r *recipe.Recipe, inputs []Input) ([]Result, error) {
	if b.Engine == nil {
		return nil, fmt.Errorf("batch: nil engine")
	}
	workers := b.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]Result, len(inputs))
	var failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = b.one(ctx, r, in)
			if results[i].Err != nil {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	recipe.Logger().Info("batch: done", "inputs", len(inputs), "failed", failed.Load(), "workers", workers)
	return results, ctx.Err()
}

func (b *Runner) one(ctx context.Context, r *recipe.Recipe, in Input) (res Result) {
	start := time.Now()
	res.Filename = in.Filename
	defer func() { res.Elapsed = time.Since(start) }()

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	img, _, err := raster.Decode(bytes.NewReader(in.Data))
	if err != nil {
		res.Err = fmt.Errorf("decode %s: %w", in.Filename, err)
		return res
	}

	rc := recipe.NewContext(img, in.Filename)
	rc.SourceBytes = in.Data
	rc.OutputSubfolder = b.OutputSubfolder
	for k, v := range in.Metadata {
		rc.Metadata[k] = v
	}

	res.Artifacts, res.Err = b.Engine.Run(ctx, img, r, rc, b.Options...)
	res.Warnings = rc.Warnings
	if res.Err != nil {
		recipe.Logger().Error("batch: run failed", "file", in.Filename, "err", res.Err)
	}
	return res
}

// Artifacts flattens the artifacts of successful results, in input order.
func Artifacts(results []Result) []recipe.Artifact {
	var out []recipe.Artifact
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Artifacts...)
		}
	}
	return out
}
