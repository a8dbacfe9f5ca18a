// Package recipe executes image recipes: named, ordered lists of
// operations applied to a raster image.
//
// # Overview
//
// A [Recipe] is a list of [Step] values. Each step names an operation by
// id, carries an untyped [Params] bag and may be disabled or gated by a
// [Condition] on the current canvas geometry or on metadata. The [Engine]
// walks the steps in order against a single mutable [raster.Canvas],
// resolving operation ids through a [Catalog].
//
// A few ids are handled by the engine itself:
//
//   - workflow-export encodes the current canvas as a checkpoint artifact
//   - workflow-contact-sheet, workflow-animation-frame and
//     workflow-video-frame capture aggregation frames
//   - workflow-note does nothing
//
// A recipe without any of the output steps yields exactly one artifact
// named after the input file.
//
// # Quick Start
//
//	cat := recipe.NewCatalog()
//	ops.Register(cat)
//
//	r, err := recipe.Load("thumbs.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	rc := recipe.NewContext(img, "holiday.jpg")
//	artifacts, err := recipe.NewEngine(cat).Run(ctx, img, r, rc)
//
// # Errors
//
// Unknown operations, missing variables, unresolvable conditions and
// metadata failures are recoverable: they are appended to
// [Context.Warnings] and logged, and the run continues. An error returned
// by an operation aborts the run and is reported as a [*StepError].
//
// # Logging
//
// The package is silent by default. See [SetLogger].
package recipe
