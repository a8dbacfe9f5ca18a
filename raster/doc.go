// Package raster provides the working surface a recipe run draws on.
//
// A [Canvas] wraps a gg drawing context so operations can mix direct pixel
// filters ([Canvas.Pix]) with vector drawing ([Canvas.DC]). Operations that
// change the image size replace the backing context wholesale through
// [Canvas.Replace], [Canvas.Resize] or [Canvas.Crop].
//
// [Snapshot] values are immutable copies used by the variable store to save
// and restore intermediate states.
//
// The package also owns the codec table ([Encode], [Decode], [Format]) used
// for checkpoint exports.
package raster
