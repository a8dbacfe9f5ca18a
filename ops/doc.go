// Package ops implements the built-in operation catalog.
//
// Register adds every built-in operation to a catalog:
//
//	cat := recipe.NewCatalog()
//	ops.Register(cat)
//
// Pixel filters work on straight (non-premultiplied) 8-bit channels;
// vector and text operations draw through the canvas's gg context.
// Text parameters support {{key}} placeholders, see Resolve.
package ops
