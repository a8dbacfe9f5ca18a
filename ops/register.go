package ops

import "github.com/gogpu/recipe"

// All returns the built-in operations in catalog order.
func All() []recipe.Operation {
	var all []recipe.Operation
	for _, group := range [][]recipe.Operation{
		filterOps(),
		colorOps(),
		geometryOps(),
		textOps(),
		typographyOps(),
		shapeOps(),
		workflowOps(),
		metadataOps(),
		controlOps(),
	} {
		all = append(all, group...)
	}
	return all
}

// Register adds the built-in operations to cat.
func Register(cat *recipe.Catalog) {
	for _, op := range All() {
		cat.Register(op)
	}
}

// NewCatalog returns a catalog holding the built-in operations.
func NewCatalog() *recipe.Catalog {
	cat := recipe.NewCatalog()
	Register(cat)
	return cat
}
