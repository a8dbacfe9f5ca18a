package recipe

import (
	"sort"

	"github.com/gogpu/recipe/raster"
)

// Variables maps names to canvas snapshots for the duration of one run.
type Variables struct {
	m map[string]*raster.Snapshot
}

// NewVariables creates an empty store.
func NewVariables() *Variables {
	return &Variables{m: make(map[string]*raster.Snapshot)}
}

// Save captures an independent copy of c under name, replacing any
// previous value.
func (v *Variables) Save(name string, c *raster.Canvas) {
	v.m[name] = c.Snapshot()
}

// Load returns the snapshot stored under name.
func (v *Variables) Load(name string) (*raster.Snapshot, bool) {
	s, ok := v.m[name]
	return s, ok
}

// Delete removes name.
func (v *Variables) Delete(name string) {
	delete(v.m, name)
}

// Names returns the stored names, sorted.
func (v *Variables) Names() []string {
	names := make([]string, 0, len(v.m))
	for k := range v.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored snapshots.
func (v *Variables) Len() int { return len(v.m) }
