package recipe

import (
	"sync"
)

// Catalog maps operation ids to operations.
//
// Registering an id that already exists replaces the previous entry in
// place and logs a warning; List keeps first-registration order.
// Catalog is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	ops   map[string]Operation
	order []string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{ops: make(map[string]Operation)}
}

// Register adds op under its descriptor id.
func (c *Catalog) Register(op Operation) {
	id := op.Descriptor().ID

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.ops[id]; exists {
		Logger().Warn("recipe: operation overwritten", "id", id)
	} else {
		c.order = append(c.order, id)
	}
	c.ops[id] = op
}

// Unregister removes id and reports whether it was present.
func (c *Catalog) Unregister(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.ops[id]; !ok {
		return false
	}
	delete(c.ops, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the operation registered under id.
func (c *Catalog) Get(id string) (Operation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	op, ok := c.ops[id]
	return op, ok
}

// List returns all operations in registration order.
func (c *Catalog) List() []Operation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Operation, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.ops[id])
	}
	return out
}

// IDs returns the registered ids in registration order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Len returns the number of registered operations.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ops)
}

// Unknown returns the operation ids used by r that are neither registered
// nor handled by the engine itself, in step order without duplicates.
func (c *Catalog) Unknown(r *Recipe) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range r.Steps {
		if IsControl(s.OperationID) || seen[s.OperationID] {
			continue
		}
		if _, ok := c.Get(s.OperationID); !ok {
			out = append(out, s.OperationID)
		}
		seen[s.OperationID] = true
	}
	return out
}
