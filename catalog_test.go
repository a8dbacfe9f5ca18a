package recipe

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func op(id, name string) Operation {
	return NewOperation(Descriptor{ID: id, Name: name}, nil)
}

func TestCatalogRegisterGet(t *testing.T) {
	c := NewCatalog()
	c.Register(op("a", "A"))
	c.Register(op("b", "B"))

	got, ok := c.Get("a")
	if !ok || got.Descriptor().Name != "A" {
		t.Errorf("Get(a) = %v, %v", got, ok)
	}
	if _, ok := c.Get("zzz"); ok {
		t.Error("Get(zzz) ok = true")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCatalogOverwrite(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	c := NewCatalog()
	c.Register(op("a", "first"))
	c.Register(op("b", "B"))
	c.Register(op("a", "second"))

	got, _ := c.Get("a")
	if got.Descriptor().Name != "second" {
		t.Errorf("Get(a).Name = %q, want second (last write wins)", got.Descriptor().Name)
	}
	if diff := cmp.Diff([]string{"a", "b"}, c.IDs()); diff != "" {
		t.Errorf("IDs() mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), "overwritten") {
		t.Errorf("no overwrite warning logged: %q", buf.String())
	}
}

func TestCatalogUnregister(t *testing.T) {
	c := NewCatalog()
	c.Register(op("a", ""))
	c.Register(op("b", ""))
	c.Register(op("c", ""))
	if !c.Unregister("b") {
		t.Error("Unregister(b) = false")
	}
	if c.Unregister("b") {
		t.Error("second Unregister(b) = true")
	}
	var ids []string
	for _, o := range c.List() {
		ids = append(ids, o.Descriptor().ID)
	}
	if diff := cmp.Diff([]string{"a", "c"}, ids); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogUnknown(t *testing.T) {
	c := NewCatalog()
	c.Register(op("known", ""))
	r := &Recipe{Steps: []Step{
		{OperationID: "known"},
		{OperationID: OpExport},
		{OperationID: "nope"},
		{OperationID: "nope"},
		{OperationID: "other"},
	}}
	if diff := cmp.Diff([]string{"nope", "other"}, c.Unknown(r)); diff != "" {
		t.Errorf("Unknown() mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogConcurrent(t *testing.T) {
	c := NewCatalog()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Register(op("x", ""))
		}()
		go func() {
			defer wg.Done()
			c.Get("x")
			c.List()
		}()
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
