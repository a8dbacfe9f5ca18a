package ops

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func runRecipe(t *testing.T, src image.Image, filename string, steps ...recipe.Step) ([]recipe.Artifact, *recipe.Context) {
	t.Helper()
	e := recipe.NewEngine(NewCatalog())
	rc := recipe.NewContext(src, filename)
	arts, err := e.Run(context.Background(), src, &recipe.Recipe{Name: "test", Steps: steps}, rc)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return arts, rc
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return img
}

func TestSaveLoadRestoresExactly(t *testing.T) {
	src := halves(20, 10, red, blue)
	arts, rc := runRecipe(t, src, "in.png",
		recipe.Step{ID: "1", OperationID: "workflow-save-state", Params: recipe.Params{"variableName": "orig"}},
		recipe.Step{ID: "2", OperationID: "filter-grayscale"},
		recipe.Step{ID: "3", OperationID: "geo-resize", Params: recipe.Params{"width": "50%"}},
		recipe.Step{ID: "4", OperationID: "workflow-load-state", Params: recipe.Params{"variableName": "orig"}},
	)
	if len(rc.Warnings) != 0 {
		t.Fatalf("warnings = %v", rc.Warnings)
	}
	got := decode(t, arts[0].Bytes)
	want := canvas(t, src).RGBA()
	rgba := canvas(t, got).RGBA()
	if rgba.Rect != want.Rect || !bytes.Equal(rgba.Pix, want.Pix) {
		t.Error("loaded state differs from the saved one")
	}
}

func TestSaveIsolatedFromLaterChanges(t *testing.T) {
	c := canvas(t, fill(4, 4, red))
	rc := recipe.NewContext(c.RGBA(), "x.png")
	applyWith(t, "workflow-save-state", c, nil, rc)
	applyWith(t, "filter-grayscale", c, nil, rc)

	s, ok := rc.Variables.Load("temp")
	if !ok {
		t.Fatal("default variable temp not saved")
	}
	if got := s.Image().RGBAAt(1, 1); got != red {
		t.Errorf("snapshot pixel = %v, want red", got)
	}
}

func TestLoadMissingVariable(t *testing.T) {
	c := canvas(t, fill(4, 4, red))
	rc := apply(t, "workflow-load-state", c, recipe.Params{"variableName": "nope"})
	if len(rc.Warnings) != 1 || rc.Warnings[0].Code != recipe.WarnMissingVariable {
		t.Fatalf("warnings = %v, want missing variable", rc.Warnings)
	}
	if got := at(c, 0, 0); got != red {
		t.Errorf("pixel = %v, want unchanged", got)
	}
}

func TestLoadOverlay(t *testing.T) {
	c := canvas(t, fill(10, 10, red))
	rc := recipe.NewContext(c.RGBA(), "x.png")
	applyWith(t, "geo-resize", c, recipe.Params{"width": "5"}, rc)
	applyWith(t, "workflow-save-state", c, recipe.Params{"variableName": "small"}, rc)

	big := canvas(t, fill(10, 10, blue))
	applyWith(t, "workflow-load-state", big, recipe.Params{"variableName": "small", "mode": "overlay"}, rc)
	if got := size(big); got != image.Pt(10, 10) {
		t.Fatalf("size = %v, want 10x10", got)
	}
	if got := at(big, 2, 2); !near(got, red, 2) {
		t.Errorf("overlaid pixel = %v, want red", got)
	}
	if got := at(big, 8, 8); got != blue {
		t.Errorf("uncovered pixel = %v, want blue", got)
	}
}

func TestLoadReplaceWithOpacity(t *testing.T) {
	c := canvas(t, fill(4, 4, red))
	rc := recipe.NewContext(c.RGBA(), "x.png")
	applyWith(t, "workflow-save-state", c, nil, rc)
	applyWith(t, "workflow-load-state", c, recipe.Params{"opacity": 50}, rc)
	if got := at(c, 0, 0).A; got < 126 || got > 129 {
		t.Errorf("alpha = %d, want about half", got)
	}
}
