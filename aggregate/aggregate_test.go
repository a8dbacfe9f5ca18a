package aggregate

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func frame(t *testing.T, id, name string, w, h int, c color.RGBA) recipe.Artifact {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	cv, err := raster.New(img)
	if err != nil {
		t.Fatal(err)
	}
	data, err := cv.EncodeBytes(raster.JPEG, 90)
	if err != nil {
		t.Fatal(err)
	}
	return recipe.Artifact{Bytes: data, Filename: name, AggregationID: id, Kind: recipe.KindFrame, Format: raster.JPEG}
}

var testRecipe = &recipe.Recipe{Steps: []recipe.Step{
	{ID: "sheet", OperationID: recipe.OpContactSheet, Params: recipe.Params{"columns": 2, "tileSize": 20, "gap": 2}},
	{ID: "anim", OperationID: recipe.OpAnimationFrame, Params: recipe.Params{"delay": 200}},
	{ID: "video", OperationID: recipe.OpVideoFrame},
	{ID: "empty", OperationID: recipe.OpContactSheet},
}}

func TestCollect(t *testing.T) {
	arts := []recipe.Artifact{
		frame(t, "anim", "a_anim.jpg", 4, 4, color.RGBA{R: 255, A: 255}),
		frame(t, "sheet", "a_sheet.jpg", 4, 4, color.RGBA{R: 255, A: 255}),
		{Filename: "a.jpg", Kind: recipe.KindFinal},
		frame(t, "sheet", "b_sheet.jpg", 4, 4, color.RGBA{B: 255, A: 255}),
		frame(t, "ghost", "b_ghost.jpg", 4, 4, color.RGBA{A: 255}),
	}
	groups := Collect(testRecipe, arts)

	got := make(map[string][]string)
	var order []string
	for _, g := range groups {
		order = append(order, g.ID)
		for _, f := range g.Frames {
			got[g.ID] = append(got[g.ID], f.Filename)
		}
	}
	if diff := cmp.Diff([]string{"sheet", "anim", "video", "empty"}, order); diff != "" {
		t.Errorf("group order mismatch (-want +got):\n%s", diff)
	}
	want := map[string][]string{
		"sheet": {"a_sheet.jpg", "b_sheet.jpg"},
		"anim":  {"a_anim.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	arts := []recipe.Artifact{
		frame(t, "sheet", "a_sheet.jpg", 40, 20, red),
		frame(t, "anim", "a_anim.jpg", 10, 10, red),
		frame(t, "video", "a_video.jpg", 10, 10, red),
		frame(t, "sheet", "b_sheet.jpg", 20, 40, blue),
		frame(t, "sheet", "c_sheet.jpg", 20, 20, blue),
		frame(t, "anim", "b_anim.jpg", 20, 20, blue),
	}
	out, err := Assemble(testRecipe, arts)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	var names []string
	for _, a := range out {
		names = append(names, a.Filename)
	}
	if diff := cmp.Diff([]string{"contact_sheet_sheet.jpg", "animation_anim.gif", "a_video.jpg"}, names); diff != "" {
		t.Fatalf("outputs mismatch (-want +got):\n%s", diff)
	}

	sheet, _, err := raster.Decode(bytes.NewReader(out[0].Bytes))
	if err != nil {
		t.Fatalf("decode sheet: %v", err)
	}
	// 2 columns x 2 rows of 20px tiles with 2px gaps.
	if got := sheet.Bounds().Size(); got != image.Pt(46, 46) {
		t.Errorf("sheet size = %v, want 46x46", got)
	}
	if r, _, b, _ := sheet.At(12, 12).RGBA(); r>>8 < 200 || b>>8 > 60 {
		t.Errorf("first tile is not red")
	}
	if r, _, b, _ := sheet.At(34, 12).RGBA(); b>>8 < 200 || r>>8 > 60 {
		t.Errorf("second tile is not blue")
	}

	anim, err := gif.DecodeAll(bytes.NewReader(out[1].Bytes))
	if err != nil {
		t.Fatalf("decode gif: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Fatalf("gif frames = %d, want 2", len(anim.Image))
	}
	if diff := cmp.Diff([]int{20, 20}, anim.Delay); diff != "" {
		t.Errorf("delays mismatch (-want +got):\n%s", diff)
	}
	if got := anim.Image[1].Bounds().Size(); got != image.Pt(10, 10) {
		t.Errorf("second frame size = %v, want 10x10", got)
	}
}

func TestContactSheetNoFrames(t *testing.T) {
	_, err := ContactSheet([]recipe.Artifact{{Bytes: []byte("junk")}}, nil)
	if !errors.Is(err, ErrNoFrames) {
		t.Errorf("ContactSheet() error = %v, want ErrNoFrames", err)
	}
}
