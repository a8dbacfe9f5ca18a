package ops

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/metadata"
	"github.com/gogpu/recipe/raster"
)

func jpegWithDate(t *testing.T, when time.Time) []byte {
	t.Helper()
	data, err := canvas(t, fill(8, 8, red)).EncodeBytes(raster.JPEG, 90)
	if err != nil {
		t.Fatalf("EncodeBytes() error = %v", err)
	}
	data, err = metadata.Inject(data, metadata.Fields{Date: when, Description: "beach"})
	if err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	return data
}

func TestExtractExif(t *testing.T) {
	c := canvas(t, fill(8, 8, red))
	rc := recipe.NewContext(c.RGBA(), "beach.jpg")
	rc.SourceBytes = jpegWithDate(t, time.Date(2023, 7, 4, 18, 5, 9, 0, time.Local))

	applyWith(t, "meta-exif", c, nil, rc)
	if len(rc.Warnings) != 0 {
		t.Fatalf("warnings = %v", rc.Warnings)
	}
	want := map[string]any{"Date_Time_Original": "2023:07:04 18:05:09"}
	if diff := cmp.Diff(want, rc.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
	if got := Resolve("{{Date_Time_Original:dateTime::YYYY}}", rc); got != "2023" {
		t.Errorf("Resolve() = %q, want 2023", got)
	}
}

func TestExtractExifWithoutExif(t *testing.T) {
	c := canvas(t, fill(8, 8, red))
	plain, err := c.EncodeBytes(raster.PNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	rc := recipe.NewContext(c.RGBA(), "x.png")
	rc.SourceBytes = plain
	applyWith(t, "meta-exif", c, nil, rc)
	if len(rc.Warnings) != 0 || len(rc.Metadata) != 0 {
		t.Errorf("warnings = %v, metadata = %v, want none", rc.Warnings, rc.Metadata)
	}

	rc = recipe.NewContext(c.RGBA(), "x.png")
	applyWith(t, "meta-exif", c, nil, rc)
	if len(rc.Warnings) != 1 || rc.Warnings[0].Code != recipe.WarnMetadata {
		t.Errorf("warnings = %v, want one metadata warning", rc.Warnings)
	}
}

func TestStripAndSetMeta(t *testing.T) {
	c := canvas(t, fill(2, 2, red))
	rc := recipe.NewContext(c.RGBA(), "IMG_1.jpg")
	rc.Metadata["Make"] = "Canon"

	applyWith(t, "meta-strip", c, nil, rc)
	if len(rc.Metadata) != 0 {
		t.Fatalf("metadata after strip = %v", rc.Metadata)
	}

	applyWith(t, "meta-set", c, recipe.Params{"key": "description", "value": "from {{filename}}"}, rc)
	applyWith(t, "meta-set", c, recipe.Params{"key": "rating", "value": 5}, rc)
	want := map[string]any{"description": "from IMG_1.jpg", "rating": 5}
	if diff := cmp.Diff(want, rc.Metadata); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	applyWith(t, "meta-set", c, recipe.Params{"value": "x"}, rc)
	if len(rc.Warnings) != 1 {
		t.Errorf("warnings = %v, want one for the missing key", rc.Warnings)
	}
}

func TestMetaSetIsEmbeddedOnExport(t *testing.T) {
	arts, _ := runRecipe(t, fill(8, 8, red), "shot.jpg",
		recipe.Step{ID: "1", OperationID: "meta-set", Params: recipe.Params{"key": "description", "value": "{{filename}} edited"}},
		recipe.Step{ID: "2", OperationID: "meta-set", Params: recipe.Params{"key": "date", "value": "2024-02-29"}},
	)
	f, err := metadata.ReadFields(arts[0].Bytes)
	if err != nil {
		t.Fatalf("ReadFields() error = %v", err)
	}
	if f.Description != "shot.jpg edited" {
		t.Errorf("description = %q", f.Description)
	}
	if y, m, d := f.Date.Date(); y != 2024 || m != time.February || d != 29 {
		t.Errorf("date = %v, want 2024-02-29", f.Date)
	}
}
