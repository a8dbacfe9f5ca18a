package batch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

func encoded(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	c, err := raster.New(img)
	if err != nil {
		t.Fatal(err)
	}
	data, err := c.EncodeBytes(raster.PNG, 0)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

var errOdd = errors.New("odd width")

func testEngine(active, peak *atomic.Int64) *recipe.Engine {
	cat := recipe.NewCatalog()
	cat.Register(recipe.NewOperation(recipe.Descriptor{ID: "test-check"}, func(_ context.Context, c *raster.Canvas, _ recipe.Params, rc *recipe.Context) error {
		if active != nil {
			n := active.Add(1)
			defer active.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
		}
		if c.Width()%2 == 1 {
			return errOdd
		}
		rc.SetMeta("seen", true)
		return nil
	}))
	return recipe.NewEngine(cat)
}

var checkRecipe = &recipe.Recipe{Name: "check", Steps: []recipe.Step{{ID: "1", OperationID: "test-check"}}}

func TestProcessKeepsOrderAndIsolatesErrors(t *testing.T) {
	var inputs []Input
	for i := 0; i < 12; i++ {
		inputs = append(inputs, Input{Filename: fmt.Sprintf("img%02d.png", i), Data: encoded(t, 4+i, 4)})
	}
	inputs = append(inputs, Input{Filename: "broken.png", Data: []byte("not an image")})

	b := &Runner{Engine: testEngine(nil, nil), Workers: 3}
	results, err := b.Process(context.Background(), checkRecipe, inputs)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(results) != len(inputs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(inputs))
	}

	for i, res := range results {
		if res.Filename != inputs[i].Filename {
			t.Errorf("results[%d].Filename = %q, want %q", i, res.Filename, inputs[i].Filename)
		}
		switch {
		case res.Filename == "broken.png":
			if res.Err == nil {
				t.Error("broken input: want decode error")
			}
		case i%2 == 1:
			var se *recipe.StepError
			if !errors.As(res.Err, &se) || !errors.Is(res.Err, errOdd) {
				t.Errorf("%s: error = %v, want step error wrapping errOdd", res.Filename, res.Err)
			}
		default:
			if res.Err != nil {
				t.Errorf("%s: error = %v", res.Filename, res.Err)
			}
			if len(res.Artifacts) != 1 || res.Artifacts[0].Filename != res.Filename {
				t.Errorf("%s: artifacts = %+v", res.Filename, res.Artifacts)
			}
		}
	}

	var names []string
	for _, a := range Artifacts(results) {
		names = append(names, a.Filename)
	}
	want := []string{"img00.png", "img02.png", "img04.png", "img06.png", "img08.png", "img10.png"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Artifacts() mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessRespectsWorkerLimit(t *testing.T) {
	var active, peak atomic.Int64
	var inputs []Input
	for i := 0; i < 16; i++ {
		inputs = append(inputs, Input{Filename: fmt.Sprintf("%d.png", i), Data: encoded(t, 8, 8)})
	}
	b := &Runner{Engine: testEngine(&active, &peak), Workers: 2}
	if _, err := b.Process(context.Background(), checkRecipe, inputs); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := peak.Load(); got > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", got)
	}
}

func TestProcessSeedsMetadata(t *testing.T) {
	var got map[string]any
	cat := recipe.NewCatalog()
	cat.Register(recipe.NewOperation(recipe.Descriptor{ID: "test-peek"}, func(_ context.Context, _ *raster.Canvas, _ recipe.Params, rc *recipe.Context) error {
		got = rc.Metadata
		if len(rc.SourceBytes) == 0 {
			return errors.New("source bytes missing")
		}
		return nil
	}))
	b := &Runner{Engine: recipe.NewEngine(cat), Workers: 1}
	in := Input{Filename: "a.png", Data: encoded(t, 2, 2), Metadata: map[string]any{"author": "kim"}}
	results, err := b.Process(context.Background(), &recipe.Recipe{Steps: []recipe.Step{{ID: "1", OperationID: "test-peek"}}}, []Input{in})
	if err != nil || results[0].Err != nil {
		t.Fatalf("Process() error = %v, %v", err, results[0].Err)
	}
	if diff := cmp.Diff(map[string]any{"author": "kim"}, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Runner{Engine: testEngine(nil, nil)}
	results, err := b.Process(ctx, checkRecipe, []Input{{Filename: "a.png", Data: encoded(t, 2, 2)}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", err)
	}
	if len(results) != 1 || results[0].Artifacts != nil {
		t.Errorf("results = %+v, want one empty result", results)
	}
}
