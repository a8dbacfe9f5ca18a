package ops

import (
	"context"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

const defaultVariable = "temp"

func workflowOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "workflow-save-state",
			Name:        "Save State",
			Description: "Save the current image state to a variable",
			Params:      []recipe.ParamDef{textParam("variableName", "Variable Name", defaultVariable)},
		}, applySaveState),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "workflow-load-state",
			Name:        "Load State",
			Description: "Load a saved image state",
			Params: []recipe.ParamDef{
				textParam("variableName", "Variable Name", defaultVariable),
				selectParam("mode", "Mode", "replace", "replace", "overlay"),
				rangeParam("opacity", "Opacity", 100, 0, 100, 0),
			},
		}, applyLoadState),
	}
}

// controlOps describes the steps the engine handles itself. Their Apply
// is a no-op; they are registered so they show up in listings and
// validation.
func controlOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          recipe.OpExport,
			Name:        "Export / Save Point",
			Description: "Save the image at this stage",
			Params: []recipe.ParamDef{
				textParam("suffix", "Filename Suffix", "_processed"),
				selectParam("format", "Format", "image/jpeg", "image/jpeg", "image/png", "image/webp", "image/gif", "image/bmp", "image/tiff"),
				rangeParam("quality", "Quality", 0.95, 0, 1, 0.01),
				textParam("subfolder", "Subfolder", ""),
			},
		}, nil),
		recipe.NewOperation(recipe.Descriptor{
			ID:          recipe.OpContactSheet,
			Name:        "Contact Sheet",
			Description: "Collect this stage of every image into one contact sheet",
			Params: []recipe.ParamDef{
				numberParam("columns", "Columns", 4),
				numberParam("tileSize", "Tile Size (px)", 300),
				numberParam("gap", "Gap (px)", 10),
				colorParam("backgroundColor", "Background Color", "#ffffff"),
			},
		}, nil),
		recipe.NewOperation(recipe.Descriptor{
			ID:          recipe.OpAnimationFrame,
			Name:        "Animation Frame",
			Description: "Collect this stage of every image into an animated GIF",
			Params:      []recipe.ParamDef{numberParam("delay", "Frame Delay (ms)", 500)},
		}, nil),
		recipe.NewOperation(recipe.Descriptor{
			ID:          recipe.OpVideoFrame,
			Name:        "Video Frame",
			Description: "Collect this stage of every image as a video frame",
			Params:      []recipe.ParamDef{numberParam("fps", "Frames per Second", 2)},
		}, nil),
		recipe.NewOperation(recipe.Descriptor{
			ID:          recipe.OpNote,
			Name:        "Note",
			Description: "A comment; has no effect",
			Params:      []recipe.ParamDef{textParam("text", "Text", "")},
		}, nil),
	}
}

func variableName(p recipe.Params) string {
	if name := p.String("variableName", ""); name != "" {
		return name
	}
	return defaultVariable
}

func applySaveState(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	rc.Variables.Save(variableName(p), c)
	return nil
}

func applyLoadState(_ context.Context, c *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	name := variableName(p)
	s, ok := rc.Variables.Load(name)
	if !ok {
		rc.Warn(recipe.WarnMissingVariable, "variable %q not found", name)
		return nil
	}
	opacity := clamp(p.Float("opacity", 100), 0, 100) / 100
	switch mode := p.String("mode", "replace"); mode {
	case "overlay":
		c.Overlay(s, opacity)
	default:
		if mode != "replace" {
			rc.Warn(recipe.WarnParam, "unknown load mode %q, replacing", mode)
		}
		c.Restore(s, opacity)
	}
	return nil
}
