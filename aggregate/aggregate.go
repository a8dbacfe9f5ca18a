// Package aggregate assembles the frames captured by aggregation steps
// across a batch of images into contact sheets and animations.
package aggregate

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"

	"github.com/gogpu/gg"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

// Artifact kinds produced by Assemble.
const (
	KindContactSheet recipe.ArtifactKind = "contact-sheet"
	KindAnimation    recipe.ArtifactKind = "animation"
)

// Defaults for capture step params.
const (
	DefaultColumns  = 4
	DefaultTileSize = 300
	DefaultGap      = 10
	DefaultDelayMS  = 500
)

// ErrNoFrames is returned when a group holds no decodable frame.
var ErrNoFrames = errors.New("aggregate: no frames")

// Group is the set of frames captured by one aggregation step.
type Group struct {
	ID          string
	OperationID string
	Params      recipe.Params
	Frames      []recipe.Artifact
}

// Collect groups frame artifacts by aggregation step, in the order the
// steps appear in r. Frames of steps not found in r are dropped.
func Collect(r *recipe.Recipe, artifacts []recipe.Artifact) []*Group {
	var groups []*Group
	byID := make(map[string]*Group)
	for _, s := range r.Steps {
		if !recipe.IsAggregation(s.OperationID) || byID[s.ID] != nil {
			continue
		}
		g := &Group{ID: s.ID, OperationID: s.OperationID, Params: s.Params}
		byID[s.ID] = g
		groups = append(groups, g)
	}
	for _, a := range artifacts {
		if a.Kind != recipe.KindFrame {
			continue
		}
		if g := byID[a.AggregationID]; g != nil {
			g.Frames = append(g.Frames, a)
		} else {
			recipe.Logger().Warn("aggregate: frame without step", "aggregation", a.AggregationID, "file", a.Filename)
		}
	}
	return groups
}

// Assemble builds one artifact per contact-sheet or animation group.
// Video frames are returned unchanged for an external muxer. Empty groups
// are skipped.
func Assemble(r *recipe.Recipe, artifacts []recipe.Artifact) ([]recipe.Artifact, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil recipe", recipe.ErrInvalidRecipe)
	}
	var out []recipe.Artifact
	for _, g := range Collect(r, artifacts) {
		if len(g.Frames) == 0 {
			continue
		}
		switch g.OperationID {
		case recipe.OpContactSheet:
			data, err := ContactSheet(g.Frames, g.Params)
			if err != nil {
				return nil, fmt.Errorf("contact sheet %s: %w", g.ID, err)
			}
			out = append(out, recipe.Artifact{
				Bytes:         data,
				Filename:      "contact_sheet_" + g.ID + ".jpg",
				AggregationID: g.ID,
				Kind:          KindContactSheet,
				Format:        raster.JPEG,
			})
		case recipe.OpAnimationFrame:
			data, err := Animation(g.Frames, g.Params)
			if err != nil {
				return nil, fmt.Errorf("animation %s: %w", g.ID, err)
			}
			out = append(out, recipe.Artifact{
				Bytes:         data,
				Filename:      "animation_" + g.ID + ".gif",
				AggregationID: g.ID,
				Kind:          KindAnimation,
				Format:        raster.GIF,
			})
		default:
			out = append(out, g.Frames...)
		}
	}
	return out, nil
}

func decodeFrames(frames []recipe.Artifact) ([]image.Image, error) {
	imgs := make([]image.Image, 0, len(frames))
	for _, f := range frames {
		img, _, err := raster.Decode(bytes.NewReader(f.Bytes))
		if err != nil {
			recipe.Logger().Warn("aggregate: skipping undecodable frame", "file", f.Filename, "err", err)
			continue
		}
		imgs = append(imgs, img)
	}
	if len(imgs) == 0 {
		return nil, ErrNoFrames
	}
	return imgs, nil
}

// ContactSheet lays the frames out in a grid of square tiles, each frame
// scaled to fit its tile and centered. Params: columns, tileSize, gap,
// backgroundColor.
func ContactSheet(frames []recipe.Artifact, p recipe.Params) ([]byte, error) {
	imgs, err := decodeFrames(frames)
	if err != nil {
		return nil, err
	}
	cols := max(1, min(p.Int("columns", DefaultColumns), len(imgs)))
	tile := max(1, p.Int("tileSize", DefaultTileSize))
	gap := max(0, p.Int("gap", DefaultGap))
	rows := (len(imgs) + cols - 1) / cols

	w := cols*tile + (cols+1)*gap
	h := rows*tile + (rows+1)*gap
	sheet, err := raster.NewBlank(w, h, p.Color("backgroundColor", color.White))
	if err != nil {
		return nil, err
	}
	dc := sheet.DC()
	for i, img := range imgs {
		b := img.Bounds()
		scale := math.Min(float64(tile)/float64(b.Dx()), float64(tile)/float64(b.Dy()))
		tw, th := float64(b.Dx())*scale, float64(b.Dy())*scale
		x := float64(gap+(i%cols)*(tile+gap)) + (float64(tile)-tw)/2
		y := float64(gap+(i/cols)*(tile+gap)) + (float64(tile)-th)/2
		dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
			X:             math.Round(x),
			Y:             math.Round(y),
			DstWidth:      math.Round(tw),
			DstHeight:     math.Round(th),
			Interpolation: gg.InterpBilinear,
			BlendMode:     gg.BlendNormal,
		})
	}
	return sheet.EncodeBytes(raster.JPEG, recipe.FrameQuality)
}

// Animation encodes the frames as a looping GIF. Frames are scaled onto
// the size of the first one. Params: delay in milliseconds.
func Animation(frames []recipe.Artifact, p recipe.Params) ([]byte, error) {
	imgs, err := decodeFrames(frames)
	if err != nil {
		return nil, err
	}
	delay := max(1, p.Int("delay", DefaultDelayMS)/10)
	size := imgs[0].Bounds().Size()

	anim := &gif.GIF{LoopCount: 0}
	for _, img := range imgs {
		c, err := raster.New(img)
		if err != nil {
			return nil, err
		}
		if err := c.Resize(size.X, size.Y, true); err != nil {
			return nil, err
		}
		pal := image.NewPaletted(c.Bounds(), palette.Plan9)
		draw.FloydSteinberg.Draw(pal, pal.Rect, c.RGBA(), image.Point{})
		anim.Image = append(anim.Image, pal)
		anim.Delay = append(anim.Delay, delay)
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("aggregate: encode gif: %w", err)
	}
	return buf.Bytes(), nil
}
