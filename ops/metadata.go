package ops

import (
	"context"
	"errors"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/metadata"
	"github.com/gogpu/recipe/raster"
)

// exifKeys maps Exif tag names to the metadata keys meta-exif sets.
var exifKeys = []struct{ tag, key string }{
	{"DateTimeOriginal", "Date_Time_Original"},
	{"Make", "Make"},
	{"Model", "Model"},
	{"LensModel", "Lens"},
	{"ISOSpeedRatings", "ISO"},
	{"FNumber", "FNumber"},
	{"ExposureTime", "ExposureTime"},
	{"FocalLength", "FocalLength"},
}

func metadataOps() []recipe.Operation {
	return []recipe.Operation{
		recipe.NewOperation(recipe.Descriptor{
			ID:          "meta-exif",
			Name:        "Extract EXIF Data",
			Description: "Extract camera and shooting info into metadata",
		}, applyExtractExif),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "meta-strip",
			Name:        "Strip Metadata",
			Description: "Remove all metadata so nothing is embedded on export",
		}, applyStripMeta),
		recipe.NewOperation(recipe.Descriptor{
			ID:          "meta-set",
			Name:        "Set Metadata",
			Description: "Set a metadata value such as description, comment or date",
			Params: []recipe.ParamDef{
				textParam("key", "Key", "description"),
				textParam("value", "Value", ""),
			},
		}, applySetMeta),
	}
}

func applyExtractExif(_ context.Context, _ *raster.Canvas, _ recipe.Params, rc *recipe.Context) error {
	if len(rc.SourceBytes) == 0 {
		rc.Warn(recipe.WarnMetadata, "no source bytes to read Exif from")
		return nil
	}
	tags, err := metadata.Read(rc.SourceBytes)
	switch {
	case errors.Is(err, metadata.ErrNoExif), errors.Is(err, metadata.ErrNotJPEG):
		recipe.Logger().Debug("ops: no exif", "file", rc.Filename, "err", err)
		return nil
	case err != nil:
		rc.Warn(recipe.WarnMetadata, "read exif: %v", err)
		return nil
	}
	for _, m := range exifKeys {
		if v := tags[m.tag]; v != "" {
			rc.SetMeta(m.key, v)
		}
	}
	return nil
}

func applyStripMeta(_ context.Context, _ *raster.Canvas, _ recipe.Params, rc *recipe.Context) error {
	clear(rc.Metadata)
	return nil
}

func applySetMeta(_ context.Context, _ *raster.Canvas, p recipe.Params, rc *recipe.Context) error {
	key := p.String("key", "")
	if key == "" {
		rc.Warn(recipe.WarnParam, "meta-set without key")
		return nil
	}
	v := p["value"]
	if s, ok := v.(string); ok {
		v = Resolve(s, rc)
	}
	rc.SetMeta(key, v)
	return nil
}
