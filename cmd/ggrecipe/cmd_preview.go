package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/raster"
)

var previewFlags struct {
	recipe    string
	file      string
	meta      map[string]string
	stopAfter int
}

func (a *app) previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview -r RECIPE INPUT",
		Short: "Render the final canvas of a recipe as JPEG",
		Long: "Preview applies a recipe to one image and writes the canvas as it\n" +
			"stands after the last step (or --stop-after), ignoring export steps.",
		Args: cobra.ExactArgs(1),
		RunE: a.runPreview,
	}

	f := cmd.Flags()
	f.StringVarP(&previewFlags.recipe, "recipe", "r", "", "recipe file, JSON or YAML (required)")
	f.StringVarP(&previewFlags.file, "file", "o", "preview.jpg", "output file")
	f.StringToStringVar(&previewFlags.meta, "meta", nil, "metadata key=value seeded into the run")
	f.IntVar(&previewFlags.stopAfter, "stop-after", -1, "end the run after this step index")

	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}

func (a *app) runPreview(cmd *cobra.Command, args []string) error {
	eng := a.engine()
	r, err := a.loadRecipe(eng, previewFlags.recipe)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	img, _, err := raster.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	rc := recipe.NewContext(img, filepath.Base(args[0]))
	rc.SourceBytes = data
	for k, v := range metaFlag(previewFlags.meta) {
		rc.Metadata[k] = v
	}
	var opts []recipe.RunOption
	if previewFlags.stopAfter >= 0 {
		opts = append(opts, recipe.StopAfter(previewFlags.stopAfter))
	}

	out, err := eng.Preview(cmd.Context(), img, r, rc, opts...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(previewFlags.file, out, 0o644); err != nil {
		return err
	}
	for _, w := range rc.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", w)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "preview written to %s\n", previewFlags.file)
	return nil
}
