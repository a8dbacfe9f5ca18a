package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/aggregate"
	"github.com/gogpu/recipe/batch"
)

var runFlags struct {
	recipe    string
	zip       string
	subfolder string
	meta      map[string]string
	stopAfter int
}

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run -r RECIPE INPUT...",
		Short: "Apply a recipe to images or directories of images",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runRun,
	}

	f := cmd.Flags()
	f.StringVarP(&runFlags.recipe, "recipe", "r", "", "recipe file, JSON or YAML (required)")
	f.StringP("output", "o", "", "output directory")
	f.Int("workers", 0, "concurrent runs, 0 for one per CPU")
	f.StringVar(&runFlags.zip, "zip", "", "write artifacts into this zip archive instead of the output directory")
	f.StringVar(&runFlags.subfolder, "subfolder", "", "default subfolder for checkpoint artifacts")
	f.StringToStringVar(&runFlags.meta, "meta", nil, "metadata key=value seeded into every run")
	f.IntVar(&runFlags.stopAfter, "stop-after", -1, "end every run after this step index")

	_ = cmd.MarkFlagRequired("recipe")
	return cmd
}

func (a *app) runRun(cmd *cobra.Command, args []string) error {
	eng := a.engine()
	r, err := a.loadRecipe(eng, runFlags.recipe)
	if err != nil {
		return err
	}

	paths, err := collectInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}
	inputs, err := readInputs(paths, metaFlag(runFlags.meta), a.log)
	if err != nil {
		return err
	}

	var opts []recipe.RunOption
	if runFlags.stopAfter >= 0 {
		opts = append(opts, recipe.StopAfter(runFlags.stopAfter))
	}
	runner := &batch.Runner{
		Engine:          eng,
		Workers:         a.cfg.Run.Workers,
		Options:         opts,
		OutputSubfolder: runFlags.subfolder,
	}

	start := time.Now()
	results, err := runner.Process(cmd.Context(), r, inputs)
	if err != nil {
		return err
	}

	arts := batch.Artifacts(results)
	if a.cfg.Run.Assemble {
		if arts, err = assemble(r, arts); err != nil {
			return err
		}
	}

	var out sink
	if runFlags.zip != "" {
		out, err = newZipSink(runFlags.zip)
	} else {
		out, err = newDirSink(a.cfg.Run.OutputDir)
	}
	if err != nil {
		return err
	}
	for _, art := range arts {
		if err := out.Write(art); err != nil {
			_ = out.Close()
			return err
		}
	}
	if err := out.Close(); err != nil {
		return err
	}

	failed := report(cmd.OutOrStdout(), results)
	fmt.Fprintf(cmd.OutOrStdout(), "%d images, %d artifacts written to %s in %s\n",
		len(results), len(arts), out, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(results))
	}
	return nil
}

// assemble replaces frame artifacts with the contact sheets and
// animations built from them.
func assemble(r *recipe.Recipe, arts []recipe.Artifact) ([]recipe.Artifact, error) {
	kept := make([]recipe.Artifact, 0, len(arts))
	for _, art := range arts {
		if art.Kind != recipe.KindFrame {
			kept = append(kept, art)
		}
	}
	built, err := aggregate.Assemble(r, arts)
	if err != nil {
		return nil, err
	}
	return append(kept, built...), nil
}
