package main

import (
	"fmt"
	"log/slog"

	"github.com/gogpu/gg"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/internal/config"
	"github.com/gogpu/recipe/internal/logging"
	"github.com/gogpu/recipe/ops"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	configPath string
	cfg        config.Config
	loader     *config.Loader
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ggrecipe",
		Short: "Apply image processing recipes to files",
		Long: "ggrecipe runs recipes, ordered lists of image operations, over\n" +
			"single images or whole directories and writes the resulting artifacts.",
		Version:      version,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.writeMetrics,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "config file (YAML)")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-format", "", "log format: text or json")
	f.String("metrics-file", "", "write Prometheus metrics to this file when done")

	root.AddCommand(
		a.runCmd(),
		a.previewCmd(),
		a.opsCmd(),
		a.validateCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, loader, err := config.Load(a.configPath, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg, a.loader = cfg, loader
	a.log = logging.New(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	recipe.SetLogger(a.log)
	gg.SetLogger(a.log)
	cmd.SetContext(logging.NewContext(cmd.Context(), a.log))
	return nil
}

func (a *app) writeMetrics(*cobra.Command, []string) error {
	if a.cfg.Metrics.File == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.cfg.Metrics.File, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

func (a *app) engine() *recipe.Engine {
	return recipe.NewEngine(ops.NewCatalog(),
		recipe.WithFrameQuality(a.cfg.Run.FrameQuality),
		recipe.WithPreviewQuality(a.cfg.Run.PreviewQuality),
	)
}

// loadRecipe reads a recipe and logs the operations the catalog lacks.
// Such steps are skipped with a warning at run time.
func (a *app) loadRecipe(eng *recipe.Engine, path string) (*recipe.Recipe, error) {
	r, err := recipe.Load(path)
	if err != nil {
		return nil, err
	}
	if unknown := eng.Catalog().Unknown(r); len(unknown) > 0 {
		a.log.Warn("recipe uses unknown operations", "recipe", r.Name, "ops", unknown)
	}
	return r, nil
}

func metaFlag(kv map[string]string) map[string]any {
	md := make(map[string]any, len(kv))
	for k, v := range kv {
		md[k] = v
	}
	return md
}
