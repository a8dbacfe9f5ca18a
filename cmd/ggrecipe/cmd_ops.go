package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/ops"
)

var opsFlags struct {
	format string
}

func (a *app) opsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ops [ID...]",
		Short: "List the available operations and their parameters",
		RunE:  a.runOps,
	}
	cmd.Flags().StringVar(&opsFlags.format, "format", "text", "output format: text, json or yaml")
	return cmd
}

func (a *app) runOps(cmd *cobra.Command, args []string) error {
	cat := ops.NewCatalog()
	var descs []recipe.Descriptor
	if len(args) == 0 {
		for _, op := range cat.List() {
			descs = append(descs, op.Descriptor())
		}
	} else {
		for _, id := range args {
			op, ok := cat.Get(id)
			if !ok {
				return fmt.Errorf("unknown operation %q", id)
			}
			descs = append(descs, op.Descriptor())
		}
	}

	out := cmd.OutOrStdout()
	switch opsFlags.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(descs); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		printDescriptors(out, descs, len(args) > 0)
		return nil
	}
	return fmt.Errorf("unknown format %q", opsFlags.format)
}

func printDescriptors(w io.Writer, descs []recipe.Descriptor, detailed bool) {
	for _, d := range descs {
		fmt.Fprintf(w, "%-26s %s\n", d.ID, d.Name)
		if !detailed {
			continue
		}
		fmt.Fprintf(w, "  %s\n", d.Description)
		for _, p := range d.Params {
			line := fmt.Sprintf("  %-18s %-8s default=%v", p.Name, p.Type, p.Default)
			if len(p.Options) > 0 {
				line += " options=" + strings.Join(p.Options, "|")
			}
			if p.Min != nil && p.Max != nil {
				line += fmt.Sprintf(" range=%g..%g", *p.Min, *p.Max)
			}
			fmt.Fprintln(w, line)
		}
	}
}
