package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/recipe"
	"github.com/gogpu/recipe/ops"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate RECIPE...",
		Short: "Check that recipe files parse and use known operations",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runValidate,
	}
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	cat := ops.NewCatalog()
	out := cmd.OutOrStdout()
	bad := 0
	for _, path := range args {
		r, err := recipe.Load(path)
		if err != nil {
			bad++
			fmt.Fprintf(out, "%s: %v\n", path, err)
			continue
		}
		if unknown := cat.Unknown(r); len(unknown) > 0 {
			bad++
			fmt.Fprintf(out, "%s: unknown operations %v\n", path, unknown)
			continue
		}
		fmt.Fprintf(out, "%s: ok (%q, %d steps)\n", path, r.Name, len(r.Steps))
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d recipes invalid", bad, len(args))
	}
	return nil
}
