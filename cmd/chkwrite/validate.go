package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cgast/chkwrite/pkg/scenario"
)

func newValidateCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog.yaml>",
		Short: "Check a scenario catalog file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read catalog: %w", err)
			}
			result, err := scenario.ValidateCatalogYAML(data, g.cfg.Catalog.Vars)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Valid() {
				fmt.Fprintf(out, "%s is invalid:\n", path)
				for _, e := range result.Errors {
					fmt.Fprintf(out, "  %s\n", failStyle.Render(e.Error()))
				}
				return fmt.Errorf("%d validation error(s)", len(result.Errors))
			}
			fmt.Fprintf(out, "%s is valid.\n", path)
			return nil
		},
	}
}
