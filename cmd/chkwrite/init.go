package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cgast/chkwrite/internal/config"
	"github.com/cgast/chkwrite/pkg/scenario"
)

func newInitCmd() *cobra.Command {
	var withCatalog bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a starter .chkwrite/config.yaml (and optionally a catalog to edit)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			out := cmd.OutOrStdout()

			configPath := filepath.Join(dir, config.DefaultPath)
			if err := writeNew(configPath, []byte(config.DefaultYAML)); err != nil {
				return err
			}
			fmt.Fprintf(out, "Created %s\n", configPath)

			if withCatalog {
				catalogPath := filepath.Join(filepath.Dir(configPath), "catalog.yaml")
				if err := writeNew(catalogPath, scenario.ReferenceYAML()); err != nil {
					return err
				}
				fmt.Fprintf(out, "Created %s\n", catalogPath)
				fmt.Fprintln(out, "Set catalog.path in the config to use it, then check it with:")
				fmt.Fprintf(out, "  chkwrite validate %s\n", catalogPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "Also write the built-in scenario catalog for editing")
	return cmd
}

// writeNew writes data to path, creating parent directories. It refuses to
// overwrite an existing file.
func writeNew(path string, data []byte) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file %q already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
