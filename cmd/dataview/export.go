package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/dataview/internal/core"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a file to normalized JSON without opening the viewer",
		Long: `The export command loads a file through the same pipeline as the viewer
and writes every record, in file order, as indented JSON. Use -o - to write
to standard output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			closeLog, err := setupLogging(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			loader, err := core.NewLoaderFromConfig(cfg)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Upload.Timeout)
			defer cancel()

			res, err := loader.LoadFile(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			if err := writeExport(cmd.OutOrStdout(), output, res.Records); err != nil {
				return err
			}

			slog.Info("dataset exported", "file", args[0], "output", output, "records", len(res.Records))
			if output != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d records to %s\n", len(res.Records), output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", core.ExportFileName, "Output file, or - for standard output")
	return cmd
}

// writeExport writes rs to stdout when output is "-" and to the named
// file otherwise.
func writeExport(stdout io.Writer, output string, rs core.RecordSet) error {
	if output == "-" {
		if err := core.WriteJSON(stdout, rs); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		_, err := fmt.Fprintln(stdout)
		return err
	}

	data, err := core.ExportJSON(rs)
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}
