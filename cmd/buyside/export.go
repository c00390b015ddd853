package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/buyside/internal/core"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export NAME",
	Short: "Write the combined results for NAME as CSV",
	Long:  "Writes the combined results for NAME as CSV to --out (default " + core.ResultsFileName + "), or to stdout with --out -.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.service.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if err := writeResults(cmd.OutOrStdout(), exportOut, res.Combined); err != nil {
			return err
		}

		slog.Info("results exported", "term", res.Term, "rows", res.Combined.Len(), "out", exportOut)
		return nil
	},
}

// writeResults writes v as CSV to stdout when path is "-", else to a new
// file at path.
func writeResults(stdout io.Writer, path string, v *core.View) error {
	if path == "-" {
		return core.WriteViewCSV(stdout, v)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return writeAndClose(f, path, v)
}

// writeAndClose reports a failed Close, which is where a short write to a
// file often surfaces.
func writeAndClose(wc io.WriteCloser, name string, v *core.View) error {
	if err := core.WriteViewCSV(wc, v); err != nil {
		wc.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", core.ResultsFileName, `output file, or "-" for stdout`)
}
