package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchJSON    bool
	searchSummary bool
)

var searchCmd = &cobra.Command{
	Use:   "search NAME",
	Short: "Search a brand or company name and print the results",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		term := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		if searchSummary {
			text, res, err := a.service.Summarize(ctx, term)
			if res == nil {
				return err
			}
			if searchJSON {
				return writeJSON(cmd, map[string]any{"result": res, "summary": text})
			}
			printResult(out, res, text, err)
			return nil
		}

		res, err := a.service.Search(ctx, term)
		if err != nil {
			return err
		}
		if searchJSON {
			return writeJSON(cmd, res)
		}
		printResult(out, res, "", nil)
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the result as JSON")
	searchCmd.Flags().BoolVar(&searchSummary, "summary", false, "also generate an AI summary")
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
