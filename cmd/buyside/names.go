package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var namesFilter string

var namesCmd = &cobra.Command{
	Use:   "names",
	Short: "List every searchable name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		filter := strings.ToUpper(strings.TrimSpace(namesFilter))
		for _, n := range a.service.Names() {
			if filter == "" || strings.Contains(n, filter) {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
		}
		return nil
	},
}

func init() {
	namesCmd.Flags().StringVar(&namesFilter, "contains", "", "only names containing this text")
}
