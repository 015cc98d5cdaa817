package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format := a.v.GetString("output")
			if err := checkFormat(format, outputFormats); err != nil {
				return err
			}
			if format == "json" {
				return writeJSON(a.stdout, map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				})
			}
			_, err := fmt.Fprintf(a.stdout, "hbcdis %s (commit %s, built %s)\n", version, commit, date)
			return err
		},
	}
	cmd.Flags().StringP("output", "o", "text", "output format: json or text")
	return cmd
}
