package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var analyzeCMD = &cobra.Command{
	Use:   "analyze [start-date] [end-date]",
	Short: "Analyze a date range and print the result as JSON",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.service.Analyze(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
