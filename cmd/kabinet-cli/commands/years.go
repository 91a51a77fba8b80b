package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(yearsCmd)
}

var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "Lists the academic years, the remembered one is marked with *.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())
		year, years, err := selectYear(cmd.Context(), g, "")
		if err != nil && years == nil {
			return err
		}
		printOptions(years, year.Value)
		return nil
	},
}
