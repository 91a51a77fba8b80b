package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var forgetYear string

func init() {
	forgetCmd.Flags().StringVar(&forgetYear, "year", "", "Academic year value, defaults to the remembered one.")
	rootCmd.AddCommand(forgetCmd)
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forgets the remembered semester of an academic year.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())
		year := forgetYear
		if year == "" {
			saved, ok, err := g.prefs.SavedYear(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			year = saved
		}
		err := g.prefs.ForgetSemester(cmd.Context(), year)
		if err != nil {
			return err
		}
		fmt.Printf("forgot the semester of %s\n", year)
		return nil
	},
}
