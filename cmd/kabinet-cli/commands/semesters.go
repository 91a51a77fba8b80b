package commands

import (
	"github.com/spf13/cobra"
)

var semestersYear string

func init() {
	semestersCmd.Flags().StringVar(&semestersYear, "year", "", "Academic year (value or text), defaults to the remembered one.")
	rootCmd.AddCommand(semestersCmd)
}

var semestersCmd = &cobra.Command{
	Use:   "semesters",
	Short: "Lists the semesters of an academic year, the remembered one is marked with *.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := getGlobals(cmd.Context())
		year, _, err := selectYear(cmd.Context(), g, semestersYear)
		if err != nil {
			return err
		}
		semester, semesters, err := selectSemester(cmd.Context(), g, year, "")
		if err != nil && semesters == nil {
			return err
		}
		printOptions(semesters, semester.Value)
		return nil
	},
}
