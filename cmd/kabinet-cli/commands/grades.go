package commands

import (
	"encoding/json"
	"errors"
	"kabinet-assist/internal/grades"
	"kabinet-assist/internal/report"
	"kabinet-assist/internal/service"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	gradesYear     string
	gradesSemester string
	gradesMailTo   string
	gradesJson     bool
)

func init() {
	flags := gradesCmd.Flags()
	flags.StringVar(&gradesYear, "year", "", "Academic year (value or text), defaults to the remembered one.")
	flags.StringVar(&gradesSemester, "semester", "", "Semester (value or text), defaults to the one remembered for the year.")
	flags.StringVar(&gradesMailTo, "mail-to", "", "Also email the report to this address (needs the smtp config).")
	flags.BoolVar(&gradesJson, "json", false, "Print the courses as json instead of a table.")
	rootCmd.AddCommand(gradesCmd)
}

var gradesCmd = &cobra.Command{
	Use:   "grades",
	Short: "Shows the grades and absences of every course of a semester.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		g := getGlobals(ctx)

		year, _, err := selectYear(ctx, g, gradesYear)
		if err != nil {
			return err
		}
		semester, _, err := selectSemester(ctx, g, year, gradesSemester)
		if err != nil {
			return err
		}

		slog.Debug(service.MessageLoading, "year", year.Text, "semester", semester.Text)
		var res service.Result[[]grades.EnrichedCourse]
		whileLoading(service.MessageLoading, func() {
			res = g.api.FetchCourseData(ctx, year.Value, semester.Value)
		})
		if !res.Success {
			return errors.New(res.Error)
		}

		err = g.prefs.SaveSelection(ctx, year.Value, semester.Value)
		if err != nil {
			slog.Warn("remember selection", "err", err)
		}

		if gradesJson {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			err = encoder.Encode(res.Data)
			if err != nil {
				return err
			}
		} else {
			report.RenderTable(os.Stdout, res.Data)
			if len(res.Data) > 0 {
				printStatus(successStyle, service.MessageLoaded)
			} else {
				printStatus(noticeStyle, service.MessageNoCourses)
			}
		}

		if gradesMailTo == "" {
			return nil
		}
		mailer, err := report.NewMailer(g.config.Smtp)
		if err != nil {
			return err
		}
		return mailer.SendReport(gradesMailTo, year.Text, semester.Text, res.Data)
	},
}
