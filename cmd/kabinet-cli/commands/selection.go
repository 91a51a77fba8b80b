package commands

import (
	"context"
	"errors"
	"fmt"
	"kabinet-assist/internal/report"
	"kabinet-assist/internal/scrapers/kabinet"
	"kabinet-assist/internal/service"
	"kabinet-assist/pkg/textutil"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	prefixYearsUnavailable     = "Tədris illərini yükləmək mümkün olmadı: "
	prefixSemestersUnavailable = "Semestrləri yükləmək mümkün olmadı: "
)

var errMissingSelection = errors.New(service.MessageMissingSelection)

func findOption(options []kabinet.Option, value string) kabinet.Option {
	for _, o := range options {
		if o.Value == value {
			return o
		}
	}
	return kabinet.Option{Value: value, Text: value}
}

// selectYear picks the year given by `query`, or the saved one, or the first offered one.
func selectYear(ctx context.Context, g *globals, query string) (kabinet.Option, []kabinet.Option, error) {
	res := g.api.FetchAcademicYears(ctx)
	if !res.Success {
		return kabinet.Option{}, nil, errors.New(prefixYearsUnavailable + res.Error)
	}
	years := res.Data

	if query != "" {
		year, ok := textutil.ResolveOption(query, years, textutil.DefaultResolveThreshold)
		if !ok {
			return kabinet.Option{}, years, fmt.Errorf("unknown academic year %q", query)
		}
		err := g.prefs.SaveYear(ctx, year.Value)
		if err != nil {
			return kabinet.Option{}, years, err
		}
		return year, years, nil
	}

	value, ok, err := g.prefs.ChooseYear(ctx, years)
	if err != nil {
		return kabinet.Option{}, years, err
	}
	if !ok {
		return kabinet.Option{}, years, errMissingSelection
	}
	if !interactive {
		return findOption(years, value), years, nil
	}

	year, err := pickOption("Tədris ili", years, value)
	if err != nil {
		return kabinet.Option{}, years, err
	}
	err = g.prefs.SaveYear(ctx, year.Value)
	if err != nil {
		return kabinet.Option{}, years, err
	}
	return year, years, nil
}

// selectSemester picks the semester given by `query` or the one saved for
// `year`, an explicitly chosen semester is remembered for that year.
func selectSemester(ctx context.Context, g *globals, year kabinet.Option, query string) (kabinet.Option, []kabinet.Option, error) {
	res := g.api.FetchSemesters(ctx, year.Value)
	if !res.Success {
		return kabinet.Option{}, nil, errors.New(prefixSemestersUnavailable + res.Error)
	}
	semesters := res.Data

	if query != "" {
		semester, ok := textutil.ResolveOption(query, semesters, textutil.DefaultResolveThreshold)
		if !ok {
			return kabinet.Option{}, semesters, fmt.Errorf("unknown semester %q", query)
		}
		err := g.prefs.SaveSemester(ctx, year.Value, semester.Value)
		if err != nil {
			return kabinet.Option{}, semesters, err
		}
		return semester, semesters, nil
	}

	value, ok, err := g.prefs.ChooseSemester(ctx, year.Value, semesters)
	if err != nil {
		return kabinet.Option{}, semesters, err
	}
	if interactive {
		semester, err := pickOption("Semestr", semesters, value)
		if err != nil {
			return kabinet.Option{}, semesters, err
		}
		err = g.prefs.SaveSemester(ctx, year.Value, semester.Value)
		if err != nil {
			return kabinet.Option{}, semesters, err
		}
		return semester, semesters, nil
	}
	if !ok {
		return kabinet.Option{}, semesters, errMissingSelection
	}
	return findOption(semesters, value), semesters, nil
}

func printOptions(options []kabinet.Option, selected string) {
	t := report.NewTable(os.Stdout)
	t.AppendHeader(table.Row{"", "Value", "Text"})
	for _, o := range options {
		marker := ""
		if o.Value == selected {
			marker = "*"
		}
		t.AppendRow(table.Row{marker, o.Value, o.Text})
	}
	t.Render()
}
