package commands

import (
	"fmt"
	"kabinet-assist/internal/scrapers/kabinet"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// pickOption asks the user to choose one of `options`, `preselected` is
// highlighted first when it is offered.
func pickOption(title string, options []kabinet.Option, preselected string) (kabinet.Option, error) {
	if len(options) == 0 {
		return kabinet.Option{}, errMissingSelection
	}

	choices := make([]huh.Option[string], len(options))
	for i, o := range options {
		choices[i] = huh.NewOption(o.Text, o.Value).Selected(o.Value == preselected)
	}

	value := preselected
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(choices...).
				Value(&value).
				Height(12),
		),
	).WithTheme(huh.ThemeCharm()).Run()
	if err != nil {
		return kabinet.Option{}, err
	}
	return findOption(options, value), nil
}

// whileLoading runs `action` behind a spinner when stderr is a terminal.
func whileLoading(title string, action func()) {
	if !stderrIsTerminal() {
		action()
		return
	}
	_ = spinner.New().
		Title(title).
		Action(action).
		Run()
}

func printStatus(style lipgloss.Style, message string) {
	if stderrIsTerminal() {
		message = style.Render(message)
	}
	fmt.Fprintln(os.Stderr, message)
}
