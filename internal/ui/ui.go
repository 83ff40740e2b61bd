// Package ui renders dbkit command output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/satishbabariya/dbkit/sqltext"
)

var (
	// Out receives regular output, Err receives errors and warnings.
	Out io.Writer = os.Stdout
	Err io.Writer = os.Stderr

	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	keywordColor = color.New(color.FgCyan, color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Out, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	fmt.Fprintln(Err, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Err, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	fmt.Fprintln(Out, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintStep prints a step indicator
func PrintStep(step int, total int, message string) {
	fmt.Fprintf(Out, "%s %s\n", SecondaryStyle.Render(fmt.Sprintf("[%d/%d]", step, total)), message)
}

// PrintSection prints a section header
func PrintSection(title string) {
	section := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(SecondaryColor).
		Render(TitleStyle.Render(title))
	fmt.Fprintln(Out, section)
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, out)
	return nil
}

// PrintList prints a bulleted list
func PrintList(items []string) {
	for _, item := range items {
		fmt.Fprintf(Out, "  • %s\n", item)
	}
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(content)
	if err != nil {
		return err
	}
	fmt.Fprint(Out, out)
	return nil
}

// HighlightSQL returns sql with its leading keyword highlighted.
func HighlightSQL(sql string) string {
	kw := sqltext.LeadingKeyword(sql)
	i := strings.Index(strings.ToUpper(sql), kw)
	if kw == "" || i < 0 {
		return sql
	}
	return sql[:i] + keywordColor.Sprint(sql[i:i+len(kw)]) + sql[i+len(kw):]
}

// PrintSQL prints a statement with its leading keyword highlighted.
func PrintSQL(sql string) {
	fmt.Fprintln(Out, HighlightSQL(sql))
}

// Spinner starts a spinner with message. Callers stop it with Success or
// Fail.
func Spinner(message string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.Start(message)
}
