package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/agentic-research/rigseq/internal/diag"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"
)

var (
	severityStyles = map[diag.Severity]lipgloss.Style{
		diag.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		diag.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		diag.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		diag.Fatal:   lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Bold(true),
	}
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func formatMessage(m diag.Message, styled bool) string {
	label := m.Severity.String()
	scope := string(m.Keyword)
	if m.Module != "" {
		scope = m.Module + "/" + scope
	}
	if !styled {
		return fmt.Sprintf("%s [%s] %s", label, scope, m.Text)
	}
	return fmt.Sprintf("%s %s %s", severityStyles[m.Severity].Render(label), dimStyle.Render("["+scope+"]"), m.Text)
}

func printMessages(w io.Writer, msgs []diag.Message) {
	styled := isTerminal(w)
	for _, m := range msgs {
		_, _ = fmt.Fprintln(w, formatMessage(m, styled))
	}
}

func renderTable(w io.Writer, headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	if isTerminal(w) {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	} else {
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		})
	}
	return t.String()
}
