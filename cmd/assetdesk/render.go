package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"assetdesk/internal/screens"
	"assetdesk/pkg/domain"
)

var (
	headerStyle  = color.New(color.Bold, color.FgCyan)
	successStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed)
	warningStyle = color.New(color.FgYellow)
	dimStyle     = color.New(color.Faint)
)

func renderTable(out io.Writer, headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = headerStyle.Sprint(strings.ToUpper(h))
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func renderPage(out io.Writer, p screens.Page) {
	if p.Total == 0 {
		fmt.Fprintln(out, dimStyle.Sprint("No records match."))
		return
	}
	renderTable(out, p.Headers, p.Rows)
	first := (p.Page-1)*p.PageSize + 1
	last := first + len(p.Rows) - 1
	fmt.Fprintln(out, dimStyle.Sprintf("Showing %d-%d of %d (page %d of %d)", first, last, p.Total, p.Page, p.TotalPages))
}

func noteStyle(kind domain.NotificationKind) *color.Color {
	switch kind {
	case domain.NotificationError:
		return errorStyle
	case domain.NotificationWarning:
		return warningStyle
	default:
		return successStyle
	}
}

// renderLatest prints the newest notification, if any.
func renderLatest(out io.Writer, notes []domain.Notification) {
	if len(notes) == 0 {
		return
	}
	n := notes[len(notes)-1]
	fmt.Fprintf(out, "%s %s\n", noteStyle(n.Kind).Sprint(n.Title+":"), n.Detail)
}
