// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/venue-scout/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintAggregateResult outputs a human-readable summary of an extraction run.
func (p *Printer) PrintAggregateResult(result *types.AggregateResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Target:   %s\n", result.Target.URL))
	sb.WriteString(fmt.Sprintf("Kind:     %s\n", result.Target.Kind))
	if result.Succeeded {
		sb.WriteString(fmt.Sprintf("Strategy: %s\n", result.Strategy))
		sb.WriteString(fmt.Sprintf("Records:  %d\n", len(result.Records)))
	} else {
		sb.WriteString("Outcome:  FAILED\n")
	}

	p.printBox("Extraction Result", sb.String())

	for i, rec := range result.Records {
		if i >= maxItemsToShow {
			fmt.Fprintf(p.out, "  ... and %d more records\n", len(result.Records)-maxItemsToShow)
			break
		}
		p.PrintCandidate(&rec)
	}

	if len(result.Diagnostics) > 0 {
		p.PrintDiagnostics(result.Diagnostics)
	}
}

// PrintCandidate outputs one schedule record candidate.
func (p *Printer) PrintCandidate(c *types.ScheduleRecordCandidate) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Venue:      %s\n", c.Venue))
	if c.City != "" {
		sb.WriteString(fmt.Sprintf("City:       %s, %s\n", c.City, c.State))
	}
	window := c.StartTime
	if c.EndTime != "" {
		window += "-" + c.EndTime
	}
	sb.WriteString(fmt.Sprintf("When:       %s %s\n", c.Day, window))
	if c.HostName != "" {
		sb.WriteString(fmt.Sprintf("Host:       %s\n", c.HostName))
	}
	sb.WriteString(fmt.Sprintf("Confidence: %.2f\n", c.Confidence))

	for _, issue := range c.Issues {
		sb.WriteString(fmt.Sprintf("  ! %s\n", issue))
	}

	p.printBox("Schedule Candidate", sb.String())
}

// PrintDiagnostics outputs the strategies-attempted trail.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintDiagnostics(diagnostics []string) {
	fmt.Fprintf(p.out, "Diagnostics trail:\n")
	for i, d := range diagnostics {
		fmt.Fprintf(p.out, "  %d. %s\n", i+1, d)
	}
}
