package service

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"ozzus/vendor-check/internal/domain"
)

// WriteSummary prints every verdict of the report as a table.
func WriteSummary(w io.Writer, report *domain.SessionReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Vendor:\t%s\n", report.Vendor().String())
	fmt.Fprintf(tw, "Session:\t%s\n", report.ID())
	if !report.FinishedAt().IsZero() {
		fmt.Fprintf(tw, "Finished:\t%s\n", report.FinishedAt().Format(time.RFC3339))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CHECK\tATTEMPT\tOUTCOME\tDURATION\tMESSAGE")

	for _, v := range report.Verdicts() {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			v.Kind().Label(),
			v.AttemptNumber(),
			outcomeMark(v.Outcome())+" "+string(v.Outcome()),
			v.Duration().Round(time.Millisecond),
			v.Message(),
		)
		for _, path := range v.ArtifactPaths() {
			fmt.Fprintf(tw, "\t\t\t\t%s\n", path)
		}
	}

	if failed := report.FailedKinds(); len(failed) > 0 {
		labels := make([]string, 0, len(failed))
		for _, k := range failed {
			labels = append(labels, k.Label())
		}
		fmt.Fprintf(tw, "\nNeeds attention:\t%s\n", strings.Join(labels, ", "))
	}

	return tw.Flush()
}
