package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kilianp07/promanage/core/model"
)

const emptySlot = "-- No job scheduled --"

var printer = message.NewPrinter(language.English)

func money(v float64) string { return printer.Sprintf("%.2f", v) }

// WriteTable renders the weekly schedule followed by the missed jobs.
func WriteTable(w io.Writer, doc Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tJOB\tREVENUE")
	for _, s := range doc.Slots {
		if s.Job == nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Label, emptySlot, "---")
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Label, s.Job.Title, money(s.Job.Revenue))
	}
	fmt.Fprintf(tw, "TOTAL\t\t%s\n", money(doc.ScheduledRevenue))
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(doc.Unscheduled) == 0 {
		_, err := fmt.Fprintln(w, "\nAll available jobs have been scheduled.")
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintln(w, "\nJobs that could not be scheduled:")
		if err := writeJobs(w, doc.Unscheduled); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\nTotal missed revenue: %s\n", money(doc.UnscheduledRevenue)); err != nil {
			return err
		}
	}

	if len(doc.Rejected) > 0 {
		fmt.Fprintln(w, "\nRejected jobs:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tREASON")
		for _, r := range doc.Rejected {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Job.ID, r.Job.Title, r.Reason)
		}
		return tw.Flush()
	}
	return nil
}

// WriteJobs renders a job listing with a trailing count.
func WriteJobs(w io.Writer, jobs []model.Job) error {
	if err := writeJobs(w, jobs); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nTotal jobs: %d\n", len(jobs))
	return err
}

func writeJobs(w io.Writer, jobs []model.Job) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tDEADLINE\tREVENUE")
	for _, j := range jobs {
		fmt.Fprintf(tw, "%s\t%s\tDay %d\t%s\n", j.ID, j.Title, j.Deadline, money(j.Revenue))
	}
	return tw.Flush()
}
