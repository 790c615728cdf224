package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/promanage/pkg/export"
)

var scheduleFormat string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Compute the schedule for the stored jobs",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&scheduleFormat, "format", "f", "table", "output format: table, json or csv")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	var write func(doc export.Document) error
	out := cmd.OutOrStdout()
	switch scheduleFormat {
	case "table":
		write = func(doc export.Document) error { return export.WriteTable(out, doc) }
	case "json":
		write = func(doc export.Document) error { return export.WriteJSON(out, doc) }
	case "csv":
		write = func(doc export.Document) error { return export.WriteCSV(out, doc) }
	default:
		return fmt.Errorf("unsupported format %q", scheduleFormat)
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	jobs, err := svc.ListJobs(cmd.Context())
	if err != nil {
		return err
	}
	if len(jobs) == 0 && scheduleFormat == "table" {
		_, err = fmt.Fprintln(out, "No jobs available. Add jobs with 'promanage job add' first.")
		return err
	}
	res, err := svc.GenerateSchedule(cmd.Context())
	if err != nil {
		return err
	}
	return write(export.NewDocument(res, svc.Labels(), time.Now().UTC()))
}
