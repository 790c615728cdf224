package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/promanage/pkg/export"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Job related commands",
}

var jobAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job",
	RunE:  runJobAdd,
}

var jobLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all jobs",
	RunE:  runJobLs,
}

var (
	jobTitle    string
	jobDeadline int
	jobRevenue  float64
)

func init() {
	jobAddCmd.Flags().StringVar(&jobTitle, "title", "", "job title")
	jobAddCmd.Flags().IntVar(&jobDeadline, "deadline", 0, "last slot the job may occupy (1-based)")
	jobAddCmd.Flags().Float64Var(&jobRevenue, "revenue", 0, "revenue earned when the job is scheduled")
	_ = jobAddCmd.MarkFlagRequired("title")
	_ = jobAddCmd.MarkFlagRequired("deadline")
	_ = jobAddCmd.MarkFlagRequired("revenue")

	jobCmd.AddCommand(jobAddCmd, jobLsCmd)
	rootCmd.AddCommand(jobCmd)
}

func runJobAdd(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	job, err := svc.AddJob(cmd.Context(), jobTitle, jobDeadline, jobRevenue)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Job added with id %s\n", job.ID)
	return err
}

func runJobLs(cmd *cobra.Command, args []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	jobs, err := svc.ListJobs(cmd.Context())
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), "No jobs found.")
		return err
	}
	return export.WriteJobs(cmd.OutOrStdout(), jobs)
}
