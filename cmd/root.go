package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/promanage/app"
	"github.com/kilianp07/promanage/config"
	"github.com/kilianp07/promanage/core/scheduler"
	"github.com/kilianp07/promanage/infra/logger"
)

var (
	cfgPath      string
	schedCfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "promanage",
	Short: "Weekly project scheduling by deadline and revenue",
	Long: `promanage keeps a list of jobs, each with a deadline and a revenue, and
fills the slots of the week with the set of jobs that earns the most.

Settings come from the optional --config file and PM_* environment variables
(PM_STORE__BACKEND=sqlite keeps jobs between invocations).`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the REST API until interrupted",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&schedCfgPath, "scheduler-config", "", "scheduler settings file (yaml or json), replaces the scheduler section of --config")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func newService() (*app.Service, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if schedCfgPath != "" {
		sc, err := scheduler.LoadConfig(schedCfgPath)
		if err != nil {
			return nil, fmt.Errorf("load scheduler config: %w", err)
		}
		sc.SetDefaults()
		if err := sc.Validate(); err != nil {
			return nil, err
		}
		cfg.Scheduler = sc
	}
	return app.New(cfg)
}

func closeService(svc *app.Service) {
	if err := svc.Close(); err != nil {
		logger.New("main").Errorf("service close: %v", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	return svc.Run(ctx)
}
