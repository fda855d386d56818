package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/microgrid/app"
	"github.com/kilianp07/microgrid/config"
	"github.com/kilianp07/microgrid/core/model"
	"github.com/kilianp07/microgrid/infra/forecastfile"
)

var (
	forecastPath string
	scheduleDate string
	modeFlag     string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Generate one day-ahead schedule and persist it",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVarP(&forecastPath, "forecast", "f", "", "solar forecast file (json or yaml)")
	scheduleCmd.Flags().StringVarP(&scheduleDate, "date", "d", "", "target day, YYYY-MM-DD (default today)")
	scheduleCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "optimization mode override")
	_ = scheduleCmd.MarkFlagRequired("forecast")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	date := time.Now().UTC().Truncate(24 * time.Hour)
	if scheduleDate != "" {
		date, err = time.Parse("2006-01-02", scheduleDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", scheduleDate, err)
		}
	}

	points, err := forecastfile.Load(forecastPath)
	if err != nil {
		return err
	}

	req := app.GenerateRequest{Date: date, Points: points}
	if modeFlag != "" {
		mode, err := model.ParseOptimizationMode(modeFlag)
		if err != nil {
			return err
		}
		req.ModeOverride = &mode
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	sched, err := svc.Generate(context.Background(), req)
	if err != nil && sched == nil {
		return err
	}
	if err != nil {
		cmd.PrintErrf("schedule generated with shortfalls: %v\n", err)
	}
	cmd.Printf("schedule %s saved for %s (%s): final SoC %.1f%%, savings %.2f\n",
		sched.ID, sched.MicrogridID, sched.Date.Format("2006-01-02"),
		sched.FinalSoC*100, sched.Metrics.CostSavings)
	return nil
}
