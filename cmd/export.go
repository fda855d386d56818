package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/microgrid/app"
	"github.com/kilianp07/microgrid/config"
	"github.com/kilianp07/microgrid/pkg/export"
)

var (
	exportDate   string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a persisted schedule as JSON or CSV",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "target day, YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", "json", "output format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	date := time.Now().UTC()
	if exportDate != "" {
		date, err = time.Parse("2006-01-02", exportDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", exportDate, err)
		}
	}

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	sched, err := svc.Store().Active(context.Background(), cfg.MicrogridID, date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		return export.WriteJSON(out, sched)
	case "csv":
		return export.WriteCSV(out, sched)
	default:
		return fmt.Errorf("unsupported format %q", exportFormat)
	}
}
