package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bitbucket.org/mmdatafocus/meatshop_console/apiclient"
	"bitbucket.org/mmdatafocus/meatshop_console/config"
	"bitbucket.org/mmdatafocus/meatshop_console/models"
	"bitbucket.org/mmdatafocus/meatshop_console/models/reports"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "report-export",
	Short: "Export meat-shop console reports from the command line",
	Long: `report-export reads the same external API as the console and writes the dashboard
or inventory report to a file.

Environment variables:
  API_BASE_URL     - root of the shop API (overridden by --api-url)
  EXPORT_BUCKET    - when set, every export is also archived to this GCS bucket
  REDIS_ADDRESS    - optional; used by clear-cache`,
	SilenceUsage: true,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Export the dashboard report (csv, pdf or xlsx)",
	Example: `  # Dashboard for May 2024 as a workbook
  report-export dashboard --period month --value 2024-05 --format xlsx

  # Whole history as CSV into ./out
  report-export dashboard --out ./out`,
	RunE: runDashboard,
}

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Export the inventory report (csv or pdf)",
	Example: `  report-export inventory --period year --value 2024 --format pdf`,
	RunE:  runInventory,
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop every cached collection so the console refetches from the API",
	RunE:  runClearCache,
}

func init() {
	rootCmd.PersistentFlags().String("api-url", "", "Shop API base url (default from API_BASE_URL)")

	for _, cmd := range []*cobra.Command{dashboardCmd, inventoryCmd} {
		cmd.Flags().String("period", "", "Period kind: day, month or year (default: no filter)")
		cmd.Flags().String("value", "", "Period value: YYYY-MM-DD, YYYY-MM or YYYY")
		cmd.Flags().String("format", "csv", "Output format")
		cmd.Flags().String("out", ".", "Output directory")
	}
	rootCmd.AddCommand(dashboardCmd, inventoryCmd, clearCacheCmd)
}

type exportOptions struct {
	backend models.Backend
	filter  models.PeriodFilter
	format  reports.Format
	outDir  string
}

func readOptions(cmd *cobra.Command) (*exportOptions, error) {
	apiURL, _ := cmd.Flags().GetString("api-url")
	period, _ := cmd.Flags().GetString("period")
	value, _ := cmd.Flags().GetString("value")
	format, _ := cmd.Flags().GetString("format")
	outDir, _ := cmd.Flags().GetString("out")

	if strings.TrimSpace(apiURL) == "" {
		apiURL = config.APIBaseURL()
	}
	backend, err := apiclient.NewClient(apiURL, config.APITimeout())
	if err != nil {
		return nil, err
	}
	filter, err := models.ParsePeriodFilter(period, value)
	if err != nil {
		return nil, err
	}
	f, err := reports.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &exportOptions{backend: backend, filter: filter, format: f, outDir: outDir}, nil
}

func writeExport(opts *exportOptions, export *reports.Export) error {
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(opts.outDir, export.Filename)
	if err := os.WriteFile(path, export.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fields := logrus.Fields{"file": path, "bytes": len(export.Data)}
	if export.ArchiveURL != "" {
		fields["archive"] = export.ArchiveURL
	}
	config.GetLogger().WithFields(fields).Info("report exported")
	fmt.Println(path)
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	dashboard := reports.Aggregate(ctx, opts.backend, opts.filter, nil)
	for section, msg := range dashboard.Errors {
		fmt.Fprintf(os.Stderr, "%s: %s\n", section, msg)
	}
	export, err := reports.ExportDashboard(ctx, dashboard, opts.format, models.PeriodKey(opts.filter))
	if err != nil {
		return err
	}
	return writeExport(opts, export)
}

func runInventory(cmd *cobra.Command, args []string) error {
	opts, err := readOptions(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	view, err := reports.GetInventoryView(ctx, opts.backend, opts.filter)
	if err != nil {
		return err
	}
	export, err := reports.ExportInventory(ctx, view, opts.format, models.PeriodKey(opts.filter))
	if err != nil {
		return err
	}
	return writeExport(opts, export)
}

func runClearCache(cmd *cobra.Command, args []string) error {
	if err := config.ConnectRedisWithRetry(cmd.Context()); err != nil {
		return err
	}
	defer config.GetRedisDB().Close()
	if err := models.ClearCaches(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("cache cleared")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		config.LogError(config.GetLogger(), "report-export", "main", "Execute", os.Args[1:], err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
