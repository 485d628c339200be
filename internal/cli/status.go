package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tankoni/Crulish-sub003/internal/core/config"
	"github.com/tankoni/Crulish-sub003/internal/infra/ops"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the health and statistics of the running service",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d/health/detailed", cfg.Server.Port)
	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach service", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var report ops.Report
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		slog.Error("Failed to decode health report", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Status: %s (checked %s)\n\n", report.Status, report.CheckedAt.Format(time.RFC3339))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "SECTION\tMETRIC\tVALUE")
	_, _ = fmt.Fprintf(w, "cache\titems\t%d/%d\n", report.Cache.Items, report.Cache.Capacity)
	_, _ = fmt.Fprintf(w, "cache\thit rate\t%.1f%%\n", report.Cache.HitRate()*100)
	_, _ = fmt.Fprintf(w, "cache\tevictions\t%d\n", report.Cache.Evictions)
	_, _ = fmt.Fprintf(w, "errors\ttotal\t%d\n", report.Errors.Total)
	_, _ = fmt.Fprintf(w, "errors\tlast hour\t%d\n", report.Errors.LastHour)
	_, _ = fmt.Fprintf(w, "errors\ttoday\t%d\n", report.Errors.Today)
	if report.Errors.MostFrequent != "" {
		_, _ = fmt.Fprintf(w, "errors\tmost frequent\t%s\n", report.Errors.MostFrequent)
	}
	for name, op := range report.Operations.Operations {
		_, _ = fmt.Fprintf(w, "operations\t%s\t%d calls, avg %s\n", name, op.Calls, op.Average)
	}
	_ = w.Flush()
}
