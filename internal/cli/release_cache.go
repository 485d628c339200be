package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tankoni/Crulish-sub003/internal/core/config"
)

var releaseCacheCmd = &cobra.Command{
	Use:   "release-cache",
	Short: "Force the cache memory release sequence on the running service",
	Run:   runReleaseCache,
}

func init() {
	rootCmd.AddCommand(releaseCacheCmd)
}

func runReleaseCache(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d/cache/release", cfg.Server.Port)
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		slog.Error("Failed to reach service", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var body struct {
		Removed int `json:"removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		slog.Error("Failed to decode response", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Released %d cache entries\n", body.Removed)
}
