// Command mockdata writes a seed CSV of synthetic, engine-scored
// evaluation rows for local development.
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/okian/caliper/internal/mockdata"
	"github.com/okian/caliper/pkg/logger"
)

// Default configuration constants.
const (
	defaultOut     = "mock_data.csv"
	defaultRows    = 5 // rows per (model, temperature, top_p) cell
	defaultTimeout = 5 * time.Minute
)

func main() {
	var (
		out    = flag.String("out", defaultOut, "Output CSV path")
		rows   = flag.Int("rows", defaultRows, "Rows per (model, temperature, top_p) cell")
		models = flag.String("models", "", "Comma-separated model names (default: built-in set)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	cfg := mockdata.Config{
		OutPath: *out,
		Rows:    *rows,
	}
	if *models != "" {
		for _, m := range strings.Split(*models, ",") {
			if m = strings.TrimSpace(m); m != "" {
				cfg.Models = append(cfg.Models, m)
			}
		}
	}

	if _, err := mockdata.NewGenerator().Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("mock data generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
