package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"commute-route-service/internal/adapters/geojson"
	"commute-route-service/internal/adapters/survey"
	"commute-route-service/internal/app"
	"commute-route-service/internal/config"
	"commute-route-service/internal/domain"
	"commute-route-service/internal/platform/obs"
)

// plot reads a survey export, fetches a route for every answer and writes
// the routes as a GeoJSON line layer.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	var (
		in       = flag.String("in", cfg.Survey.Path, "survey CSV file")
		out      = flag.String("out", cfg.Plot.OutputPath, "GeoJSON output file")
		depart   = flag.String("depart", "", "departure time, RFC 3339 (default now)")
		building = flag.String("building", "", "only plot commutes to this building")
	)
	flag.Parse()

	log, err := obs.NewLogger(cfg.AppEnv, "plot")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log, *in, *out, *depart, *building); err != nil {
		log.Error("plot failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger, in, out, depart, building string) error {
	departAt := time.Now().UTC()
	if depart != "" {
		t, err := time.Parse(time.RFC3339, depart)
		if err != nil {
			return fmt.Errorf("parse -depart: %w", err)
		}
		departAt = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commutes, err := survey.ReadFile(in, app.SurveyOptions(cfg), log.Named("survey"))
	if err != nil {
		return err
	}
	if building != "" {
		commutes = onlyBuilding(commutes, building)
	}

	a, err := app.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	layer, report, err := a.Plotter().Plot(ctx, commutes, departAt)
	if err != nil {
		return err
	}

	if err := geojson.WriteLayerFile(out, layer); err != nil {
		return err
	}

	for _, s := range report.Skipped {
		log.Warn("row skipped", zap.Int("row", s.Row), zap.String("reason", s.Reason))
	}
	log.Info("layer written",
		zap.String("path", out),
		zap.String("layer", layer.Name),
		zap.Int("routes", len(layer.Routes)),
		zap.Int("empty", report.Empty),
		zap.Int("skipped", len(report.Skipped)),
	)
	return nil
}

func onlyBuilding(commutes []domain.Commute, building string) []domain.Commute {
	out := make([]domain.Commute, 0, len(commutes))
	for _, c := range commutes {
		if strings.TrimSpace(c.Building) == strings.TrimSpace(building) {
			out = append(out, c)
		}
	}
	return out
}
