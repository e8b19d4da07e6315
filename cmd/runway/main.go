package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/SscSPs/majik_runway/internal/core/domain"
	"github.com/SscSPs/majik_runway/internal/core/services"
	"github.com/SscSPs/majik_runway/internal/platform/config"
	"github.com/SscSPs/majik_runway/internal/platform/logging"
	"github.com/SscSPs/majik_runway/internal/platform/metrics"
	"github.com/SscSPs/majik_runway/internal/report"
	"github.com/SscSPs/majik_runway/internal/scenario"
)

func main() {
	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	planFile := flag.String("plan", cfg.PlanFile, "path to the YAML runway plan")
	snapshotFile := flag.String("snapshot", "", "write the model snapshot JSON to this path")
	flag.Parse()

	logger = logging.New(os.Stderr, cfg.SlogLevel())
	slog.SetDefault(logger)

	ctx, _, runID := logging.WithRun(context.Background(), logger, *planFile)
	if err := run(ctx, cfg, *planFile, *snapshotFile, runID); err != nil {
		logging.FromContext(ctx).Error("Runway evaluation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, planFile, snapshotFile, runID string) error {
	logger := logging.FromContext(ctx)

	plan, err := scenario.Load(planFile)
	if err != nil {
		return err
	}
	defaults := scenario.Defaults{Currency: cfg.Currency, HorizonMonths: cfg.HorizonMonths}
	runway, err := plan.Build(defaults,
		services.WithLogger(logger),
		services.WithIncludeTaxes(cfg.IncludeTaxes),
		services.WithDebtScheduleMode(services.ScheduleMode{
			FullyAmortized:      cfg.FullyAmortized,
			UseCompoundInterest: cfg.CompoundInterest,
		}),
		services.WithHealthThresholds(services.HealthThresholds{
			CriticalRunwayMonths: cfg.HealthCriticalMonths,
			WarningRunwayMonths:  cfg.HealthWarningMonths,
			BurnMultipleWarning:  cfg.BurnMultipleWarning,
			BurnMultipleCritical: cfg.BurnMultipleCritical,
		}),
	)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}
	if err := runway.ValidateCurrencyConsistency(); err != nil {
		return err
	}

	snap, err := runway.GetDashboardSnapshot()
	if err != nil {
		return fmt.Errorf("project: %w", err)
	}
	out, err := services.DashboardJSON(snap)
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	recorder := metrics.NewRecorder()
	model := modelLabel(runway)
	recorder.ObserveDashboard(model, snap)

	overrides, err := plan.Overrides(defaults)
	if err != nil {
		return err
	}
	engine := services.NewProjectionEngine(logger)
	for _, o := range overrides {
		cashflows, err := runway.SimulateScenario(o)
		if err != nil {
			return fmt.Errorf("scenario %q: %w", o.Name, err)
		}
		months := engine.CalculateRunway(cashflows)
		recorder.ObserveScenario(model, o.Name, months, cashflows)
		fmt.Printf("scenario %-20s runway %2d months, ending cash %s\n", o.Name, months, cashflows[len(cashflows)-1].EndingCash.Format())
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		logger.Info("Metrics written", slog.String("path", cfg.MetricsFile))
	}
	if cfg.ReportDir != "" {
		if err := writeReports(cfg.ReportDir, runID, runway.Name(), snap, logger); err != nil {
			return err
		}
	}
	if snapshotFile != "" {
		data, err := runway.MarshalJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(snapshotFile, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("Snapshot written", slog.String("path", snapshotFile))
	}
	return nil
}

func modelLabel(r *services.MajikRunway) string {
	if r.Name() != "" {
		return r.Name()
	}
	return r.ID()
}

func writeReports(dir, runID, title string, snap domain.DashboardSnapshot, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	base := "runway-" + strings.SplitN(runID, "-", 2)[0]

	xlsx, err := report.BuildCashflowXLSX(title, snap)
	if err != nil {
		return fmt.Errorf("build xlsx: %w", err)
	}
	pdf, err := report.BuildDashboardPDF(title, snap)
	if err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	for name, data := range map[string][]byte{base + ".xlsx": xlsx, base + ".pdf": pdf} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("Report written", slog.String("path", path))
	}
	return nil
}
