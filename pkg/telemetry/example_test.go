package telemetry_test

import (
	"context"
	"fmt"

	"github.com/trackforge/trackforge/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = "trackforge"
	cfg.ServiceVersion = "1.0.0"
	cfg.Metrics.Enabled = false

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	logger := telemetry.FromContext(ctx)
	logger.Info("planner started")

	// Output varies, no output specified
}

// Example_structuredLogging demonstrates structured logging features.
func Example_structuredLogging() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Metrics.Enabled = false
	cfg.Tracing.Enabled = false

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	logger := tel.Logger.NewComponentLogger("planner")
	logger = logger.WithPlanID("plan-123").WithResource("workflow", "triage")

	logger.Debug("computing diff")
	logger.Info("plan computed")
	logger.Warn("field type drift detected")

	err := fmt.Errorf("network timeout")
	logger.WithError(err).Error("failed to reach remote instance")

	// Output varies, no output specified
}

// Example_instrumentedOperation demonstrates the context helpers.
func Example_instrumentedOperation() {
	cfg := telemetry.DevelopmentConfig()
	cfg.Metrics.Enabled = false
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	ic := telemetry.StartOperation(ctx, "plan.compute",
		attribute.Int("facts.count", 42),
	)
	ic.Logger.Info("computing plan")

	var planErr error
	ic.End(planErr)

	// Output varies, no output specified
}
