// Package telemetry provides observability instrumentation for TrackForge.
//
// The telemetry package integrates structured logging (zerolog), distributed
// tracing (OpenTelemetry), and metrics (Prometheus) into a unified system for
// monitoring and debugging reconciliation runs.
//
// # Architecture
//
// The telemetry system is built on three pillars:
//
//  1. Structured Logging - Context-aware logging with zerolog
//  2. Distributed Tracing - OpenTelemetry traces with multiple exporters
//  3. Metrics Collection - Prometheus metrics for operational insights
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "trackforge"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	// Start metrics server
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
// Add telemetry to context:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with automatic context
// propagation:
//
//	logger := tel.Logger.NewComponentLogger("planner")
//	logger = logger.WithPlanID("plan-123").WithResource("field", "Priority")
//	logger.Info("Computing plan")
//	logger.WithError(err).Error("Planning failed")
//
// Log levels: trace, debug, info, warn, error, fatal
//
// # Distributed Tracing
//
// Tracing provides visibility into request flow and performance:
//
//	ctx, span := tel.Tracer.StartPlanSpan(ctx, store.Len())
//	defer span.End()
//
//	// Add attributes
//	span.SetAttributes(
//	    telemetry.AttrPlanID.String(plan.ID),
//	    telemetry.AttrActionKind.String("create_field"),
//	)
//
//	// Record events
//	span.AddEvent("diff.complete")
//
//	// Record errors
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP (production), Stdout (development)
//
// # Metrics
//
// Prometheus metrics track system behavior and performance:
//
//	// Record planning
//	tel.Metrics.RecordPlanComputed("succeeded", duration)
//	tel.Metrics.RecordPlannedAction("create_field")
//
//	// Record action application
//	tel.Metrics.RecordActionApplied("create_field", "succeeded", duration)
//	tel.Metrics.RecordRunCompleted("partial")
//
//	// Record policy decisions
//	tel.Metrics.RecordPlanDenied()
//	tel.Metrics.RecordPolicyViolation("protected-workflow", "critical")
//
//	// Record errors
//	tel.Metrics.RecordError("transient")
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics)
//
// # Context Helpers
//
// High-level helpers simplify common instrumentation patterns:
//
//	// Instrument an operation
//	ic := telemetry.StartOperation(ctx, "plan.compute",
//	    attribute.Int("facts.count", store.Len()))
//	defer ic.End(err)
//
//	ic.Logger.Info("Computing plan")
//
//	// Plan context
//	ctx = telemetry.WithPlanContext(ctx, plan.ID, store.Len())
//	defer telemetry.EndPlanContext(ctx, "succeeded", err)
//
//	// Action application
//	err := telemetry.RecordApplyOperation(ctx, plan.ID, "create_field", 2, func() error {
//	    return applier.Apply(ctx, action)
//	})
//
// # Configuration
//
// The package provides pre-configured setups for different environments:
//
//	// Development (verbose logging, stdout traces, full sampling)
//	cfg := telemetry.DevelopmentConfig()
//
//	// Production (JSON logs, OTLP traces, 10% sampling)
//	cfg := telemetry.ProductionConfig()
//
//	// From a YAML file, layered over the defaults
//	cfg, err := telemetry.LoadConfig("telemetry.yaml")
//
// # Common Metrics
//
// Key metrics exposed:
//
//   - trackforge_plans_computed_total{outcome}
//   - trackforge_plan_duration_seconds
//   - trackforge_plan_actions_total{kind}
//   - trackforge_diff_entries_total{category}
//   - trackforge_cycle_errors_total
//   - trackforge_actions_applied_total{kind,status}
//   - trackforge_action_apply_duration_seconds{kind}
//   - trackforge_runs_completed_total{status}
//   - trackforge_plans_denied_total
//   - trackforge_policy_violations_total{policy,severity}
//   - trackforge_errors_by_class_total{class}
//
// # Graceful Shutdown
//
// Always shut down telemetry gracefully to flush pending traces:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//	defer cancel()
//
//	if err := tel.Shutdown(ctx); err != nil {
//	    log.Printf("Telemetry shutdown error: %v", err)
//	}
//
// # Best Practices
//
//  1. Always use context to propagate telemetry
//  2. Use component-specific loggers for clarity
//  3. Add meaningful attributes to spans
//  4. Record both success and failure metrics
//  5. Never log sensitive data (tokens, credentials)
//  6. Configure sampling for high-volume systems
//  7. Always call defer span.End() after starting a span
//  8. Shut down gracefully to avoid data loss
package telemetry
