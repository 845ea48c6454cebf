// Package operations runs the shipment delay pipeline as a sequence of
// steps: prepare, fit and evaluate.
//
// Each step reads its inputs from the shared RunState when an earlier step
// produced them in the same process, and from the artifact store otherwise,
// so the steps can run together or one per process:
//
//	p := operations.NewPipeline(cfg, st, operations.WithMetrics(metrics))
//	report, err := p.Run(ctx)
//
// Every step execution is logged with the run ID, traced as a span and
// counted in the stage metrics.
package operations
