// Package http serves the latest pipeline report, the fitted model and the
// Prometheus metrics over a small read-only chi API.
package http
