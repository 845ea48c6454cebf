package operations

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"shiprisk/internal/config"
	"shiprisk/internal/infrastructure"
	fixtures "shiprisk/internal/shared/testutil"
	"shiprisk/internal/store"
)

func writeShipments(t *testing.T, n int) string {
	t.Helper()
	return fixtures.WriteShipments(t, n)
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.Input = input
	cfg.Paths.ArtifactsDir = filepath.Join(t.TempDir(), "artifacts")
	cfg.Evaluation.LabelRule = config.LabelRuleNatural
	require.NoError(t, cfg.Validate())
	return cfg
}

// newTestPipeline builds a pipeline over a file store; opts override the
// silent logger and fresh metrics.
func newTestPipeline(t *testing.T, cfg *config.Config, opts ...Option) (*Pipeline, store.Store) {
	t.Helper()
	st, err := store.NewFileStore(cfg.Paths.ArtifactsDir)
	require.NoError(t, err)
	defaults := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithMetrics(infrastructure.NewMetrics()),
	}
	return NewPipeline(cfg, st, append(defaults, opts...)...), st
}
