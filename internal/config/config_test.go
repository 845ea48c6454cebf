package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.4, cfg.Pipeline.TrainFraction)
	assert.Equal(t, 0.5, cfg.Pipeline.ValFractionOfRemainder)
	assert.Equal(t, FitScopeTrain, cfg.Pipeline.FitScope)
	assert.True(t, cfg.Pipeline.DropReference)
	assert.Equal(t, 100, cfg.Model.MaxIterations)
	assert.Equal(t, 1e-8, cfg.Model.Tolerance)
	assert.Equal(t, 0.5, cfg.Evaluation.Threshold)
	assert.Equal(t, LabelRuleInverted, cfg.Evaluation.LabelRule)
	assert.Equal(t, int64(6078), cfg.Finance.PreventionCost)
	assert.Equal(t, int64(7493), cfg.Finance.LateLoss)
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
}

func TestLoad(t *testing.T) {
	// Save current env vars
	keys := []string{
		ConfigFileEnv,
		"SHIPRISK_PIPELINE_SEED",
		"SHIPRISK_PIPELINE_FIT_SCOPE",
		"SHIPRISK_MODEL_MAX_ITERATIONS",
		"SHIPRISK_EVALUATION_LABEL_RULE",
		"SHIPRISK_STORE_BACKEND",
		"SHIPRISK_SERVER_READ_TIMEOUT",
		"SHIPRISK_PIPELINE_EXCLUDE_FEATURES",
	}
	saved := make(map[string]string)
	for _, k := range keys {
		saved[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	defer func() {
		for k, v := range saved {
			if v != "" {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	}()

	tests := []struct {
		name        string
		yaml        string
		setupEnv    func()
		wantErr     bool
		validateCfg func(t *testing.T, cfg *Config)
	}{
		{
			name:     "defaults only",
			setupEnv: func() {},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(DefaultSeed), cfg.Pipeline.Seed)
				assert.Equal(t, DefaultMaxIterations, cfg.Model.MaxIterations)
			},
		},
		{
			name: "env overrides defaults",
			setupEnv: func() {
				os.Setenv("SHIPRISK_PIPELINE_SEED", "7")
				os.Setenv("SHIPRISK_PIPELINE_FIT_SCOPE", "all")
				os.Setenv("SHIPRISK_MODEL_MAX_ITERATIONS", "25")
				os.Setenv("SHIPRISK_EVALUATION_LABEL_RULE", "natural")
				os.Setenv("SHIPRISK_SERVER_READ_TIMEOUT", "3s")
				os.Setenv("SHIPRISK_PIPELINE_EXCLUDE_FEATURES", "Lead_Time_Buffer_Days,Base_Lead_Time_Days")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(7), cfg.Pipeline.Seed)
				assert.Equal(t, FitScopeAll, cfg.Pipeline.FitScope)
				assert.Equal(t, 25, cfg.Model.MaxIterations)
				assert.Equal(t, LabelRuleNatural, cfg.Evaluation.LabelRule)
				assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"Lead_Time_Buffer_Days", "Base_Lead_Time_Days"}, cfg.Pipeline.ExcludeFeatures)
			},
		},
		{
			name: "file overrides defaults",
			yaml: "pipeline:\n  seed: 99\n  train_fraction: 0.6\nfinance:\n  prevention_cost: 100\n  late_loss: 200\n",
			setupEnv: func() {},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(99), cfg.Pipeline.Seed)
				assert.Equal(t, 0.6, cfg.Pipeline.TrainFraction)
				assert.Equal(t, 0.5, cfg.Pipeline.ValFractionOfRemainder)
				assert.Equal(t, int64(100), cfg.Finance.PreventionCost)
			},
		},
		{
			name: "env wins over file",
			yaml: "pipeline:\n  seed: 99\n",
			setupEnv: func() {
				os.Setenv("SHIPRISK_PIPELINE_SEED", "5")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, int64(5), cfg.Pipeline.Seed)
			},
		},
		{
			name: "invalid label rule",
			setupEnv: func() {
				os.Setenv("SHIPRISK_EVALUATION_LABEL_RULE", "sideways")
			},
			wantErr: true,
		},
		{
			name: "invalid store backend",
			setupEnv: func() {
				os.Setenv("SHIPRISK_STORE_BACKEND", "redis")
			},
			wantErr: true,
		},
		{
			name:     "late loss below prevention cost",
			yaml:     "finance:\n  prevention_cost: 500\n  late_loss: 100\n",
			setupEnv: func() {},
			wantErr:  true,
		},
		{
			name:     "malformed yaml",
			yaml:     "pipeline: [unterminated\n",
			setupEnv: func() {},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range keys {
				os.Unsetenv(k)
			}
			tt.setupEnv()

			path := ""
			if tt.yaml != "" {
				path = filepath.Join(t.TempDir(), "shiprisk.yaml")
				require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Paths.Input = filepath.Join(dir, "in.xlsx")
	cfg.Paths.ArtifactsDir = filepath.Join(dir, "artifacts")
	cfg.Paths.ReportsDir = filepath.Join(dir, "reports")
	cfg.Logging.FilePath = filepath.Join(dir, "logs", "run.log")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "logs"), paths.LogsDir)

	require.NoError(t, paths.EnsureDirectories())
	for _, d := range []string{paths.ArtifactsDir, paths.ReportsDir, paths.LogsDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(dir, "reports", "report.xlsx"), paths.ReportPath("report.xlsx"))
}
