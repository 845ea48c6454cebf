package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations for one run
type Paths struct {
	Input        string
	ArtifactsDir string
	ReportsDir   string
	LogsDir      string
	BadgerDir    string
}

// ResolvePaths turns the configured paths into absolute paths
func (c *Config) ResolvePaths() (*Paths, error) {
	abs := func(p string) (string, error) {
		if p == "" {
			return "", nil
		}
		return filepath.Abs(p)
	}

	var (
		p   Paths
		err error
	)
	if p.Input, err = abs(c.Paths.Input); err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	if p.ArtifactsDir, err = abs(c.Paths.ArtifactsDir); err != nil {
		return nil, fmt.Errorf("resolve artifacts dir: %w", err)
	}
	if p.ReportsDir, err = abs(c.Paths.ReportsDir); err != nil {
		return nil, fmt.Errorf("resolve reports dir: %w", err)
	}
	if p.BadgerDir, err = abs(c.Store.BadgerPath); err != nil {
		return nil, fmt.Errorf("resolve badger path: %w", err)
	}
	if c.Logging.FilePath != "" {
		logFile, err := abs(c.Logging.FilePath)
		if err != nil {
			return nil, fmt.Errorf("resolve log file: %w", err)
		}
		p.LogsDir = filepath.Dir(logFile)
	}
	return &p, nil
}

// EnsureDirectories creates all output directories
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ArtifactsDir, p.ReportsDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ReportPath returns a file path inside the reports directory
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPathResolution logs every resolved path at debug level
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("input", p.Input),
		slog.String("artifacts_dir", p.ArtifactsDir),
		slog.String("reports_dir", p.ReportsDir),
		slog.String("logs_dir", p.LogsDir),
		slog.String("badger_dir", p.BadgerDir))
}
