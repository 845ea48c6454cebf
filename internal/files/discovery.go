package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shiprisk/internal/errors"
)

// InputExtensions lists the file types the parser accepts
var InputExtensions = []string{".xlsx", ".xlsm", ".csv"}

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds input files relative to a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

// FindInputFiles lists workbook and CSV files in dir, oldest first.
// Office lock files ("~$name.xlsx") and hidden files are skipped.
func (d *Discovery) FindInputFiles(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var found []FileInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "~$") || strings.HasPrefix(name, ".") {
			continue
		}
		if !IsInputFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		found = append(found, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].ModTime.Equal(found[j].ModTime) {
			return found[i].Name < found[j].Name
		}
		return found[i].ModTime.Before(found[j].ModTime)
	})
	return found, nil
}

// ResolveInput returns path itself when it names a file, or the latest
// input file when it names a directory.
func (d *Discovery) ResolveInput(path string) (string, error) {
	if path == "" {
		return "", errors.NewConfigError("no input file configured (paths.input)", nil)
	}
	fullPath := d.resolve(path)

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", errors.NewIOError("input not accessible", err).WithContext("path", fullPath)
	}
	if !info.IsDir() {
		return fullPath, nil
	}

	candidates, err := d.FindInputFiles(fullPath)
	if err != nil {
		return "", errors.NewIOError("failed to list input directory", err).WithContext("path", fullPath)
	}
	latest, ok := GetLatestFile(candidates)
	if !ok {
		return "", errors.NewIOError(fmt.Sprintf("no %s files in directory", strings.Join(InputExtensions, "/")), nil).
			WithContext("path", fullPath)
	}
	return latest.Path, nil
}

// IsInputFile reports whether name carries a supported extension
func IsInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list.
// Ties go to the later entry.
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if !file.ModTime.Before(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}
