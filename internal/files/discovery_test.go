package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiprisk/internal/errors"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestFindInputFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	touch(t, dir, "march.xlsx", base.Add(2*time.Hour))
	touch(t, dir, "feb.CSV", base.Add(time.Hour))
	touch(t, dir, "notes.txt", base)
	touch(t, dir, "~$march.xlsx", base.Add(3*time.Hour))
	touch(t, dir, ".hidden.csv", base.Add(3*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.csv"), 0755))

	found, err := NewDiscovery("").FindInputFiles(dir)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "feb.CSV", found[0].Name)
	assert.Equal(t, "march.xlsx", found[1].Name)

	_, err = NewDiscovery("").FindInputFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	older := touch(t, dir, "a.csv", base)
	newer := touch(t, dir, "b.xlsx", base.Add(time.Minute))
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0755))

	tests := []struct {
		name     string
		basePath string
		input    string
		want     string
		wantType errors.ErrorType
	}{
		{name: "file passes through", input: older, want: older},
		{name: "directory picks latest", input: dir, want: newer},
		{name: "relative to base", basePath: dir, input: "a.csv", want: older},
		{name: "empty path", input: "", wantType: errors.ErrTypeConfig},
		{name: "missing path", input: filepath.Join(dir, "nope.csv"), wantType: errors.ErrTypeIO},
		{name: "no candidates", input: empty, wantType: errors.ErrTypeIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDiscovery(tt.basePath).ResolveInput(tt.input)
			if tt.wantType != "" {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, tt.wantType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetLatestFile(t *testing.T) {
	_, ok := GetLatestFile(nil)
	assert.False(t, ok)

	now := time.Now()
	latest, ok := GetLatestFile([]FileInfo{
		{Name: "a", ModTime: now},
		{Name: "b", ModTime: now.Add(time.Second)},
		{Name: "c", ModTime: now.Add(time.Second)},
	})
	require.True(t, ok)
	assert.Equal(t, "c", latest.Name)
}

func TestIsInputFile(t *testing.T) {
	assert.True(t, IsInputFile("x.XLSX"))
	assert.True(t, IsInputFile("x.xlsm"))
	assert.True(t, IsInputFile("x.csv"))
	assert.False(t, IsInputFile("x.xls"))
	assert.False(t, IsInputFile("x"))
}
