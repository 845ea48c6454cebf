package contracts

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, ArtifactFormatVersion, info.ArtifactFormat)

	full := GetFullVersionString()
	assert.True(t, strings.HasPrefix(full, Version+" "))
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
