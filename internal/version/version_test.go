package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	t.Parallel()
	info := Info{Version: "1.2.3", CommitHash: "abc1234", GoVersion: "go1.24.0", Platform: "linux/amd64"}
	s := info.String()
	assert.True(t, strings.HasPrefix(s, "refitgen 1.2.3"))
	assert.Contains(t, s, "abc1234")
	assert.Contains(t, s, "linux/amd64")
}

func TestGet_DefaultsToDev(t *testing.T) {
	t.Parallel()
	assert.Equal(t, Version, Get().Version)
	assert.NotEmpty(t, Get().GoVersion)
}
