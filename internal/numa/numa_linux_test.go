//go:build linux

package numa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCPUListRangesAndSingles(t *testing.T) {
	cpus, err := parseCPUList("0-3,8-11")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 8, 9, 10, 11}, cpus)

	cpus, err = parseCPUList("0,2,4,6")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 4, 6}, cpus)
}

func TestParseCPUListRejectsMalformedRange(t *testing.T) {
	_, err := parseCPUList("0-3-5")
	assert.Error(t, err)
}

func TestParseMemInfoExtractsGB(t *testing.T) {
	content := "Node 0 MemTotal:       16777216 kB\nNode 0 MemFree:        1000 kB\n"
	gb := parseMemInfo(content)
	assert.InDelta(t, 16.0, gb, 0.01)
}

func TestParseMemInfoMissingLineReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, parseMemInfo("nothing here"))
}
