//go:build unix

package ringlog_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cerrors "github.com/abdoElHodaky/tradsys-core/internal/common/errors"
	"github.com/abdoElHodaky/tradsys-core/internal/config"
	"github.com/abdoElHodaky/tradsys-core/internal/ringlog"
)

func openTestLog(t *testing.T, sizeMB int) *ringlog.Log {
	t.Helper()
	cfg := config.RingLogConfig{
		FilePath: filepath.Join(t.TempDir(), "ring.dat"),
		SizeMB:   sizeMB,
	}
	l, err := ringlog.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestOpenRejectsNonPowerOfTwoSize(t *testing.T) {
	cfg := config.RingLogConfig{FilePath: filepath.Join(t.TempDir(), "ring.dat"), SizeMB: 3}
	_, err := ringlog.Open(cfg, zap.NewNop())
	assert.True(t, cerrors.Is(err, cerrors.InvalidArgument))
}

func TestAppendRoundTrip(t *testing.T) {
	l := openTestLog(t, 1)

	payload := []byte("hello ring log")
	pos, err := l.Append(payload)
	require.NoError(t, err)

	got, err := l.ReadAt(pos, len(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestAppendRejectsOversizeRecord(t *testing.T) {
	l := openTestLog(t, 1)
	sizeBytes := 1 * 1024 * 1024
	_, err := l.Append(make([]byte, sizeBytes/4+1))
	assert.True(t, cerrors.Is(err, cerrors.CapacityExceeded))
}

func TestBufferFullWithoutReaderAdvance(t *testing.T) {
	l := openTestLog(t, 1) // 1 MiB ring
	chunk := make([]byte, 4096)

	var lastErr error
	for i := 0; i < 400; i++ {
		_, lastErr = l.Append(chunk)
		if lastErr != nil {
			break
		}
	}
	require.Error(t, lastErr)
	assert.True(t, cerrors.Is(lastErr, cerrors.BufferFull))
}

func TestWrapCorrectness(t *testing.T) {
	l := openTestLog(t, 1) // 1 MiB
	chunk := make([]byte, 4096)
	for i := range chunk {
		chunk[i] = byte(i)
	}

	// Fill and drain repeatedly so cursors advance past the ring size
	// multiple times, then confirm reads at wrapped positions are
	// correct for the bytes most recently written there.
	var lastPos uint64
	for round := 0; round < 5; round++ {
		for i := 0; i < 256; i++ {
			pos, err := l.Append(chunk)
			require.NoError(t, err)
			lastPos = pos
		}
		l.AdvanceRead(256 * uint64(len(chunk)))
	}

	got, err := l.ReadAt(lastPos, len(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, got)
}

func TestBatchAppendSingleReservation(t *testing.T) {
	l := openTestLog(t, 1)
	items := [][]byte{[]byte("aaa"), []byte("bb"), []byte("c")}

	positions, err := l.BatchAppend(items)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	for i, item := range items {
		got, err := l.ReadAt(positions[i], len(item))
		require.NoError(t, err)
		assert.Equal(t, item, got)
	}
}

func TestStatsReportsTotalBytesWritten(t *testing.T) {
	l := openTestLog(t, 1)
	sizes := []int{4096, 4096, 4096}
	total := 0
	for _, sz := range sizes {
		_, err := l.Append(make([]byte, sz))
		require.NoError(t, err)
		total += sz
	}

	stats := l.Stats()
	assert.Equal(t, uint64(total), stats.BytesWritten)
	assert.Equal(t, uint64(len(sizes)), stats.Writes)
}

func TestReservationDisjointnessUnderConcurrency(t *testing.T) {
	l := openTestLog(t, 4)
	const producers = 8
	const perProducer = 50
	chunk := 128

	var wg sync.WaitGroup
	positions := make([][]uint64, producers)
	for p := 0; p < producers; p++ {
		p := p
		positions[p] = make([]uint64, 0, perProducer)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				pos, err := l.Append(make([]byte, chunk))
				if err == nil {
					positions[p] = append(positions[p], pos)
				}
			}
		}()
	}
	wg.Wait()

	seen := map[uint64]bool{}
	for _, ps := range positions {
		for _, pos := range ps {
			assert.False(t, seen[pos], "position %d reserved twice", pos)
			seen[pos] = true
		}
	}
}
