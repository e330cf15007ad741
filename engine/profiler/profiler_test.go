package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTickSamplesAfterInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	p := NewProfiler(zap.New(core))
	p.SetUpdateInterval(time.Hour)

	assert.False(t, p.Tick())
	assert.Equal(t, Stats{}, p.Last())
	assert.Zero(t, logs.Len())

	p.SetUpdateInterval(time.Nanosecond)
	time.Sleep(time.Millisecond)
	require.True(t, p.Tick())
	assert.Greater(t, p.Last().FPS, 0.0)
	assert.Greater(t, p.Last().SysMB, 0.0)

	entries := logs.FilterMessage("profiler").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap(), "fps")
}

func TestNilLoggerAndIgnoredInterval(t *testing.T) {
	p := NewProfiler(nil)
	p.SetUpdateInterval(0)
	assert.Equal(t, time.Second, p.updateInterval)
	assert.False(t, p.Tick())
}
