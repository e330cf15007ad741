package debug

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shading:\n  logScripts: false\n  validate: true\n"), 0o644))

	s := NewStore()
	require.NoError(t, LoadYAML(s, path))
	assert.True(t, s.Bool(PathShadingValidate))
	assert.False(t, s.Bool(PathShadingLogScripts))

	// nested YAML maps stay writable in place
	s.Set("shading.extra", 1)
	assert.Equal(t, 1, s.Get("shading.extra"))
}

func TestLoadYAMLMissingFile(t *testing.T) {
	err := LoadYAML(NewStore(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestMarshalYAML(t *testing.T) {
	s := NewStore()
	s.Set(PathShadingValidate, true)
	out, err := MarshalYAML(s)
	require.NoError(t, err)
	assert.Equal(t, "shading:\n    validate: true\n", string(out))
}

func TestWatchReloadsAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "debug.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shading:\n  validate: false\n"), 0o644))

	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s, path, nil) }()

	// give the watcher time to register before writing
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("shading:\n  validate: true\n"), 0o644)
		return s.Bool(PathShadingValidate)
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
