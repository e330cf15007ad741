package debug

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOnEmptyStoreReturnsEmptyConfigs(t *testing.T) {
	s := NewStore()
	assert.Equal(t, Configs{}, s.Get("a.b"))
	assert.Equal(t, Configs{}, s.Get(""))
}

func TestSetThenGetRoundTrip(t *testing.T) {
	paths := []string{"a", "a.b", "x.y.z", "shading.logScripts"}
	for _, p := range paths {
		s := NewStore()
		s.Set(p, 42)
		assert.Equal(t, 42, s.Get(p), p)
	}
}

func TestSetCreatesIntermediateConfigs(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.SetConfigs(PathShadingValidate, true))
	assert.Equal(t, Configs{"validate": true}, s.Get("shading"))
}

func TestSetKeepsExistingIntermediateConfigs(t *testing.T) {
	s := NewStore()
	s.Set(PathShadingValidate, true)
	s.Set(PathShadingLogScripts, false)

	assert.Equal(t, Configs{"validate": true, "logScripts": false}, s.Get("shading"))
}

func TestSetReplacesIntermediateLeaf(t *testing.T) {
	s := NewStore()
	s.Set("shading", "off")
	s.Set(PathShadingValidate, true)
	assert.True(t, s.Bool(PathShadingValidate))
}

func TestGetThroughLeafReturnsEmpty(t *testing.T) {
	s := NewStore()
	s.Set("a", 1)
	assert.Equal(t, Configs{}, s.Get("a.b"))
}

func TestSetConfigsRootReplace(t *testing.T) {
	s := NewStore()
	s.Set("old", 1)
	require.NoError(t, s.SetConfigs(Configs{
		"shading": map[string]any{"logScripts": false, "validate": true},
	}))

	assert.Equal(t, Configs{}, s.Get("old"))
	assert.True(t, s.Bool(PathShadingValidate))
	assert.False(t, s.Bool(PathShadingLogScripts))
}

func TestSetConfigsArity(t *testing.T) {
	s := NewStore()
	for _, args := range [][]any{{}, {"a", 1, 2}, {42}, {1, true}} {
		err := s.SetConfigs(args...)
		var cfgErr *ConfigurationError
		require.True(t, errors.As(err, &cfgErr), "args %v", args)
		assert.Equal(t, len(args), cfgErr.Args)
	}
}

func TestBoolIgnoresNonBool(t *testing.T) {
	s := NewStore()
	s.Set("shading.validate", "yes")
	assert.False(t, s.Bool(PathShadingValidate))
	assert.False(t, s.Bool("missing.path"))
}
