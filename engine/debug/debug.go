// Package debug holds the hierarchical debug configuration of a render session.
// Values are addressed by dotted paths such as "shading.validate".
package debug

import (
	"fmt"
	"strings"
	"sync"
)

// Well-known configuration paths read by the engine backends.
const (
	// PathShadingValidate enables hook and fragment validation before program assembly.
	PathShadingValidate = "shading.validate"

	// PathShadingLogScripts enables logging of every assembled shader source.
	PathShadingLogScripts = "shading.logScripts"
)

// Configs is one level of the configuration tree. Values are either nested Configs or leaves.
type Configs map[string]any

// ConfigurationError reports malformed arguments passed to SetConfigs.
type ConfigurationError struct {
	// Args is the number of arguments that were supplied.
	Args int

	// Reason describes what was wrong with them.
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("debug: illegal arguments (%d given): %s", e.Args, e.Reason)
}

// store is the implementation of the Store interface.
type store struct {
	mu      sync.RWMutex
	configs Configs
}

// Store is a debug configuration tree. Reads of absent paths return an empty Configs
// rather than failing. A Store is safe for concurrent use.
type Store interface {
	// Get returns the value at path. An empty path returns the whole tree. If any
	// segment is missing, Get returns an empty Configs.
	//
	// Parameters:
	//   - path: dotted path, or "" for the root
	//
	// Returns:
	//   - any: the nested Configs or leaf value stored at path
	Get(path string) any

	// Set stores data at path. An empty path replaces the whole tree, in which case data
	// must be a Configs (or map[string]any); other values reset the tree to empty.
	// Missing intermediate segments are created as Configs; existing intermediate
	// Configs are kept, while intermediate leaves are replaced by Configs.
	//
	// Parameters:
	//   - path: dotted path, or "" for the root
	//   - data: the value to store
	Set(path string, data any)

	// SetConfigs accepts either a single tree that replaces the root, or a (path, value)
	// pair. Any other argument shape returns a *ConfigurationError.
	//
	// Parameters:
	//   - args: (Configs) or (string, any)
	//
	// Returns:
	//   - error: *ConfigurationError if the arguments are malformed
	SetConfigs(args ...any) error

	// Bool reports whether the leaf at path is the boolean true.
	//
	// Parameters:
	//   - path: dotted path to a leaf
	//
	// Returns:
	//   - bool: true only if a bool true is stored at path
	Bool(path string) bool
}

var _ Store = &store{}

// NewStore creates an empty Store.
//
// Returns:
//   - Store: the newly created store
func NewStore() Store {
	return &store{configs: Configs{}}
}

func (s *store) Get(path string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(path)
}

func (s *store) get(path string) any {
	if path == "" {
		return s.configs
	}
	var cur any = s.configs
	for _, part := range strings.Split(path, ".") {
		level, ok := asConfigs(cur)
		if !ok {
			return Configs{}
		}
		next, ok := level[part]
		if !ok || next == nil {
			return Configs{}
		}
		cur = next
	}
	return cur
}

func (s *store) Set(path string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set(path, data)
}

func (s *store) set(path string, data any) {
	if path == "" {
		root, ok := asConfigs(data)
		if !ok || root == nil {
			root = Configs{}
		}
		s.configs = root
		return
	}
	parts := strings.Split(path, ".")
	cfg := s.configs
	for _, name := range parts[:len(parts)-1] {
		sub, ok := asConfigs(cfg[name])
		if !ok || sub == nil {
			sub = Configs{}
			cfg[name] = sub
		}
		cfg = sub
	}
	cfg[parts[len(parts)-1]] = data
}

func (s *store) SetConfigs(args ...any) error {
	switch len(args) {
	case 1:
		root, ok := asConfigs(args[0])
		if !ok {
			return &ConfigurationError{Args: 1, Reason: fmt.Sprintf("expected a configuration tree, got %T", args[0])}
		}
		s.Set("", root)
		return nil
	case 2:
		path, ok := args[0].(string)
		if !ok {
			return &ConfigurationError{Args: 2, Reason: fmt.Sprintf("expected a string path, got %T", args[0])}
		}
		s.Set(path, args[1])
		return nil
	default:
		return &ConfigurationError{Args: len(args), Reason: "should be either (path, value) or (tree)"}
	}
}

func (s *store) Bool(path string) bool {
	v, ok := s.Get(path).(bool)
	return ok && v
}

// asConfigs views v as a Configs when it is one of the map shapes a tree level can take.
func asConfigs(v any) (Configs, bool) {
	switch m := v.(type) {
	case Configs:
		return m, true
	case map[string]any:
		return Configs(m), true
	default:
		return nil, false
	}
}
