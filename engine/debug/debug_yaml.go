package debug

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadYAML reads a YAML document from path and replaces the root of s with it.
//
// Parameters:
//   - s: the store to populate
//   - path: the YAML file to read
//
// Returns:
//   - error: error if the file cannot be read or is not a mapping
func LoadYAML(s Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read debug config %s: %w", path, err)
	}
	cfg := Configs{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse debug config %s: %w", path, err)
	}
	return s.SetConfigs(cfg)
}

// MarshalYAML encodes the whole tree of s as YAML.
//
// Parameters:
//   - s: the store to encode
//
// Returns:
//   - []byte: the YAML document
//   - error: error if encoding fails
func MarshalYAML(s Store) ([]byte, error) {
	return yaml.Marshal(s.Get(""))
}

// Watch reloads path into s every time the file is written or re-created, until ctx is
// done. The directory containing path is watched so editors that replace the file on
// save are followed. Reload failures are logged and the previous tree is kept.
//
// Parameters:
//   - ctx: cancels the watch
//   - s: the store to reload
//   - path: the YAML file to follow
//   - logger: receives reload and failure messages (nil for none)
//
// Returns:
//   - error: error if the watcher cannot be created; nil after ctx is done
func Watch(ctx context.Context, s Store, path string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create debug config watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", target, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := LoadYAML(s, target); err != nil {
				logger.Warn("debug config reload failed", zap.String("path", target), zap.Error(err))
				continue
			}
			logger.Info("debug config reloaded", zap.String("path", target))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("debug config watcher error", zap.Error(err))
		}
	}
}
