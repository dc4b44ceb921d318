package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirName is the data root directory name under the user config dir
const DefaultDirName = "url-opener"

// Data root subdirectories
const (
	SnapshotsDir = "snapshots"
	LogsDir      = "logs"
)

// Data root files
const (
	SettingsFile = "settings.json"
	RulesFile    = "rules.yaml"
)

// Root resolves the shell data root. The SHELL_DATA_DIR environment
// variable overrides the per-user default.
func Root() (string, error) {
	if dir := os.Getenv("SHELL_DATA_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, DefaultDirName), nil
}

// Tree returns filesystem paths within a data root
type Tree struct {
	root string
}

// NewTree creates path helpers rooted at dir
func NewTree(dir string) Tree {
	return Tree{root: dir}
}

// Root returns the data root directory
func (t Tree) Root() string { return t.root }

// Snapshots returns the snapshot directory
func (t Tree) Snapshots() string { return filepath.Join(t.root, SnapshotsDir) }

// Logs returns the log directory
func (t Tree) Logs() string { return filepath.Join(t.root, LogsDir) }

// Settings returns the settings file path
func (t Tree) Settings() string { return filepath.Join(t.root, SettingsFile) }

// Rules returns the rules file path
func (t Tree) Rules() string { return filepath.Join(t.root, RulesFile) }

// Ensure creates the data root and its subdirectories
func (t Tree) Ensure() error {
	for _, dir := range []string{t.root, t.Snapshots(), t.Logs()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// ValidateName checks that a name is safe for path construction
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("name cannot be an absolute path")
	}
	if filepath.Clean(name) != name || filepath.Base(name) != name {
		return fmt.Errorf("name contains invalid path components")
	}
	return nil
}
