// Package paths provides standardized filesystem paths.
//
// All durable shell state lives under a single data root so the renderer,
// the shell service, and packaging scripts agree on the directory layout.
// The SHELL_DATA_DIR environment variable overrides the per-user default.
//
// # Directory Structure
//
//	<data root>/
//	  ├── snapshots/     (saved shell sessions)
//	  ├── logs/          (rolling log files)
//	  ├── settings.json  (user settings)
//	  └── rules.yaml     (classifier rules)
//
// # Usage
//
//	import "github.com/ladyblueumd/url-opener-v2/internal/shared/paths"
//
//	root, err := paths.Root()
//	if err != nil {
//	    return err
//	}
//	tree := paths.NewTree(root)
//	if err := tree.Ensure(); err != nil {
//	    return err
//	}
//	snapDir := tree.Snapshots()
package paths
