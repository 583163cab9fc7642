package termlink

import (
	"github.com/bft-labs/termlink/pkg/framebuf"
	"github.com/bft-labs/termlink/pkg/log"
)

// Version information for the termlink module.
const (
	// Version is the current version of the termlink module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersions returns the versions of termlink and its sub-modules.
func ModuleVersions() map[string]string {
	return map[string]string{
		"termlink": Version,
		"framebuf": framebuf.Version,
		"log":      log.Version,
	}
}

// CompatibilityMatrix returns the minimum compatible version of each module.
func CompatibilityMatrix() map[string]string {
	return map[string]string{
		"termlink": MinCompatibleVersion,
		"framebuf": framebuf.MinCompatibleVersion,
		"log":      log.MinCompatibleVersion,
	}
}
