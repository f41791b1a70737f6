package utils

import (
	"os"
	"path/filepath"
)

// GetMediaStoragePath returns the storage directory for the given media
// subfolder, creating it on first use.
func GetMediaStoragePath(basePath, subfolder string) string {
	path := filepath.Join(basePath, subfolder)
	_ = os.MkdirAll(path, 0o755)
	return path
}
