package pathutils

import (
	"errors"
	"path/filepath"
)

const notASubdirectoryMessageConstant = "path is not a subdirectory of the base directory"

// ErrNotASubdirectory indicates the target path is not nested under the base path.
var ErrNotASubdirectory = errors.New(notASubdirectoryMessageConstant)

// Relativize returns target relative to base without resolving symbolic links,
// so repositories reached through a symlink keep their apparent location.
// Equal paths yield the empty string.
func Relativize(base string, target string) (string, error) {
	cleanBase := filepath.Clean(base)
	remainingPath := filepath.Clean(target)

	var segments []string
	for remainingPath != cleanBase {
		parentPath := filepath.Dir(remainingPath)
		if parentPath == remainingPath {
			return "", ErrNotASubdirectory
		}
		segments = append([]string{filepath.Base(remainingPath)}, segments...)
		remainingPath = parentPath
	}

	return filepath.Join(segments...), nil
}
