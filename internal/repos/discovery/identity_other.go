//go:build !unix

package discovery

import "path/filepath"

// ResolveDirectoryIdentity returns the symlink-resolved absolute path of directoryPath.
func ResolveDirectoryIdentity(directoryPath string) (DirectoryIdentity, error) {
	resolvedPath, resolveError := filepath.EvalSymlinks(directoryPath)
	if resolveError != nil {
		return DirectoryIdentity{}, resolveError
	}
	absolutePath, absoluteError := filepath.Abs(resolvedPath)
	if absoluteError != nil {
		return DirectoryIdentity{}, absoluteError
	}
	return DirectoryIdentity{Path: absolutePath}, nil
}
