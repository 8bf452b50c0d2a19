package filesystem

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// IsDirectory reports whether path names a directory, following symbolic links.
func IsDirectory(fileSystem FileSystem, path string) bool {
	fileInfo, statError := fileSystem.Stat(path)
	if statError != nil {
		return false
	}
	return fileInfo.IsDir()
}

// IsEmptyDirectory reports whether path is a directory without entries.
// Unreadable directories are treated as non-empty.
func IsEmptyDirectory(fileSystem FileSystem, path string) bool {
	entries, readError := fileSystem.ReadDir(path)
	if readError != nil {
		return false
	}
	return len(entries) == 0
}

// ListEntries returns the names of the immediate children of directoryPath together
// with whether each child is a directory (symbolic links to directories count).
func ListEntries(fileSystem FileSystem, directoryPath string) ([]Entry, error) {
	directoryEntries, readError := fileSystem.ReadDir(directoryPath)
	if readError != nil {
		return nil, readError
	}

	entries := make([]Entry, 0, len(directoryEntries))
	for _, directoryEntry := range directoryEntries {
		isDirectory := directoryEntry.IsDir()
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			isDirectory = IsDirectory(fileSystem, filepath.Join(directoryPath, directoryEntry.Name()))
		}
		entries = append(entries, Entry{Name: directoryEntry.Name(), IsDirectory: isDirectory})
	}

	SortEntries(entries)
	return entries, nil
}

// Entry describes one child of a directory.
type Entry struct {
	Name        string
	IsDirectory bool
}

// SortEntries orders entries case-insensitively by name, breaking ties by exact name.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(leftIndex int, rightIndex int) bool {
		leftName := strings.ToLower(entries[leftIndex].Name)
		rightName := strings.ToLower(entries[rightIndex].Name)
		if leftName != rightName {
			return leftName < rightName
		}
		return entries[leftIndex].Name < entries[rightIndex].Name
	})
}
