package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdiverge/internal/repos/filesystem"
)

func TestListEntriesSortsCaseInsensitivelyAndFollowsSymlinks(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, "beta"), 0o755))
	require.NoError(testInstance, os.MkdirAll(filepath.Join(rootDirectory, "Alpha"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(rootDirectory, "charlie.txt"), []byte("c"), 0o600))

	linkCreated := os.Symlink(filepath.Join(rootDirectory, "beta"), filepath.Join(rootDirectory, "Delta")) == nil

	entries, listError := filesystem.ListEntries(filesystem.OSFileSystem{}, rootDirectory)
	require.NoError(testInstance, listError)

	expectedEntries := []filesystem.Entry{
		{Name: "Alpha", IsDirectory: true},
		{Name: "beta", IsDirectory: true},
		{Name: "charlie.txt", IsDirectory: false},
	}
	if linkCreated {
		expectedEntries = append(expectedEntries, filesystem.Entry{Name: "Delta", IsDirectory: true})
	}
	require.Equal(testInstance, expectedEntries, entries)
}

func TestIsEmptyDirectory(testInstance *testing.T) {
	rootDirectory := testInstance.TempDir()
	emptyDirectory := filepath.Join(rootDirectory, "empty")
	populatedDirectory := filepath.Join(rootDirectory, "populated")
	require.NoError(testInstance, os.MkdirAll(emptyDirectory, 0o755))
	require.NoError(testInstance, os.MkdirAll(populatedDirectory, 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(populatedDirectory, "file"), []byte("x"), 0o600))

	fileSystem := filesystem.OSFileSystem{}
	require.True(testInstance, filesystem.IsEmptyDirectory(fileSystem, emptyDirectory))
	require.False(testInstance, filesystem.IsEmptyDirectory(fileSystem, populatedDirectory))
	require.False(testInstance, filesystem.IsEmptyDirectory(fileSystem, filepath.Join(rootDirectory, "missing")))
	require.False(testInstance, filesystem.IsDirectory(fileSystem, filepath.Join(populatedDirectory, "file")))
}
