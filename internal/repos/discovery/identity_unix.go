//go:build unix

package discovery

import "golang.org/x/sys/unix"

// ResolveDirectoryIdentity returns the device and inode of directoryPath, following symbolic links.
func ResolveDirectoryIdentity(directoryPath string) (DirectoryIdentity, error) {
	var fileStatus unix.Stat_t
	if statError := unix.Stat(directoryPath, &fileStatus); statError != nil {
		return DirectoryIdentity{}, statError
	}
	return DirectoryIdentity{Device: uint64(fileStatus.Dev), Inode: uint64(fileStatus.Ino)}, nil
}
