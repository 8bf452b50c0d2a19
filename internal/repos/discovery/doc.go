// Package discovery walks a directory tree looking for git repository roots.
//
// Walker descends depth-first with a per-pass VisitedSet so that symbolic link
// cycles terminate; directory identity is device and inode on unix systems.
package discovery
