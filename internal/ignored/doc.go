// Package ignored lists files and directories inside a repository that match
// its ignore rules and would therefore be lost without a separate backup.
package ignored
