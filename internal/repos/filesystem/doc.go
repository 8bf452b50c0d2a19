// Package filesystem abstracts the read-only directory access shared by the
// repository walker and the ignored-files scanner.
package filesystem
