// Package version checks that the installed git release is recent enough.
package version
