// Package pathutils resolves the scan base directory and renders discovered
// paths relative to it for display.
package pathutils
