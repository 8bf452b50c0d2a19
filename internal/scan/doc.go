// Package scan wires the git version check, the repository walk, divergence
// checks and the optional ignored-file listing into a single cobra command.
package scan
