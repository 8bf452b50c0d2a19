// Package dependencies supplies default collaborators for command builders.
package dependencies
