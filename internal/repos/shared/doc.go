// Package shared holds the collaborators common to the per-repository checks.
package shared
