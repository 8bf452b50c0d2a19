// Package divergence reports local branches of a repository that differ from
// their remote counterparts, either through tracking annotations or through
// range queries against reference branches.
package divergence
