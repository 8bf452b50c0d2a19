package discovery

import "path/filepath"

// DirectoryIdentity identifies a directory independently of the path used to reach it.
type DirectoryIdentity struct {
	Device uint64
	Inode  uint64
	Path   string
}

// IdentityResolver computes the identity of a directory.
type IdentityResolver func(directoryPath string) (DirectoryIdentity, error)

// VisitedSet records directories seen during one traversal pass.
type VisitedSet struct {
	identities map[DirectoryIdentity]struct{}
	resolver   IdentityResolver
}

// NewVisitedSet constructs an empty set using the platform identity resolver.
func NewVisitedSet() *VisitedSet {
	return NewVisitedSetWithResolver(ResolveDirectoryIdentity)
}

// NewVisitedSetWithResolver constructs an empty set using resolver.
func NewVisitedSetWithResolver(resolver IdentityResolver) *VisitedSet {
	if resolver == nil {
		resolver = ResolveDirectoryIdentity
	}
	return &VisitedSet{identities: make(map[DirectoryIdentity]struct{}), resolver: resolver}
}

// MarkVisited records directoryPath and reports whether it was new to the set.
// Directories whose identity cannot be resolved fall back to their cleaned path.
func (set *VisitedSet) MarkVisited(directoryPath string) bool {
	identity, resolveError := set.resolver(directoryPath)
	if resolveError != nil {
		identity = DirectoryIdentity{Path: filepath.Clean(directoryPath)}
	}

	if _, alreadyVisited := set.identities[identity]; alreadyVisited {
		return false
	}
	set.identities[identity] = struct{}{}
	return true
}

// Len returns the number of distinct directories recorded.
func (set *VisitedSet) Len() int {
	return len(set.identities)
}
