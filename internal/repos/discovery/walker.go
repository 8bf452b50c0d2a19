package discovery

import (
	"context"
	"errors"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/repos/filesystem"
)

const (
	// GitMetadataDirectoryName is the control directory that marks a repository root.
	GitMetadataDirectoryName = ".git"

	negativeDepthMessageConstant       = "maximum depth must not be negative"
	directoryListFailureMessage        = "unable to list directory"
	directoryAlreadyVisitedMessage     = "skipping already visited directory"
	repositoryDiscoveredMessage        = "repository discovered"
	depthLimitReachedMessage           = "depth limit reached"
	logFieldDirectoryConstant          = "directory"
	logFieldDepthConstant              = "depth"
	logFieldRepositoryConstant         = "repository"
	logFieldVisitedDirectoriesConstant = "visited_directories"
	walkCompletedMessageConstant       = "directory walk completed"
)

// ErrNegativeDepth indicates NewWalker received a negative maximum depth.
var ErrNegativeDepth = errors.New(negativeDepthMessageConstant)

// RepositoryHandler receives each discovered repository root.
type RepositoryHandler func(executionContext context.Context, repositoryPath string)

// Walker performs depth-first discovery of repository roots.
type Walker struct {
	fileSystem       filesystem.FileSystem
	logger           *zap.Logger
	maxDepth         int
	identityResolver IdentityResolver
}

// NewWalker constructs a Walker descending at most maxDepth levels below the start directory.
func NewWalker(fileSystem filesystem.FileSystem, logger *zap.Logger, maxDepth int) (*Walker, error) {
	if maxDepth < 0 {
		return nil, ErrNegativeDepth
	}
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{fileSystem: fileSystem, logger: logger, maxDepth: maxDepth, identityResolver: ResolveDirectoryIdentity}, nil
}

// WithIdentityResolver replaces the directory identity resolver used for cycle detection.
func (walker *Walker) WithIdentityResolver(resolver IdentityResolver) *Walker {
	if resolver != nil {
		walker.identityResolver = resolver
	}
	return walker
}

// Walk visits startDirectory and its subdirectories, invoking handler on every
// repository root in case-insensitive name order. Repository roots are descended
// into as well, so nested repositories are reported. Each directory is visited at
// most once per call, which keeps symbolic link cycles finite.
func (walker *Walker) Walk(executionContext context.Context, startDirectory string, handler RepositoryHandler) error {
	visitedSet := NewVisitedSetWithResolver(walker.identityResolver)
	walkError := walker.walkDirectory(executionContext, filepath.Clean(startDirectory), 0, visitedSet, handler)
	walker.logger.Debug(walkCompletedMessageConstant, zap.Int(logFieldVisitedDirectoriesConstant, visitedSet.Len()))
	return walkError
}

func (walker *Walker) walkDirectory(executionContext context.Context, directoryPath string, depth int, visitedSet *VisitedSet, handler RepositoryHandler) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	if !visitedSet.MarkVisited(directoryPath) {
		walker.logger.Debug(directoryAlreadyVisitedMessage, zap.String(logFieldDirectoryConstant, directoryPath))
		return nil
	}

	if IsRepositoryRoot(walker.fileSystem, directoryPath) {
		walker.logger.Debug(repositoryDiscoveredMessage, zap.String(logFieldRepositoryConstant, directoryPath), zap.Int(logFieldDepthConstant, depth))
		if handler != nil {
			handler(executionContext, directoryPath)
		}
	}

	if depth >= walker.maxDepth {
		walker.logger.Debug(depthLimitReachedMessage, zap.String(logFieldDirectoryConstant, directoryPath), zap.Int(logFieldDepthConstant, depth))
		return nil
	}

	entries, listError := filesystem.ListEntries(walker.fileSystem, directoryPath)
	if listError != nil {
		walker.logger.Debug(directoryListFailureMessage, zap.String(logFieldDirectoryConstant, directoryPath), zap.Error(listError))
		return nil
	}

	for _, entry := range entries {
		if !entry.IsDirectory || entry.Name == GitMetadataDirectoryName {
			continue
		}
		if walkError := walker.walkDirectory(executionContext, filepath.Join(directoryPath, entry.Name), depth+1, visitedSet, handler); walkError != nil {
			return walkError
		}
	}

	return nil
}

// IsRepositoryRoot reports whether directoryPath directly contains a .git directory.
func IsRepositoryRoot(fileSystem filesystem.FileSystem, directoryPath string) bool {
	return filesystem.IsDirectory(fileSystem, filepath.Join(directoryPath, GitMetadataDirectoryName))
}
