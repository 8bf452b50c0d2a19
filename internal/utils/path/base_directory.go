package pathutils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	baseDirectoryRequiredMessageConstant     = "base directory must be provided"
	baseDirectoryResolveErrorTemplate        = "unable to resolve base directory %q: %w"
	baseDirectoryMissingErrorTemplate        = "base directory %q does not exist: %w"
	baseDirectoryNotDirectoryErrorTemplate   = "base directory %q is not a directory: %w"
	baseDirectoryNotDirectoryMessageConstant = "not a directory"
)

// ErrBaseDirectoryRequired indicates an empty base directory argument.
var ErrBaseDirectoryRequired = errors.New(baseDirectoryRequiredMessageConstant)

// ErrBaseDirectoryNotDirectory indicates the base path exists but is not a directory.
var ErrBaseDirectoryNotDirectory = errors.New(baseDirectoryNotDirectoryMessageConstant)

// BaseDirectoryResolver turns user input into an absolute, unresolved directory path.
type BaseDirectoryResolver struct {
	homeExpander *HomeExpander
}

// NewBaseDirectoryResolver constructs a resolver; a nil expander uses the operating system home directory.
func NewBaseDirectoryResolver(homeExpander *HomeExpander) *BaseDirectoryResolver {
	if homeExpander == nil {
		homeExpander = NewHomeExpander()
	}
	return &BaseDirectoryResolver{homeExpander: homeExpander}
}

// Resolve expands a leading tilde, makes the path absolute and verifies it names a directory.
// Symbolic links are not resolved.
func (resolver *BaseDirectoryResolver) Resolve(rawPath string) (string, error) {
	trimmedPath := strings.TrimSpace(rawPath)
	if len(trimmedPath) == 0 {
		return "", ErrBaseDirectoryRequired
	}

	absolutePath, absoluteError := filepath.Abs(resolver.homeExpander.Expand(trimmedPath))
	if absoluteError != nil {
		return "", fmt.Errorf(baseDirectoryResolveErrorTemplate, trimmedPath, absoluteError)
	}

	fileInfo, statError := os.Stat(absolutePath)
	if statError != nil {
		return "", fmt.Errorf(baseDirectoryMissingErrorTemplate, absolutePath, statError)
	}
	if !fileInfo.IsDir() {
		return "", fmt.Errorf(baseDirectoryNotDirectoryErrorTemplate, absolutePath, ErrBaseDirectoryNotDirectory)
	}

	return absolutePath, nil
}
