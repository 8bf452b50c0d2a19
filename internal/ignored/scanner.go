package ignored

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/execshell"
	"github.com/temirov/gitdiverge/internal/repos/discovery"
	"github.com/temirov/gitdiverge/internal/repos/filesystem"
	"github.com/temirov/gitdiverge/internal/repos/shared"
)

const (
	gitCheckIgnoreSubcommandConstant            = "check-ignore"
	gitStandardInputFlagConstant                = "--stdin"
	gitNullTerminatedFlagConstant               = "-z"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	checkIgnoreMatchedExitCodeConstant          = 0
	checkIgnoreUnmatchedExitCodeConstant        = 1
	nameSeparatorConstant                       = "\x00"
	ignoredEntryTemplateConstant                = "Ignored: %s"
	fatalErrorMessageConstant                   = "Fatal error"
	fileSystemMissingMessageConstant            = "file system not configured"
	executorMissingMessageConstant              = "git executor not configured"
	reporterMissingMessageConstant              = "finding reporter not configured"
	scanningDirectoryMessageConstant            = "scanning directory for ignored entries"
	directoryAlreadyScannedMessageConstant      = "directory already scanned"
	directoryListFailureMessageConstant         = "unable to list directory"
	ignoreCheckFailedMessageConstant            = "ignore check failed"
	emptyIgnoredDirectoryMessageConstant        = "skipping empty ignored directory"
	nestedRepositoryMessageConstant             = "skipping nested repository"
	logFieldDirectoryConstant                   = "directory"
	logFieldEntryConstant                       = "entry"
	logFieldErrorConstant                       = "error"
)

// ErrFileSystemNotConfigured indicates NewScanner received a nil file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrGitExecutorNotConfigured indicates NewScanner received a nil executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrReporterNotConfigured indicates NewScanner received a nil reporter.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Dependencies wires the collaborators used by Scanner.
type Dependencies struct {
	FileSystem       filesystem.FileSystem
	GitExecutor      shared.GitExecutor
	Reporter         shared.Reporter
	Logger           *zap.Logger
	IdentityResolver discovery.IdentityResolver
}

// Scanner lists entries of a repository that match its ignore rules.
type Scanner struct {
	fileSystem       filesystem.FileSystem
	executor         shared.GitExecutor
	reporter         shared.Reporter
	logger           *zap.Logger
	identityResolver discovery.IdentityResolver
	excludedNames    map[string]struct{}
}

// NewScanner constructs a Scanner that never lists or descends into excludedNames.
func NewScanner(dependencies Dependencies, excludedNames []string) (*Scanner, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	identityResolver := dependencies.IdentityResolver
	if identityResolver == nil {
		identityResolver = discovery.ResolveDirectoryIdentity
	}

	excludedNameSet := make(map[string]struct{}, len(excludedNames))
	for _, excludedName := range excludedNames {
		trimmedName := strings.TrimSpace(excludedName)
		if len(trimmedName) > 0 {
			excludedNameSet[trimmedName] = struct{}{}
		}
	}

	return &Scanner{
		fileSystem:       dependencies.FileSystem,
		executor:         dependencies.GitExecutor,
		reporter:         dependencies.Reporter,
		logger:           logger,
		identityResolver: identityResolver,
		excludedNames:    excludedNameSet,
	}, nil
}

// Scan walks repositoryPath and reports ignored files and non-empty ignored
// directories. Ignored directories and nested repositories are not descended
// into; nested repositories are scanned on their own.
func (scanner *Scanner) Scan(executionContext context.Context, repositoryPath string) {
	visitedSet := discovery.NewVisitedSetWithResolver(scanner.identityResolver)
	scanner.scanDirectory(executionContext, filepath.Clean(repositoryPath), visitedSet)
}

func (scanner *Scanner) scanDirectory(executionContext context.Context, directoryPath string, visitedSet *discovery.VisitedSet) {
	if executionContext.Err() != nil {
		return
	}
	if !visitedSet.MarkVisited(directoryPath) {
		scanner.logger.Debug(directoryAlreadyScannedMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath))
		return
	}
	scanner.logger.Debug(scanningDirectoryMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath))

	entries, listError := filesystem.ListEntries(scanner.fileSystem, directoryPath)
	if listError != nil {
		scanner.logger.Debug(directoryListFailureMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath), zap.Error(listError))
		return
	}

	candidates := make([]filesystem.Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == discovery.GitMetadataDirectoryName {
			continue
		}
		if _, excluded := scanner.excludedNames[entry.Name]; excluded {
			continue
		}
		candidates = append(candidates, entry)
	}

	ignoredNames := scanner.matchIgnored(executionContext, directoryPath, candidates)
	for _, candidate := range candidates {
		if _, isIgnored := ignoredNames[candidate.Name]; !isIgnored {
			continue
		}
		if candidate.IsDirectory && filesystem.IsEmptyDirectory(scanner.fileSystem, filepath.Join(directoryPath, candidate.Name)) {
			scanner.logger.Debug(emptyIgnoredDirectoryMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath), zap.String(logFieldEntryConstant, candidate.Name))
			continue
		}
		scanner.reporter.Report(directoryPath, fmt.Sprintf(ignoredEntryTemplateConstant, candidate.Name))
	}

	for _, candidate := range candidates {
		if !candidate.IsDirectory {
			continue
		}
		if _, isIgnored := ignoredNames[candidate.Name]; isIgnored {
			continue
		}
		childPath := filepath.Join(directoryPath, candidate.Name)
		if discovery.IsRepositoryRoot(scanner.fileSystem, childPath) {
			scanner.logger.Debug(nestedRepositoryMessageConstant, zap.String(logFieldDirectoryConstant, childPath))
			continue
		}
		scanner.scanDirectory(executionContext, childPath, visitedSet)
	}
}

// matchIgnored pipes NUL-terminated candidate names to `git check-ignore -z --stdin`
// run inside directoryPath, so git never quotes them. Exit code 1 means nothing
// matched; any other failure is reported once for the directory and treated as
// nothing matched.
func (scanner *Scanner) matchIgnored(executionContext context.Context, directoryPath string, candidates []filesystem.Entry) map[string]struct{} {
	ignoredNames := make(map[string]struct{})
	if len(candidates) == 0 {
		return ignoredNames
	}

	candidateNames := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		candidateNames = append(candidateNames, candidate.Name)
	}

	executionResult, executionError := scanner.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            []string{gitCheckIgnoreSubcommandConstant, gitNullTerminatedFlagConstant, gitStandardInputFlagConstant},
		WorkingDirectory:     directoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
		StandardInput:        []byte(strings.Join(candidateNames, nameSeparatorConstant) + nameSeparatorConstant),
	})
	if executionError != nil {
		exitCode, hasExitCode := execshell.ExitCode(executionError)
		if hasExitCode && exitCode == checkIgnoreUnmatchedExitCodeConstant {
			return ignoredNames
		}
		scanner.logger.Debug(ignoreCheckFailedMessageConstant, zap.String(logFieldDirectoryConstant, directoryPath), zap.NamedError(logFieldErrorConstant, executionError))
		scanner.reporter.Report(directoryPath, fatalErrorMessageConstant)
		return ignoredNames
	}
	if executionResult.ExitCode != checkIgnoreMatchedExitCodeConstant {
		scanner.reporter.Report(directoryPath, fatalErrorMessageConstant)
		return ignoredNames
	}

	for _, ignoredName := range strings.Split(executionResult.StandardOutput, nameSeparatorConstant) {
		if len(ignoredName) > 0 {
			ignoredNames[ignoredName] = struct{}{}
		}
	}
	return ignoredNames
}
