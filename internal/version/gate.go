package version

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/execshell"
	"github.com/temirov/gitdiverge/internal/repos/shared"
)

const (
	gitVersionFlagConstant             = "--version"
	versionKeywordConstant             = "version"
	versionComponentSeparatorConstant  = "."
	toolNotFoundMessageConstant        = "git executable not found"
	versionUndeterminedMessageConstant = "unable to determine git version"
	unsupportedVersionTemplateConstant = "git version %s is older than the required %s"
	invalidMinimumVersionTemplateConst = "invalid minimum git version %q"
	executorMissingMessageConstant     = "git executor not configured"
	versionVerifiedMessageConstant     = "git version verified"
	logFieldDetectedVersionConstant    = "detected_version"
	logFieldMinimumVersionConstant     = "minimum_version"
	minimumVersionComponentCountConst  = 2
	undeterminedOutputTemplateConstant = "%w: %q"
	toolFailureTemplateConstant        = "%w: %w"
	defaultMinimumMajorVersionConstant = 2
	defaultMinimumMinorVersionConstant = 11
)

// ErrToolNotFound indicates git could not be started.
var ErrToolNotFound = errors.New(toolNotFoundMessageConstant)

// ErrVersionUndetermined indicates `git --version` output could not be parsed.
var ErrVersionUndetermined = errors.New(versionUndeterminedMessageConstant)

// ErrGitExecutorNotConfigured indicates NewGate received a nil executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// DefaultMinimum is the oldest git release whose branch and check-ignore output the scanner understands.
var DefaultMinimum = Version{Major: defaultMinimumMajorVersionConstant, Minor: defaultMinimumMinorVersionConstant}

// Version is a (major, minor) release pair.
type Version struct {
	Major int
	Minor int
}

func (version Version) String() string {
	return fmt.Sprintf("%d.%d", version.Major, version.Minor)
}

// AtLeast compares (major, minor) lexicographically.
func (version Version) AtLeast(minimum Version) bool {
	if version.Major != minimum.Major {
		return version.Major > minimum.Major
	}
	return version.Minor >= minimum.Minor
}

// UnsupportedVersionError reports a git release older than required.
type UnsupportedVersionError struct {
	Detected Version
	Minimum  Version
}

func (unsupportedError *UnsupportedVersionError) Error() string {
	return fmt.Sprintf(unsupportedVersionTemplateConstant, unsupportedError.Detected, unsupportedError.Minimum)
}

// ParseMinimum parses a configured minimum such as "2.11".
func ParseMinimum(raw string) (Version, error) {
	trimmedValue := strings.TrimSpace(raw)
	components := strings.Split(trimmedValue, versionComponentSeparatorConstant)
	if len(components) != minimumVersionComponentCountConst {
		return Version{}, fmt.Errorf(invalidMinimumVersionTemplateConst, raw)
	}
	parsedVersion, parsed := parseComponents(components)
	if !parsed {
		return Version{}, fmt.Errorf(invalidMinimumVersionTemplateConst, raw)
	}
	return parsedVersion, nil
}

// ParseVersionOutput extracts (major, minor) from output shaped like
// "git version 2.39.2" or "git version 2.37.1 (Apple Git-137.1)".
func ParseVersionOutput(output string) (Version, error) {
	outputFields := strings.Fields(output)
	for fieldIndex := 0; fieldIndex+1 < len(outputFields); fieldIndex++ {
		if outputFields[fieldIndex] != versionKeywordConstant {
			continue
		}
		components := strings.Split(outputFields[fieldIndex+1], versionComponentSeparatorConstant)
		if len(components) < minimumVersionComponentCountConst {
			break
		}
		parsedVersion, parsed := parseComponents(components[:minimumVersionComponentCountConst])
		if !parsed {
			break
		}
		return parsedVersion, nil
	}
	return Version{}, fmt.Errorf(undeterminedOutputTemplateConstant, ErrVersionUndetermined, strings.TrimSpace(output))
}

func parseComponents(components []string) (Version, bool) {
	majorVersion, majorError := strconv.Atoi(components[0])
	minorVersion, minorError := strconv.Atoi(components[1])
	if majorError != nil || minorError != nil || majorVersion < 0 || minorVersion < 0 {
		return Version{}, false
	}
	return Version{Major: majorVersion, Minor: minorVersion}, true
}

// Gate verifies the installed git release before any repository is inspected.
type Gate struct {
	executor shared.GitExecutor
	logger   *zap.Logger
	minimum  Version
}

// NewGate constructs a Gate requiring at least minimum.
func NewGate(executor shared.GitExecutor, logger *zap.Logger, minimum Version) (*Gate, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{executor: executor, logger: logger, minimum: minimum}, nil
}

// Verify runs `git --version` and fails when git is missing, its output is
// unrecognized, or the release is older than the configured minimum.
func (gate *Gate) Verify(executionContext context.Context) (Version, error) {
	executionResult, executionError := gate.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments: []string{gitVersionFlagConstant},
	})
	if executionError != nil {
		if isToolMissing(executionError) {
			return Version{}, fmt.Errorf(toolFailureTemplateConstant, ErrToolNotFound, executionError)
		}
		return Version{}, fmt.Errorf(toolFailureTemplateConstant, ErrVersionUndetermined, executionError)
	}

	detectedVersion, parseError := ParseVersionOutput(executionResult.StandardOutput)
	if parseError != nil {
		return Version{}, parseError
	}
	if !detectedVersion.AtLeast(gate.minimum) {
		return detectedVersion, &UnsupportedVersionError{Detected: detectedVersion, Minimum: gate.minimum}
	}

	gate.logger.Debug(versionVerifiedMessageConstant,
		zap.Stringer(logFieldDetectedVersionConstant, detectedVersion),
		zap.Stringer(logFieldMinimumVersionConstant, gate.minimum))
	return detectedVersion, nil
}

func isToolMissing(executionError error) bool {
	if errors.Is(executionError, exec.ErrNotFound) {
		return true
	}
	var commandExecutionError execshell.CommandExecutionError
	return errors.As(executionError, &commandExecutionError)
}
