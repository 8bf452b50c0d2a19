package divergence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/execshell"
	"github.com/temirov/gitdiverge/internal/repos/shared"
)

const (
	gitRemoteSubcommandConstant                 = "remote"
	gitRemoteUpdateSubcommandConstant           = "update"
	gitStatusSubcommandConstant                 = "status"
	gitStatusPorcelainFlagConstant              = "--porcelain"
	gitBranchSubcommandConstant                 = "branch"
	gitVerboseFlagConstant                      = "--verbose"
	gitNoAbbreviationFlagConstant               = "--no-abbrev"
	gitNoColorFlagConstant                      = "--no-color"
	gitRemotesFlagConstant                      = "--remotes"
	gitRevListSubcommandConstant                = "rev-list"
	gitLeftOnlyFlagConstant                     = "--left-only"
	gitRightOnlyFlagConstant                    = "--right-only"
	gitSymmetricRangeTemplateConstant           = "%s...%s"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	symbolicReferenceMarkerConstant             = "->"
	lineSeparatorConstant                       = "\n"

	remoteUpdateFailedMessageConstant        = "Could not update remote refs"
	statusFailedMessageConstant              = "Could not determine status"
	dirtyStateMessageConstant                = "State is dirty"
	branchesFailedMessageConstant            = "Could not determine branches"
	remoteMissingMessageConstant             = "No remote repository found"
	branchAheadTemplateConstant              = "Local branch '%s' is ahead"
	branchBehindTemplateConstant             = "Local branch '%s' is behind"
	branchUndeterminedTemplateConstant       = "Cannot determine divergence of local branch '%s'"
	revisionListFailedTemplateConstant       = "Cannot determine rev-list of local branch '%s' against '%s'"
	branchLineUnparsableTemplateConstant     = "Cannot parse branch line %q"
	executorMissingMessageConstant           = "git executor not configured"
	reporterMissingMessageConstant           = "finding reporter not configured"
	checkingRepositoryMessageConstant        = "checking repository divergence"
	skippingDetachedHeadMessageConstant      = "skipping detached head"
	referenceBranchesResolvedMessageConstant = "reference branches resolved"
	branchClassifiedMessageConstant          = "branch classified"
	logFieldRepositoryConstant               = "repository"
	logFieldBranchConstant                   = "branch"
	logFieldStatusConstant                   = "status"
	logFieldReferenceBranchesConstant        = "reference_branches"
	logFieldAheadCountConstant               = "ahead_count"
	logFieldBehindCountConstant              = "behind_count"
	logFieldErrorConstant                    = "error"
	revisionListQueryFailedMessageConstant   = "revision list query failed"
	remoteReferenceListingFailedMessageConst = "remote branch listing failed"
	repositoryCheckAbortedMessageConstant    = "repository check aborted"
	logFieldReasonConstant                   = "reason"
)

// ErrGitExecutorNotConfigured indicates NewChecker received a nil executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrReporterNotConfigured indicates NewChecker received a nil reporter.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// Options controls which divergences are reported.
type Options struct {
	AheadOnly  bool
	BehindOnly bool
	// ReferenceBranches lists substrings selecting remote branches that local
	// branches without a tracking branch are compared against, in order.
	ReferenceBranches []string
}

// Checker inspects one repository at a time and reports divergence findings.
type Checker struct {
	executor shared.GitExecutor
	reporter shared.Reporter
	logger   *zap.Logger
	options  Options
}

// NewChecker constructs a Checker.
func NewChecker(executor shared.GitExecutor, reporter shared.Reporter, logger *zap.Logger, options Options) (*Checker, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if reporter == nil {
		return nil, ErrReporterNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	options.ReferenceBranches = append([]string{}, options.ReferenceBranches...)
	return &Checker{executor: executor, reporter: reporter, logger: logger, options: options}, nil
}

// Check refreshes remote refs of the repository at repositoryPath, verifies the
// working tree is clean and reports every local branch that differs from its
// remote counterpart. Failures become findings and never escape the repository.
func (checker *Checker) Check(executionContext context.Context, repositoryPath string) {
	checker.logger.Debug(checkingRepositoryMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))

	if _, updateError := checker.runGit(executionContext, repositoryPath, gitRemoteSubcommandConstant, gitRemoteUpdateSubcommandConstant); updateError != nil {
		checker.abort(repositoryPath, remoteUpdateFailedMessageConstant, updateError)
		return
	}

	statusOutput, statusError := checker.runGit(executionContext, repositoryPath, gitStatusSubcommandConstant, gitStatusPorcelainFlagConstant)
	if statusError != nil {
		checker.abort(repositoryPath, statusFailedMessageConstant, statusError)
		return
	}
	if len(strings.TrimSpace(statusOutput)) > 0 {
		checker.abort(repositoryPath, dirtyStateMessageConstant, nil)
		return
	}

	branchOutput, branchError := checker.runGit(executionContext, repositoryPath,
		gitBranchSubcommandConstant, gitVerboseFlagConstant, gitVerboseFlagConstant, gitNoAbbreviationFlagConstant, gitNoColorFlagConstant)
	if branchError != nil {
		checker.abort(repositoryPath, branchesFailedMessageConstant, branchError)
		return
	}

	inspection := repositoryInspection{checker: checker, repositoryPath: repositoryPath}
	for _, branchLine := range strings.Split(branchOutput, lineSeparatorConstant) {
		if len(strings.TrimSpace(branchLine)) == 0 {
			continue
		}
		inspection.inspectBranchLine(executionContext, branchLine)
	}
}

func (checker *Checker) abort(repositoryPath string, message string, cause error) {
	fields := []zap.Field{zap.String(logFieldRepositoryConstant, repositoryPath), zap.String(logFieldReasonConstant, message)}
	if cause != nil {
		fields = append(fields, zap.NamedError(logFieldErrorConstant, cause))
	}
	checker.logger.Debug(repositoryCheckAbortedMessageConstant, fields...)
	checker.reporter.Report(repositoryPath, message)
}

func (checker *Checker) runGit(executionContext context.Context, repositoryPath string, arguments ...string) (string, error) {
	executionResult, executionError := checker.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant},
	})
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

// repositoryInspection holds per-repository state, including the lazily
// computed reference branch set.
type repositoryInspection struct {
	checker            *Checker
	repositoryPath     string
	referenceBranches  []string
	referencesResolved bool
}

func (inspection *repositoryInspection) inspectBranchLine(executionContext context.Context, branchLine string) {
	parsedBranch, parseError := ParseBranchLine(branchLine)
	if parseError != nil {
		inspection.report(fmt.Sprintf(branchLineUnparsableTemplateConstant, strings.TrimSpace(branchLine)))
		return
	}

	if parsedBranch.Detached {
		inspection.checker.logger.Debug(skippingDetachedHeadMessageConstant,
			zap.String(logFieldRepositoryConstant, inspection.repositoryPath),
			zap.String(logFieldBranchConstant, parsedBranch.Name))
		return
	}

	if parsedBranch.HasTracking {
		inspection.reportTrackingStatus(parsedBranch.Name, ClassifyTrackingAnnotation(parsedBranch.TrackingAnnotation))
		return
	}

	for _, referenceBranch := range inspection.resolveReferenceBranches(executionContext) {
		if inspection.compareWithReference(executionContext, parsedBranch.Name, referenceBranch) {
			return
		}
	}
}

func (inspection *repositoryInspection) reportTrackingStatus(branchName string, trackingStatus TrackingStatus) {
	inspection.checker.logger.Debug(branchClassifiedMessageConstant,
		zap.String(logFieldRepositoryConstant, inspection.repositoryPath),
		zap.String(logFieldBranchConstant, branchName),
		zap.Stringer(logFieldStatusConstant, trackingStatus.Status),
		zap.Int(logFieldAheadCountConstant, trackingStatus.AheadCount),
		zap.Int(logFieldBehindCountConstant, trackingStatus.BehindCount))

	switch trackingStatus.Status {
	case BranchStatusInSync:
	case BranchStatusUndetermined:
		inspection.report(fmt.Sprintf(branchUndeterminedTemplateConstant, branchName))
	default:
		isAhead := trackingStatus.Status == BranchStatusAhead || trackingStatus.Status == BranchStatusDiverged
		isBehind := trackingStatus.Status == BranchStatusBehind || trackingStatus.Status == BranchStatusDiverged
		inspection.reportDivergence(branchName, isAhead, isBehind)
	}
}

// reportDivergence applies the ahead-only and behind-only filters and reports
// whether any finding was written.
func (inspection *repositoryInspection) reportDivergence(branchName string, isAhead bool, isBehind bool) bool {
	reported := false
	if isAhead && !inspection.checker.options.BehindOnly {
		inspection.report(fmt.Sprintf(branchAheadTemplateConstant, branchName))
		reported = true
	}
	if isBehind && !inspection.checker.options.AheadOnly {
		inspection.report(fmt.Sprintf(branchBehindTemplateConstant, branchName))
		reported = true
	}
	return reported
}

// compareWithReference compares a branch without a tracking branch against one
// remote reference and reports whether any finding was written. A failing range
// query is reported and then treated as ahead so the problem stays visible.
func (inspection *repositoryInspection) compareWithReference(executionContext context.Context, branchName string, referenceBranch string) bool {
	leftOnlyCommits, leftError := inspection.hasRangeCommits(executionContext, gitLeftOnlyFlagConstant, branchName, referenceBranch)
	rightOnlyCommits, rightError := inspection.hasRangeCommits(executionContext, gitRightOnlyFlagConstant, branchName, referenceBranch)

	reported := false
	if leftError != nil || rightError != nil {
		inspection.report(fmt.Sprintf(revisionListFailedTemplateConstant, branchName, referenceBranch))
		leftOnlyCommits = true
		reported = true
	}

	if inspection.reportDivergence(branchName, leftOnlyCommits, rightOnlyCommits) {
		reported = true
	}
	return reported
}

func (inspection *repositoryInspection) hasRangeCommits(executionContext context.Context, sideFlag string, branchName string, referenceBranch string) (bool, error) {
	revisionRange := fmt.Sprintf(gitSymmetricRangeTemplateConstant, branchName, referenceBranch)
	output, queryError := inspection.checker.runGit(executionContext, inspection.repositoryPath,
		gitRevListSubcommandConstant, sideFlag, revisionRange)
	if queryError != nil {
		inspection.checker.logger.Debug(revisionListQueryFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, inspection.repositoryPath),
			zap.String(logFieldBranchConstant, branchName),
			zap.NamedError(logFieldErrorConstant, queryError))
		return false, queryError
	}
	return len(strings.TrimSpace(output)) > 0, nil
}

func (inspection *repositoryInspection) resolveReferenceBranches(executionContext context.Context) []string {
	if inspection.referencesResolved {
		return inspection.referenceBranches
	}
	inspection.referencesResolved = true

	output, listingError := inspection.checker.runGit(executionContext, inspection.repositoryPath,
		gitBranchSubcommandConstant, gitRemotesFlagConstant, gitNoColorFlagConstant)
	if listingError != nil {
		inspection.checker.logger.Debug(remoteReferenceListingFailedMessageConst,
			zap.String(logFieldRepositoryConstant, inspection.repositoryPath),
			zap.NamedError(logFieldErrorConstant, listingError))
		inspection.report(remoteMissingMessageConstant)
		return nil
	}

	inspection.referenceBranches = SelectReferenceBranches(output, inspection.checker.options.ReferenceBranches)
	inspection.checker.logger.Debug(referenceBranchesResolvedMessageConstant,
		zap.String(logFieldRepositoryConstant, inspection.repositoryPath),
		zap.Strings(logFieldReferenceBranchesConstant, inspection.referenceBranches))
	return inspection.referenceBranches
}

func (inspection *repositoryInspection) report(message string) {
	inspection.checker.reporter.Report(inspection.repositoryPath, message)
}

// SelectReferenceBranches filters `git branch --remotes` output down to the
// remote branches whose names contain any of the reference substrings, dropping
// symbolic aliases such as "origin/HEAD -> origin/main". Listing order is kept.
func SelectReferenceBranches(remoteBranchOutput string, referenceSubstrings []string) []string {
	var selectedBranches []string
	for _, remoteLine := range strings.Split(remoteBranchOutput, lineSeparatorConstant) {
		if strings.Contains(remoteLine, symbolicReferenceMarkerConstant) {
			continue
		}
		remoteBranch := strings.TrimSpace(remoteLine)
		if len(remoteBranch) == 0 {
			continue
		}
		for _, referenceSubstring := range referenceSubstrings {
			if len(referenceSubstring) > 0 && strings.Contains(remoteBranch, referenceSubstring) {
				selectedBranches = append(selectedBranches, remoteBranch)
				break
			}
		}
	}
	return selectedBranches
}
