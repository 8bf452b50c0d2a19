package scan

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/divergence"
	"github.com/temirov/gitdiverge/internal/ignored"
	"github.com/temirov/gitdiverge/internal/repos/discovery"
	"github.com/temirov/gitdiverge/internal/repos/filesystem"
	"github.com/temirov/gitdiverge/internal/repos/shared"
	"github.com/temirov/gitdiverge/internal/utils"
	pathutils "github.com/temirov/gitdiverge/internal/utils/path"
	"github.com/temirov/gitdiverge/internal/version"
)

const (
	baseDirectoryInvalidMessageConstant = "invalid base directory"
	negativeMaxDepthMessageConstant     = "max depth must not be negative"
	fileSystemMissingMessageConstant    = "file system not configured"
	executorMissingMessageConstant      = "git executor not configured"
	wrappedErrorTemplateConstant        = "%w: %w"
	versionGateErrorTemplateConstant    = "git version check failed: %w"
	scanStartedMessageConstant          = "scan started"
	scanCompletedMessageConstant        = "scan completed"
	repositoryInspectedMessageConstant  = "inspecting repository"
	logFieldBaseDirectoryConstant       = "base_directory"
	logFieldMaxDepthConstant            = "max_depth"
	logFieldListIgnoredConstant         = "list_ignored"
	logFieldRepositoryConstant          = "repository"
	logFieldRepositoryCountConstant     = "repositories"
	logFieldFindingCountConstant        = "findings"
	logFieldGitVersionConstant          = "git_version"
)

// ErrBaseDirectoryInvalid wraps every failure to resolve the base directory.
var ErrBaseDirectoryInvalid = errors.New(baseDirectoryInvalidMessageConstant)

// ErrNegativeMaxDepth indicates a negative depth limit.
var ErrNegativeMaxDepth = errors.New(negativeMaxDepthMessageConstant)

// ErrFileSystemNotConfigured indicates NewService received no file system.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrGitExecutorNotConfigured indicates NewService received no git executor.
var ErrGitExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// Options describes one scan run.
type Options struct {
	BaseDirectory     string
	MaxDepth          int
	AheadOnly         bool
	BehindOnly        bool
	ReferenceBranches []string
	ListIgnored       bool
	ExcludedNames     []string
	MinimumGitVersion version.Version
}

// Summary counts what a completed scan saw.
type Summary struct {
	RepositoryCount int
	FindingCount    int
}

// Dependencies wires the collaborators used by Service.
type Dependencies struct {
	FileSystem            filesystem.FileSystem
	GitExecutor           shared.GitExecutor
	Logger                *zap.Logger
	Output                io.Writer
	BaseDirectoryResolver *pathutils.BaseDirectoryResolver
}

// Service runs the version check, the repository walk and the per-repository checks.
type Service struct {
	fileSystem            filesystem.FileSystem
	executor              shared.GitExecutor
	logger                *zap.Logger
	output                io.Writer
	baseDirectoryResolver *pathutils.BaseDirectoryResolver
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	resolver := dependencies.BaseDirectoryResolver
	if resolver == nil {
		resolver = pathutils.NewBaseDirectoryResolver(nil)
	}
	return &Service{
		fileSystem:            dependencies.FileSystem,
		executor:              dependencies.GitExecutor,
		logger:                logger,
		output:                utils.NewFlushingWriter(dependencies.Output),
		baseDirectoryResolver: resolver,
	}, nil
}

// Run verifies git, resolves the base directory and reports findings for every
// repository found within the depth limit. Only fatal conditions are returned.
func (service *Service) Run(executionContext context.Context, options Options) (Summary, error) {
	if options.MaxDepth < 0 {
		return Summary{}, ErrNegativeMaxDepth
	}

	gate, gateError := version.NewGate(service.executor, service.logger, options.MinimumGitVersion)
	if gateError != nil {
		return Summary{}, gateError
	}
	gitVersion, verifyError := gate.Verify(executionContext)
	if verifyError != nil {
		return Summary{}, fmt.Errorf(versionGateErrorTemplateConstant, verifyError)
	}

	baseDirectory, resolveError := service.baseDirectoryResolver.Resolve(options.BaseDirectory)
	if resolveError != nil {
		return Summary{}, fmt.Errorf(wrappedErrorTemplateConstant, ErrBaseDirectoryInvalid, resolveError)
	}

	reporter := shared.NewFindingReporter(service.output, baseDirectory, service.logger)
	checker, checkerError := divergence.NewChecker(service.executor, reporter, service.logger, divergence.Options{
		AheadOnly:         options.AheadOnly,
		BehindOnly:        options.BehindOnly,
		ReferenceBranches: options.ReferenceBranches,
	})
	if checkerError != nil {
		return Summary{}, checkerError
	}

	var ignoredScanner *ignored.Scanner
	if options.ListIgnored {
		scanner, scannerError := ignored.NewScanner(ignored.Dependencies{
			FileSystem:  service.fileSystem,
			GitExecutor: service.executor,
			Reporter:    reporter,
			Logger:      service.logger,
		}, options.ExcludedNames)
		if scannerError != nil {
			return Summary{}, scannerError
		}
		ignoredScanner = scanner
	}

	walker, walkerError := discovery.NewWalker(service.fileSystem, service.logger, options.MaxDepth)
	if walkerError != nil {
		return Summary{}, walkerError
	}

	service.logger.Debug(scanStartedMessageConstant,
		zap.String(logFieldBaseDirectoryConstant, baseDirectory),
		zap.Int(logFieldMaxDepthConstant, options.MaxDepth),
		zap.Bool(logFieldListIgnoredConstant, options.ListIgnored),
		zap.Stringer(logFieldGitVersionConstant, gitVersion))

	summary := Summary{}
	walkError := walker.Walk(executionContext, baseDirectory, func(repositoryContext context.Context, repositoryPath string) {
		summary.RepositoryCount++
		service.logger.Debug(repositoryInspectedMessageConstant, zap.String(logFieldRepositoryConstant, repositoryPath))
		checker.Check(repositoryContext, repositoryPath)
		if ignoredScanner != nil {
			ignoredScanner.Scan(repositoryContext, repositoryPath)
		}
	})
	summary.FindingCount = reporter.FindingCount()

	service.logger.Info(scanCompletedMessageConstant,
		zap.String(logFieldBaseDirectoryConstant, baseDirectory),
		zap.Int(logFieldRepositoryCountConstant, summary.RepositoryCount),
		zap.Int(logFieldFindingCountConstant, summary.FindingCount))

	return summary, walkError
}
