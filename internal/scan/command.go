package scan

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/repos/dependencies"
	"github.com/temirov/gitdiverge/internal/repos/filesystem"
	"github.com/temirov/gitdiverge/internal/repos/shared"
	"github.com/temirov/gitdiverge/internal/utils"
	pathutils "github.com/temirov/gitdiverge/internal/utils/path"
	"github.com/temirov/gitdiverge/internal/version"
)

const (
	commandUseConstant                = "gitdiverge"
	commandShortDescriptionConstant   = "Report local git branches that differ from their remotes"
	commandLongDescriptionConstant    = "gitdiverge walks a directory tree, refreshes remote refs of every git repository it finds and prints one line per branch that is ahead of or behind its remote counterpart. Optionally it lists ignored files that would be lost without a separate backup."
	directoryFlagName                 = "directory"
	directoryFlagShorthand            = "d"
	directoryFlagDescription          = "Base directory to scan for git repositories (required)"
	maxDepthFlagName                  = "max-depth"
	maxDepthFlagDescription           = "Maximum directory depth below the base directory"
	aheadOnlyFlagName                 = "ahead-only"
	aheadOnlyFlagDescription          = "Report only branches that are ahead of their remote"
	behindOnlyFlagName                = "behind-only"
	behindOnlyFlagDescription         = "Report only branches that are behind their remote"
	referenceBranchesFlagName         = "reference-branches"
	referenceBranchesFlagDescription  = "Comma-separated substrings selecting remote branches to compare untracked branches against"
	listIgnoredFlagName               = "list-ignored"
	listIgnoredFlagDescription        = "List non-empty ignored files and directories of every repository"
	excludeFlagName                   = "exclude"
	excludeFlagDescription            = "Comma-separated names to leave out of the ignored listing (implies --list-ignored)"
	minimumGitVersionErrorTemplate    = "invalid scan.minimum_git_version: %w"
	negativeMaxDepthFlagErrorTemplate = "invalid --max-depth %d: %w"
	scanFailedErrorTemplateConstant   = "scan failed: %w"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies persisted scan configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the scan cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           shared.GitExecutor
	FileSystem            filesystem.FileSystem
	HomeExpander          *pathutils.HomeExpander
}

// Build constructs the cobra command that scans a directory tree.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().StringP(directoryFlagName, directoryFlagShorthand, "", directoryFlagDescription)
	command.Flags().Int(maxDepthFlagName, defaults.MaxDepth, maxDepthFlagDescription)
	command.Flags().Bool(aheadOnlyFlagName, false, aheadOnlyFlagDescription)
	command.Flags().Bool(behindOnlyFlagName, false, behindOnlyFlagDescription)
	command.Flags().String(referenceBranchesFlagName, "", referenceBranchesFlagDescription)
	command.Flags().Bool(listIgnoredFlagName, false, listIgnoredFlagDescription)
	command.Flags().String(excludeFlagName, "", excludeFlagDescription)

	if requiredError := command.MarkFlagRequired(directoryFlagName); requiredError != nil {
		return nil, requiredError
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, optionsError := builder.parseOptions(command)
	if optionsError != nil {
		return optionsError
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(Dependencies{
		FileSystem:            dependencies.ResolveFileSystem(builder.FileSystem),
		GitExecutor:           gitExecutor,
		Logger:                logger,
		Output:                command.OutOrStdout(),
		BaseDirectoryResolver: pathutils.NewBaseDirectoryResolver(builder.HomeExpander),
	})
	if serviceError != nil {
		return serviceError
	}

	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(scanFailedErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command) (Options, error) {
	configuration := builder.resolveConfiguration()

	if command.Flags().Changed(maxDepthFlagName) {
		configuration.MaxDepth, _ = command.Flags().GetInt(maxDepthFlagName)
	}
	if configuration.MaxDepth < 0 {
		return Options{}, fmt.Errorf(negativeMaxDepthFlagErrorTemplate, configuration.MaxDepth, ErrNegativeMaxDepth)
	}
	if command.Flags().Changed(aheadOnlyFlagName) {
		configuration.AheadOnly, _ = command.Flags().GetBool(aheadOnlyFlagName)
	}
	if command.Flags().Changed(behindOnlyFlagName) {
		configuration.BehindOnly, _ = command.Flags().GetBool(behindOnlyFlagName)
	}
	if command.Flags().Changed(referenceBranchesFlagName) {
		referenceBranches, _ := command.Flags().GetString(referenceBranchesFlagName)
		configuration.ReferenceBranches = utils.SplitList(referenceBranches)
	}
	if command.Flags().Changed(listIgnoredFlagName) {
		configuration.ListIgnored, _ = command.Flags().GetBool(listIgnoredFlagName)
	}
	if command.Flags().Changed(excludeFlagName) {
		excludedNames, _ := command.Flags().GetString(excludeFlagName)
		configuration.ExcludedNames = utils.SplitList(excludedNames)
		configuration.ListIgnored = true
	}

	minimumGitVersion := version.DefaultMinimum
	if len(configuration.MinimumGitVersion) > 0 {
		parsedMinimum, parseError := version.ParseMinimum(configuration.MinimumGitVersion)
		if parseError != nil {
			return Options{}, fmt.Errorf(minimumGitVersionErrorTemplate, parseError)
		}
		minimumGitVersion = parsedMinimum
	}

	baseDirectory, _ := command.Flags().GetString(directoryFlagName)

	return Options{
		BaseDirectory:     baseDirectory,
		MaxDepth:          configuration.MaxDepth,
		AheadOnly:         configuration.AheadOnly,
		BehindOnly:        configuration.BehindOnly,
		ReferenceBranches: configuration.ReferenceBranches,
		ListIgnored:       configuration.ListIgnored,
		ExcludedNames:     configuration.ExcludedNames,
		MinimumGitVersion: minimumGitVersion,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
