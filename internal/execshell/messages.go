package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
)

const (
	gitVersionFlagConstant               = "--version"
	gitRemoteSubcommandNameConstant      = "remote"
	gitRemoteUpdateSubcommandConstant    = "update"
	gitStatusSubcommandNameConstant      = "status"
	gitBranchSubcommandNameConstant      = "branch"
	gitBranchRemotesFlagConstant         = "--remotes"
	gitCheckIgnoreSubcommandNameConstant = "check-ignore"
	gitRevListSubcommandNameConstant     = "rev-list"
	gitLeftOnlyFlagConstant              = "--left-only"
	gitRightOnlyFlagConstant             = "--right-only"
)

const (
	gitVersionStartTemplateConstant            = "Checking git version"
	gitVersionSuccessTemplateConstant          = "Read git version"
	gitVersionFailureTemplateConstant          = "Failed to read git version (exit code %d%s)"
	gitVersionExecutionFailureTemplateConstant = "Unable to run git: %s"
	gitRemoteUpdateStartTemplateConstant       = "Updating remote refs in %s"
	gitRemoteUpdateSuccessTemplateConstant     = "Updated remote refs in %s"
	gitRemoteUpdateFailureTemplateConstant     = "Failed to update remote refs in %s (exit code %d%s)"
	gitRemoteUpdateExecutionFailureTemplate    = "Unable to update remote refs in %s: %s"
	gitStatusStartTemplateConstant             = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant           = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant           = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant  = "Unable to review working tree status in %s: %s"
	gitLocalBranchesStartTemplateConstant      = "Listing local branches in %s"
	gitLocalBranchesSuccessTemplateConstant    = "Listed local branches in %s"
	gitLocalBranchesFailureTemplateConstant    = "Failed to list local branches in %s (exit code %d%s)"
	gitLocalBranchesExecutionFailureTemplate   = "Unable to list local branches in %s: %s"
	gitRemoteBranchesStartTemplateConstant     = "Listing remote branches in %s"
	gitRemoteBranchesSuccessTemplateConstant   = "Listed remote branches in %s"
	gitRemoteBranchesFailureTemplateConstant   = "Failed to list remote branches in %s (exit code %d%s)"
	gitRemoteBranchesExecutionFailureTemplate  = "Unable to list remote branches in %s: %s"
	gitCheckIgnoreStartTemplateConstant        = "Matching ignore rules in %s"
	gitCheckIgnoreSuccessTemplateConstant      = "Matched ignore rules in %s"
	gitCheckIgnoreNoMatchTemplateConstant      = "No ignored entries in %s"
	gitCheckIgnoreFailureTemplateConstant      = "Failed to match ignore rules in %s (exit code %d%s)"
	gitCheckIgnoreExecutionFailureTemplate     = "Unable to match ignore rules in %s: %s"
	gitRevListStartTemplateConstant            = "Counting %s commits of %s in %s"
	gitRevListSuccessTemplateConstant          = "Counted %s commits of %s in %s"
	gitRevListFailureTemplateConstant          = "Failed to count %s commits of %s in %s (exit code %d%s)"
	gitRevListExecutionFailureTemplateConstant = "Unable to count %s commits of %s in %s: %s"
	gitRevListLeftSideLabelConstant            = "left-only"
	gitRevListRightSideLabelConstant           = "right-only"
	gitRevListUnknownRangeLabelConstant        = "unknown range"
	gitCheckIgnoreNoMatchExitCodeConstant      = 1
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	switch strings.TrimSpace(arguments[0]) {
	case gitVersionFlagConstant:
		return formatter.selectTemplate(stage,
			gitVersionStartTemplateConstant,
			gitVersionSuccessTemplateConstant,
			fmt.Sprintf(gitVersionFailureTemplateConstant, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
			fmt.Sprintf(gitVersionExecutionFailureTemplateConstant, formatter.describeFailure(failure)),
		)
	case gitRemoteSubcommandNameConstant:
		if formatter.argumentAtIndex(arguments, 1) != gitRemoteUpdateSubcommandConstant {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		return formatter.describeDirectoryScoped(stage, result, failure, workingDirectory,
			gitRemoteUpdateStartTemplateConstant,
			gitRemoteUpdateSuccessTemplateConstant,
			gitRemoteUpdateFailureTemplateConstant,
			gitRemoteUpdateExecutionFailureTemplate,
		)
	case gitStatusSubcommandNameConstant:
		return formatter.describeDirectoryScoped(stage, result, failure, workingDirectory,
			gitStatusStartTemplateConstant,
			gitStatusSuccessTemplateConstant,
			gitStatusFailureTemplateConstant,
			gitStatusExecutionFailureTemplateConstant,
		)
	case gitBranchSubcommandNameConstant:
		if containsArgument(arguments, gitBranchRemotesFlagConstant) {
			return formatter.describeDirectoryScoped(stage, result, failure, workingDirectory,
				gitRemoteBranchesStartTemplateConstant,
				gitRemoteBranchesSuccessTemplateConstant,
				gitRemoteBranchesFailureTemplateConstant,
				gitRemoteBranchesExecutionFailureTemplate,
			)
		}
		return formatter.describeDirectoryScoped(stage, result, failure, workingDirectory,
			gitLocalBranchesStartTemplateConstant,
			gitLocalBranchesSuccessTemplateConstant,
			gitLocalBranchesFailureTemplateConstant,
			gitLocalBranchesExecutionFailureTemplate,
		)
	case gitCheckIgnoreSubcommandNameConstant:
		if stage == messageStageFailure && result.ExitCode == gitCheckIgnoreNoMatchExitCodeConstant {
			return fmt.Sprintf(gitCheckIgnoreNoMatchTemplateConstant, workingDirectory)
		}
		return formatter.describeDirectoryScoped(stage, result, failure, workingDirectory,
			gitCheckIgnoreStartTemplateConstant,
			gitCheckIgnoreSuccessTemplateConstant,
			gitCheckIgnoreFailureTemplateConstant,
			gitCheckIgnoreExecutionFailureTemplate,
		)
	case gitRevListSubcommandNameConstant:
		return formatter.describeGitRevListMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeDirectoryScoped(stage messageStage, result ExecutionResult, failure error, workingDirectory string, startTemplate string, successTemplate string, failureTemplate string, executionFailureTemplate string) string {
	return formatter.selectTemplate(stage,
		fmt.Sprintf(startTemplate, workingDirectory),
		fmt.Sprintf(successTemplate, workingDirectory),
		fmt.Sprintf(failureTemplate, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(executionFailureTemplate, workingDirectory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) describeGitRevListMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)

	sideLabel := gitRevListLeftSideLabelConstant
	if containsArgument(arguments, gitRightOnlyFlagConstant) {
		sideLabel = gitRevListRightSideLabelConstant
	}

	rangeLabel := gitRevListUnknownRangeLabelConstant
	if len(arguments) > 1 {
		rangeLabel = strings.TrimSpace(arguments[len(arguments)-1])
	}

	return formatter.selectTemplate(stage,
		fmt.Sprintf(gitRevListStartTemplateConstant, sideLabel, rangeLabel, workingDirectory),
		fmt.Sprintf(gitRevListSuccessTemplateConstant, sideLabel, rangeLabel, workingDirectory),
		fmt.Sprintf(gitRevListFailureTemplateConstant, sideLabel, rangeLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(gitRevListExecutionFailureTemplateConstant, sideLabel, rangeLabel, workingDirectory, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	case messageStageExecutionFailure:
		return executionFailureMessage
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
