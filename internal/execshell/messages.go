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
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	upstreamSuffixConstant                  = "@{upstream}"
	upstreamShortSuffixConstant             = "@{u}"
)

const (
	gitRevParseSubcommandNameConstant    = "rev-parse"
	gitSymbolicRefSubcommandNameConstant = "symbolic-ref"
	gitForEachRefSubcommandNameConstant  = "for-each-ref"
	gitRevListSubcommandNameConstant     = "rev-list"
	gitStatusSubcommandNameConstant      = "status"
	gitAbsoluteGitDirFlagConstant        = "--absolute-git-dir"
	gitSymbolicFullNameFlagConstant      = "--symbolic-full-name"
	gitOptionPrefixConstant              = "-"
	gitNoOptionalLocksFlagConstant       = "--no-optional-locks"
)

const (
	gitDiscoveryStartTemplateConstant              = "Looking for a repository at %s"
	gitDiscoverySuccessTemplateConstant            = "Found repository for %s"
	gitDiscoveryFailureTemplateConstant            = "%s is not inside a repository (exit code %d%s)"
	gitDiscoveryExecutionFailureTemplateConstant   = "Unable to look for a repository at %s: %s"
	gitUpstreamStartTemplateConstant               = "Checking upstream of %s in %s"
	gitUpstreamSuccessTemplateConstant             = "Upstream of %s in %s is %s"
	gitUpstreamFailureTemplateConstant             = "No upstream for %s in %s (exit code %d%s)"
	gitUpstreamExecutionFailureTemplateConstant    = "Unable to check upstream of %s in %s: %s"
	gitRevisionStartTemplateConstant               = "Resolving %s in %s"
	gitRevisionSuccessTemplateConstant             = "%s in %s resolved to %s"
	gitRevisionFailureTemplateConstant             = "Failed to resolve %s in %s (exit code %d%s)"
	gitRevisionExecutionFailureTemplateConstant    = "Unable to resolve %s in %s: %s"
	gitSymbolicRefStartTemplateConstant            = "Reading checked-out branch in %s"
	gitSymbolicRefSuccessTemplateConstant          = "%s has %s checked out"
	gitSymbolicRefFailureTemplateConstant          = "%s is in a detached HEAD state (exit code %d%s)"
	gitSymbolicRefExecutionFailureTemplateConstant = "Unable to read checked-out branch in %s: %s"
	gitForEachRefStartTemplateConstant             = "Listing references in %s"
	gitForEachRefSuccessTemplateConstant           = "Listed references in %s"
	gitForEachRefFailureTemplateConstant           = "Failed to list references in %s (exit code %d%s)"
	gitForEachRefExecutionFailureTemplateConstant  = "Unable to list references in %s: %s"
	gitRevListStartTemplateConstant                = "Counting commits for %s in %s"
	gitRevListSuccessTemplateConstant              = "Counted commits for %s in %s"
	gitRevListFailureTemplateConstant              = "Failed to count commits for %s in %s (exit code %d%s)"
	gitRevListExecutionFailureTemplateConstant     = "Unable to count commits for %s in %s: %s"
	gitStatusStartTemplateConstant                 = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant               = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant               = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant      = "Unable to review working tree status in %s: %s"
)

type stageTemplates struct {
	start            string
	success          string
	failure          string
	executionFailure string
}

var (
	discoveryTemplates = stageTemplates{
		start:            gitDiscoveryStartTemplateConstant,
		success:          gitDiscoverySuccessTemplateConstant,
		failure:          gitDiscoveryFailureTemplateConstant,
		executionFailure: gitDiscoveryExecutionFailureTemplateConstant,
	}
	symbolicRefTemplates = stageTemplates{
		start:            gitSymbolicRefStartTemplateConstant,
		failure:          gitSymbolicRefFailureTemplateConstant,
		executionFailure: gitSymbolicRefExecutionFailureTemplateConstant,
	}
	forEachRefTemplates = stageTemplates{
		start:            gitForEachRefStartTemplateConstant,
		success:          gitForEachRefSuccessTemplateConstant,
		failure:          gitForEachRefFailureTemplateConstant,
		executionFailure: gitForEachRefExecutionFailureTemplateConstant,
	}
	statusTemplates = stageTemplates{
		start:            gitStatusStartTemplateConstant,
		success:          gitStatusSuccessTemplateConstant,
		failure:          gitStatusFailureTemplateConstant,
		executionFailure: gitStatusExecutionFailureTemplateConstant,
	}
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
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
	if command.Name != CommandGit {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
	return formatter.describeGitMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := formatter.stripGlobalOptions(command.Details.Arguments)
	if len(arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch strings.TrimSpace(arguments[0]) {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(arguments, workingDirectory, result, failure, stage)
	case gitSymbolicRefSubcommandNameConstant:
		if stage == messageStageSuccess {
			return fmt.Sprintf(gitSymbolicRefSuccessTemplateConstant, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		}
		return formatter.describeStage(symbolicRefTemplates, []any{workingDirectory}, result, failure, stage)
	case gitForEachRefSubcommandNameConstant:
		return formatter.describeStage(forEachRefTemplates, []any{workingDirectory}, result, failure, stage)
	case gitRevListSubcommandNameConstant:
		rangeTemplates := stageTemplates{
			start:            gitRevListStartTemplateConstant,
			success:          gitRevListSuccessTemplateConstant,
			failure:          gitRevListFailureTemplateConstant,
			executionFailure: gitRevListExecutionFailureTemplateConstant,
		}
		commitRange := formatter.ensureValue(formatter.lastPositionalArgument(arguments[1:]))
		return formatter.describeStage(rangeTemplates, []any{commitRange, workingDirectory}, result, failure, stage)
	case gitStatusSubcommandNameConstant:
		return formatter.describeStage(statusTemplates, []any{workingDirectory}, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(arguments []string, workingDirectory string, result ExecutionResult, failure error, stage messageStage) string {
	if containsArgument(arguments, gitAbsoluteGitDirFlagConstant) {
		return formatter.describeStage(discoveryTemplates, []any{workingDirectory}, result, failure, stage)
	}

	reference := formatter.ensureValue(formatter.lastPositionalArgument(arguments[1:]))

	if containsArgument(arguments, gitSymbolicFullNameFlagConstant) && isUpstreamReference(reference) {
		branchName := strings.TrimSuffix(strings.TrimSuffix(reference, upstreamSuffixConstant), upstreamShortSuffixConstant)
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitUpstreamStartTemplateConstant, branchName, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitUpstreamSuccessTemplateConstant, branchName, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
		case messageStageFailure:
			return fmt.Sprintf(gitUpstreamFailureTemplateConstant, branchName, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		default:
			return fmt.Sprintf(gitUpstreamExecutionFailureTemplateConstant, branchName, workingDirectory, formatter.describeFailure(failure))
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRevisionStartTemplateConstant, reference, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRevisionSuccessTemplateConstant, reference, workingDirectory, formatter.ensureValue(strings.TrimSpace(result.StandardOutput)))
	case messageStageFailure:
		return fmt.Sprintf(gitRevisionFailureTemplateConstant, reference, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	default:
		return fmt.Sprintf(gitRevisionExecutionFailureTemplateConstant, reference, workingDirectory, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) describeStage(templates stageTemplates, subjects []any, result ExecutionResult, failure error, stage messageStage) string {
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(templates.start, subjects...)
	case messageStageSuccess:
		return fmt.Sprintf(templates.success, subjects...)
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(templates.failure, failureArguments...)
	default:
		executionFailureArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(templates.executionFailure, executionFailureArguments...)
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
	default:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	commandLabel := strings.Join(commandParts, " ")
	workingDirectorySuffix := emptyStringConstant
	if trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		workingDirectorySuffix = fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return value
}

// stripGlobalOptions drops options placed before the git subcommand, such as --no-optional-locks.
func (formatter CommandMessageFormatter) stripGlobalOptions(arguments []string) []string {
	for argumentIndex, argument := range arguments {
		if argument == gitNoOptionalLocksFlagConstant {
			continue
		}
		return arguments[argumentIndex:]
	}
	return nil
}

func (formatter CommandMessageFormatter) lastPositionalArgument(arguments []string) string {
	for argumentIndex := len(arguments) - 1; argumentIndex >= 0; argumentIndex-- {
		candidate := strings.TrimSpace(arguments[argumentIndex])
		if len(candidate) == 0 || strings.HasPrefix(candidate, gitOptionPrefixConstant) {
			continue
		}
		return candidate
	}
	return emptyStringConstant
}

func isUpstreamReference(reference string) bool {
	return strings.HasSuffix(reference, upstreamSuffixConstant) || strings.HasSuffix(reference, upstreamShortSuffixConstant)
}

func containsArgument(arguments []string, expected string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == expected {
			return true
		}
	}
	return false
}
