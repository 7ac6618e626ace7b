package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jfultz/git-prompt/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	gitRevParseSubcommandConstant               = "rev-parse"
	gitSymbolicRefSubcommandConstant            = "symbolic-ref"
	gitForEachRefSubcommandConstant             = "for-each-ref"
	gitRevListSubcommandConstant                = "rev-list"
	gitStatusSubcommandConstant                 = "status"
	gitAbsoluteGitDirFlagConstant               = "--absolute-git-dir"
	gitIsBareRepositoryFlagConstant             = "--is-bare-repository"
	gitSymbolicFullNameFlagConstant             = "--symbolic-full-name"
	gitVerifyFlagConstant                       = "--verify"
	gitQuietFlagConstant                        = "-q"
	gitLeftRightFlagConstant                    = "--left-right"
	gitCountFlagConstant                        = "--count"
	gitPorcelainV2FlagConstant                  = "--porcelain=v2"
	gitNullTerminatedFlagConstant               = "-z"
	gitNoOptionalLocksFlagConstant              = "--no-optional-locks"
	gitUntrackedAllFlagConstant                 = "--untracked-files=all"
	gitUntrackedNormalFlagConstant              = "--untracked-files=normal"
	gitUntrackedNoneFlagConstant                = "--untracked-files=no"
	gitRemoteReferenceFormatConstant            = "--format=%(refname) %(objectname) %(*objectname)"
	gitHeadCommitRevisionConstant               = "HEAD^{commit}"
	gitCommitPeelSuffixConstant                 = "^{commit}"
	gitUpstreamSuffixConstant                   = "@{upstream}"
	gitSymmetricDifferenceTemplateConstant      = "%s...%s"
	gitBareRepositoryTrueConstant               = "true"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableValue    = "0"
	gitOptionalLocksEnvironmentNameConstant     = "GIT_OPTIONAL_LOCKS"
	gitOptionalLocksEnvironmentDisableValue     = "0"
	repositoryPathResolutionTemplateConstant    = "unable to resolve repository path %q: %w"
	discoveryFailureTemplateConstant            = "unable to discover repository at %s: %w"
	unexpectedDiscoveryOutputTemplateConstant   = "unexpected repository discovery output %q"
	headResolutionTemplateConstant              = "unable to resolve HEAD: %w"
	remoteBranchListingTemplateConstant         = "unable to list remote branches: %w"
	upstreamResolutionTemplateConstant          = "unable to resolve upstream of %s: %w"
	aheadBehindFailureTemplateConstant          = "unable to count commits between %s and %s: %w"
	unexpectedAheadBehindOutputTemplateConstant = "unexpected commit count output %q"
	statusFailureTemplateConstant               = "unable to collect status: %w"
	discoveryOutputLineCountConstant            = 2
	aheadBehindFieldCountConstant               = 2
	remoteReferenceMinimumFieldCountConstant    = 2
	remoteReferencePeeledFieldIndexConstant     = 2
)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor exposes the subset of shell execution used by the repository manager.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager opens repositories backed by the git executable.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager from the provided executor.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// Open discovers the repository enclosing path. Paths outside any repository yield ErrRepositoryNotFound.
func (manager *RepositoryManager) Open(executionContext context.Context, path string) (Repository, error) {
	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return nil, fmt.Errorf(repositoryPathResolutionTemplateConstant, path, absoluteError)
	}

	commandRepository := &CommandRepository{executor: manager.executor, workingDirectory: absolutePath}
	discoveryOutput, discoveryError := commandRepository.runGit(executionContext, false,
		gitRevParseSubcommandConstant, gitAbsoluteGitDirFlagConstant, gitIsBareRepositoryFlagConstant)
	if discoveryError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(discoveryError, &failedError) {
			return nil, ErrRepositoryNotFound
		}
		return nil, fmt.Errorf(discoveryFailureTemplateConstant, absolutePath, discoveryError)
	}

	discoveryLines := strings.Split(strings.TrimSpace(discoveryOutput), "\n")
	if len(discoveryLines) != discoveryOutputLineCountConstant {
		return nil, fmt.Errorf(unexpectedDiscoveryOutputTemplateConstant, discoveryOutput)
	}

	commandRepository.gitDirectory = strings.TrimSpace(discoveryLines[0])
	commandRepository.bare = strings.TrimSpace(discoveryLines[1]) == gitBareRepositoryTrueConstant
	commandRepository.linkedWorktree = IsLinkedWorktreeDirectory(commandRepository.gitDirectory)
	return commandRepository, nil
}

// CommandRepository implements Repository by running git in the inspected directory.
type CommandRepository struct {
	executor         GitExecutor
	workingDirectory string
	gitDirectory     string
	bare             bool
	linkedWorktree   bool
}

// GitDirectory returns the absolute path of the repository metadata directory.
func (repository *CommandRepository) GitDirectory() string {
	return repository.gitDirectory
}

// IsBare reports whether the repository lacks a working tree.
func (repository *CommandRepository) IsBare() bool {
	return repository.bare
}

// IsLinkedWorktree reports whether the repository is a secondary worktree.
func (repository *CommandRepository) IsLinkedWorktree() bool {
	return repository.linkedWorktree
}

// Head resolves HEAD via symbolic-ref and rev-parse.
func (repository *CommandRepository) Head(executionContext context.Context) (HeadReference, error) {
	referenceName := DetachedHeadNameConstant
	symbolicOutput, symbolicError := repository.runGit(executionContext, false, gitSymbolicRefSubcommandConstant, gitQuietFlagConstant, DetachedHeadNameConstant)
	switch {
	case symbolicError == nil:
		referenceName = strings.TrimSpace(symbolicOutput)
	case !isCommandFailure(symbolicError):
		return HeadReference{}, fmt.Errorf(headResolutionTemplateConstant, symbolicError)
	}

	targetOutput, targetError := repository.runGit(executionContext, false, gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, gitHeadCommitRevisionConstant)
	if targetError != nil {
		if !isCommandFailure(targetError) {
			return HeadReference{}, fmt.Errorf(headResolutionTemplateConstant, targetError)
		}
		if symbolicError == nil {
			return HeadReference{}, ErrUnbornBranch
		}
		return HeadReference{}, ErrHeadUnresolvable
	}

	return HeadReference{Name: referenceName, Target: strings.TrimSpace(targetOutput)}, nil
}

// State reports the in-progress operation recorded in the git directory.
func (repository *CommandRepository) State(executionContext context.Context) (RepositoryState, error) {
	return DetectRepositoryState(repository.gitDirectory), nil
}

// RemoteBranches lists remote-tracking branches with annotated tags peeled to their commits.
func (repository *CommandRepository) RemoteBranches(executionContext context.Context) ([]BranchReference, error) {
	listingOutput, listingError := repository.runGit(executionContext, false,
		gitForEachRefSubcommandConstant, gitRemoteReferenceFormatConstant, strings.TrimSuffix(RemoteBranchPrefixConstant, "/"))
	if listingError != nil {
		return nil, fmt.Errorf(remoteBranchListingTemplateConstant, listingError)
	}

	var references []BranchReference
	for _, line := range strings.Split(listingOutput, "\n") {
		fields := strings.Fields(line)
		if len(fields) < remoteReferenceMinimumFieldCountConstant {
			continue
		}
		target := fields[1]
		if len(fields) > remoteReferencePeeledFieldIndexConstant {
			target = fields[remoteReferencePeeledFieldIndexConstant]
		}
		references = append(references, BranchReference{Name: fields[0], Target: target})
	}
	return references, nil
}

// Upstream resolves the configured upstream of a local branch. Missing
// configuration or a vanished remote-tracking branch is reported as not found.
func (repository *CommandRepository) Upstream(executionContext context.Context, branchName string) (BranchReference, bool, error) {
	upstreamOutput, upstreamError := repository.runGit(executionContext, false,
		gitRevParseSubcommandConstant, gitSymbolicFullNameFlagConstant, branchName+gitUpstreamSuffixConstant)
	if upstreamError != nil {
		if isCommandFailure(upstreamError) {
			return BranchReference{}, false, nil
		}
		return BranchReference{}, false, fmt.Errorf(upstreamResolutionTemplateConstant, branchName, upstreamError)
	}

	upstreamName := strings.TrimSpace(upstreamOutput)
	if len(upstreamName) == 0 {
		return BranchReference{}, false, nil
	}

	targetOutput, targetError := repository.runGit(executionContext, false,
		gitRevParseSubcommandConstant, gitVerifyFlagConstant, gitQuietFlagConstant, upstreamName+gitCommitPeelSuffixConstant)
	if targetError != nil {
		if isCommandFailure(targetError) {
			return BranchReference{}, false, nil
		}
		return BranchReference{}, false, fmt.Errorf(upstreamResolutionTemplateConstant, branchName, targetError)
	}

	return BranchReference{Name: upstreamName, Target: strings.TrimSpace(targetOutput)}, true, nil
}

// AheadBehind counts commits only reachable from localCommit (ahead) and only from upstreamCommit (behind).
func (repository *CommandRepository) AheadBehind(executionContext context.Context, localCommit string, upstreamCommit string) (int, int, error) {
	countOutput, countError := repository.runGit(executionContext, false,
		gitRevListSubcommandConstant, gitLeftRightFlagConstant, gitCountFlagConstant,
		fmt.Sprintf(gitSymmetricDifferenceTemplateConstant, localCommit, upstreamCommit))
	if countError != nil {
		return 0, 0, fmt.Errorf(aheadBehindFailureTemplateConstant, localCommit, upstreamCommit, countError)
	}

	countFields := strings.Fields(countOutput)
	if len(countFields) != aheadBehindFieldCountConstant {
		return 0, 0, fmt.Errorf(unexpectedAheadBehindOutputTemplateConstant, countOutput)
	}
	aheadCount, aheadError := strconv.Atoi(countFields[0])
	if aheadError != nil {
		return 0, 0, fmt.Errorf(unexpectedAheadBehindOutputTemplateConstant, countOutput)
	}
	behindCount, behindError := strconv.Atoi(countFields[1])
	if behindError != nil {
		return 0, 0, fmt.Errorf(unexpectedAheadBehindOutputTemplateConstant, countOutput)
	}
	return aheadCount, behindCount, nil
}

// Status runs `git status --porcelain=v2 -z` honoring the requested options.
func (repository *CommandRepository) Status(executionContext context.Context, options StatusOptions) ([]StatusEntry, error) {
	statusArguments := []string{gitStatusSubcommandConstant, gitPorcelainV2FlagConstant, gitNullTerminatedFlagConstant}
	switch {
	case !options.IncludeUntracked:
		statusArguments = append(statusArguments, gitUntrackedNoneFlagConstant)
	case options.RecurseUntrackedDirectories:
		statusArguments = append(statusArguments, gitUntrackedAllFlagConstant)
	default:
		statusArguments = append(statusArguments, gitUntrackedNormalFlagConstant)
	}
	if !options.RefreshIndex {
		statusArguments = append([]string{gitNoOptionalLocksFlagConstant}, statusArguments...)
	}

	statusOutput, statusError := repository.runGit(executionContext, !options.RefreshIndex, statusArguments...)
	if statusError != nil {
		return nil, fmt.Errorf(statusFailureTemplateConstant, statusError)
	}
	return ParsePorcelainStatus(statusOutput)
}

// ReadMarker returns the first line of a file inside the git directory.
func (repository *CommandRepository) ReadMarker(executionContext context.Context, relativePath string) (string, bool, error) {
	return ReadMarkerFile(repository.gitDirectory, relativePath)
}

func (repository *CommandRepository) runGit(executionContext context.Context, disableOptionalLocks bool, arguments ...string) (string, error) {
	environment := map[string]string{gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableValue}
	if disableOptionalLocks {
		environment[gitOptionalLocksEnvironmentNameConstant] = gitOptionalLocksEnvironmentDisableValue
	}
	executionResult, executionError := repository.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     repository.workingDirectory,
		EnvironmentVariables: environment,
	})
	if executionError != nil {
		return "", executionError
	}
	return executionResult.StandardOutput, nil
}

func isCommandFailure(executionError error) bool {
	var failedError execshell.CommandFailedError
	return errors.As(executionError, &failedError)
}
