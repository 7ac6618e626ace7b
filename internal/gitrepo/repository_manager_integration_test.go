package gitrepo_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jfultz/git-prompt/internal/execshell"
	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	integrationBranchConstant        = "trunk"
	integrationFeatureBranchConstant = "feature"
	integrationFileNameConstant      = "shared.txt"
	integrationWorktreeNameConstant  = "linked"
)

type gitWorkspace struct {
	testInstance   *testing.T
	repositoryPath string
}

func newGitWorkspace(testInstance *testing.T) gitWorkspace {
	testInstance.Helper()
	if _, lookupError := exec.LookPath("git"); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	homeDirectory := testInstance.TempDir()
	testInstance.Setenv("HOME", homeDirectory)
	testInstance.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	testInstance.Setenv("GIT_CONFIG_GLOBAL", filepath.Join(homeDirectory, ".gitconfig"))
	testInstance.Setenv("GIT_AUTHOR_NAME", "Prompt Tester")
	testInstance.Setenv("GIT_AUTHOR_EMAIL", "prompt@example.com")
	testInstance.Setenv("GIT_COMMITTER_NAME", "Prompt Tester")
	testInstance.Setenv("GIT_COMMITTER_EMAIL", "prompt@example.com")

	workspaceRoot, resolveError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, resolveError)
	repositoryPath := filepath.Join(workspaceRoot, "repository")
	require.NoError(testInstance, os.MkdirAll(repositoryPath, 0o755))

	workspace := gitWorkspace{testInstance: testInstance, repositoryPath: repositoryPath}
	workspace.git("init", "--quiet")
	workspace.git("symbolic-ref", "HEAD", gitrepo.LocalBranchPrefixConstant+integrationBranchConstant)
	return workspace
}

func (workspace gitWorkspace) git(arguments ...string) {
	workspace.testInstance.Helper()
	output, runError := workspace.command(arguments...).CombinedOutput()
	require.NoError(workspace.testInstance, runError, string(output))
}

func (workspace gitWorkspace) gitExpectingFailure(arguments ...string) {
	workspace.testInstance.Helper()
	require.Error(workspace.testInstance, workspace.command(arguments...).Run())
}

func (workspace gitWorkspace) command(arguments ...string) *exec.Cmd {
	command := exec.Command("git", arguments...)
	command.Dir = workspace.repositoryPath
	return command
}

func (workspace gitWorkspace) commit(content string) {
	workspace.testInstance.Helper()
	require.NoError(workspace.testInstance, os.WriteFile(filepath.Join(workspace.repositoryPath, integrationFileNameConstant), []byte(content), 0o644))
	workspace.git("add", integrationFileNameConstant)
	workspace.git("commit", "--quiet", "--no-gpg-sign", "-m", content)
}

func openWithGitExecutable(testInstance *testing.T, path string) gitrepo.Repository {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	manager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)

	repository, openError := manager.Open(context.Background(), path)
	require.NoError(testInstance, openError)
	return repository
}

func TestRepositoryManagerReportsMergeConflict(testInstance *testing.T) {
	workspace := newGitWorkspace(testInstance)
	workspace.commit("base\n")
	workspace.git("checkout", "--quiet", "-b", integrationFeatureBranchConstant)
	workspace.commit("feature\n")
	workspace.git("checkout", "--quiet", integrationBranchConstant)
	workspace.commit("trunk\n")
	workspace.gitExpectingFailure("merge", "--no-edit", integrationFeatureBranchConstant)

	repository := openWithGitExecutable(testInstance, workspace.repositoryPath)
	executionContext := context.Background()

	state, stateError := repository.State(executionContext)
	require.NoError(testInstance, stateError)
	require.Equal(testInstance, gitrepo.StateMerge, state)

	entries, statusError := repository.Status(executionContext, gitrepo.DefaultStatusOptions())
	require.NoError(testInstance, statusError)
	require.Equal(testInstance, []gitrepo.StatusEntry{{Path: integrationFileNameConstant, Flags: gitrepo.StatusConflicted}}, entries)

	head, headError := repository.Head(executionContext)
	require.NoError(testInstance, headError)
	branchName, onBranch := head.BranchName()
	require.True(testInstance, onBranch)
	require.Equal(testInstance, integrationBranchConstant, branchName)
}

func TestRepositoryManagerDetectsLinkedWorktree(testInstance *testing.T) {
	workspace := newGitWorkspace(testInstance)
	workspace.commit("base\n")
	linkedPath := filepath.Join(filepath.Dir(workspace.repositoryPath), integrationWorktreeNameConstant)
	workspace.git("worktree", "add", "--quiet", "-b", integrationFeatureBranchConstant, linkedPath)

	mainRepository := openWithGitExecutable(testInstance, workspace.repositoryPath)
	require.False(testInstance, mainRepository.IsLinkedWorktree())

	linkedRepository := openWithGitExecutable(testInstance, linkedPath)
	require.True(testInstance, linkedRepository.IsLinkedWorktree())
	require.False(testInstance, linkedRepository.IsBare())

	head, headError := linkedRepository.Head(context.Background())
	require.NoError(testInstance, headError)
	require.Equal(testInstance, gitrepo.LocalBranchPrefixConstant+integrationFeatureBranchConstant, head.Name)
}

func TestRepositoryManagerCountsDivergence(testInstance *testing.T) {
	workspace := newGitWorkspace(testInstance)
	workspace.commit("base\n")
	workspace.git("branch", integrationFeatureBranchConstant)
	workspace.commit("trunk one\n")
	workspace.commit("trunk two\n")
	workspace.git("branch", "--set-upstream-to", integrationFeatureBranchConstant)

	repository := openWithGitExecutable(testInstance, workspace.repositoryPath)
	executionContext := context.Background()

	upstream, found, upstreamError := repository.Upstream(executionContext, integrationBranchConstant)
	require.NoError(testInstance, upstreamError)
	require.True(testInstance, found)
	require.Equal(testInstance, gitrepo.LocalBranchPrefixConstant+integrationFeatureBranchConstant, upstream.Name)

	head, headError := repository.Head(executionContext)
	require.NoError(testInstance, headError)

	ahead, behind, divergenceError := repository.AheadBehind(executionContext, head.Target, upstream.Target)
	require.NoError(testInstance, divergenceError)
	require.Equal(testInstance, 2, ahead)
	require.Equal(testInstance, 0, behind)
}
