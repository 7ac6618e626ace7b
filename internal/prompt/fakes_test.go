package prompt_test

import (
	"context"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

type fakeRepository struct {
	gitDirectory     string
	bare             bool
	linkedWorktree   bool
	headReference    gitrepo.HeadReference
	headError        error
	state            gitrepo.RepositoryState
	stateError       error
	remoteBranches   []gitrepo.BranchReference
	remoteError      error
	upstreams        map[string]gitrepo.BranchReference
	upstreamError    error
	aheadCount       int
	behindCount      int
	aheadBehindError error
	statusEntries    []gitrepo.StatusEntry
	statusError      error
	markers          map[string]string
	markerError      error
	statusCalls      []gitrepo.StatusOptions
	aheadBehindCalls [][2]string
}

func (repository *fakeRepository) GitDirectory() string {
	return repository.gitDirectory
}

func (repository *fakeRepository) IsBare() bool {
	return repository.bare
}

func (repository *fakeRepository) IsLinkedWorktree() bool {
	return repository.linkedWorktree
}

func (repository *fakeRepository) Head(context.Context) (gitrepo.HeadReference, error) {
	return repository.headReference, repository.headError
}

func (repository *fakeRepository) State(context.Context) (gitrepo.RepositoryState, error) {
	return repository.state, repository.stateError
}

func (repository *fakeRepository) RemoteBranches(context.Context) ([]gitrepo.BranchReference, error) {
	return repository.remoteBranches, repository.remoteError
}

func (repository *fakeRepository) Upstream(_ context.Context, branchName string) (gitrepo.BranchReference, bool, error) {
	if repository.upstreamError != nil {
		return gitrepo.BranchReference{}, false, repository.upstreamError
	}
	upstream, found := repository.upstreams[branchName]
	return upstream, found, nil
}

func (repository *fakeRepository) AheadBehind(_ context.Context, localCommit string, upstreamCommit string) (int, int, error) {
	repository.aheadBehindCalls = append(repository.aheadBehindCalls, [2]string{localCommit, upstreamCommit})
	return repository.aheadCount, repository.behindCount, repository.aheadBehindError
}

func (repository *fakeRepository) Status(_ context.Context, options gitrepo.StatusOptions) ([]gitrepo.StatusEntry, error) {
	repository.statusCalls = append(repository.statusCalls, options)
	return repository.statusEntries, repository.statusError
}

func (repository *fakeRepository) ReadMarker(_ context.Context, relativePath string) (string, bool, error) {
	if repository.markerError != nil {
		return "", false, repository.markerError
	}
	markerValue, found := repository.markers[relativePath]
	return markerValue, found, nil
}

type fakeOpener struct {
	repository gitrepo.Repository
	openError  error
	openedPath string
}

func (opener *fakeOpener) Open(_ context.Context, path string) (gitrepo.Repository, error) {
	opener.openedPath = path
	if opener.openError != nil {
		return nil, opener.openError
	}
	return opener.repository, nil
}
