package gitrepo

import (
	"context"
	"errors"
	"strings"
)

const (
	// LocalBranchPrefixConstant prefixes every local branch reference.
	LocalBranchPrefixConstant  = "refs/heads/"
	// RemoteBranchPrefixConstant prefixes every remote-tracking branch reference.
	RemoteBranchPrefixConstant = "refs/remotes/"
	// DetachedHeadNameConstant is the reference name reported for a detached HEAD.
	DetachedHeadNameConstant   = "HEAD"

	repositoryNotFoundMessageConstant = "repository not found"
	unbornBranchMessageConstant       = "current branch has no commits yet"
	headUnresolvableMessageConstant   = "HEAD could not be resolved"
)

// ErrRepositoryNotFound indicates the inspected path is not inside a repository.
var ErrRepositoryNotFound = errors.New(repositoryNotFoundMessageConstant)

// ErrUnbornBranch indicates HEAD names a branch that has no commits yet.
var ErrUnbornBranch = errors.New(unbornBranchMessageConstant)

// ErrHeadUnresolvable indicates HEAD could not be resolved for a reason other than an unborn branch.
var ErrHeadUnresolvable = errors.New(headUnresolvableMessageConstant)

// HeadReference describes the checked-out position.
type HeadReference struct {
	// Name is the full reference name, or DetachedHeadNameConstant when detached.
	Name string
	// Target is the commit identifier HEAD resolves to.
	Target string
}

// IsDetached reports whether HEAD points directly at a commit.
func (reference HeadReference) IsDetached() bool {
	return reference.Name == DetachedHeadNameConstant
}

// BranchName returns the local branch name, or false when HEAD is not on a local branch.
func (reference HeadReference) BranchName() (string, bool) {
	if !strings.HasPrefix(reference.Name, LocalBranchPrefixConstant) {
		return "", false
	}
	branchName := strings.TrimPrefix(reference.Name, LocalBranchPrefixConstant)
	return branchName, len(branchName) > 0
}

// BranchReference is a local or remote-tracking branch and the commit it peels to.
type BranchReference struct {
	Name   string
	Target string
}

// ShortName strips the local or remote-tracking prefix from the reference name.
func (reference BranchReference) ShortName() string {
	if strings.HasPrefix(reference.Name, RemoteBranchPrefixConstant) {
		return strings.TrimPrefix(reference.Name, RemoteBranchPrefixConstant)
	}
	return strings.TrimPrefix(reference.Name, LocalBranchPrefixConstant)
}

// StatusFlag marks one change category of a status entry.
type StatusFlag uint8

// Change categories reported for status entries.
const (
	StatusIndexModified StatusFlag = 1 << iota
	StatusIndexNew
	StatusIndexDeleted
	StatusConflicted
	StatusWorktreeModified
	StatusWorktreeNew
	StatusWorktreeDeleted
)

// StatusEntry is one path reported by a status query.
type StatusEntry struct {
	Path  string
	Flags StatusFlag
}

// Has reports whether the entry carries the flag.
func (entry StatusEntry) Has(flag StatusFlag) bool {
	return entry.Flags&flag != 0
}

// StatusOptions configures a status query.
type StatusOptions struct {
	RefreshIndex                bool
	IncludeUntracked            bool
	RecurseUntrackedDirectories bool
}

// DefaultStatusOptions refreshes the index and lists every untracked file.
func DefaultStatusOptions() StatusOptions {
	return StatusOptions{
		RefreshIndex:                true,
		IncludeUntracked:            true,
		RecurseUntrackedDirectories: true,
	}
}

// Repository is a read-only handle to a discovered repository.
type Repository interface {
	// GitDirectory returns the absolute path of the repository metadata directory.
	GitDirectory() string
	// IsBare reports whether the repository lacks a working tree.
	IsBare() bool
	// IsLinkedWorktree reports whether the handle belongs to a secondary worktree.
	IsLinkedWorktree() bool
	// Head resolves HEAD. It returns ErrUnbornBranch for a branch without commits.
	Head(executionContext context.Context) (HeadReference, error)
	// State reports the in-progress operation recorded in the git directory.
	State(executionContext context.Context) (RepositoryState, error)
	// RemoteBranches lists remote-tracking branches ordered by reference name.
	RemoteBranches(executionContext context.Context) ([]BranchReference, error)
	// Upstream returns the upstream of a local branch when one is configured and resolvable.
	Upstream(executionContext context.Context, branchName string) (BranchReference, bool, error)
	// AheadBehind counts commits reachable from only one of the two commits.
	AheadBehind(executionContext context.Context, localCommit string, upstreamCommit string) (int, int, error)
	// Status lists index and working tree changes.
	Status(executionContext context.Context, options StatusOptions) ([]StatusEntry, error)
	// ReadMarker returns the first line of a file inside the git directory.
	ReadMarker(executionContext context.Context, relativePath string) (string, bool, error)
}

// RepositoryOpener discovers the repository enclosing a filesystem path.
type RepositoryOpener interface {
	Open(executionContext context.Context, path string) (Repository, error)
}
