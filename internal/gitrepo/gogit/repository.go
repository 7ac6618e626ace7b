package gogit

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	localRemoteNameConstant             = "."
	untrackedDirectorySuffixConstant    = "/"
	headResolutionTemplateConstant      = "unable to resolve HEAD: %w"
	remoteBranchListingTemplateConstant = "unable to list remote branches: %w"
	configurationReadTemplateConstant   = "unable to read repository configuration: %w"
	upstreamResolutionTemplateConstant  = "unable to resolve upstream of %s: %w"
	commitLookupTemplateConstant        = "unable to load commit %s: %w"
	commitWalkTemplateConstant          = "unable to walk history from %s: %w"
	statusFailureTemplateConstant       = "unable to collect status: %w"
	indexReadTemplateConstant           = "unable to read index: %w"
)

// mergedIndexStageConstant is the stage of an entry outside a conflict. go-git's
// index.Merged is 1, which collides with the merge base stage.
const mergedIndexStageConstant index.Stage = 0

// Repository implements gitrepo.Repository with go-git.
type Repository struct {
	repository     *git.Repository
	gitDirectory   string
	bare           bool
	linkedWorktree bool
}

// GitDirectory returns the absolute path of the repository metadata directory.
func (handle *Repository) GitDirectory() string {
	return handle.gitDirectory
}

// IsBare reports whether the repository lacks a working tree.
func (handle *Repository) IsBare() bool {
	return handle.bare
}

// IsLinkedWorktree reports whether the repository is a secondary worktree.
func (handle *Repository) IsLinkedWorktree() bool {
	return handle.linkedWorktree
}

// Head resolves HEAD without following it blindly so unborn branches can be told apart.
func (handle *Repository) Head(executionContext context.Context) (gitrepo.HeadReference, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return gitrepo.HeadReference{}, contextError
	}

	headReference, headError := handle.repository.Reference(plumbing.HEAD, false)
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return gitrepo.HeadReference{}, gitrepo.ErrHeadUnresolvable
		}
		return gitrepo.HeadReference{}, fmt.Errorf(headResolutionTemplateConstant, headError)
	}

	if headReference.Type() == plumbing.HashReference {
		return gitrepo.HeadReference{Name: gitrepo.DetachedHeadNameConstant, Target: headReference.Hash().String()}, nil
	}

	branchReference, branchError := handle.repository.Reference(headReference.Target(), true)
	if branchError != nil {
		if errors.Is(branchError, plumbing.ErrReferenceNotFound) {
			return gitrepo.HeadReference{}, gitrepo.ErrUnbornBranch
		}
		return gitrepo.HeadReference{}, fmt.Errorf(headResolutionTemplateConstant, branchError)
	}

	return gitrepo.HeadReference{Name: headReference.Target().String(), Target: branchReference.Hash().String()}, nil
}

// State reports the in-progress operation recorded in the git directory.
func (handle *Repository) State(executionContext context.Context) (gitrepo.RepositoryState, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return gitrepo.StateNone, contextError
	}
	return gitrepo.DetectRepositoryState(handle.gitDirectory), nil
}

// RemoteBranches lists remote-tracking branches ordered by reference name.
func (handle *Repository) RemoteBranches(executionContext context.Context) ([]gitrepo.BranchReference, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	referenceIterator, iteratorError := handle.repository.References()
	if iteratorError != nil {
		return nil, fmt.Errorf(remoteBranchListingTemplateConstant, iteratorError)
	}
	defer referenceIterator.Close()

	var references []gitrepo.BranchReference
	iterationError := referenceIterator.ForEach(func(reference *plumbing.Reference) error {
		if !reference.Name().IsRemote() {
			return nil
		}
		if reference.Type() == plumbing.SymbolicReference {
			resolvedReference, resolveError := handle.repository.Reference(reference.Name(), true)
			if resolveError != nil {
				return nil
			}
			reference = plumbing.NewHashReference(reference.Name(), resolvedReference.Hash())
		}
		references = append(references, gitrepo.BranchReference{
			Name:   reference.Name().String(),
			Target: handle.peelToCommit(reference.Hash()).String(),
		})
		return nil
	})
	if iterationError != nil && !errors.Is(iterationError, storer.ErrStop) {
		return nil, fmt.Errorf(remoteBranchListingTemplateConstant, iterationError)
	}

	sort.Slice(references, func(leftIndex int, rightIndex int) bool {
		return references[leftIndex].Name < references[rightIndex].Name
	})
	return references, nil
}

// Upstream resolves the branch.<name>.remote and branch.<name>.merge configuration.
func (handle *Repository) Upstream(executionContext context.Context, branchName string) (gitrepo.BranchReference, bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return gitrepo.BranchReference{}, false, contextError
	}

	repositoryConfiguration, configurationError := handle.repository.Config()
	if configurationError != nil {
		return gitrepo.BranchReference{}, false, fmt.Errorf(configurationReadTemplateConstant, configurationError)
	}

	branchConfiguration, configured := repositoryConfiguration.Branches[branchName]
	if !configured || branchConfiguration == nil || len(branchConfiguration.Remote) == 0 || len(branchConfiguration.Merge) == 0 {
		return gitrepo.BranchReference{}, false, nil
	}

	upstreamName := branchConfiguration.Merge
	if branchConfiguration.Remote != localRemoteNameConstant {
		remoteConfiguration, remoteConfigured := repositoryConfiguration.Remotes[branchConfiguration.Remote]
		if !remoteConfigured || remoteConfiguration == nil {
			return gitrepo.BranchReference{}, false, nil
		}
		trackingName, tracked := trackingReferenceName(remoteConfiguration.Fetch, branchConfiguration.Merge)
		if !tracked {
			return gitrepo.BranchReference{}, false, nil
		}
		upstreamName = trackingName
	}

	upstreamReference, referenceError := handle.repository.Reference(upstreamName, true)
	if referenceError != nil {
		if errors.Is(referenceError, plumbing.ErrReferenceNotFound) {
			return gitrepo.BranchReference{}, false, nil
		}
		return gitrepo.BranchReference{}, false, fmt.Errorf(upstreamResolutionTemplateConstant, branchName, referenceError)
	}

	return gitrepo.BranchReference{
		Name:   upstreamName.String(),
		Target: handle.peelToCommit(upstreamReference.Hash()).String(),
	}, true, nil
}

// AheadBehind counts commits reachable from only one side of the two tips.
func (handle *Repository) AheadBehind(executionContext context.Context, localCommit string, upstreamCommit string) (int, int, error) {
	localTip, localError := handle.loadCommit(localCommit)
	if localError != nil {
		return 0, 0, localError
	}
	upstreamTip, upstreamError := handle.loadCommit(upstreamCommit)
	if upstreamError != nil {
		return 0, 0, upstreamError
	}
	return newDivergenceWalk(handle.repository).count(executionContext, localTip, upstreamTip)
}

// Status lists index and working tree changes reported by go-git.
func (handle *Repository) Status(executionContext context.Context, options gitrepo.StatusOptions) ([]gitrepo.StatusEntry, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	worktree, worktreeError := handle.repository.Worktree()
	if worktreeError != nil {
		return nil, fmt.Errorf(statusFailureTemplateConstant, worktreeError)
	}
	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return nil, fmt.Errorf(statusFailureTemplateConstant, statusError)
	}

	repositoryIndex, indexError := handle.repository.Storer.Index()
	if indexError != nil {
		return nil, fmt.Errorf(indexReadTemplateConstant, indexError)
	}
	conflictedPaths := unmergedPaths(repositoryIndex)

	trackedDirectories := map[string]bool{}
	if options.IncludeUntracked && !options.RecurseUntrackedDirectories {
		trackedDirectories = indexedDirectories(repositoryIndex)
	}

	// worktree.Status never reports unmerged paths, so the index stages decide.
	entries := make([]gitrepo.StatusEntry, 0, len(worktreeStatus)+len(conflictedPaths))
	reportedConflicts := make(map[string]bool, len(conflictedPaths))
	for _, conflictedPath := range conflictedPaths {
		entries = append(entries, gitrepo.StatusEntry{Path: conflictedPath, Flags: gitrepo.StatusConflicted})
		reportedConflicts[conflictedPath] = true
	}
	reportedUntracked := map[string]bool{}
	for filePath, fileStatus := range worktreeStatus {
		if reportedConflicts[filePath] {
			continue
		}
		if fileStatus.Worktree == git.Untracked {
			if !options.IncludeUntracked {
				continue
			}
			if !options.RecurseUntrackedDirectories {
				filePath = collapseUntrackedPath(filePath, trackedDirectories)
				if reportedUntracked[filePath] {
					continue
				}
				reportedUntracked[filePath] = true
			}
			entries = append(entries, gitrepo.StatusEntry{Path: filePath, Flags: gitrepo.StatusWorktreeNew})
			continue
		}

		flags := classifyFileStatus(fileStatus)
		if flags == 0 {
			continue
		}
		entries = append(entries, gitrepo.StatusEntry{Path: filePath, Flags: flags})
	}

	sort.Slice(entries, func(leftIndex int, rightIndex int) bool {
		return entries[leftIndex].Path < entries[rightIndex].Path
	})
	return entries, nil
}

// ReadMarker returns the first line of a file inside the git directory.
func (handle *Repository) ReadMarker(executionContext context.Context, relativePath string) (string, bool, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", false, contextError
	}
	return gitrepo.ReadMarkerFile(handle.gitDirectory, relativePath)
}

func (handle *Repository) peelToCommit(objectHash plumbing.Hash) plumbing.Hash {
	tag, tagError := handle.repository.TagObject(objectHash)
	if tagError != nil {
		return objectHash
	}
	commit, commitError := tag.Commit()
	if commitError != nil {
		return objectHash
	}
	return commit.Hash
}

func (handle *Repository) loadCommit(commitIdentifier string) (*object.Commit, error) {
	commit, commitError := handle.repository.CommitObject(plumbing.NewHash(commitIdentifier))
	if commitError != nil {
		return nil, fmt.Errorf(commitLookupTemplateConstant, commitIdentifier, commitError)
	}
	return commit, nil
}

// trackingReferenceName maps a branch merge reference through the first fetch
// refspec that covers it.
func trackingReferenceName(fetchRefSpecs []config.RefSpec, mergeReference plumbing.ReferenceName) (plumbing.ReferenceName, bool) {
	for _, fetchRefSpec := range fetchRefSpecs {
		if fetchRefSpec.IsDelete() || !fetchRefSpec.Match(mergeReference) {
			continue
		}
		return fetchRefSpec.Dst(mergeReference), true
	}
	return "", false
}

func unmergedPaths(repositoryIndex *index.Index) []string {
	var paths []string
	seen := map[string]bool{}
	for _, indexEntry := range repositoryIndex.Entries {
		if indexEntry.Stage == mergedIndexStageConstant || seen[indexEntry.Name] {
			continue
		}
		seen[indexEntry.Name] = true
		paths = append(paths, indexEntry.Name)
	}
	return paths
}

func indexedDirectories(repositoryIndex *index.Index) map[string]bool {
	directories := map[string]bool{}
	for _, indexEntry := range repositoryIndex.Entries {
		for directory := path.Dir(indexEntry.Name); directory != "." && !directories[directory]; directory = path.Dir(directory) {
			directories[directory] = true
		}
	}
	return directories
}

// collapseUntrackedPath reports an untracked file through its outermost
// directory that holds no tracked files, the way git does without -uall.
func collapseUntrackedPath(filePath string, trackedDirectories map[string]bool) string {
	segments := strings.Split(filePath, "/")
	for segmentCount := 1; segmentCount < len(segments); segmentCount++ {
		directory := strings.Join(segments[:segmentCount], "/")
		if !trackedDirectories[directory] {
			return directory + untrackedDirectorySuffixConstant
		}
	}
	return filePath
}

func classifyFileStatus(fileStatus *git.FileStatus) gitrepo.StatusFlag {
	if fileStatus.Staging == git.UpdatedButUnmerged || fileStatus.Worktree == git.UpdatedButUnmerged {
		return gitrepo.StatusConflicted
	}

	var flags gitrepo.StatusFlag
	switch fileStatus.Staging {
	case git.Modified, git.Renamed, git.Copied:
		flags |= gitrepo.StatusIndexModified
	case git.Added:
		flags |= gitrepo.StatusIndexNew
	case git.Deleted:
		flags |= gitrepo.StatusIndexDeleted
	}

	switch fileStatus.Worktree {
	case git.Modified:
		flags |= gitrepo.StatusWorktreeModified
	case git.Deleted:
		flags |= gitrepo.StatusWorktreeDeleted
	case git.Added:
		flags |= gitrepo.StatusWorktreeNew
	}

	return flags
}
