package gogit

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	repositoryPathResolutionTemplateConstant = "unable to resolve repository path %q: %w"
	repositoryOpenTemplateConstant           = "unable to open repository at %s: %w"
	unsupportedStorageTemplateConstant       = "unsupported repository storage %T"
)

// Opener discovers repositories with go-git.
type Opener struct{}

// NewOpener constructs an Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open discovers the repository enclosing path. A bare repository is only
// recognized when path names its directory.
func (opener *Opener) Open(executionContext context.Context, path string) (gitrepo.Repository, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return nil, contextError
	}

	absolutePath, absoluteError := filepath.Abs(path)
	if absoluteError != nil {
		return nil, fmt.Errorf(repositoryPathResolutionTemplateConstant, path, absoluteError)
	}

	repository, openError := git.PlainOpenWithOptions(absolutePath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if errors.Is(openError, git.ErrRepositoryNotExists) {
		repository, openError = git.PlainOpenWithOptions(absolutePath, &git.PlainOpenOptions{DetectDotGit: true, EnableDotGitCommonDir: true})
	}
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, gitrepo.ErrRepositoryNotFound
		}
		return nil, fmt.Errorf(repositoryOpenTemplateConstant, absolutePath, openError)
	}

	storage, isFilesystemStorage := repository.Storer.(*filesystem.Storage)
	if !isFilesystemStorage {
		return nil, fmt.Errorf(unsupportedStorageTemplateConstant, repository.Storer)
	}

	gitDirectory := storage.Filesystem().Root()
	_, worktreeError := repository.Worktree()

	return &Repository{
		repository:     repository,
		gitDirectory:   gitDirectory,
		bare:           errors.Is(worktreeError, git.ErrIsBareRepository),
		linkedWorktree: gitrepo.IsLinkedWorktreeDirectory(gitDirectory),
	}, nil
}
