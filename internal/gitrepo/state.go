package gitrepo

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// RepositoryState is the raw operation code recorded in the git directory.
type RepositoryState int

// Operation codes, mirroring the marker files git leaves behind.
const (
	StateNone RepositoryState = iota
	StateMerge
	StateRevert
	StateRevertSequence
	StateCherryPick
	StateCherryPickSequence
	StateBisect
	StateRebase
	StateRebaseInteractive
	StateRebaseMerge
	StateApplyMailbox
	StateApplyMailboxOrRebase
)

const (
	rebaseMergeDirectoryConstant       = "rebase-merge"
	rebaseMergeInteractiveFileConstant = "rebase-merge/interactive"
	rebaseApplyDirectoryConstant       = "rebase-apply"
	rebaseApplyRebasingFileConstant    = "rebase-apply/rebasing"
	rebaseApplyApplyingFileConstant    = "rebase-apply/applying"
	mergeHeadFileConstant              = "MERGE_HEAD"
	revertHeadFileConstant             = "REVERT_HEAD"
	cherryPickHeadFileConstant         = "CHERRY_PICK_HEAD"
	bisectLogFileConstant              = "BISECT_LOG"
	sequencerTodoFileConstant          = "sequencer/todo"
	commonDirectoryFileConstant        = "commondir"
)

var repositoryStateNames = map[RepositoryState]string{
	StateNone:                 "none",
	StateMerge:                "merge",
	StateRevert:               "revert",
	StateRevertSequence:       "revert-sequence",
	StateCherryPick:           "cherry-pick",
	StateCherryPickSequence:   "cherry-pick-sequence",
	StateBisect:               "bisect",
	StateRebase:               "rebase",
	StateRebaseInteractive:    "rebase-interactive",
	StateRebaseMerge:          "rebase-merge",
	StateApplyMailbox:         "apply-mailbox",
	StateApplyMailboxOrRebase: "apply-mailbox-or-rebase",
}

// String returns the state's marker-style name.
func (state RepositoryState) String() string {
	if name, known := repositoryStateNames[state]; known {
		return name
	}
	return repositoryStateNames[StateNone]
}

// DetectRepositoryState inspects the marker files of a git directory. The
// precedence order matches libgit2's git_repository_state.
func DetectRepositoryState(gitDirectory string) RepositoryState {
	contains := func(relativePath string, wantDirectory bool) bool {
		information, statError := os.Stat(filepath.Join(gitDirectory, filepath.FromSlash(relativePath)))
		if statError != nil {
			return false
		}
		return information.IsDir() == wantDirectory
	}

	switch {
	case contains(rebaseMergeInteractiveFileConstant, false):
		return StateRebaseInteractive
	case contains(rebaseMergeDirectoryConstant, true):
		return StateRebaseMerge
	case contains(rebaseApplyRebasingFileConstant, false):
		return StateRebase
	case contains(rebaseApplyApplyingFileConstant, false):
		return StateApplyMailbox
	case contains(rebaseApplyDirectoryConstant, true):
		return StateApplyMailboxOrRebase
	case contains(mergeHeadFileConstant, false):
		return StateMerge
	case contains(revertHeadFileConstant, false):
		if contains(sequencerTodoFileConstant, false) {
			return StateRevertSequence
		}
		return StateRevert
	case contains(cherryPickHeadFileConstant, false):
		if contains(sequencerTodoFileConstant, false) {
			return StateCherryPickSequence
		}
		return StateCherryPick
	case contains(bisectLogFileConstant, false):
		return StateBisect
	default:
		return StateNone
	}
}

// IsLinkedWorktreeDirectory reports whether a git directory belongs to a
// secondary worktree, which git marks with a commondir file.
func IsLinkedWorktreeDirectory(gitDirectory string) bool {
	information, statError := os.Stat(filepath.Join(gitDirectory, commonDirectoryFileConstant))
	return statError == nil && !information.IsDir()
}

// ReadMarkerFile returns the first trimmed line of a file inside the git directory.
// Missing or empty files are reported as not found.
func ReadMarkerFile(gitDirectory string, relativePath string) (string, bool, error) {
	markerFile, openError := os.Open(filepath.Join(gitDirectory, filepath.FromSlash(relativePath)))
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, openError
	}
	defer markerFile.Close()

	scanner := bufio.NewScanner(markerFile)
	if !scanner.Scan() {
		return "", false, scanner.Err()
	}
	firstLine := strings.TrimSpace(scanner.Text())
	return firstLine, len(firstLine) > 0, nil
}
