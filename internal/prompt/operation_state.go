package prompt

import (
	"errors"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

// OperationState is the operational mode shown in place of a branch name.
type OperationState int

// Operational modes recognized by the classifier.
const (
	OperationClean OperationState = iota
	OperationRebasing
	OperationMerging
	OperationCherryPicking
	OperationReverting
	OperationBisecting
	OperationApplyingMailbox
	OperationUnborn
)

var repositoryStateOperations = map[gitrepo.RepositoryState]OperationState{
	gitrepo.StateRebase:               OperationRebasing,
	gitrepo.StateRebaseInteractive:    OperationRebasing,
	gitrepo.StateRebaseMerge:          OperationRebasing,
	gitrepo.StateRevert:               OperationReverting,
	gitrepo.StateRevertSequence:       OperationReverting,
	gitrepo.StateCherryPick:           OperationCherryPicking,
	gitrepo.StateCherryPickSequence:   OperationCherryPicking,
	gitrepo.StateApplyMailbox:         OperationApplyingMailbox,
	gitrepo.StateApplyMailboxOrRebase: OperationApplyingMailbox,
	gitrepo.StateMerge:                OperationMerging,
	gitrepo.StateBisect:               OperationBisecting,
}

var operationStateNames = map[OperationState]string{
	OperationClean:           "clean",
	OperationRebasing:        "rebasing",
	OperationMerging:         "merging",
	OperationCherryPicking:   "cherry-picking",
	OperationReverting:       "reverting",
	OperationBisecting:       "bisecting",
	OperationApplyingMailbox: "applying-mailbox",
	OperationUnborn:          "unborn",
}

// String returns the lower-case name of the operation.
func (operation OperationState) String() string {
	return operationStateNames[operation]
}

// ClassifyOperationState maps the raw repository state to an operational mode.
// Unborn wins over every marker and is only reported when headError is
// gitrepo.ErrUnbornBranch.
func ClassifyOperationState(state gitrepo.RepositoryState, headError error) OperationState {
	if errors.Is(headError, gitrepo.ErrUnbornBranch) {
		return OperationUnborn
	}
	if operation, mapped := repositoryStateOperations[state]; mapped {
		return operation
	}
	return OperationClean
}
