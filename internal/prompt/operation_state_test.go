package prompt_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jfultz/git-prompt/internal/gitrepo"
	"github.com/jfultz/git-prompt/internal/prompt"
)

func TestClassifyOperationState(testInstance *testing.T) {
	testCases := []struct {
		name              string
		state             gitrepo.RepositoryState
		headError         error
		expectedOperation prompt.OperationState
	}{
		{name: "clean", state: gitrepo.StateNone, expectedOperation: prompt.OperationClean},
		{name: "rebase", state: gitrepo.StateRebase, expectedOperation: prompt.OperationRebasing},
		{name: "rebase_interactive", state: gitrepo.StateRebaseInteractive, expectedOperation: prompt.OperationRebasing},
		{name: "rebase_merge", state: gitrepo.StateRebaseMerge, expectedOperation: prompt.OperationRebasing},
		{name: "revert", state: gitrepo.StateRevert, expectedOperation: prompt.OperationReverting},
		{name: "revert_sequence", state: gitrepo.StateRevertSequence, expectedOperation: prompt.OperationReverting},
		{name: "cherry_pick", state: gitrepo.StateCherryPick, expectedOperation: prompt.OperationCherryPicking},
		{name: "cherry_pick_sequence", state: gitrepo.StateCherryPickSequence, expectedOperation: prompt.OperationCherryPicking},
		{name: "apply_mailbox", state: gitrepo.StateApplyMailbox, expectedOperation: prompt.OperationApplyingMailbox},
		{name: "apply_mailbox_or_rebase", state: gitrepo.StateApplyMailboxOrRebase, expectedOperation: prompt.OperationApplyingMailbox},
		{name: "merge", state: gitrepo.StateMerge, expectedOperation: prompt.OperationMerging},
		{name: "bisect", state: gitrepo.StateBisect, expectedOperation: prompt.OperationBisecting},
		{name: "unborn_wins", state: gitrepo.StateMerge, headError: gitrepo.ErrUnbornBranch, expectedOperation: prompt.OperationUnborn},
		{name: "wrapped_unborn", state: gitrepo.StateNone, headError: errors.Join(errors.New("lookup"), gitrepo.ErrUnbornBranch), expectedOperation: prompt.OperationUnborn},
		{name: "headless_is_not_unborn", state: gitrepo.StateNone, headError: gitrepo.ErrHeadUnresolvable, expectedOperation: prompt.OperationClean},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedOperation, prompt.ClassifyOperationState(testCase.state, testCase.headError))
		})
	}
}

func TestOperationStateString(testInstance *testing.T) {
	require.Equal(testInstance, "cherry-picking", prompt.OperationCherryPicking.String())
	require.Equal(testInstance, "unborn", prompt.OperationUnborn.String())
}
