package prompt

import (
	"fmt"
	"strings"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	// UnbornLabelConstant is shown for a branch that has no commits yet.
	UnbornLabelConstant = "[Unborn]"

	rebaseOriginalHeadMarkerConstant = "rebase-merge/orig-head"
	rebaseOntoMarkerConstant         = "rebase-merge/onto"
	rebasingTemplateConstant         = "rebasing %s onto %s"
	worktreeRebaseLabelConstant      = "worktree rebase"
	unhandledRebaseLabelConstant     = "unhandled rebase"
	preferredRemoteBranchConstant    = "origin/master"
	preferredRemotePrefixConstant    = "origin/release/"
	remoteHeadNameConstant           = "HEAD"
	referencePathSeparatorConstant   = "/"
	abbreviatedCommitLengthConstant  = 8
)

var operationLabels = map[OperationState]string{
	OperationReverting:       "Reverting",
	OperationCherryPicking:   "Cherry-picking",
	OperationApplyingMailbox: "Applying",
	OperationMerging:         "Merging",
	OperationBisecting:       "Bisecting",
}

// ResolvedPosition is the label for the checked-out position. Named is true only
// when the label is a local branch name.
type ResolvedPosition struct {
	Label string
	Named bool
}

// DisambiguateCommit names a commit after the remote-tracking branches pointing
// at it, preferring the shallowest names, then origin/master, then the first
// origin/release/ branch. Without candidates it abbreviates the commit id.
func DisambiguateCommit(commitIdentifier string, remoteBranches []gitrepo.BranchReference) string {
	var candidates []string
	minimumDepth := -1
	for _, remoteBranch := range remoteBranches {
		if remoteBranch.Target != commitIdentifier {
			continue
		}
		shortName := strings.TrimPrefix(remoteBranch.Name, gitrepo.RemoteBranchPrefixConstant)
		if len(shortName) == 0 || remoteRelativePath(shortName) == remoteHeadNameConstant {
			continue
		}
		depth := strings.Count(shortName, referencePathSeparatorConstant)
		switch {
		case minimumDepth < 0 || depth < minimumDepth:
			minimumDepth = depth
			candidates = []string{shortName}
		case depth == minimumDepth:
			candidates = append(candidates, shortName)
		}
	}

	if len(candidates) == 0 {
		return abbreviateCommit(commitIdentifier)
	}

	for _, candidate := range candidates {
		if candidate == preferredRemoteBranchConstant {
			return candidate
		}
	}
	for _, candidate := range candidates {
		if strings.HasPrefix(candidate, preferredRemotePrefixConstant) {
			return candidate
		}
	}
	return candidates[0]
}

func rebaseLabel(originalHead string, onto string, originalHeadFound bool, ontoFound bool, linkedWorktree bool, remoteBranches []gitrepo.BranchReference) string {
	switch {
	case originalHeadFound && ontoFound:
		return fmt.Sprintf(rebasingTemplateConstant, DisambiguateCommit(originalHead, remoteBranches), DisambiguateCommit(onto, remoteBranches))
	case linkedWorktree:
		return worktreeRebaseLabelConstant
	default:
		return unhandledRebaseLabelConstant
	}
}

func remoteRelativePath(shortName string) string {
	separatorIndex := strings.Index(shortName, referencePathSeparatorConstant)
	if separatorIndex < 0 {
		return shortName
	}
	return shortName[separatorIndex+1:]
}

func abbreviateCommit(commitIdentifier string) string {
	if len(commitIdentifier) <= abbreviatedCommitLengthConstant {
		return commitIdentifier
	}
	return commitIdentifier[:abbreviatedCommitLengthConstant]
}
