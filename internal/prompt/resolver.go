package prompt

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	repositoryMissingMessageConstant      = "repository not configured"
	formatterMissingMessageConstant       = "change formatter not configured"
	headFailureLogMessageConstant         = "HEAD could not be resolved"
	stateFailureLogMessageConstant        = "repository state could not be read"
	remoteBranchFailureLogMessageConstant = "remote branches could not be listed"
	markerFailureLogMessageConstant       = "rebase marker could not be read"
	upstreamFailureLogMessageConstant     = "upstream could not be resolved"
	divergenceFailureLogMessageConstant   = "divergence could not be counted"
	statusFailureLogMessageConstant       = "status could not be collected"
	logFieldGitDirectoryConstant          = "git_directory"
	logFieldBranchConstant                = "branch"
	logFieldMarkerConstant                = "marker"
)

// ErrRepositoryNotConfigured indicates the resolver was constructed without a repository.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrChangeFormatterNotConfigured indicates the resolver was constructed without a formatter.
var ErrChangeFormatterNotConfigured = errors.New(formatterMissingMessageConstant)

// ResolverDependencies configures a RepositoryStateResolver.
type ResolverDependencies struct {
	Repository      gitrepo.Repository
	Logger          *zap.Logger
	ChangeFormatter *ChangeFormatter
	StatusOptions   gitrepo.StatusOptions
}

// RepositoryStateResolver answers the four prompt questions for one repository.
// Every answer is computed on demand and failures are absorbed per answer.
type RepositoryStateResolver struct {
	repository      gitrepo.Repository
	logger          *zap.Logger
	changeFormatter *ChangeFormatter
	statusOptions   gitrepo.StatusOptions
}

// NewRepositoryStateResolver validates the dependencies and constructs a resolver.
func NewRepositoryStateResolver(dependencies ResolverDependencies) (*RepositoryStateResolver, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.ChangeFormatter == nil {
		return nil, ErrChangeFormatterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepositoryStateResolver{
		repository:      dependencies.Repository,
		logger:          logger.With(zap.String(logFieldGitDirectoryConstant, dependencies.Repository.GitDirectory())),
		changeFormatter: dependencies.ChangeFormatter,
		statusOptions:   dependencies.StatusOptions,
	}, nil
}

// OperationState classifies the repository's operational mode.
func (resolver *RepositoryStateResolver) OperationState(executionContext context.Context) OperationState {
	_, headError := resolver.repository.Head(executionContext)
	return resolver.classify(executionContext, headError)
}

// Position resolves the label of the checked-out position. It reports false only
// when HEAD fails for a reason other than an unborn branch.
func (resolver *RepositoryStateResolver) Position(executionContext context.Context) (ResolvedPosition, bool) {
	headReference, headError := resolver.repository.Head(executionContext)
	operation := resolver.classify(executionContext, headError)

	switch operation {
	case OperationUnborn:
		return ResolvedPosition{Label: UnbornLabelConstant}, true
	case OperationRebasing:
		return ResolvedPosition{Label: resolver.rebasePosition(executionContext)}, true
	case OperationClean:
	default:
		return ResolvedPosition{Label: operationLabels[operation]}, true
	}

	if headError != nil {
		resolver.logger.Debug(headFailureLogMessageConstant, zap.Error(headError))
		return ResolvedPosition{}, false
	}
	if branchName, named := headReference.BranchName(); named {
		return ResolvedPosition{Label: branchName, Named: true}, true
	}
	return ResolvedPosition{Label: DisambiguateCommit(headReference.Target, resolver.remoteBranches(executionContext))}, true
}

// Upstream resolves the upstream of the checked-out local branch.
func (resolver *RepositoryStateResolver) Upstream(executionContext context.Context) (gitrepo.BranchReference, bool) {
	headReference, headError := resolver.repository.Head(executionContext)
	if headError != nil {
		return gitrepo.BranchReference{}, false
	}
	branchName, named := headReference.BranchName()
	if !named {
		return gitrepo.BranchReference{}, false
	}

	upstream, found, upstreamError := resolver.repository.Upstream(executionContext, branchName)
	if upstreamError != nil {
		resolver.logger.Debug(upstreamFailureLogMessageConstant, zap.String(logFieldBranchConstant, branchName), zap.Error(upstreamError))
		return gitrepo.BranchReference{}, false
	}
	return upstream, found
}

// Divergence counts commits between the checked-out branch and its upstream.
func (resolver *RepositoryStateResolver) Divergence(executionContext context.Context) (DivergenceCount, bool) {
	headReference, headError := resolver.repository.Head(executionContext)
	if headError != nil {
		return DivergenceCount{}, false
	}
	upstream, found := resolver.Upstream(executionContext)
	if !found {
		return DivergenceCount{}, false
	}

	aheadCount, behindCount, countError := resolver.repository.AheadBehind(executionContext, headReference.Target, upstream.Target)
	if countError != nil {
		resolver.logger.Debug(divergenceFailureLogMessageConstant, zap.String(logFieldBranchConstant, headReference.Name), zap.Error(countError))
		return DivergenceCount{}, false
	}
	return DivergenceCount{Ahead: aheadCount, Behind: behindCount}, true
}

// Changes tallies index and working tree changes. Bare repositories and unborn
// branches report false.
func (resolver *RepositoryStateResolver) Changes(executionContext context.Context) (ChangeSummary, bool) {
	if resolver.repository.IsBare() {
		return nil, false
	}
	if _, headError := resolver.repository.Head(executionContext); errors.Is(headError, gitrepo.ErrUnbornBranch) {
		return nil, false
	}

	entries, statusError := resolver.repository.Status(executionContext, resolver.statusOptions)
	if statusError != nil {
		resolver.logger.Debug(statusFailureLogMessageConstant, zap.Error(statusError))
		return nil, false
	}
	return SummarizeChanges(entries), true
}

// PositionLabel returns the position label, or an empty string when it cannot be resolved.
func (resolver *RepositoryStateResolver) PositionLabel(executionContext context.Context) string {
	position, _ := resolver.Position(executionContext)
	return position.Label
}

// DivergenceLabel returns the divergence token, or an empty string without an upstream.
func (resolver *RepositoryStateResolver) DivergenceLabel(executionContext context.Context) string {
	count, found := resolver.Divergence(executionContext)
	if !found {
		return ""
	}
	return count.String()
}

// UpstreamLabel returns the short upstream name, or an empty string without an upstream.
func (resolver *RepositoryStateResolver) UpstreamLabel(executionContext context.Context) string {
	upstream, found := resolver.Upstream(executionContext)
	if !found {
		return ""
	}
	return upstream.ShortName()
}

// ChangesLabel returns the formatted change summary, or an empty string when unavailable.
func (resolver *RepositoryStateResolver) ChangesLabel(executionContext context.Context) string {
	summary, found := resolver.Changes(executionContext)
	if !found {
		return ""
	}
	return resolver.changeFormatter.Format(summary)
}

// Segments resolves all four prompt segments.
func (resolver *RepositoryStateResolver) Segments(executionContext context.Context) Segments {
	return Segments{
		Position:   resolver.PositionLabel(executionContext),
		Divergence: resolver.DivergenceLabel(executionContext),
		Upstream:   resolver.UpstreamLabel(executionContext),
		Changes:    resolver.ChangesLabel(executionContext),
	}
}

func (resolver *RepositoryStateResolver) classify(executionContext context.Context, headError error) OperationState {
	state, stateError := resolver.repository.State(executionContext)
	if stateError != nil {
		resolver.logger.Debug(stateFailureLogMessageConstant, zap.Error(stateError))
		state = gitrepo.StateNone
	}
	return ClassifyOperationState(state, headError)
}

func (resolver *RepositoryStateResolver) rebasePosition(executionContext context.Context) string {
	originalHead, originalHeadFound := resolver.readMarker(executionContext, rebaseOriginalHeadMarkerConstant)
	onto, ontoFound := resolver.readMarker(executionContext, rebaseOntoMarkerConstant)

	var remoteBranches []gitrepo.BranchReference
	if originalHeadFound && ontoFound {
		remoteBranches = resolver.remoteBranches(executionContext)
	}
	return rebaseLabel(originalHead, onto, originalHeadFound, ontoFound, resolver.repository.IsLinkedWorktree(), remoteBranches)
}

func (resolver *RepositoryStateResolver) readMarker(executionContext context.Context, relativePath string) (string, bool) {
	markerValue, markerFound, markerError := resolver.repository.ReadMarker(executionContext, relativePath)
	if markerError != nil {
		resolver.logger.Debug(markerFailureLogMessageConstant, zap.String(logFieldMarkerConstant, relativePath), zap.Error(markerError))
		return "", false
	}
	return markerValue, markerFound
}

func (resolver *RepositoryStateResolver) remoteBranches(executionContext context.Context) []gitrepo.BranchReference {
	remoteBranches, listingError := resolver.repository.RemoteBranches(executionContext)
	if listingError != nil {
		resolver.logger.Debug(remoteBranchFailureLogMessageConstant, zap.Error(listingError))
		return nil
	}
	return remoteBranches
}
