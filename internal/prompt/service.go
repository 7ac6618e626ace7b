package prompt

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/jfultz/git-prompt/internal/gitrepo"
)

const (
	openerMissingMessageConstant     = "repository opener not configured"
	repositoryOpenFailureLogConstant = "repository could not be opened"
	repositoryMissingLogConstant     = "no repository found"
	logFieldPathConstant             = "path"
)

// ErrRepositoryOpenerNotConfigured indicates the service was constructed without an opener.
var ErrRepositoryOpenerNotConfigured = errors.New(openerMissingMessageConstant)

// ServiceDependencies configures a Service.
type ServiceDependencies struct {
	Opener          gitrepo.RepositoryOpener
	Logger          *zap.Logger
	ChangeFormatter *ChangeFormatter
	Renderer        Renderer
	StatusOptions   gitrepo.StatusOptions
}

// Service opens the repository for a path and renders its prompt.
type Service struct {
	opener          gitrepo.RepositoryOpener
	logger          *zap.Logger
	changeFormatter *ChangeFormatter
	renderer        Renderer
	statusOptions   gitrepo.StatusOptions
}

// NewService validates the dependencies and constructs a Service.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Opener == nil {
		return nil, ErrRepositoryOpenerNotConfigured
	}
	if dependencies.ChangeFormatter == nil {
		return nil, ErrChangeFormatterNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		opener:          dependencies.Opener,
		logger:          logger,
		changeFormatter: dependencies.ChangeFormatter,
		renderer:        dependencies.Renderer,
		statusOptions:   dependencies.StatusOptions,
	}, nil
}

// Resolve returns the prompt segments for the repository enclosing path.
// Paths outside a repository, and repositories that cannot be opened, yield
// empty segments.
func (service *Service) Resolve(executionContext context.Context, path string) Segments {
	repository, openError := service.opener.Open(executionContext, path)
	if openError != nil {
		if errors.Is(openError, gitrepo.ErrRepositoryNotFound) {
			service.logger.Debug(repositoryMissingLogConstant, zap.String(logFieldPathConstant, path))
		} else {
			service.logger.Warn(repositoryOpenFailureLogConstant, zap.String(logFieldPathConstant, path), zap.Error(openError))
		}
		return Segments{}
	}

	resolver, resolverError := NewRepositoryStateResolver(ResolverDependencies{
		Repository:      repository,
		Logger:          service.logger,
		ChangeFormatter: service.changeFormatter,
		StatusOptions:   service.statusOptions,
	})
	if resolverError != nil {
		return Segments{}
	}
	return resolver.Segments(executionContext)
}

// Render resolves and renders the prompt for the repository enclosing path.
func (service *Service) Render(executionContext context.Context, path string) string {
	return service.renderer.Render(service.Resolve(executionContext, path))
}
