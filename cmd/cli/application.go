package cli

import (
	"context"
	"encoding"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/jfultz/git-prompt/internal/execshell"
	"github.com/jfultz/git-prompt/internal/gitrepo"
	"github.com/jfultz/git-prompt/internal/gitrepo/gogit"
	"github.com/jfultz/git-prompt/internal/prompt"
	"github.com/jfultz/git-prompt/internal/ui"
	"github.com/jfultz/git-prompt/internal/utils"
	flagutils "github.com/jfultz/git-prompt/internal/utils/flags"
	pathutils "github.com/jfultz/git-prompt/internal/utils/path"
)

const (
	applicationNameConstant                  = "git-prompt"
	applicationUseConstant                   = applicationNameConstant + " [path]"
	applicationShortDescriptionConstant      = "Print a compact git status segment for shell prompts"
	applicationLongDescriptionConstant       = "git-prompt inspects the repository containing path (default: the current directory) and prints its branch, divergence from upstream, and working tree changes on one line."
	configCommandUseConstant                 = "config"
	configCommandShortDescriptionConstant    = "Print the effective configuration as YAML"
	configFileFlagNameConstant               = "config"
	configFileFlagUsageConstant              = "Optional path to a configuration file (YAML)."
	logLevelFlagNameConstant                 = "log-level"
	logLevelFlagUsageConstant                = "Override the configured log level."
	logFormatFlagNameConstant                = "log-format"
	logFormatFlagUsageConstant               = "Override the configured log format (structured or console)."
	backendFlagNameConstant                  = "backend"
	backendFlagUsageConstant                 = "Repository backend."
	colorFlagNameConstant                    = "color"
	colorFlagUsageConstant                   = "Colour the change summary."
	shellFlagNameConstant                    = "shell"
	shellFlagUsageConstant                   = "Wrap escape sequences for the given shell prompt."
	untrackedFlagNameConstant                = "untracked"
	untrackedFlagUsageConstant               = "Count untracked files."
	refreshIndexFlagNameConstant             = "refresh-index"
	refreshIndexFlagUsageConstant            = "Refresh the index before collecting status."
	environmentPrefixConstant                = "GITPROMPT"
	configurationNameConstant                = "config"
	configurationTypeConstant                = "yaml"
	configurationDirectoryNameConstant       = applicationNameConstant
	defaultRepositoryPathConstant            = "."
	configurationInitializedMessageConstant  = "configuration initialized"
	promptResolvedMessageConstant            = "prompt resolved"
	configurationLogLevelFieldConstant       = "log_level"
	configurationLogFormatFieldConstant      = "log_format"
	configurationFileFieldConstant           = "config_file"
	logFieldBackendConstant                  = "backend"
	logFieldPathConstant                     = "path"
	configurationLoadErrorTemplateConstant   = "unable to load configuration: %w"
	configurationPathErrorTemplateConstant   = "unable to resolve configuration path: %w"
	repositoryPathErrorTemplateConstant      = "unable to resolve repository path: %w"
	flagValueErrorTemplateConstant           = "invalid --%s value: %w"
	loggerCreationErrorTemplateConstant      = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant          = "unable to flush logger: %w"
	backendCreationErrorTemplateConstant     = "unable to create %s backend: %w"
	serviceCreationErrorTemplateConstant     = "unable to create prompt service: %w"
	configurationEncodeErrorTemplateConstant = "unable to encode configuration: %w"
)

var (
	backendChoices = []string{backendCommandLineConstant, backendGoGitConstant}
	colorChoices   = []string{string(prompt.ColorAlways), string(prompt.ColorNever), string(prompt.ColorAuto)}
	shellChoices   = []string{string(prompt.ShellNone), string(prompt.ShellBash), string(prompt.ShellZsh)}
)

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	homeExpander          *pathutils.HomeExpander
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	backendFlagValue      string
	colorFlagValue        string
	shellFlagValue        string
	untrackedFlagValue    bool
	refreshIndexFlagValue bool
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		utils.UserConfigurationSearchPaths(configurationDirectoryNameConstant),
		utils.WithDecodeHooks(configurationDecodeHooks()...),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		homeExpander:        pathutils.NewHomeExpander(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runPromptCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.backendFlagValue, backendFlagNameConstant, backendCommandLineConstant, backendChoices, backendFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.colorFlagValue, colorFlagNameConstant, string(prompt.ColorAlways), colorChoices, colorFlagUsageConstant)
	flagutils.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.shellFlagValue, shellFlagNameConstant, string(prompt.ShellNone), shellChoices, shellFlagUsageConstant)
	flagutils.AddToggleFlag(cobraCommand.PersistentFlags(), &application.untrackedFlagValue, untrackedFlagNameConstant, true, untrackedFlagUsageConstant)
	flagutils.AddToggleFlag(cobraCommand.PersistentFlags(), &application.refreshIndexFlagValue, refreshIndexFlagNameConstant, true, refreshIndexFlagUsageConstant)

	cobraCommand.AddCommand(&cobra.Command{
		Use:   configCommandUseConstant,
		Short: configCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runConfigCommand(command)
		},
	})

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	configurationFilePath, expandError := application.homeExpander.Expand(application.configurationFilePath)
	if expandError != nil {
		return fmt.Errorf(configurationPathErrorTemplateConstant, expandError)
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(configurationFilePath, DefaultConfigurationValues(), &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if overrideError := application.applyPromptFlagOverrides(command); overrideError != nil {
		return overrideError
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) applyPromptFlagOverrides(command *cobra.Command) error {
	promptConfiguration := &application.configuration.Prompt

	textOverrides := []struct {
		flagName string
		value    string
		target   encoding.TextUnmarshaler
	}{
		{flagName: backendFlagNameConstant, value: application.backendFlagValue, target: &promptConfiguration.Backend},
		{flagName: colorFlagNameConstant, value: application.colorFlagValue, target: &promptConfiguration.Color},
		{flagName: shellFlagNameConstant, value: application.shellFlagValue, target: &promptConfiguration.Shell},
	}
	for _, override := range textOverrides {
		if !application.persistentFlagChanged(command, override.flagName) {
			continue
		}
		if unmarshalError := override.target.UnmarshalText([]byte(override.value)); unmarshalError != nil {
			return fmt.Errorf(flagValueErrorTemplateConstant, override.flagName, unmarshalError)
		}
	}

	if application.persistentFlagChanged(command, untrackedFlagNameConstant) {
		promptConfiguration.IncludeUntracked = application.untrackedFlagValue
	}
	if application.persistentFlagChanged(command, refreshIndexFlagNameConstant) {
		promptConfiguration.RefreshIndex = application.refreshIndexFlagValue
	}
	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runPromptCommand(command *cobra.Command, arguments []string) error {
	repositoryPath := defaultRepositoryPathConstant
	if len(arguments) > 0 {
		repositoryPath = arguments[0]
	}
	expandedPath, expandError := application.homeExpander.Expand(repositoryPath)
	if expandError != nil {
		return fmt.Errorf(repositoryPathErrorTemplateConstant, expandError)
	}

	service, serviceError := application.buildService()
	if serviceError != nil {
		return serviceError
	}

	executionContext := command.Context()
	if executionContext == nil {
		executionContext = context.Background()
	}
	promptConfiguration := application.configuration.Prompt
	if promptConfiguration.Backend == BackendGoGit && promptConfiguration.CommandTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, promptConfiguration.CommandTimeout)
		defer cancel()
	}

	renderedPrompt := service.Render(executionContext, expandedPath)
	application.logger.Debug(
		promptResolvedMessageConstant,
		zap.String(logFieldPathConstant, expandedPath),
		zap.String(logFieldBackendConstant, string(promptConfiguration.Backend)),
	)

	_, writeError := fmt.Fprintln(command.OutOrStdout(), renderedPrompt)
	return writeError
}

func (application *Application) buildService() (*prompt.Service, error) {
	promptConfiguration := application.configuration.Prompt

	opener, openerError := application.buildRepositoryOpener()
	if openerError != nil {
		return nil, fmt.Errorf(backendCreationErrorTemplateConstant, promptConfiguration.Backend, openerError)
	}

	service, serviceError := prompt.NewService(prompt.ServiceDependencies{
		Opener:          opener,
		Logger:          application.logger,
		ChangeFormatter: prompt.NewChangeFormatter(promptConfiguration.Glyphs, promptConfiguration.Color),
		Renderer:        prompt.NewRenderer(promptConfiguration.Shell),
		StatusOptions:   promptConfiguration.StatusOptions(),
	})
	if serviceError != nil {
		return nil, fmt.Errorf(serviceCreationErrorTemplateConstant, serviceError)
	}
	return service, nil
}

func (application *Application) buildRepositoryOpener() (gitrepo.RepositoryOpener, error) {
	promptConfiguration := application.configuration.Prompt
	if promptConfiguration.Backend == BackendGoGit {
		return gogit.NewOpener(), nil
	}

	executorOptions := []execshell.ShellExecutorOption{execshell.WithCommandTimeout(promptConfiguration.CommandTimeout)}
	if application.humanReadableLoggingEnabled() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(application.logger)))
	}

	executor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner(), executorOptions...)
	if executorError != nil {
		return nil, executorError
	}
	manager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, managerError
	}
	return manager, nil
}

func (application *Application) runConfigCommand(command *cobra.Command) error {
	encodedConfiguration, encodeError := yaml.Marshal(application.configuration)
	if encodeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplateConstant, encodeError)
	}
	_, writeError := command.OutOrStdout().Write(encodedConfiguration)
	return writeError
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
