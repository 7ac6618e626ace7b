package cli

import (
	"fmt"
	"strings"
	"time"

	mapstructure "github.com/go-viper/mapstructure/v2"

	"github.com/jfultz/git-prompt/internal/gitrepo"
	"github.com/jfultz/git-prompt/internal/prompt"
	"github.com/jfultz/git-prompt/internal/utils"
)

const (
	backendCommandLineConstant              = "cli"
	backendGoGitConstant                    = "go-git"
	unsupportedBackendTemplateConstant      = "unsupported backend %q (expected cli or go-git)"
	commonConfigurationKeyConstant          = "common"
	promptConfigurationKeyConstant          = "prompt"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	promptBackendConfigKeyConstant          = promptConfigurationKeyConstant + ".backend"
	promptColorConfigKeyConstant            = promptConfigurationKeyConstant + ".color"
	promptShellConfigKeyConstant            = promptConfigurationKeyConstant + ".shell"
	promptCommandTimeoutConfigKeyConstant   = promptConfigurationKeyConstant + ".command_timeout"
	promptRefreshIndexConfigKeyConstant     = promptConfigurationKeyConstant + ".refresh_index"
	promptIncludeUntrackedConfigKeyConstant = promptConfigurationKeyConstant + ".include_untracked"
	promptRecurseUntrackedConfigKeyConstant = promptConfigurationKeyConstant + ".recurse_untracked_directories"
)

// RepositoryBackend selects the implementation used to inspect repositories.
type RepositoryBackend string

// Supported repository backends.
const (
	BackendCommandLine RepositoryBackend = backendCommandLineConstant
	BackendGoGit       RepositoryBackend = backendGoGitConstant
)

// UnmarshalText validates the textual backend name.
func (backend *RepositoryBackend) UnmarshalText(text []byte) error {
	candidate := RepositoryBackend(strings.ToLower(strings.TrimSpace(string(text))))
	switch candidate {
	case BackendCommandLine, BackendGoGit:
		*backend = candidate
		return nil
	case "":
		*backend = BackendCommandLine
		return nil
	default:
		return fmt.Errorf(unsupportedBackendTemplateConstant, string(text))
	}
}

// MarshalText returns the textual backend name.
func (backend RepositoryBackend) MarshalText() ([]byte, error) {
	return []byte(backend), nil
}

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common" yaml:"common"`
	Prompt PromptConfiguration            `mapstructure:"prompt" yaml:"prompt"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// PromptConfiguration controls how the prompt is resolved and rendered.
type PromptConfiguration struct {
	Backend                     RepositoryBackend `mapstructure:"backend" yaml:"backend"`
	Color                       prompt.ColorMode  `mapstructure:"color" yaml:"color"`
	Shell                       prompt.ShellKind  `mapstructure:"shell" yaml:"shell"`
	CommandTimeout              time.Duration     `mapstructure:"command_timeout" yaml:"command_timeout"`
	RefreshIndex                bool              `mapstructure:"refresh_index" yaml:"refresh_index"`
	IncludeUntracked            bool              `mapstructure:"include_untracked" yaml:"include_untracked"`
	RecurseUntrackedDirectories bool              `mapstructure:"recurse_untracked_directories" yaml:"recurse_untracked_directories"`
	Glyphs                      prompt.GlyphSet   `mapstructure:"glyphs" yaml:"glyphs"`
}

// StatusOptions converts the configured status switches.
func (configuration PromptConfiguration) StatusOptions() gitrepo.StatusOptions {
	return gitrepo.StatusOptions{
		RefreshIndex:                configuration.RefreshIndex,
		IncludeUntracked:            configuration.IncludeUntracked,
		RecurseUntrackedDirectories: configuration.RecurseUntrackedDirectories,
	}
}

// DefaultConfigurationValues returns the values applied beneath every configuration source.
func DefaultConfigurationValues() map[string]any {
	defaultStatusOptions := gitrepo.DefaultStatusOptions()
	return map[string]any{
		commonLogLevelConfigKeyConstant:         string(utils.LogLevelError),
		commonLogFormatConfigKeyConstant:        string(utils.LogFormatStructured),
		promptBackendConfigKeyConstant:          string(BackendCommandLine),
		promptColorConfigKeyConstant:            string(prompt.ColorAlways),
		promptShellConfigKeyConstant:            string(prompt.ShellNone),
		promptCommandTimeoutConfigKeyConstant:   time.Duration(0).String(),
		promptRefreshIndexConfigKeyConstant:     defaultStatusOptions.RefreshIndex,
		promptIncludeUntrackedConfigKeyConstant: defaultStatusOptions.IncludeUntracked,
		promptRecurseUntrackedConfigKeyConstant: defaultStatusOptions.RecurseUntrackedDirectories,
	}
}

func configurationDecodeHooks() []mapstructure.DecodeHookFunc {
	return []mapstructure.DecodeHookFunc{
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	}
}
