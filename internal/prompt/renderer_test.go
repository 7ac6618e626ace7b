package prompt_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/jfultz/git-prompt/internal/prompt"
)

const (
	testColoredChangesConstant = "\x1b[33m±2\x1b[0m"
)

func promptGoldie(testInstance *testing.T) *goldie.Goldie {
	return goldie.New(testInstance, goldie.WithNameSuffix(".gold.txt"))
}

func TestRendererLayouts(testInstance *testing.T) {
	scenarios := []struct {
		name     string
		shell    prompt.ShellKind
		segments prompt.Segments
	}{
		{name: "outside_repository", shell: prompt.ShellNone, segments: prompt.Segments{}},
		{name: "unborn", shell: prompt.ShellNone, segments: prompt.Segments{Position: "[Unborn]"}},
		{name: "clean_branch", shell: prompt.ShellNone, segments: prompt.Segments{Position: "master", Changes: "✔"}},
		{
			name:  "tracking_branch",
			shell: prompt.ShellNone,
			segments: prompt.Segments{
				Position:   "master",
				Divergence: "↓·1↑·3",
				Upstream:   "origin/master",
				Changes:    "±2…1",
			},
		},
		{name: "upstream_only", shell: prompt.ShellNone, segments: prompt.Segments{Upstream: "origin/master"}},
		{name: "divergence_without_position", shell: prompt.ShellNone, segments: prompt.Segments{Divergence: "↑·2"}},
		{name: "rebase", shell: prompt.ShellNone, segments: prompt.Segments{Position: "rebasing feature onto origin/master", Changes: "≠1"}},
		{name: "bash_colored", shell: prompt.ShellBash, segments: prompt.Segments{Position: "master", Changes: testColoredChangesConstant}},
		{name: "zsh_colored", shell: prompt.ShellZsh, segments: prompt.Segments{Position: "100%", Changes: testColoredChangesConstant}},
	}

	var rendered strings.Builder
	for _, scenario := range scenarios {
		fmt.Fprintf(&rendered, "%s %q\n", scenario.name, prompt.NewRenderer(scenario.shell).Render(scenario.segments))
	}

	promptGoldie(testInstance).Assert(testInstance, "renderer_layouts", []byte(rendered.String()))
}

func TestRendererWithoutShellKeepsEscapeSequences(testInstance *testing.T) {
	rendered := prompt.NewRenderer(prompt.ShellNone).Render(prompt.Segments{Position: "dev", Changes: testColoredChangesConstant})
	require.Equal(testInstance, "[dev|"+testColoredChangesConstant+"]", rendered)
}

func TestShellKindUnmarshalText(testInstance *testing.T) {
	testCases := []struct {
		name          string
		text          string
		expectedShell prompt.ShellKind
		expectError   bool
	}{
		{name: "bash", text: "bash", expectedShell: prompt.ShellBash},
		{name: "zsh_upper", text: "ZSH", expectedShell: prompt.ShellZsh},
		{name: "empty", text: "", expectedShell: prompt.ShellNone},
		{name: "fish", text: "fish", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			var shell prompt.ShellKind
			unmarshalError := shell.UnmarshalText([]byte(testCase.text))
			if testCase.expectError {
				require.Error(subtest, unmarshalError)
				return
			}
			require.NoError(subtest, unmarshalError)
			require.Equal(subtest, testCase.expectedShell, shell)
		})
	}
}
