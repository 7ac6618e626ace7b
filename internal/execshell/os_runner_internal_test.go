package execshell

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeEnvironment(testInstance *testing.T) {
	testCases := []struct {
		name                string
		baseEnvironment     []string
		overrides           map[string]string
		expectedEnvironment []string
	}{
		{
			name:                "appends_new_keys_in_order",
			baseEnvironment:     []string{"PATH=/usr/bin"},
			overrides:           map[string]string{"GIT_TERMINAL_PROMPT": "0", "GIT_OPTIONAL_LOCKS": "0"},
			expectedEnvironment: []string{"PATH=/usr/bin", "GIT_OPTIONAL_LOCKS=0", "GIT_TERMINAL_PROMPT=0"},
		},
		{
			name:                "replaces_inherited_values",
			baseEnvironment:     []string{"GIT_OPTIONAL_LOCKS=1", "HOME=/home/prompt"},
			overrides:           map[string]string{"GIT_OPTIONAL_LOCKS": "0"},
			expectedEnvironment: []string{"HOME=/home/prompt", "GIT_OPTIONAL_LOCKS=0"},
		},
		{
			name:                "keeps_values_containing_separator",
			baseEnvironment:     []string{"GIT_CONFIG_PARAMETERS='core.x=y'"},
			overrides:           map[string]string{"GIT_TERMINAL_PROMPT": "0"},
			expectedEnvironment: []string{"GIT_CONFIG_PARAMETERS='core.x=y'", "GIT_TERMINAL_PROMPT=0"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedEnvironment, mergeEnvironment(testCase.baseEnvironment, testCase.overrides))
		})
	}
}
