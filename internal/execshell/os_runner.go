package execshell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const (
	environmentAssignmentSeparatorConstant = "="
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct {
	baseEnvironment func() []string
}

// NewOSCommandRunner constructs a runner that inherits the process environment.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{baseEnvironment: os.Environ}
}

// Run executes the command. A non-zero exit is reported through ExecutionResult.ExitCode;
// the returned error is reserved for processes that could not run or were cancelled.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := exec.CommandContext(executionContext, string(command.Name), command.Details.Arguments...)
	executable.Dir = command.Details.WorkingDirectory
	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(runner.environment(), command.Details.EnvironmentVariables)
	}
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	runError := executable.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, contextError
	}

	result := ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
	}
	if runError != nil {
		var exitError *exec.ExitError
		if !errors.As(runError, &exitError) {
			return ExecutionResult{}, runError
		}
		result.ExitCode = exitError.ExitCode()
	}
	return result, nil
}

func (runner *OSCommandRunner) environment() []string {
	if runner == nil || runner.baseEnvironment == nil {
		return os.Environ()
	}
	return runner.baseEnvironment()
}

// mergeEnvironment drops inherited assignments of overridden keys and appends the overrides in key order.
func mergeEnvironment(baseEnvironment []string, overrides map[string]string) []string {
	mergedEnvironment := make([]string, 0, len(baseEnvironment)+len(overrides))
	for _, assignment := range baseEnvironment {
		environmentKey, _, _ := strings.Cut(assignment, environmentAssignmentSeparatorConstant)
		if _, overridden := overrides[environmentKey]; overridden {
			continue
		}
		mergedEnvironment = append(mergedEnvironment, assignment)
	}

	overrideKeys := make([]string, 0, len(overrides))
	for environmentKey := range overrides {
		overrideKeys = append(overrideKeys, environmentKey)
	}
	sort.Strings(overrideKeys)
	for _, environmentKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, environmentKey+environmentAssignmentSeparatorConstant+overrides[environmentKey])
	}
	return mergedEnvironment
}
