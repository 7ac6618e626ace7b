package execshell_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jfultz/git-prompt/internal/execshell"
)

const (
	testExecutionSuccessCaseNameConstant         = "success"
	testExecutionFailureCaseNameConstant         = "failure_exit_code"
	testExecutionRunnerErrorCaseNameConstant     = "runner_error"
	testCommandArgumentConstant                  = "--version"
	testWorkingDirectoryConstant                 = "."
	testStandardErrorOutputConstant              = "failure"
	testLoggerInitializationCaseNameConstant     = "logger_validation"
	testRunnerInitializationCaseNameConstant     = "runner_validation"
	testSuccessfulInitializationCaseNameConstant = "successful_initialization"
	testCommandTimeoutConstant                   = 5 * time.Second
)

type recordingCommandRunner struct {
	executionResult   execshell.ExecutionResult
	executionError    error
	recordedCommands  []execshell.ShellCommand
	recordedDeadlines []bool
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	_, hasDeadline := executionContext.Deadline()
	runner.recordedDeadlines = append(runner.recordedDeadlines, hasDeadline)
	return runner.executionResult, runner.executionError
}

type recordingObserver struct {
	events []string
}

func (recorder *recordingObserver) CommandStarted(execshell.ShellCommand) {
	recorder.events = append(recorder.events, "started")
}

func (recorder *recordingObserver) CommandCompleted(_ execshell.ShellCommand, result execshell.ExecutionResult) {
	if result.ExitCode == 0 {
		recorder.events = append(recorder.events, "completed")
		return
	}
	recorder.events = append(recorder.events, "completed_with_failure")
}

func (recorder *recordingObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	recorder.events = append(recorder.events, "execution_failed")
}

func TestShellExecutorInitializationValidation(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		runner        execshell.CommandRunner
		expectError   error
		expectSuccess bool
	}{
		{
			name:        testLoggerInitializationCaseNameConstant,
			logger:      nil,
			runner:      &recordingCommandRunner{},
			expectError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:        testRunnerInitializationCaseNameConstant,
			logger:      zap.NewNop(),
			runner:      nil,
			expectError: execshell.ErrCommandRunnerNotConfigured,
		},
		{
			name:          testSuccessfulInitializationCaseNameConstant,
			logger:        zap.NewNop(),
			runner:        &recordingCommandRunner{},
			expectSuccess: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			executor, creationError := execshell.NewShellExecutor(testCase.logger, testCase.runner)
			if testCase.expectSuccess {
				require.NoError(testInstance, creationError)
				require.NotNil(testInstance, executor)
			} else {
				require.Error(testInstance, creationError)
				require.ErrorIs(testInstance, creationError, testCase.expectError)
			}
		})
	}
}

func TestShellExecutorExecuteBehavior(testInstance *testing.T) {
	testCases := []struct {
		name             string
		runnerResult     execshell.ExecutionResult
		runnerError      error
		expectErrorType  any
		expectedLogCount int
		expectedEvents   []string
	}{
		{
			name: testExecutionSuccessCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardOutput: "ok",
				ExitCode:       0,
			},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "completed"},
		},
		{
			name: testExecutionFailureCaseNameConstant,
			runnerResult: execshell.ExecutionResult{
				StandardError: testStandardErrorOutputConstant,
				ExitCode:      1,
			},
			expectErrorType:  execshell.CommandFailedError{},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "completed_with_failure"},
		},
		{
			name:             testExecutionRunnerErrorCaseNameConstant,
			runnerError:      errors.New("runner failure"),
			expectErrorType:  execshell.CommandExecutionError{},
			expectedLogCount: 2,
			expectedEvents:   []string{"started", "execution_failed"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observerCore, observerLogs := observer.New(zap.DebugLevel)
			logger := zap.New(observerCore)

			recordingRunner := &recordingCommandRunner{
				executionResult: testCase.runnerResult,
				executionError:  testCase.runnerError,
			}
			eventRecorder := &recordingObserver{}

			shellExecutor, creationError := execshell.NewShellExecutor(logger, recordingRunner, execshell.WithCommandEventObserver(eventRecorder))
			require.NoError(testInstance, creationError)

			commandDetails := execshell.CommandDetails{Arguments: []string{testCommandArgumentConstant}, WorkingDirectory: testWorkingDirectoryConstant}
			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), commandDetails)

			if testCase.expectErrorType != nil {
				require.Error(testInstance, executionError)
				require.IsType(testInstance, testCase.expectErrorType, executionError)
				require.Empty(testInstance, executionResult.StandardOutput)
			} else {
				require.NoError(testInstance, executionError)
				require.Equal(testInstance, testCase.runnerResult.StandardOutput, executionResult.StandardOutput)
			}

			require.Len(testInstance, observerLogs.All(), testCase.expectedLogCount)
			require.Equal(testInstance, testCase.expectedEvents, eventRecorder.events)
			require.Len(testInstance, recordingRunner.recordedCommands, 1)
			require.Equal(testInstance, execshell.CommandGit, recordingRunner.recordedCommands[0].Name)
		})
	}
}

func TestShellExecutorFailureErrorsDescribeCommand(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{
		executionResult: execshell.ExecutionResult{ExitCode: 128, StandardError: "fatal: not a git repository\n"},
	}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"rev-parse", "--absolute-git-dir"}})

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &failedError)
	require.Equal(testInstance, 128, failedError.Result.ExitCode)
	require.Equal(testInstance, "git rev-parse --absolute-git-dir exited with code 128: fatal: not a git repository", executionError.Error())
}

func TestShellExecutorExecutionErrorUnwrapsCause(testInstance *testing.T) {
	runnerFailure := errors.New("executable file not found")
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{executionError: runnerFailure})
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})

	require.ErrorIs(testInstance, executionError, runnerFailure)
}

func TestShellExecutorAppliesCommandTimeout(testInstance *testing.T) {
	testCases := []struct {
		name             string
		timeout          time.Duration
		expectedDeadline bool
	}{
		{name: "timeout_configured", timeout: testCommandTimeoutConstant, expectedDeadline: true},
		{name: "timeout_disabled", timeout: 0, expectedDeadline: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, execshell.WithCommandTimeout(testCase.timeout))
			require.NoError(testInstance, creationError)

			_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{})
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, []bool{testCase.expectedDeadline}, recordingRunner.recordedDeadlines)
		})
	}
}

func TestShellExecutorLogsNonZeroExitAtDebugLevel(testInstance *testing.T) {
	observerCore, observerLogs := observer.New(zap.DebugLevel)
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 1}}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"symbolic-ref", "-q", "HEAD"}})
	require.Error(testInstance, executionError)

	for _, entry := range observerLogs.All() {
		require.Equal(testInstance, zapcore.DebugLevel, entry.Level)
	}
}
