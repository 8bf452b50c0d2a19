package version_test

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitdiverge/internal/execshell"
	"github.com/temirov/gitdiverge/internal/version"
)

type stubGitExecutor struct {
	output    string
	failure   error
	arguments []string
}

func (executor *stubGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.arguments = details.Arguments
	if executor.failure != nil {
		return execshell.ExecutionResult{}, executor.failure
	}
	return execshell.ExecutionResult{StandardOutput: executor.output}, nil
}

func TestGateVerify(testInstance *testing.T) {
	minimumVersion := version.Version{Major: 2, Minor: 11}

	testCases := []struct {
		name              string
		executor          *stubGitExecutor
		expectedVersion   version.Version
		expectedError     error
		expectUnsupported bool
	}{
		{
			name:            "exact_minimum",
			executor:        &stubGitExecutor{output: "git version 2.11.0\n"},
			expectedVersion: version.Version{Major: 2, Minor: 11},
		},
		{
			name:            "newer_vendor_build",
			executor:        &stubGitExecutor{output: "git version 2.37.1 (Apple Git-137.1)\n"},
			expectedVersion: version.Version{Major: 2, Minor: 37},
		},
		{
			name:            "windows_build",
			executor:        &stubGitExecutor{output: "git version 2.45.2.windows.1\n"},
			expectedVersion: version.Version{Major: 2, Minor: 45},
		},
		{
			name:            "newer_major",
			executor:        &stubGitExecutor{output: "git version 3.0.0\n"},
			expectedVersion: version.Version{Major: 3, Minor: 0},
		},
		{
			name:              "older_minor",
			executor:          &stubGitExecutor{output: "git version 2.10.1\n"},
			expectedVersion:   version.Version{Major: 2, Minor: 10},
			expectUnsupported: true,
		},
		{
			name:              "older_major",
			executor:          &stubGitExecutor{output: "git version 1.99.9\n"},
			expectedVersion:   version.Version{Major: 1, Minor: 99},
			expectUnsupported: true,
		},
		{
			name:          "unrecognized_output",
			executor:      &stubGitExecutor{output: "command not recognized\n"},
			expectedError: version.ErrVersionUndetermined,
		},
		{
			name:          "non_numeric_version",
			executor:      &stubGitExecutor{output: "git version two.eleven\n"},
			expectedError: version.ErrVersionUndetermined,
		},
		{
			name:          "missing_executable",
			executor:      &stubGitExecutor{failure: execshell.CommandExecutionError{Cause: fmt.Errorf("exec: %q: %w", "git", exec.ErrNotFound)}},
			expectedError: version.ErrToolNotFound,
		},
		{
			name: "non_zero_exit",
			executor: &stubGitExecutor{failure: execshell.CommandFailedError{
				Command: execshell.ShellCommand{Name: execshell.CommandGit},
				Result:  execshell.ExecutionResult{ExitCode: 129},
			}},
			expectedError: version.ErrVersionUndetermined,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			gate, creationError := version.NewGate(testCase.executor, zap.NewNop(), minimumVersion)
			require.NoError(subTest, creationError)

			detectedVersion, verifyError := gate.Verify(context.Background())
			require.Equal(subTest, []string{"--version"}, testCase.executor.arguments)

			switch {
			case testCase.expectUnsupported:
				var unsupportedError *version.UnsupportedVersionError
				require.ErrorAs(subTest, verifyError, &unsupportedError)
				require.Equal(subTest, testCase.expectedVersion, unsupportedError.Detected)
				require.Equal(subTest, minimumVersion, unsupportedError.Minimum)
				require.Equal(subTest, testCase.expectedVersion, detectedVersion)
			case testCase.expectedError != nil:
				require.ErrorIs(subTest, verifyError, testCase.expectedError)
			default:
				require.NoError(subTest, verifyError)
				require.Equal(subTest, testCase.expectedVersion, detectedVersion)
			}
		})
	}
}

func TestGateLogsVerifiedVersion(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	gate, creationError := version.NewGate(&stubGitExecutor{output: "git version 2.43.0\n"}, zap.New(observedCore), version.DefaultMinimum)
	require.NoError(testInstance, creationError)

	_, verifyError := gate.Verify(context.Background())
	require.NoError(testInstance, verifyError)
	require.Equal(testInstance, 1, observedLogs.Len())
	require.Equal(testInstance, "2.43", observedLogs.All()[0].ContextMap()["detected_version"])
}

func TestNewGateRequiresExecutor(testInstance *testing.T) {
	gate, creationError := version.NewGate(nil, zap.NewNop(), version.DefaultMinimum)
	require.ErrorIs(testInstance, creationError, version.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, gate)
}

func TestUnsupportedVersionErrorMessage(testInstance *testing.T) {
	unsupportedError := &version.UnsupportedVersionError{Detected: version.Version{Major: 2, Minor: 10}, Minimum: version.Version{Major: 2, Minor: 11}}
	require.Equal(testInstance, "git version 2.10 is older than the required 2.11", unsupportedError.Error())
}

func TestParseMinimum(testInstance *testing.T) {
	testCases := []struct {
		name            string
		raw             string
		expectedVersion version.Version
		expectError     bool
	}{
		{name: "default", raw: "2.11", expectedVersion: version.Version{Major: 2, Minor: 11}},
		{name: "padded", raw: " 2.30 ", expectedVersion: version.Version{Major: 2, Minor: 30}},
		{name: "patch_component", raw: "2.11.0", expectError: true},
		{name: "single_component", raw: "2", expectError: true},
		{name: "negative", raw: "2.-1", expectError: true},
		{name: "empty", raw: "", expectError: true},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			parsedVersion, parseError := version.ParseMinimum(testCase.raw)
			if testCase.expectError {
				require.Error(subTest, parseError)
				require.True(subTest, strings.Contains(parseError.Error(), "invalid minimum git version"))
				return
			}
			require.NoError(subTest, parseError)
			require.Equal(subTest, testCase.expectedVersion, parsedVersion)
		})
	}
}
