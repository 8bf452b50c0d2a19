package shared_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitdiverge/internal/repos/shared"
)

func TestFindingReporterFormatsRelativePaths(testInstance *testing.T) {
	baseDirectory := filepath.Join(string(filepath.Separator), "home", "user", "src")

	testCases := []struct {
		name          string
		directoryPath string
		message       string
		expectedLine  string
	}{
		{
			name:          "nested_repository",
			directoryPath: filepath.Join(baseDirectory, "group", "app"),
			message:       "State is dirty",
			expectedLine:  filepath.Join("group", "app") + " - State is dirty\n",
		},
		{
			name:          "base_directory",
			directoryPath: baseDirectory,
			message:       "Local branch 'main' is ahead",
			expectedLine:  ". - Local branch 'main' is ahead\n",
		},
		{
			name:          "outside_base_directory",
			directoryPath: filepath.Join(string(filepath.Separator), "opt", "repo"),
			message:       "Could not update remote refs",
			expectedLine:  filepath.Join(string(filepath.Separator), "opt", "repo") + " - Could not update remote refs\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			var output bytes.Buffer
			reporter := shared.NewFindingReporter(&output, baseDirectory, zap.NewNop())
			reporter.Report(testCase.directoryPath, testCase.message)
			require.Equal(testInstance, testCase.expectedLine, output.String())
			require.Equal(testInstance, 1, reporter.FindingCount())
		})
	}
}

type failingWriter struct {
	failure error
}

func (writer failingWriter) Write([]byte) (int, error) {
	return 0, writer.failure
}

func TestFindingReporterLogsWriteFailures(testInstance *testing.T) {
	baseDirectory := filepath.Join(string(filepath.Separator), "home", "user", "src")
	observedCore, observedLogs := observer.New(zapcore.DebugLevel)
	reporter := shared.NewFindingReporter(failingWriter{failure: errors.New("write /dev/stdout: broken pipe")}, baseDirectory, zap.New(observedCore))

	reporter.Report(filepath.Join(baseDirectory, "app"), "State is dirty")
	reporter.Report(filepath.Join(baseDirectory, "lib"), "No remote repository found")

	require.Equal(testInstance, 2, reporter.FindingCount())
	entries := observedLogs.FilterMessage("unable to write finding").All()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, zapcore.DebugLevel, entries[0].Level)
	require.Equal(testInstance, "State is dirty", entries[0].ContextMap()["finding"])
	loggedError, isString := entries[0].ContextMap()["error"].(string)
	require.True(testInstance, isString)
	require.Equal(testInstance, "write /dev/stdout: broken pipe", loggedError)
}
