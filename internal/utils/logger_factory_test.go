package utils_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"regexp"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/gitdiverge/internal/utils"
)

const (
	testLogMessageConstant         = "scan completed"
	testRepositoryFieldConstant    = "repository"
	testRepositoryValueConstant    = "/workspace/app"
	testConsoleLinePatternConstant = `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}(Z|[+-]\d{4})\tINFO\t`
)

type capturedStreams struct {
	standardOutput string
	standardError  string
}

// createLoggerAndLog builds a logger with the standard streams redirected to
// pipes, writes one info entry, and returns what each stream received.
func createLoggerAndLog(testInstance *testing.T, requestedLogLevel utils.LogLevel, requestedLogFormat utils.LogFormat) capturedStreams {
	testInstance.Helper()

	outputReader, outputWriter, outputPipeError := os.Pipe()
	require.NoError(testInstance, outputPipeError)
	errorReader, errorWriter, errorPipeError := os.Pipe()
	require.NoError(testInstance, errorPipeError)

	originalStdout := os.Stdout
	originalStderr := os.Stderr
	os.Stdout = outputWriter
	os.Stderr = errorWriter
	logger, creationError := utils.NewLoggerFactory().CreateLogger(requestedLogLevel, requestedLogFormat)
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, logger)

	logger.Info(testLogMessageConstant, zap.String(testRepositoryFieldConstant, testRepositoryValueConstant))
	if syncError := logger.Sync(); syncError != nil {
		require.True(testInstance, errors.Is(syncError, syscall.ENOTSUP) || errors.Is(syncError, syscall.EINVAL))
	}

	require.NoError(testInstance, outputWriter.Close())
	require.NoError(testInstance, errorWriter.Close())
	outputBytes, outputReadError := io.ReadAll(outputReader)
	require.NoError(testInstance, outputReadError)
	errorBytes, errorReadError := io.ReadAll(errorReader)
	require.NoError(testInstance, errorReadError)
	require.NoError(testInstance, outputReader.Close())
	require.NoError(testInstance, errorReader.Close())

	return capturedStreams{
		standardOutput: string(outputBytes),
		standardError:  string(bytes.TrimSpace(errorBytes)),
	}
}

func TestLoggerFactoryWritesStructuredEntriesToStandardError(testInstance *testing.T) {
	streams := createLoggerAndLog(testInstance, utils.LogLevelInfo, utils.LogFormatStructured)

	require.Empty(testInstance, streams.standardOutput)

	var entry map[string]any
	require.NoError(testInstance, json.Unmarshal([]byte(streams.standardError), &entry))
	require.Equal(testInstance, "info", entry["level"])
	require.Equal(testInstance, testLogMessageConstant, entry["msg"])
	require.Equal(testInstance, testRepositoryValueConstant, entry[testRepositoryFieldConstant])
	require.IsType(testInstance, float64(0), entry["ts"])
}

func TestLoggerFactoryWritesConsoleEntriesWithISO8601TimeAndCapitalLevel(testInstance *testing.T) {
	streams := createLoggerAndLog(testInstance, utils.LogLevelInfo, utils.LogFormatConsole)

	require.Empty(testInstance, streams.standardOutput)
	require.False(testInstance, json.Valid([]byte(streams.standardError)))
	require.Regexp(testInstance, regexp.MustCompile(testConsoleLinePatternConstant), streams.standardError)
	require.Contains(testInstance, streams.standardError, testLogMessageConstant)
	require.Contains(testInstance, streams.standardError, `{"repository": "/workspace/app"}`)
}

func TestLoggerFactoryNormalizesLevelAndFormat(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectedLevel      zapcore.Level
	}{
		{
			name:               "upper_case_debug",
			requestedLogLevel:  utils.LogLevel("DEBUG"),
			requestedLogFormat: utils.LogFormat("Structured"),
			expectedLevel:      zapcore.DebugLevel,
		},
		{
			name:               "padded_warn",
			requestedLogLevel:  utils.LogLevel("  warn\t"),
			requestedLogFormat: utils.LogFormat(" console "),
			expectedLevel:      zapcore.WarnLevel,
		},
		{
			name:               "mixed_case_error",
			requestedLogLevel:  utils.LogLevel("Error"),
			requestedLogFormat: utils.LogFormatConsole,
			expectedLevel:      zapcore.ErrorLevel,
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			require.NoError(subTest, creationError)
			require.Equal(subTest, testCase.expectedLevel, logger.Level())
			require.False(subTest, logger.Core().Enabled(testCase.expectedLevel-1))
		})
	}
}

func TestLoggerFactoryRejectsUnsupportedSettings(testInstance *testing.T) {
	testCases := []struct {
		name               string
		requestedLogLevel  utils.LogLevel
		requestedLogFormat utils.LogFormat
		expectedMessage    string
	}{
		{
			name:               "unsupported_level",
			requestedLogLevel:  utils.LogLevel("verbose"),
			requestedLogFormat: utils.LogFormatStructured,
			expectedMessage:    "unsupported log level: verbose",
		},
		{
			name:               "empty_level",
			requestedLogLevel:  utils.LogLevel(""),
			requestedLogFormat: utils.LogFormatStructured,
			expectedMessage:    "unsupported log level: ",
		},
		{
			name:               "unsupported_format",
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat("xml"),
			expectedMessage:    "unsupported log format: xml",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTest *testing.T) {
			logger, creationError := utils.NewLoggerFactory().CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			require.EqualError(subTest, creationError, testCase.expectedMessage)
			require.Nil(subTest, logger)
		})
	}
}
