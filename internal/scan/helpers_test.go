package scan_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitdiverge/internal/execshell"
)

const (
	gitVersionArguments     = "--version"
	branchListingArguments  = "branch --verbose --verbose --no-abbrev --no-color"
	checkIgnoreArguments    = "check-ignore -z --stdin"
	sampleCommitHash        = "4f1c2a7e9b3d5f60718293a4b5c6d7e8f9012345"
	testDirectoryPermission = 0o755
	testFilePermission      = 0o644
)

type scriptedResponse struct {
	output   string
	exitCode int
}

// scriptedGitExecutor answers git invocations by working directory and
// arguments. Unscripted check-ignore calls match nothing; everything else
// succeeds with empty output.
type scriptedGitExecutor struct {
	mutex     sync.Mutex
	responses map[string]scriptedResponse
	calls     []string
}

func newScriptedGitExecutor(gitVersionOutput string) *scriptedGitExecutor {
	return &scriptedGitExecutor{responses: map[string]scriptedResponse{
		responseKey("", gitVersionArguments): {output: gitVersionOutput},
	}}
}

func responseKey(workingDirectory string, arguments string) string {
	return workingDirectory + "|" + arguments
}

func (executor *scriptedGitExecutor) script(workingDirectory string, arguments string, response scriptedResponse) {
	executor.responses[responseKey(workingDirectory, arguments)] = response
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	joinedArguments := strings.Join(details.Arguments, " ")
	executor.calls = append(executor.calls, responseKey(details.WorkingDirectory, joinedArguments))

	response, found := executor.responses[responseKey(details.WorkingDirectory, joinedArguments)]
	if !found && joinedArguments == checkIgnoreArguments {
		response = scriptedResponse{exitCode: 1}
	}
	if response.exitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: response.exitCode},
		}
	}
	return execshell.ExecutionResult{StandardOutput: response.output}, nil
}

func (executor *scriptedGitExecutor) callsInDirectory(workingDirectory string) []string {
	executor.mutex.Lock()
	defer executor.mutex.Unlock()

	var calls []string
	for _, call := range executor.calls {
		if strings.HasPrefix(call, workingDirectory+"|") {
			calls = append(calls, strings.TrimPrefix(call, workingDirectory+"|"))
		}
	}
	return calls
}

func createRepository(testInstance *testing.T, segments ...string) string {
	testInstance.Helper()
	repositoryPath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(filepath.Join(repositoryPath, ".git"), testDirectoryPermission))
	return repositoryPath
}

func writeFile(testInstance *testing.T, segments ...string) {
	testInstance.Helper()
	filePath := filepath.Join(segments...)
	require.NoError(testInstance, os.MkdirAll(filepath.Dir(filePath), testDirectoryPermission))
	require.NoError(testInstance, os.WriteFile(filePath, []byte("data"), testFilePermission))
}
