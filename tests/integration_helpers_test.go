package tests

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	integrationCommandTimeout = 2 * time.Minute
	gitCommandTimeout         = 30 * time.Second
)

var gitIdentityEnvironment = []string{
	"GIT_AUTHOR_NAME=Integration",
	"GIT_AUTHOR_EMAIL=integration@example.com",
	"GIT_COMMITTER_NAME=Integration",
	"GIT_COMMITTER_EMAIL=integration@example.com",
	"GIT_CONFIG_NOSYSTEM=1",
	"GIT_TERMINAL_PROMPT=0",
}

func requireExecutables(testInstance *testing.T, names ...string) {
	testInstance.Helper()
	for _, name := range names {
		if _, lookupError := exec.LookPath(name); lookupError != nil {
			testInstance.Skipf("%s not available: %v", name, lookupError)
		}
	}
}

func repositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(workingDirectory)
}

func runGit(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), gitCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "git", arguments...)
	command.Dir = workingDirectory
	command.Env = append(append([]string{}, os.Environ()...), gitIdentityEnvironment...)
	command.Env = append(command.Env, "HOME="+testInstance.TempDir())

	outputBytes, runError := command.CombinedOutput()
	if runError != nil {
		testInstance.Fatalf("git %s failed: %v\n%s", strings.Join(arguments, " "), runError, outputBytes)
	}
	return string(outputBytes)
}

func commitFile(testInstance *testing.T, repositoryPath string, fileName string, content string) {
	testInstance.Helper()
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, fileName), []byte(content), 0o644))
	runGit(testInstance, repositoryPath, "add", fileName)
	runGit(testInstance, repositoryPath, "commit", "--quiet", "-m", "update "+fileName)
}

// cloneWithRemote creates a bare remote seeded with one commit on main and
// clones it to clonePath.
func cloneWithRemote(testInstance *testing.T, workspace string, clonePath string) string {
	testInstance.Helper()
	remotePath := filepath.Join(workspace, filepath.Base(clonePath)+".remote.git")
	seedPath := filepath.Join(workspace, filepath.Base(clonePath)+".seed")

	runGit(testInstance, workspace, "init", "--quiet", "--bare", remotePath)
	runGit(testInstance, workspace, "init", "--quiet", seedPath)
	runGit(testInstance, seedPath, "symbolic-ref", "HEAD", "refs/heads/main")
	commitFile(testInstance, seedPath, "README.md", "seed\n")
	runGit(testInstance, seedPath, "remote", "add", "origin", remotePath)
	runGit(testInstance, seedPath, "push", "--quiet", "origin", "main")

	require.NoError(testInstance, os.MkdirAll(filepath.Dir(clonePath), 0o755))
	runGit(testInstance, workspace, "clone", "--quiet", "--branch", "main", remotePath, clonePath)
	return seedPath
}

// runApplication executes the command from the module root and returns stdout and stderr separately.
func runApplication(testInstance *testing.T, arguments ...string) (string, string, error) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), integrationCommandTimeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", append([]string{"run", "."}, arguments...)...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = append(append([]string{}, os.Environ()...), gitIdentityEnvironment...)

	var standardOutput strings.Builder
	var standardError strings.Builder
	command.Stdout = &standardOutput
	command.Stderr = &standardError

	runError := command.Run()
	return standardOutput.String(), standardError.String(), runError
}
