package dependencies_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitdiverge/internal/execshell"
	"github.com/temirov/gitdiverge/internal/repos/dependencies"
	"github.com/temirov/gitdiverge/internal/repos/filesystem"
)

type stubGitExecutor struct{}

func (stubGitExecutor) ExecuteGit(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
	return execshell.ExecutionResult{}, nil
}

func TestResolveFileSystem(testInstance *testing.T) {
	require.Equal(testInstance, filesystem.OSFileSystem{}, dependencies.ResolveFileSystem(nil))

	existing := filesystem.OSFileSystem{}
	require.Equal(testInstance, existing, dependencies.ResolveFileSystem(existing))
}

func TestResolveGitExecutor(testInstance *testing.T) {
	existing := stubGitExecutor{}
	resolved, resolveError := dependencies.ResolveGitExecutor(existing, zap.NewNop())
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, existing, resolved)

	defaultExecutor, defaultError := dependencies.ResolveGitExecutor(nil, zap.NewNop())
	require.NoError(testInstance, defaultError)
	require.IsType(testInstance, &execshell.ShellExecutor{}, defaultExecutor)

	_, missingLoggerError := dependencies.ResolveGitExecutor(nil, nil)
	require.ErrorIs(testInstance, missingLoggerError, execshell.ErrLoggerNotConfigured)
}
