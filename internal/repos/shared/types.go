package shared

import (
	"context"

	"github.com/temirov/gitdiverge/internal/execshell"
)

// GitExecutor exposes the subset of shell execution used by repository checks.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Reporter records one human-readable finding about a directory.
type Reporter interface {
	Report(directoryPath string, message string)
}
