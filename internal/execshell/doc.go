// Package execshell runs external tools for gitdiverge.
//
// ShellExecutor logs each invocation through zap and converts non-zero exit
// codes into CommandFailedError values. OSCommandRunner is the default
// os/exec backed CommandRunner; tests substitute their own runner.
package execshell
