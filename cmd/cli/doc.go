// Package cli constructs the gitdiverge command-line interface, wiring the
// Cobra root command, the viper configuration loader with embedded defaults,
// and structured logging.
package cli
