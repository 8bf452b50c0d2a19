// Package utils holds the ambient helpers shared by gitdiverge commands:
// the Viper backed ConfigurationLoader, the zap LoggerFactory, and
// FlushingWriter for the findings stream.
package utils
