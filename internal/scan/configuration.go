package scan

import "strings"

const (
	defaultMaxDepthConstant          = 5
	defaultMinimumGitVersionConstant = "2.11"
	configurationKeySeparator        = "."
	maxDepthConfigurationKey         = "max_depth"
	aheadOnlyConfigurationKey        = "ahead_only"
	behindOnlyConfigurationKey       = "behind_only"
	referenceBranchesConfigKey       = "reference_branches"
	listIgnoredConfigurationKey      = "list_ignored"
	excludedNamesConfigurationKey    = "excluded_names"
	minimumGitVersionConfigKey       = "minimum_git_version"
)

// CommandConfiguration captures persistent settings for the scan command.
type CommandConfiguration struct {
	MaxDepth          int      `mapstructure:"max_depth"`
	AheadOnly         bool     `mapstructure:"ahead_only"`
	BehindOnly        bool     `mapstructure:"behind_only"`
	ReferenceBranches []string `mapstructure:"reference_branches"`
	ListIgnored       bool     `mapstructure:"list_ignored"`
	ExcludedNames     []string `mapstructure:"excluded_names"`
	MinimumGitVersion string   `mapstructure:"minimum_git_version"`
}

// DefaultCommandConfiguration returns baseline configuration values for the scan command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		MaxDepth:          defaultMaxDepthConstant,
		ReferenceBranches: []string{"main", "master"},
		MinimumGitVersion: defaultMinimumGitVersionConstant,
	}
}

// DefaultConfigurationValues returns viper defaults for the scan command rooted at prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		prefixedKey(prefix, maxDepthConfigurationKey):      defaults.MaxDepth,
		prefixedKey(prefix, aheadOnlyConfigurationKey):     defaults.AheadOnly,
		prefixedKey(prefix, behindOnlyConfigurationKey):    defaults.BehindOnly,
		prefixedKey(prefix, referenceBranchesConfigKey):    defaults.ReferenceBranches,
		prefixedKey(prefix, listIgnoredConfigurationKey):   defaults.ListIgnored,
		prefixedKey(prefix, excludedNamesConfigurationKey): defaults.ExcludedNames,
		prefixedKey(prefix, minimumGitVersionConfigKey):    defaults.MinimumGitVersion,
	}
}

// sanitize trims list entries and the minimum version without applying defaults.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.ReferenceBranches = sanitizeNames(configuration.ReferenceBranches)
	sanitized.ExcludedNames = sanitizeNames(configuration.ExcludedNames)
	sanitized.MinimumGitVersion = strings.TrimSpace(configuration.MinimumGitVersion)

	return sanitized
}

func sanitizeNames(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}

func prefixedKey(prefix string, key string) string {
	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return key
	}
	return trimmedPrefix + configurationKeySeparator + key
}
