// Package config loads optional YAML defaults for the combine and structure tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/gather/internal/utils"
)

const (
	// DefaultCombineOutput is the combined output file name used when nothing else is configured.
	DefaultCombineOutput = "combined_code.txt"
	// DefaultStructureOutput is the Markdown outline file name used when nothing else is configured.
	DefaultStructureOutput = "structure.md"
	// DefaultTokenModel is the tokenizer model used for --tokens.
	DefaultTokenModel = "gpt-4o"

	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorResolvePathFormat      = "resolve configuration path %s: %w"
	errorStatFormat             = "stat configuration %s: %w"
	errorMissingExplicitFormat  = "configuration file %s does not exist"
	errorDirectoryFormat        = "configuration path %s is a directory"
	errorReadFormat             = "read configuration from %s: %w"
	errorDecodeFormat           = "decode configuration from %s: %w"
)

var (
	defaultTargetDirectories      = []string{"frontend"}
	defaultTargetFiles            = []string{"Logistics.col"}
	defaultExcludedDirectoryNames = []string{"node_modules", ".vscode", "test", ".git", "__pycache__"}
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the defaults of both tools.
type ApplicationConfiguration struct {
	Combine   CombineConfiguration   `mapstructure:"combine" yaml:"combine"`
	Structure StructureConfiguration `mapstructure:"structure" yaml:"structure"`
}

// CombineConfiguration defines defaults for the combine tool.
type CombineConfiguration struct {
	Directories []string           `mapstructure:"directories" yaml:"directories,omitempty"`
	Files       []string           `mapstructure:"files" yaml:"files,omitempty"`
	Output      string             `mapstructure:"output" yaml:"output,omitempty"`
	Tokens      TokenConfiguration `mapstructure:"tokens" yaml:"tokens"`
	Copy        *bool              `mapstructure:"copy" yaml:"copy,omitempty"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Model   string `mapstructure:"model" yaml:"model,omitempty"`
}

// StructureConfiguration defines defaults for the structure tool.
type StructureConfiguration struct {
	Output  string   `mapstructure:"output" yaml:"output,omitempty"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude,omitempty"`
	Copy    *bool    `mapstructure:"copy" yaml:"copy,omitempty"`
}

// DefaultApplicationConfiguration returns the built-in defaults of both tools.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	return ApplicationConfiguration{
		Combine: CombineConfiguration{
			Directories: append([]string{}, defaultTargetDirectories...),
			Files:       append([]string{}, defaultTargetFiles...),
			Output:      DefaultCombineOutput,
			Tokens: TokenConfiguration{
				Enabled: boolPointer(false),
				Model:   DefaultTokenModel,
			},
			Copy: boolPointer(false),
		},
		Structure: StructureConfiguration{
			Output:  DefaultStructureOutput,
			Exclude: append([]string{}, defaultExcludedDirectoryNames...),
			Copy:    boolPointer(false),
		},
	}
}

// LoadApplicationConfiguration loads the global file, then the local or explicit
// file, and overlays both onto the built-in defaults. Later sources win.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultApplicationConfiguration()

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.ConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Structure.Exclude = utils.DeduplicateNames(merged.Structure.Exclude)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	if workingDirectory == "" {
		absolute, err := filepath.Abs(explicitPath)
		if err != nil {
			return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
		}
		return absolute, nil
	}
	return filepath.Join(workingDirectory, explicitPath), nil
}

func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			if required {
				return ApplicationConfiguration{}, fmt.Errorf(errorMissingExplicitFormat, path)
			}
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorDirectoryFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// Empty strings, empty lists, and nil booleans in override leave the receiver's value.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Combine = result.Combine.merge(override.Combine)
	result.Structure = result.Structure.merge(override.Structure)
	return result
}

func (config CombineConfiguration) merge(override CombineConfiguration) CombineConfiguration {
	result := config
	if len(override.Directories) > 0 {
		result.Directories = append([]string{}, override.Directories...)
	}
	if len(override.Files) > 0 {
		result.Files = append([]string{}, override.Files...)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config StructureConfiguration) merge(override StructureConfiguration) StructureConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

// BoolValue dereferences value, treating nil as false.
func BoolValue(value *bool) bool {
	return value != nil && *value
}

func boolPointer(value bool) *bool {
	return &value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
