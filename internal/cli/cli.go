// Package cli provides the combine and structure command line interfaces.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gather/internal/config"
	"github.com/temirov/gather/internal/services/clipboard"
	"github.com/temirov/gather/internal/tokenizer"
	"github.com/temirov/gather/internal/utils"
)

const (
	outputFlagName          = "output"
	outputFlagShorthand     = "o"
	copyFlagName            = "copy"
	configFlagName          = "config"
	initFlagName            = "init"
	forceFlagName           = "force"
	versionFlagName         = "version"
	verboseFlagName         = "verbose"
	defaultDirectory        = "."
	versionTemplate         = "%s version: %s\n"
	outputFlagDescription   = "output file name"
	copyFlagDescription     = "copy the written output to the system clipboard"
	configFlagDescription   = "configuration file to load instead of ./config.yaml"
	initFlagDescription     = "write the default configuration (local or global) and exit"
	forceFlagDescription    = "overwrite an existing configuration with --init"
	versionFlagDescription  = "display application version"
	verboseFlagDescription  = "log skipped paths and other debug details"
	configurationWrittenFmt = "Configuration written to %s\n"
	copiedToClipboardFormat = "Copied %s to the clipboard.\n"
	warningClipboardFailed  = "failed to copy output to clipboard"
	logFieldFile            = "file"
)

// Dependencies holds the collaborators the commands use outside the filesystem.
type Dependencies struct {
	LoggerFactory  func(verbose bool) (*zap.Logger, error)
	Copier         clipboard.Copier
	CounterFactory func(cfg tokenizer.Config) (tokenizer.Counter, string, error)
}

// DefaultDependencies returns the production logger, clipboard, and tokenizer.
func DefaultDependencies() Dependencies {
	return Dependencies{
		LoggerFactory:  utils.NewApplicationLogger,
		Copier:         clipboard.NewService(),
		CounterFactory: tokenizer.NewCounter,
	}
}

// ExecuteCombine runs the combine application.
func ExecuteCombine() error {
	return execute(NewCombineCommand(DefaultDependencies()), os.Args[1:])
}

// ExecuteStructure runs the structure application.
func ExecuteStructure() error {
	return execute(NewStructureCommand(DefaultDependencies()), os.Args[1:])
}

func execute(command *cobra.Command, arguments []string) error {
	command.SetArgs(normalizeArguments(command, arguments))
	return command.Execute()
}

// sharedOptions stores the flags both tools register.
type sharedOptions struct {
	configPath  string
	initTarget  string
	force       bool
	showVersion bool
	verbose     bool
	copyOutput  bool
}

func registerSharedFlags(command *cobra.Command, options *sharedOptions) {
	flagSet := command.Flags()
	registerBooleanFlag(flagSet, &options.copyOutput, copyFlagName, copyFlagDescription)
	flagSet.StringVar(&options.configPath, configFlagName, "", configFlagDescription)
	registerInitFlag(flagSet, &options.initTarget)
	registerBooleanFlag(flagSet, &options.force, forceFlagName, forceFlagDescription)
	registerBooleanFlag(flagSet, &options.showVersion, versionFlagName, versionFlagDescription)
	registerBooleanFlag(flagSet, &options.verbose, verboseFlagName, verboseFlagDescription)
}

// runSharedActions handles --version and --init. It reports whether the command
// is finished.
func runSharedActions(command *cobra.Command, options *sharedOptions) (bool, error) {
	writer := command.OutOrStdout()
	if options.showVersion {
		fmt.Fprintf(writer, versionTemplate, command.Name(), utils.GetApplicationVersion())
		return true, nil
	}
	if !command.Flags().Changed(initFlagName) {
		return false, nil
	}
	writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
		Target: config.InitTarget(options.initTarget),
		Force:  options.force,
	})
	if initError != nil {
		return true, initError
	}
	fmt.Fprintf(writer, configurationWrittenFmt, writtenPath)
	return true, nil
}

func (dependencies Dependencies) newLogger(verbose bool) (*zap.Logger, error) {
	if dependencies.LoggerFactory == nil {
		return zap.NewNop(), nil
	}
	logger, loggerError := dependencies.LoggerFactory(verbose)
	if loggerError != nil {
		return nil, fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, loggerError)
	}
	return logger, nil
}

// copyToClipboard copies the written output. A clipboard failure is a warning.
func copyToClipboard(command *cobra.Command, copier clipboard.Copier, outputPath string, logger *zap.Logger) {
	if copier == nil {
		return
	}
	if copyError := clipboard.CopyFile(copier, outputPath); copyError != nil {
		logger.Warn(warningClipboardFailed, zap.String(logFieldFile, outputPath), zap.Error(copyError))
		return
	}
	fmt.Fprintf(command.OutOrStdout(), copiedToClipboardFormat, outputPath)
}

func rootDirectoryArgument(arguments []string) string {
	if len(arguments) == 0 {
		return defaultDirectory
	}
	return arguments[0]
}

func stringOrDefault(flagChanged bool, flagValue string, configured string) string {
	if flagChanged {
		return flagValue
	}
	return configured
}

func listOrDefault(flagChanged bool, flagValue []string, configured []string) []string {
	if flagChanged {
		return append([]string{}, flagValue...)
	}
	return append([]string{}, configured...)
}

func boolOrDefault(flagChanged bool, flagValue bool, configured *bool) bool {
	if flagChanged {
		return flagValue
	}
	return config.BoolValue(configured)
}
