package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gather/internal/config"
	"github.com/temirov/gather/internal/structure"
)

const (
	structureUse              = "structure [directory]"
	structureShortDescription = "write a Markdown outline of a directory tree"
	structureLongDescription  = `structure writes every directory and file below the directory as a nested
Markdown list into --output. Directories named by --exclude are pruned at any depth.
Pass -e without names to outline everything.`
	structureUsageExample = `  # Outline the current directory into structure.md
  structure

  # Outline ./project while pruning dist and vendor
  structure ./project -e dist vendor -o outline.md`

	excludeFlagName        = "exclude"
	excludeFlagShorthand   = "e"
	excludeFlagDescription = "directory names pruned from the outline"

	structureSavedMessageFormat  = "Project structure saved to %s\n"
	structureCountsMessageFormat = "Directories: %d, files: %d\n"
)

type structureOptions struct {
	shared  sharedOptions
	output  string
	exclude []string
}

type structureSettings struct {
	rootDirectory string
	output        string
	exclude       []string
	copyOutput    bool
}

// NewStructureCommand builds the structure root command.
func NewStructureCommand(dependencies Dependencies) *cobra.Command {
	options := &structureOptions{}
	defaults := config.DefaultApplicationConfiguration().Structure

	structureCommand := &cobra.Command{
		Use:           structureUse,
		Short:         structureShortDescription,
		Long:          structureLongDescription,
		Example:       structureUsageExample,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if finished, sharedError := runSharedActions(command, &options.shared); finished || sharedError != nil {
				return sharedError
			}
			logger, loggerError := dependencies.newLogger(options.shared.verbose)
			if loggerError != nil {
				return loggerError
			}
			defer func() { _ = logger.Sync() }()

			configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
				ExplicitFilePath: options.shared.configPath,
			})
			if configurationError != nil {
				return configurationError
			}
			flagSet := command.Flags()
			settings := structureSettings{
				rootDirectory: rootDirectoryArgument(arguments),
				output:        stringOrDefault(flagSet.Changed(outputFlagName), options.output, configuration.Structure.Output),
				exclude:       listOrDefault(flagSet.Changed(excludeFlagName), options.exclude, configuration.Structure.Exclude),
				copyOutput:    boolOrDefault(flagSet.Changed(copyFlagName), options.shared.copyOutput, configuration.Structure.Copy),
			}
			return runStructure(command, settings, dependencies, logger)
		},
	}

	flagSet := structureCommand.Flags()
	flagSet.StringVarP(&options.output, outputFlagName, outputFlagShorthand, defaults.Output, outputFlagDescription)
	registerListFlag(flagSet, &options.exclude, excludeFlagName, excludeFlagShorthand, defaults.Exclude, excludeFlagDescription)
	registerSharedFlags(structureCommand, &options.shared)
	return structureCommand
}

func runStructure(command *cobra.Command, settings structureSettings, dependencies Dependencies, logger *zap.Logger) error {
	report, generateError := structure.Generate(structure.ExclusionSpec{
		RootDirectory:          settings.rootDirectory,
		ExcludedDirectoryNames: settings.exclude,
		OutputPath:             settings.output,
	}, logger)
	if generateError != nil {
		return generateError
	}
	writer := command.OutOrStdout()
	fmt.Fprintf(writer, structureSavedMessageFormat, settings.output)
	fmt.Fprintf(writer, structureCountsMessageFormat, report.Directories, report.Files)
	if settings.copyOutput {
		copyToClipboard(command, dependencies.Copier, settings.output, logger)
	}
	return nil
}
