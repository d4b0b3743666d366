package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gather/internal/collector"
	"github.com/temirov/gather/internal/config"
	"github.com/temirov/gather/internal/tokenizer"
	"github.com/temirov/gather/internal/utils"
)

const (
	combineUse              = "combine [directory]"
	combineShortDescription = "concatenate files from target directories into one text file"
	combineLongDescription  = `combine walks the directory tree and collects every file placed directly inside
directories named by --directories, followed by the explicit files named by --files.
The collected files are written, each under a delimiter header, into --output.
Use --tokens to estimate the token count of the result and --copy to place it on the clipboard.`
	combineUsageExample = `  # Combine the default targets of the current directory
  combine

  # Combine two target directories and one explicit file of ./project
  combine ./project -d api models -f README.md -o bundle.txt`

	directoriesFlagName        = "directories"
	directoriesFlagShorthand   = "d"
	filesFlagName              = "files"
	filesFlagShorthand         = "f"
	tokensFlagName             = "tokens"
	modelFlagName              = "model"
	directoriesFlagDescription = "names of directories whose files are collected"
	filesFlagDescription       = "file paths relative to the directory to collect"
	tokensFlagDescription      = "print a token estimate of the combined output"
	modelFlagDescription       = "tokenizer model used by --tokens"

	rootDirectoryMessageFormat     = "Root directory: %s\n"
	targetDirectoriesMessageFormat = "Target directories: %s\n"
	targetFilesMessageFormat       = "Target files: %s\n"
	outputFileMessageFormat        = "Output file: %s\n"
	noFilesMessage                 = "No files found to combine."
	foundFilesMessageFormat        = "Found %d files to combine.\n"
	combinedMessageFormat          = "All files combined into %s (%s).\n"
	failedFilesMessageFormat       = "%d files could not be read; their error text was written instead.\n"
	tokenEstimateMessageFormat     = "Estimated tokens: %d (%s)\n"
	warningTokenCountFailed        = "failed to estimate tokens"
	warningTokenCountSkipped       = "output is not valid UTF-8 text; token estimate skipped"
	debugCollectedFiles            = "collected files"
	logFieldPaths                  = "paths"
	listJoinSeparator              = ", "
)

type combineOptions struct {
	shared      sharedOptions
	directories []string
	files       []string
	output      string
	tokens      bool
	model       string
}

// combineSettings is the effective configuration after flags, configuration files,
// and built-in defaults are merged.
type combineSettings struct {
	rootDirectory string
	directories   []string
	files         []string
	output        string
	tokens        bool
	model         string
	copyOutput    bool
}

// NewCombineCommand builds the combine root command.
func NewCombineCommand(dependencies Dependencies) *cobra.Command {
	options := &combineOptions{}
	defaults := config.DefaultApplicationConfiguration().Combine

	combineCommand := &cobra.Command{
		Use:           combineUse,
		Short:         combineShortDescription,
		Long:          combineLongDescription,
		Example:       combineUsageExample,
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
			settings := resolveCombineSettings(command, options, configuration.Combine)
			settings.rootDirectory = rootDirectoryArgument(arguments)
			return runCombine(command, settings, dependencies, logger)
		},
	}

	flagSet := combineCommand.Flags()
	registerListFlag(flagSet, &options.directories, directoriesFlagName, directoriesFlagShorthand, defaults.Directories, directoriesFlagDescription)
	registerListFlag(flagSet, &options.files, filesFlagName, filesFlagShorthand, defaults.Files, filesFlagDescription)
	flagSet.StringVarP(&options.output, outputFlagName, outputFlagShorthand, defaults.Output, outputFlagDescription)
	registerBooleanFlag(flagSet, &options.tokens, tokensFlagName, tokensFlagDescription)
	flagSet.StringVar(&options.model, modelFlagName, defaults.Tokens.Model, modelFlagDescription)
	registerSharedFlags(combineCommand, &options.shared)
	return combineCommand
}

func resolveCombineSettings(command *cobra.Command, options *combineOptions, configured config.CombineConfiguration) combineSettings {
	flagSet := command.Flags()
	return combineSettings{
		directories: listOrDefault(flagSet.Changed(directoriesFlagName), options.directories, configured.Directories),
		files:       listOrDefault(flagSet.Changed(filesFlagName), options.files, configured.Files),
		output:      stringOrDefault(flagSet.Changed(outputFlagName), options.output, configured.Output),
		tokens:      boolOrDefault(flagSet.Changed(tokensFlagName), options.tokens, configured.Tokens.Enabled),
		model:       stringOrDefault(flagSet.Changed(modelFlagName), options.model, configured.Tokens.Model),
		copyOutput:  boolOrDefault(flagSet.Changed(copyFlagName), options.shared.copyOutput, configured.Copy),
	}
}

// runCombine gathers, concatenates, and reports. An empty result leaves the output
// file untouched.
func runCombine(command *cobra.Command, settings combineSettings, dependencies Dependencies, logger *zap.Logger) error {
	writer := command.OutOrStdout()
	rootDirectory, rootError := utils.AbsoluteCleanPath(settings.rootDirectory)
	if rootError != nil {
		return rootError
	}
	fmt.Fprintf(writer, rootDirectoryMessageFormat, rootDirectory)
	fmt.Fprintf(writer, targetDirectoriesMessageFormat, strings.Join(settings.directories, listJoinSeparator))
	fmt.Fprintf(writer, targetFilesMessageFormat, strings.Join(settings.files, listJoinSeparator))
	fmt.Fprintf(writer, outputFileMessageFormat, settings.output)

	targetSpec := collector.TargetSpec{
		RootDirectory:           rootDirectory,
		TargetDirectoryNames:    settings.directories,
		TargetFileRelativePaths: settings.files,
		OutputPath:              settings.output,
	}
	files, gatherError := collector.GatherPaths(targetSpec, logger)
	if gatherError != nil {
		return gatherError
	}
	if len(files) == 0 {
		fmt.Fprintln(writer, noFilesMessage)
		return nil
	}
	logger.Debug(debugCollectedFiles, zap.Strings(logFieldPaths, collector.Paths(files)))
	fmt.Fprintf(writer, foundFilesMessageFormat, len(files))

	report, concatenateError := collector.Concatenate(files, targetSpec.OutputPath, logger)
	if concatenateError != nil {
		return concatenateError
	}
	fmt.Fprintf(writer, combinedMessageFormat, targetSpec.OutputPath, utils.FormatFileSize(report.BytesWritten))
	if report.Failed > 0 {
		fmt.Fprintf(writer, failedFilesMessageFormat, report.Failed)
	}

	if settings.tokens {
		reportTokenEstimate(writer, settings, dependencies, logger)
	}
	if settings.copyOutput {
		copyToClipboard(command, dependencies.Copier, settings.output, logger)
	}
	return nil
}

// reportTokenEstimate prints the token count of the written output. Failures are
// logged and never fail the command.
func reportTokenEstimate(writer io.Writer, settings combineSettings, dependencies Dependencies, logger *zap.Logger) {
	if dependencies.CounterFactory == nil {
		return
	}
	counter, resolvedModel, counterError := dependencies.CounterFactory(tokenizer.Config{Model: settings.model})
	if counterError != nil {
		logger.Warn(warningTokenCountFailed, zap.String(logFieldFile, settings.output), zap.Error(counterError))
		return
	}
	result, countError := tokenizer.CountFile(counter, settings.output)
	if countError != nil {
		logger.Warn(warningTokenCountFailed, zap.String(logFieldFile, settings.output), zap.Error(countError))
		return
	}
	if !result.Counted {
		logger.Warn(warningTokenCountSkipped, zap.String(logFieldFile, settings.output))
		return
	}
	fmt.Fprintf(writer, tokenEstimateMessageFormat, result.Tokens, resolvedModel)
}
