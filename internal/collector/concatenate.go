package collector

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/gather/internal/utils"
)

const (
	// FileHeaderFormat is the delimiter written before each file's content.
	FileHeaderFormat = "\n\n===== Содержимое файла: %s =====\n\n"
	// FileReadErrorFormat replaces the content of a file that cannot be read or decoded.
	FileReadErrorFormat = "Ошибка при чтении файла %s: %v\n"

	errorCreateOutputFormat = "create output file %s: %w"
	errorWriteOutputFormat  = "write output file %s: %w"
	errorCloseOutputFormat  = "close output file %s: %w"
	warningFileReadFailed   = "failed to read file"
)

// Concatenate writes every file in files, in order, into outputPath, overwriting it.
// Each file contributes a delimiter block: FileHeaderFormat followed by the file's
// UTF-8 text. A file that cannot be read or decoded contributes FileReadErrorFormat
// instead and never stops the run. Only failures on the output file are returned.
func Concatenate(files []CollectedFile, outputPath string, logger *zap.Logger) (report ConcatenationReport, err error) {
	logger = utils.LoggerOrNop(logger)
	outputFile, createError := os.Create(outputPath)
	if createError != nil {
		return ConcatenationReport{}, fmt.Errorf(errorCreateOutputFormat, outputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseOutputFormat, outputPath, closeError)
		}
	}()

	bufferedWriter := bufio.NewWriter(outputFile)
	report, err = writeDelimiterBlocks(bufferedWriter, files, logger)
	if err != nil {
		return report, fmt.Errorf(errorWriteOutputFormat, outputPath, err)
	}
	if flushError := bufferedWriter.Flush(); flushError != nil {
		return report, fmt.Errorf(errorWriteOutputFormat, outputPath, flushError)
	}
	return report, nil
}

// writeDelimiterBlocks streams one delimiter block per file into writer.
func writeDelimiterBlocks(writer io.Writer, files []CollectedFile, logger *zap.Logger) (ConcatenationReport, error) {
	var report ConcatenationReport
	for _, file := range files {
		headerBytes, headerError := fmt.Fprintf(writer, FileHeaderFormat, file.Path)
		report.BytesWritten += int64(headerBytes)
		if headerError != nil {
			return report, headerError
		}

		body, readError := readText(file.Path)
		if readError != nil {
			logger.Warn(warningFileReadFailed, zap.String(logFieldFile, file.Path), zap.Error(readError))
			body = fmt.Sprintf(FileReadErrorFormat, file.Path, readError)
			report.Failed++
		}
		bodyBytes, bodyError := io.WriteString(writer, body)
		report.BytesWritten += int64(bodyBytes)
		if bodyError != nil {
			return report, bodyError
		}
		report.Files++
	}
	return report, nil
}

// readText opens, fully reads, and closes filePath before decoding it as UTF-8 text.
//
// #nosec G304
func readText(filePath string) (string, error) {
	fileBytes, readError := os.ReadFile(filePath)
	if readError != nil {
		return "", readError
	}
	return utils.DecodeText(fileBytes)
}
