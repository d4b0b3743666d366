// Package structure renders a Markdown outline of a directory tree, pruning
// excluded directory names before they are visited.
package structure

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gather/internal/utils"
)

const (
	// DocumentHeaderFormat is the first line of the outline followed by a blank line.
	DocumentHeaderFormat = "# Структура проекта: %s\n\n"
	// DirectoryLineFormat renders a directory bullet after its indentation.
	DirectoryLineFormat = "- **%s/**\n"
	// FileLineFormat renders a file bullet after its indentation.
	FileLineFormat = "- %s\n"

	errorCreateOutputFormat = "create output file %s: %w"
	errorWriteOutputFormat  = "write output file %s: %w"
	errorCloseOutputFormat  = "close output file %s: %w"
	warningReadDirectory    = "skipping unreadable directory"

	logFieldPath = "path"
)

// ExclusionSpec describes the tree to outline and the directory names pruned from it.
type ExclusionSpec struct {
	RootDirectory          string
	ExcludedDirectoryNames []string
	OutputPath             string
}

// Report counts the entries written to the outline.
type Report struct {
	Directories int
	Files       int
}

// Generate creates or overwrites spec.OutputPath and writes the outline into it.
// The output file is created before the walk starts.
func Generate(spec ExclusionSpec, logger *zap.Logger) (report Report, err error) {
	outputFile, createError := os.Create(spec.OutputPath)
	if createError != nil {
		return Report{}, fmt.Errorf(errorCreateOutputFormat, spec.OutputPath, createError)
	}
	defer func() {
		if closeError := outputFile.Close(); closeError != nil && err == nil {
			err = fmt.Errorf(errorCloseOutputFormat, spec.OutputPath, closeError)
		}
	}()

	bufferedWriter := bufio.NewWriter(outputFile)
	report, err = Write(bufferedWriter, spec, logger)
	if err != nil {
		return report, fmt.Errorf(errorWriteOutputFormat, spec.OutputPath, err)
	}
	if flushError := bufferedWriter.Flush(); flushError != nil {
		return report, fmt.Errorf(errorWriteOutputFormat, spec.OutputPath, flushError)
	}
	return report, nil
}

// Write streams the outline of spec.RootDirectory to writer in a single depth-first
// pass. Every directory is written as a bold bullet indented four spaces per level
// below the root, followed by its files one level deeper in the order the filesystem
// reports them. Subdirectories named in spec.ExcludedDirectoryNames are dropped before
// anything below them is read. Unreadable directories are logged and left out.
func Write(writer io.Writer, spec ExclusionSpec, logger *zap.Logger) (Report, error) {
	rootDirectory, rootError := utils.AbsoluteCleanPath(spec.RootDirectory)
	if rootError != nil {
		return Report{}, rootError
	}
	if _, headerError := fmt.Fprintf(writer, DocumentHeaderFormat, rootDirectory); headerError != nil {
		return Report{}, headerError
	}

	walker := &treeWalker{
		writer:   writer,
		excluded: utils.NameSet(spec.ExcludedDirectoryNames),
		logger:   utils.LoggerOrNop(logger),
	}
	walkError := walker.walkDirectory(rootDirectory, utils.DirectoryDisplayName(rootDirectory), 0)
	return walker.report, walkError
}

type treeWalker struct {
	writer   io.Writer
	excluded map[string]struct{}
	logger   *zap.Logger
	report   Report
}

// walkDirectory emits directoryPath and its files, then descends into every
// subdirectory that survives pruning. Symbolic links to files are listed as files.
// Only write failures are returned.
func (walker *treeWalker) walkDirectory(directoryPath string, displayName string, depth int) error {
	entries, readError := readDirectoryUnsorted(directoryPath)
	if readError != nil {
		walker.logger.Warn(warningReadDirectory, zap.String(logFieldPath, directoryPath), zap.Error(readError))
		return nil
	}

	var subdirectoryNames []string
	var fileNames []string
	for _, entry := range entries {
		if entry.IsDir() {
			if _, isExcluded := walker.excluded[entry.Name()]; isExcluded {
				continue
			}
			subdirectoryNames = append(subdirectoryNames, entry.Name())
			continue
		}
		if isDirectoryLink(filepath.Join(directoryPath, entry.Name()), entry) {
			continue
		}
		fileNames = append(fileNames, entry.Name())
	}

	if err := walker.emit(depth, directoryLine(displayName)); err != nil {
		return err
	}
	walker.report.Directories++
	for _, fileName := range fileNames {
		if err := walker.emit(depth+1, fmt.Sprintf(FileLineFormat, fileName)); err != nil {
			return err
		}
		walker.report.Files++
	}

	for _, subdirectoryName := range subdirectoryNames {
		if err := walker.walkDirectory(filepath.Join(directoryPath, subdirectoryName), subdirectoryName, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// isDirectoryLink reports whether entry is a symbolic link resolving to a directory.
// Such links are neither listed nor followed.
func isDirectoryLink(entryPath string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(entryPath)
	return statError == nil && targetInfo.IsDir()
}

func (walker *treeWalker) emit(depth int, line string) error {
	_, err := io.WriteString(walker.writer, strings.Repeat(utils.IndentUnit, depth)+line)
	return err
}

// directoryLine renders a directory bullet. A filesystem root already ends in a
// separator and does not get a second one.
func directoryLine(displayName string) string {
	if strings.HasSuffix(displayName, string(filepath.Separator)) {
		return fmt.Sprintf(DirectoryLineFormat, strings.TrimSuffix(displayName, string(filepath.Separator)))
	}
	return fmt.Sprintf(DirectoryLineFormat, displayName)
}

// readDirectoryUnsorted returns the entries of directoryPath in directory order.
// os.ReadDir would sort them by name.
//
// #nosec G304
func readDirectoryUnsorted(directoryPath string) ([]fs.DirEntry, error) {
	directoryHandle, openError := os.Open(directoryPath)
	if openError != nil {
		return nil, openError
	}
	defer directoryHandle.Close()
	return directoryHandle.ReadDir(-1)
}
