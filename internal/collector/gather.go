package collector

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gather/internal/utils"
)

const (
	warningExplicitFileMissing = "file not found and will be skipped"
	debugAccessPathFailed      = "skipping unreadable path"
	debugReadTargetFailed      = "skipping unreadable target directory"
	debugTargetMatched         = "collecting target directory"
	errorWalkRootFormat        = "walk %s: %w"

	logFieldPath   = "path"
	logFieldFile   = "file"
	logFieldTarget = "target"
)

// GatherPaths resolves the files named by spec in order: first every file directly
// inside each directory whose basename equals a target directory name, one full walk
// per name, then every explicit file that exists as a regular file. A matched directory
// is not searched further, so nested directories of the same name are never collected.
// Missing explicit files are reported through logger and skipped.
func GatherPaths(spec TargetSpec, logger *zap.Logger) ([]CollectedFile, error) {
	logger = utils.LoggerOrNop(logger)
	rootDirectory, rootError := utils.AbsoluteCleanPath(spec.RootDirectory)
	if rootError != nil {
		return nil, rootError
	}

	var collected []CollectedFile
	for _, targetName := range spec.TargetDirectoryNames {
		targetFiles, walkError := gatherTargetDirectory(rootDirectory, targetName, logger)
		if walkError != nil {
			return nil, fmt.Errorf(errorWalkRootFormat, rootDirectory, walkError)
		}
		collected = append(collected, targetFiles...)
	}
	collected = append(collected, gatherExplicitFiles(rootDirectory, spec.TargetFileRelativePaths, logger)...)
	return collected, nil
}

// gatherTargetDirectory walks rootDirectory once and collects the direct files of
// every directory named targetName. A root that is a symbolic link to a directory
// is followed; links below it are not.
func gatherTargetDirectory(rootDirectory string, targetName string, logger *zap.Logger) ([]CollectedFile, error) {
	var collected []CollectedFile
	walkFunction := func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			logger.Debug(debugAccessPathFailed, zap.String(logFieldPath, walkedPath), zap.Error(accessError))
			return nil
		}
		if !directoryEntry.IsDir() || directoryEntry.Name() != targetName {
			return nil
		}
		logger.Debug(debugTargetMatched, zap.String(logFieldPath, walkedPath), zap.String(logFieldTarget, targetName))
		files, readError := directFiles(walkedPath)
		if readError != nil {
			logger.Debug(debugReadTargetFailed, zap.String(logFieldPath, walkedPath), zap.Error(readError))
			return filepath.SkipDir
		}
		for _, filePath := range files {
			collected = append(collected, CollectedFile{
				Path:       filePath,
				Provenance: ProvenanceDirectory,
				TargetName: targetName,
			})
		}
		return filepath.SkipDir
	}
	if walkError := filepath.WalkDir(followedRoot(rootDirectory), walkFunction); walkError != nil {
		return nil, walkError
	}
	return collected, nil
}

// followedRoot makes WalkDir resolve a symbolic link given as the root. A trailing
// separator forces the link to be followed while child paths keep the root as given.
func followedRoot(rootDirectory string) string {
	if strings.HasSuffix(rootDirectory, string(filepath.Separator)) {
		return rootDirectory
	}
	return rootDirectory + string(filepath.Separator)
}

// directFiles lists the non-directory entries directly inside directoryPath in
// lexical order. Symbolic links count as directories when they point to one.
func directFiles(directoryPath string) ([]string, error) {
	entries, readError := os.ReadDir(directoryPath)
	if readError != nil {
		return nil, readError
	}
	var files []string
	for _, entry := range entries {
		entryPath := filepath.Join(directoryPath, entry.Name())
		if isDirectoryEntry(entryPath, entry) {
			continue
		}
		files = append(files, entryPath)
	}
	return files, nil
}

func isDirectoryEntry(entryPath string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(entryPath)
	return statError == nil && targetInfo.IsDir()
}

// gatherExplicitFiles resolves relativePaths against rootDirectory and keeps those
// that exist as regular files. Absolute entries are used as given.
func gatherExplicitFiles(rootDirectory string, relativePaths []string, logger *zap.Logger) []CollectedFile {
	var collected []CollectedFile
	for _, relativePath := range relativePaths {
		filePath := relativePath
		if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(rootDirectory, relativePath)
		}
		filePath = filepath.Clean(filePath)
		fileInfo, statError := os.Stat(filePath)
		if statError != nil || !fileInfo.Mode().IsRegular() {
			logger.Warn(warningExplicitFileMissing, zap.String(logFieldFile, relativePath))
			continue
		}
		collected = append(collected, CollectedFile{
			Path:       filePath,
			Provenance: ProvenanceExplicit,
			TargetName: relativePath,
		})
	}
	return collected
}
