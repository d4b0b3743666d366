package utils

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

const (
	unknownVersion      = "unknown"
	develVersion        = "(devel)"
	gitDirectoryName    = ".git"
	gitExecutable       = "git"
	errorNoGitDirFormat = ".git directory not found in or above %s"
)

var (
	gitDescribeExactArguments = []string{"describe", "--tags", "--exact-match"}
	gitDescribeLongArguments  = []string{"describe", "--tags", "--long", "--dirty"}
)

// GetApplicationVersion reports the module version from the Go build info and falls
// back to git describe when the binary was built from a working tree.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != develVersion {
		return buildInfo.Main.Version
	}

	gitDirectoryPath, gitDirectoryError := findGitDirectory(".")
	if gitDirectoryError != nil {
		return unknownVersion
	}
	for _, arguments := range [][]string{gitDescribeExactArguments, gitDescribeLongArguments} {
		// #nosec G204
		describeCommand := exec.Command(gitExecutable, arguments...)
		describeCommand.Dir = gitDirectoryPath
		describeOutput, describeError := describeCommand.Output()
		if describeError == nil && len(describeOutput) > 0 {
			return strings.TrimSpace(string(describeOutput))
		}
	}
	return unknownVersion
}

// findGitDirectory walks upward from startDirectory to the first directory holding .git.
func findGitDirectory(startDirectory string) (string, error) {
	currentDirectory, absoluteError := AbsoluteCleanPath(startDirectory)
	if absoluteError != nil {
		return "", absoluteError
	}
	absoluteStartDirectory := currentDirectory
	for {
		fileInformation, statError := os.Stat(filepath.Join(currentDirectory, gitDirectoryName))
		if statError == nil && fileInformation.IsDir() {
			return currentDirectory, nil
		}
		parentDirectory := filepath.Dir(currentDirectory)
		if parentDirectory == currentDirectory {
			return "", fmt.Errorf(errorNoGitDirFormat, absoluteStartDirectory)
		}
		currentDirectory = parentDirectory
	}
}
