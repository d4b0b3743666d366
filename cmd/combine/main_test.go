package main_test

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// #nosec G204
func buildBinary(testSetup *testing.T) string {
	testSetup.Helper()
	if testing.Short() {
		testSetup.Skip("building the binary is skipped in short mode")
	}
	binaryName := "combine_integration_test_binary"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(testSetup.TempDir(), binaryName)

	buildCommand := exec.Command("go", "build", "-o", binaryPath, ".")
	outputData, buildErr := buildCommand.CombinedOutput()
	if buildErr != nil {
		testSetup.Fatalf("Failed to build binary: %v\nBuild Output:\n%s", buildErr, string(outputData))
	}
	return binaryPath
}

// #nosec G204
func runCommand(testSetup *testing.T, binaryPath string, arguments []string, workingDirectory string) (string, string) {
	testSetup.Helper()
	command := exec.Command(binaryPath, arguments...)
	command.Dir = workingDirectory
	homeDirectory := testSetup.TempDir()
	command.Env = append(os.Environ(), "HOME="+homeDirectory, "USERPROFILE="+homeDirectory)

	var standardOutputBuffer, standardErrorBuffer bytes.Buffer
	command.Stdout = &standardOutputBuffer
	command.Stderr = &standardErrorBuffer

	if runError := command.Run(); runError != nil {
		testSetup.Fatalf("Command failed unexpectedly.\n--- Command ---\n%s %s\n--- Standard Output ---\n%s\n--- Standard Error ---\n%s\n--- Error ---\n%v",
			filepath.Base(binaryPath), strings.Join(arguments, " "), standardOutputBuffer.String(), standardErrorBuffer.String(), runError)
	}
	return standardOutputBuffer.String(), standardErrorBuffer.String()
}

func setupTestDirectory(testSetup *testing.T, directoryStructure map[string]string) string {
	testSetup.Helper()
	temporaryDirectoryRoot := testSetup.TempDir()
	for relativePath, content := range directoryStructure {
		absolutePath := filepath.Join(temporaryDirectoryRoot, relativePath)
		if mkdirErr := os.MkdirAll(filepath.Dir(absolutePath), 0o755); mkdirErr != nil {
			testSetup.Fatalf("Failed to create directory for %s: %v", absolutePath, mkdirErr)
		}
		if writeErr := os.WriteFile(absolutePath, []byte(content), 0o644); writeErr != nil {
			testSetup.Fatalf("Failed to write file %s: %v", absolutePath, writeErr)
		}
	}
	return temporaryDirectoryRoot
}

func TestCombineBinaryWritesOutputIntoWorkingDirectory(testInstance *testing.T) {
	binaryPath := buildBinary(testInstance)
	testDirectory := setupTestDirectory(testInstance, map[string]string{
		"frontend/a.py":     "print('a')",
		"frontend/sub/b.py": "print('b')",
		"Logistics.col":     "logistics",
	})

	standardOutput, _ := runCommand(testInstance, binaryPath, nil, testDirectory)

	content, readErr := os.ReadFile(filepath.Join(testDirectory, "combined_code.txt"))
	if readErr != nil {
		testInstance.Fatalf("Expected combined_code.txt in the working directory: %v\nOutput:\n%s", readErr, standardOutput)
	}
	expectedContent := fmt.Sprintf("\n\n===== Содержимое файла: %s =====\n\nprint('a')\n\n===== Содержимое файла: %s =====\n\nlogistics",
		filepath.Join(testDirectory, "frontend", "a.py"), filepath.Join(testDirectory, "Logistics.col"))
	if string(content) != expectedContent {
		testInstance.Errorf("Unexpected combined content:\n%q\nExpected:\n%q", string(content), expectedContent)
	}
	if !strings.Contains(standardOutput, "Found 2 files to combine.") {
		testInstance.Errorf("Missing file count in output:\n%s", standardOutput)
	}
}

func TestCombineBinaryWarnsAndSucceedsWithoutFiles(testInstance *testing.T) {
	binaryPath := buildBinary(testInstance)
	testDirectory := setupTestDirectory(testInstance, map[string]string{
		"src/main.go": "package main",
	})

	standardOutput, standardError := runCommand(testInstance, binaryPath, []string{".", "-d", "frontend", "-f", "missing.txt"}, testDirectory)

	if !strings.Contains(standardOutput, "No files found to combine.") {
		testInstance.Errorf("Missing empty result message:\n%s", standardOutput)
	}
	if !strings.Contains(standardError, "file not found and will be skipped") || !strings.Contains(standardError, "missing.txt") {
		testInstance.Errorf("Missing skip warning on stderr:\n%s", standardError)
	}
	if _, statErr := os.Stat(filepath.Join(testDirectory, "combined_code.txt")); !os.IsNotExist(statErr) {
		testInstance.Errorf("Output file must not be created, stat error: %v", statErr)
	}
}

func TestCombineBinaryVersionFlag(testInstance *testing.T) {
	binaryPath := buildBinary(testInstance)
	standardOutput, _ := runCommand(testInstance, binaryPath, []string{"--version"}, testInstance.TempDir())
	if !strings.HasPrefix(standardOutput, "combine version: ") {
		testInstance.Errorf("Unexpected version output: %q", standardOutput)
	}
}
