package structure_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gather/internal/structure"
)

var defaultExcludedDirectories = []string{"node_modules", ".vscode", "test", ".git", "__pycache__"}

func writeFixture(t *testing.T, rootDirectory string, files ...string) {
	t.Helper()
	for _, relativePath := range files {
		fullPath := filepath.Join(rootDirectory, filepath.FromSlash(relativePath))
		if strings.HasSuffix(relativePath, "/") {
			if err := os.MkdirAll(fullPath, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", fullPath, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", filepath.Dir(fullPath), err)
		}
		if err := os.WriteFile(fullPath, []byte(relativePath), 0o600); err != nil {
			t.Fatalf("write %s: %v", fullPath, err)
		}
	}
}

func renderOutline(t *testing.T, rootDirectory string, excluded []string) (string, structure.Report) {
	t.Helper()
	var buffer bytes.Buffer
	report, err := structure.Write(&buffer, structure.ExclusionSpec{
		RootDirectory:          rootDirectory,
		ExcludedDirectoryNames: excluded,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	return buffer.String(), report
}

func outlineLines(outline string) []string {
	parts := strings.SplitN(outline, "\n\n", 2)
	if len(parts) < 2 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(parts[1], "\n"), "\n")
}

func TestWriteDefaultExclusionScenario(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "node_modules/lib/index.js", "src/app.js")

	outline, report := renderOutline(t, rootDirectory, defaultExcludedDirectories)

	if strings.Contains(outline, "node_modules") || strings.Contains(outline, "index.js") {
		t.Fatalf("excluded directory leaked into outline:\n%s", outline)
	}
	rootName := filepath.Base(rootDirectory)
	expected := []string{
		"- **" + rootName + "/**",
		"    - **src/**",
		"        - app.js",
	}
	lines := outlineLines(outline)
	if strings.Join(lines, "\n") != strings.Join(expected, "\n") {
		t.Fatalf("unexpected outline lines:\n%s\nexpected:\n%s", strings.Join(lines, "\n"), strings.Join(expected, "\n"))
	}
	if report.Directories != 2 || report.Files != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteHeaderUsesAbsoluteRoot(t *testing.T) {
	rootDirectory := t.TempDir()
	workingDirectory, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	relativeRoot, err := filepath.Rel(workingDirectory, rootDirectory)
	if err != nil {
		t.Skipf("temporary directory not reachable relatively: %v", err)
	}
	outline, _ := renderOutline(t, relativeRoot, nil)
	expectedHeader := "# Структура проекта: " + rootDirectory + "\n\n"
	if !strings.HasPrefix(outline, expectedHeader) {
		t.Fatalf("expected header %q, got %q", expectedHeader, outline)
	}
}

func TestWriteIndentationFollowsDepth(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "a/b/c/deep.txt", "top.txt")

	outline, _ := renderOutline(t, rootDirectory, nil)
	expected := []string{
		"- **" + filepath.Base(rootDirectory) + "/**",
		"    - top.txt",
		"    - **a/**",
		"        - **b/**",
		"            - **c/**",
		"                - deep.txt",
	}
	lines := outlineLines(outline)
	if strings.Join(lines, "\n") != strings.Join(expected, "\n") {
		t.Fatalf("unexpected outline lines:\n%s", strings.Join(lines, "\n"))
	}
}

func TestWritePrunesExcludedNamesAtAnyDepth(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory,
		"pkg/test/fixture.txt",
		"pkg/test/inner/more.txt",
		"pkg/__pycache__/cache.pyc",
		"pkg/main.go",
		"test",
	)

	outline, _ := renderOutline(t, rootDirectory, defaultExcludedDirectories)
	for _, forbidden := range []string{"fixture.txt", "more.txt", "inner", "cache.pyc", "__pycache__", "**test/**"} {
		if strings.Contains(outline, forbidden) {
			t.Fatalf("outline contains %q:\n%s", forbidden, outline)
		}
	}
	if !strings.Contains(outline, "\n        - main.go\n") {
		t.Fatalf("expected main.go under pkg:\n%s", outline)
	}
	if !strings.Contains(outline, "\n    - test\n") {
		t.Fatalf("a file named like an excluded directory must be listed:\n%s", outline)
	}
}

func TestWriteWithoutExclusionsListsEverything(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "node_modules/index.js")

	outline, report := renderOutline(t, rootDirectory, nil)
	if !strings.Contains(outline, "    - **node_modules/**\n        - index.js\n") {
		t.Fatalf("expected node_modules to be listed:\n%s", outline)
	}
	if report.Directories != 2 || report.Files != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteListsEverySiblingOnce(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "one.txt", "two.txt", "three.txt", "x/", "y/")

	outline, report := renderOutline(t, rootDirectory, nil)
	for _, line := range []string{"    - one.txt\n", "    - two.txt\n", "    - three.txt\n", "    - **x/**\n", "    - **y/**\n"} {
		if strings.Count(outline, line) != 1 {
			t.Fatalf("expected %q exactly once:\n%s", line, outline)
		}
	}
	if report.Directories != 3 || report.Files != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteNeitherListsNorFollowsDirectoryLinks(t *testing.T) {
	workspace := t.TempDir()
	writeFixture(t, workspace, "store/pkg/index.js", "shared/lib.go", "project/src/app.js", "project/notes.txt")
	rootDirectory := filepath.Join(workspace, "project")
	links := map[string]string{
		"node_modules": filepath.Join(workspace, "store"),
		"vendored":     filepath.Join(workspace, "shared"),
		"readme.txt":   filepath.Join(rootDirectory, "notes.txt"),
	}
	for linkName, target := range links {
		if err := os.Symlink(target, filepath.Join(rootDirectory, linkName)); err != nil {
			t.Skipf("symlinks unavailable: %v", err)
		}
	}

	outline, report := renderOutline(t, rootDirectory, defaultExcludedDirectories)
	for _, forbidden := range []string{"node_modules", "index.js", "vendored", "lib.go"} {
		if strings.Contains(outline, forbidden) {
			t.Fatalf("outline contains %q:\n%s", forbidden, outline)
		}
	}
	for _, expectedLine := range []string{"    - readme.txt\n", "    - notes.txt\n", "    - **src/**\n        - app.js\n"} {
		if !strings.Contains(outline, expectedLine) {
			t.Fatalf("outline missing %q:\n%s", expectedLine, outline)
		}
	}
	if report.Directories != 2 || report.Files != 3 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWriteSkipsUnreadableDirectory(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "locked/secret.txt", "open.txt")
	lockedDirectory := filepath.Join(rootDirectory, "locked")
	if err := os.Chmod(lockedDirectory, 0o000); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(lockedDirectory, 0o755) })

	core, logs := observer.New(zapcore.WarnLevel)
	var buffer bytes.Buffer
	_, err := structure.Write(&buffer, structure.ExclusionSpec{RootDirectory: rootDirectory}, zap.New(core))
	if err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if strings.Contains(buffer.String(), "secret.txt") || strings.Contains(buffer.String(), "locked") {
		t.Fatalf("unreadable directory should be left out:\n%s", buffer.String())
	}
	if !strings.Contains(buffer.String(), "open.txt") {
		t.Fatalf("readable file missing:\n%s", buffer.String())
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
}

func TestGenerateOverwritesOutputAndListsItWhenInsideTree(t *testing.T) {
	rootDirectory := t.TempDir()
	writeFixture(t, rootDirectory, "src/app.js")
	outputPath := filepath.Join(rootDirectory, "structure.md")
	if err := os.WriteFile(outputPath, []byte("stale content"), 0o600); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	report, err := structure.Generate(structure.ExclusionSpec{
		RootDirectory: rootDirectory,
		OutputPath:    outputPath,
	}, nil)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	content, readErr := os.ReadFile(outputPath)
	if readErr != nil {
		t.Fatalf("read output: %v", readErr)
	}
	if strings.Contains(string(content), "stale content") {
		t.Fatalf("expected output to be overwritten")
	}
	if !strings.Contains(string(content), "\n    - structure.md\n") {
		t.Fatalf("expected output file to be listed:\n%s", string(content))
	}
	if report.Files != 2 {
		t.Fatalf("expected 2 files, got %d", report.Files)
	}
}

func TestGenerateFailsForUnwritableOutput(t *testing.T) {
	_, err := structure.Generate(structure.ExclusionSpec{
		RootDirectory: t.TempDir(),
		OutputPath:    filepath.Join(t.TempDir(), "missing", "structure.md"),
	}, nil)
	if err == nil {
		t.Fatalf("expected error for unwritable output location")
	}
}
