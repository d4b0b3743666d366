package clipboard_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/gather/internal/services/clipboard"
)

type recordingCopier struct {
	copied []string
}

func (copier *recordingCopier) Copy(text string) error {
	copier.copied = append(copier.copied, text)
	return nil
}

func TestCopyFileHandsContentToCopier(t *testing.T) {
	path := filepath.Join(t.TempDir(), "structure.md")
	if err := os.WriteFile(path, []byte("# Структура проекта: /tmp\n\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	copier := &recordingCopier{}
	if err := clipboard.CopyFile(copier, path); err != nil {
		t.Fatalf("CopyFile error: %v", err)
	}
	if len(copier.copied) != 1 || copier.copied[0] != "# Структура проекта: /tmp\n\n" {
		t.Fatalf("unexpected copied content: %q", copier.copied)
	}
}

func TestCopyFileFailsForMissingFile(t *testing.T) {
	copier := &recordingCopier{}
	if err := clipboard.CopyFile(copier, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(copier.copied) != 0 {
		t.Fatalf("copier should not be called")
	}
}
