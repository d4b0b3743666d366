// Package collector gathers files from named target directories and an explicit
// file list, then concatenates their contents into a single text file.
package collector

// Provenance records why a file was collected.
type Provenance string

const (
	// ProvenanceDirectory marks a file found directly inside a directory whose basename is a target name.
	ProvenanceDirectory Provenance = "directory"
	// ProvenanceExplicit marks a file listed explicitly relative to the root.
	ProvenanceExplicit Provenance = "explicit"
)

// TargetSpec describes what the collector gathers and where it writes the result.
type TargetSpec struct {
	RootDirectory           string
	TargetDirectoryNames    []string
	TargetFileRelativePaths []string
	OutputPath              string
}

// CollectedFile is an absolute file path together with the reason it was collected.
// TargetName holds the matching directory name or the explicit path as given.
type CollectedFile struct {
	Path       string
	Provenance Provenance
	TargetName string
}

// ConcatenationReport summarizes a written output file.
type ConcatenationReport struct {
	Files        int
	Failed       int
	BytesWritten int64
}

// Paths returns the paths of files in order.
func Paths(files []CollectedFile) []string {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		paths = append(paths, file.Path)
	}
	return paths
}
