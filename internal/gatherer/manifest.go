package gatherer

import (
	"sort"

	"github.com/KaramelBytes/ingestor/internal/filetype"
)

// ScannedFile describes one recognized file found during a gather pass.
type ScannedFile struct {
	Name          string                `json:"name" yaml:"name"`
	ContentHash   string                `json:"content_hash" yaml:"content_hash"`
	ScanTimestamp int64                 `json:"scan_timestamp" yaml:"scan_timestamp"` // ms since epoch
	DocumentType  filetype.DocumentType `json:"document_type" yaml:"document_type"`
}

// Manifest groups scanned files by the directory that directly contains
// them. A directory is a key only if at least one recognized file was
// found in it.
type Manifest map[string][]ScannedFile

// Len returns the number of files across all directories.
func (m Manifest) Len() int {
	n := 0
	for _, files := range m {
		n += len(files)
	}
	return n
}

// Dirs returns the directory keys in lexical order.
func (m Manifest) Dirs() []string {
	dirs := make([]string, 0, len(m))
	for d := range m {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// CountByType tallies entries per document type.
func (m Manifest) CountByType() map[filetype.DocumentType]int {
	out := make(map[filetype.DocumentType]int)
	for _, files := range m {
		for _, f := range files {
			out[f.DocumentType]++
		}
	}
	return out
}
