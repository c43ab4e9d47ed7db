package filings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file or directory
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

// ListDirectories lists the subdirectories of dir in lexicographic order
func ListDirectories(dir string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var dirs []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		dirs = append(dirs, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			ModTime: info.ModTime(),
			IsDir:   true,
		})
	}

	return dirs, nil
}

// FindFiles returns the regular files in dir accepted by match, in lexicographic order
func FindFiles(dir string, match func(name string) bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(dir, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// HasSuffixFold returns a matcher for names ending in suffix, ignoring case
func HasSuffixFold(suffix string) func(string) bool {
	suffix = strings.ToLower(suffix)
	return func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), suffix)
	}
}

// ContainsMarker returns a matcher for names containing marker
func ContainsMarker(marker string) func(string) bool {
	return func(name string) bool {
		return strings.Contains(name, marker)
	}
}
