package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileInfo describes an export file found in the download directory.
type FileInfo struct {
	Name    string
	Path    string
	ModTime time.Time
}

// Discover lists files in dir whose extension matches exts, sorted by
// modification time oldest first. When all is false only the most recently
// modified file is returned. An empty result is not an error; callers decide
// whether "nothing to process" is fatal.
func Discover(dir string, exts []string, all bool) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading export dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !matchExt(e.Name(), exts) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	if !all && len(files) > 1 {
		files = files[len(files)-1:]
	}
	return files, nil
}

func matchExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
