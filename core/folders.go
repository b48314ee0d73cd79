package core

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/huangsam/metricsagg/internal/contract"
)

// DiscoverFolders returns the names of the immediate subdirectories of root,
// sorted by name. Symlinks that resolve to directories count as folders;
// broken symlinks and plain files are skipped. Names matching excludes are dropped.
func DiscoverFolders(root string, excludes []string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading root directory %s: %w", root, err)
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if !isDirEntry(root, entry) {
			continue
		}
		if contract.ShouldIgnore(name, excludes) {
			contract.Logger.Debug("Excluded folder", "folder", name)
			continue
		}
		folders = append(folders, name)
	}
	slices.Sort(folders)
	return folders, nil
}

// isDirEntry reports whether entry is a directory or a symlink to one.
func isDirEntry(root string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	if err != nil {
		return false
	}
	return info.IsDir()
}
