package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// addTree watches root and every directory below it. Failing to watch root
// is an error; subdirectories that cannot be read are skipped.
func (watcher *Watcher) addTree(root string) error {
	if err := watcher.add(root); err != nil {
		return err
	}
	dirs, err := collectRecursiveDirs(root)
	if err != nil {
		return err
	}
	for _, dir := range dirs {
		if err := watcher.add(dir); err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				watcher.logger.Warn("skipping unreadable directory", map[string]string{
					"path":  dir,
					"error": err.Error(),
				})
				continue
			}
			return err
		}
	}
	return nil
}

func collectRecursiveDirs(root string) ([]string, error) {
	dirs := []string{}
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path == root {
			return nil
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

func (watcher *Watcher) add(path string) error {
	watcher.mutex.Lock()
	if _, ok := watcher.watched[path]; ok {
		watcher.mutex.Unlock()
		return nil
	}
	watcher.mutex.Unlock()

	if err := watcher.source.Add(path); err != nil {
		return err
	}

	watcher.mutex.Lock()
	watcher.watched[path] = struct{}{}
	count := len(watcher.watched)
	watcher.mutex.Unlock()

	watcher.logger.Debug("watch added", map[string]string{
		"path":           path,
		"active_watches": strconv.Itoa(count),
	})
	return nil
}

// watchNewDirectory extends the watch to a directory created after start.
func (watcher *Watcher) watchNewDirectory(path string) {
	info, err := os.Lstat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := watcher.addTree(path); err != nil {
		watcher.report(err)
	}
}

// forget drops bookkeeping for a removed path; the OS drops the watch itself.
func (watcher *Watcher) forget(path string) {
	watcher.mutex.Lock()
	defer watcher.mutex.Unlock()
	if _, ok := watcher.watched[path]; !ok {
		return
	}
	prefix := path + string(filepath.Separator)
	for watched := range watcher.watched {
		if watched == path || (len(watched) > len(prefix) && watched[:len(prefix)] == prefix) {
			delete(watcher.watched, watched)
		}
	}
}
