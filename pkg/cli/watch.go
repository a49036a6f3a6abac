package cli

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the bursts of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

func cmdWatch(e *env, args []string) int {
	path, ok := oneFile(e, "watch", args)
	if !ok {
		return 2
	}
	logger := log.New(e.stderr, "valc watch: ", 0)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Printf("Error creating watcher: %v", err)
		return 1
	}
	defer w.Close()

	// Watch the directory: editors often replace the file on save.
	if err := w.Add(filepath.Dir(path)); err != nil {
		logger.Printf("Error watching %s: %v", path, err)
		return 1
	}
	target := filepath.Clean(path)

	check := func() {
		fmt.Fprintln(e.stderr, e.paint(colorGray, "--- "+time.Now().Format("15:04:05")+" "+path))
		if result, ok := compileFor(e, path); ok && result.OK() {
			fmt.Fprintln(e.stderr, "ok")
		}
	}
	check()

	var pending <-chan time.Time
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return 0
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				pending = time.After(watchDebounce)
			}
			if ev.Op&fsnotify.Remove != 0 {
				logger.Printf("File removed: %s", path)
			}
		case <-pending:
			pending = nil
			check()
		case err, ok := <-w.Errors:
			if !ok {
				return 0
			}
			logger.Printf("Error watching %s: %v", path, err)
		}
	}
}
