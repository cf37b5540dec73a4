// Copyright (c) 2025 ZatGPT Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package token

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the credentials file for external changes, such as
// `zatgpt logout` running in another terminal while the TUI is open. When
// the file is removed or rewritten the store cache is dropped and the
// callback fires, letting the active screen re-check authentication instead
// of carrying on with a dead session.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Watch starts watching the store's credentials file. onChange is called
// from the watcher goroutine for every external mutation; callers typically
// forward it into their event loop rather than acting on it directly.
func Watch(store *Store, onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: atomic writes replace the inode and
	// removal would silently end a file-level watch.
	if err := fw.Add(filepath.Dir(store.Path())); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		store:   store,
		watcher: fw,
		done:    make(chan struct{}),
	}

	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func()) {
	target := filepath.Base(w.store.Path())
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.store.Invalidate()
				if onChange != nil {
					onChange()
				}
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the store still works,
			// it just loses live invalidation.
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
