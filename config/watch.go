package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 250 * time.Millisecond

// Watcher queues a reload request whenever the config file changes on disk.
// The parent directory is watched, not the file itself: editors and the
// atomic Write in this package replace the file by rename, which would
// otherwise drop the watch.
type Watcher struct {
	fs   *fsnotify.Watcher
	done chan struct{}
}

// Watch starts watching path and sends on notify (non-blocking, so notify
// should have capacity 1) after changes settle for the debounce interval.
func Watch(path string, notify chan<- struct{}) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{fs: fs, done: make(chan struct{})}
	base := filepath.Base(path)

	go func() {
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-w.done:
				return
			case ev, ok := <-fs.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != base {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(watchDebounce)
					fire = timer.C
				} else {
					timer.Reset(watchDebounce)
				}
			case <-fire:
				timer = nil
				fire = nil
				select {
				case notify <- struct{}{}:
				default:
				}
			case _, ok := <-fs.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return w, nil
}

func (w *Watcher) Close() {
	close(w.done)
	w.fs.Close()
}
