package auth

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the session file so the UI can refresh its
// linked-account indicator without polling. It watches the parent
// directory because the session file itself may not exist yet.
type Watcher struct {
	fw      *fsnotify.Watcher
	path    string
	changes chan bool
	done    chan struct{}
}

// WatchSession starts watching the session file at path. The parent
// directory must exist.
func WatchSession(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create session watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		fw:      fw,
		path:    path,
		changes: make(chan bool, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Changes delivers the signed-in state after each change to the session
// file. The channel has a buffer of one and rapid changes coalesce; the
// receiver only ever cares about the latest state.
func (w *Watcher) Changes() <-chan bool {
	return w.changes
}

// Close stops the watcher and releases the underlying fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fw.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
				!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			w.publish(SignedInAt(w.path))
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			// Watch errors are not actionable here; the indicator simply
			// stops updating until the next successful event.
		}
	}
}

func (w *Watcher) publish(signedIn bool) {
	// Drop the stale value if the receiver has not caught up yet.
	select {
	case <-w.changes:
	default:
	}
	select {
	case w.changes <- signedIn:
	case <-w.done:
	}
}
