// Package fswatch watches open buffers' backing files for external
// changes and publishes a reload notification onto the event bus,
// grounded on the same fsnotify dependency the teacher's project package
// used for workspace file-change detection, repurposed here to a flat set
// of explicitly-watched paths rather than a recursive project tree.
package fswatch

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/fresh-editor/fresh/internal/event"
	"github.com/fresh-editor/fresh/internal/event/topic"
)

// TopicChanged is the event published when a watched file is modified on
// disk outside the editor.
const TopicChanged topic.Topic = "fs.file.changed"

// TopicRemoved is the event published when a watched file is deleted or
// renamed away on disk.
const TopicRemoved topic.Topic = "fs.file.removed"

// Changed is the payload of a TopicChanged/TopicRemoved event.
type Changed struct {
	Path string
}

// Watcher watches a set of files and republishes fsnotify events onto an
// event.Bus as Changed payloads, so the session layer can reload the
// affected buffer without importing fsnotify itself.
type Watcher struct {
	fsw *fsnotify.Watcher
	pub *event.Publisher

	mu      sync.Mutex
	watched map[string]bool // by directory, since fsnotify watches dirs
	done    chan struct{}
}

// New creates a Watcher that publishes onto bus under source "fswatch".
func New(bus event.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fsw:     fsw,
		pub:     event.NewPublisher(bus, "fswatch"),
		watched: make(map[string]bool),
		done:    make(chan struct{}),
	}, nil
}

// Watch starts watching path's containing directory. Events are not
// filtered by path: a change to any file in that directory is published.
// fsnotify watches directories, not individual files, so
// rename-and-replace saves (common with editors and build tools) are still
// seen even though the original inode goes away.
func (w *Watcher) Watch(path string) error {
	dir := filepath.Dir(path)
	w.mu.Lock()
	already := w.watched[dir]
	w.watched[dir] = true
	w.mu.Unlock()
	if already {
		return nil
	}
	return w.fsw.Add(dir)
}

// Run processes fsnotify events until ctx is cancelled or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case <-w.fsw.Errors:
			// Errors are non-fatal; the watcher keeps running on the
			// remaining watched directories.
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	switch {
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		_ = w.pub.PublishTypedAsync(ctx, TopicRemoved, Changed{Path: ev.Name})
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		_ = w.pub.PublishTypedAsync(ctx, TopicChanged, Changed{Path: ev.Name})
	}
}

// Close stops the watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}
