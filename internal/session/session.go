// Package session manages the set of buffers open in one running editor:
// each open file or scratch buffer gets its own editorstate.View, marker
// tree, event log, and decoration registry, keyed by buffer.BufferID, with
// one of them marked active at a time. This replaces the teacher's
// DocumentManager, which kept a single engine.Engine per document; here
// each entry owns the same four spec components (buffer/marker/eventlog/
// decoration) that internal/app wires into the plugin ops surface and the
// render pipeline.
package session

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/decoration"
	"github.com/fresh-editor/fresh/internal/editorstate"
	"github.com/fresh-editor/fresh/internal/eventlog"
	"github.com/fresh-editor/fresh/internal/marker"
	"github.com/fresh-editor/fresh/internal/vfs"
)

// MaxUndoGroups bounds each buffer's event log, matching the undo depth
// the eventlog package itself defaults new logs to when unset.
const MaxUndoGroups = 1000

// Entry is one open buffer and everything scoped to it.
type Entry struct {
	ID          buffer.BufferID
	Path        string // empty for an unsaved scratch buffer
	View        *editorstate.View
	Decorations *decoration.Registry
}

// Modified reports whether the buffer has edits since it was opened or
// last saved; there is no separate dirty flag, an empty undo stack is
// exactly the unmodified state.
func (e *Entry) Modified() bool { return e.View.Log.CanUndo() }

// IsScratch reports whether the entry has no backing file.
func (e *Entry) IsScratch() bool { return e.Path == "" }

// Session owns every open buffer in a running editor and tracks which one
// is active.
type Session struct {
	mu       sync.RWMutex
	fs       vfs.VFS
	entries  map[buffer.BufferID]*Entry
	order    []buffer.BufferID
	activeID buffer.BufferID
}

// New creates an empty session backed by fs. A nil fs defaults to the OS
// file system.
func New(fs vfs.VFS) *Session {
	if fs == nil {
		fs = vfs.NewOSFS()
	}
	return &Session{
		fs:      fs,
		entries: make(map[buffer.BufferID]*Entry),
	}
}

// OpenScratch creates a new unsaved buffer and makes it active.
func (s *Session) OpenScratch() *Entry {
	buf := buffer.NewBufferFromString("")
	return s.addEntry(buf, "")
}

// Open opens path, reusing the existing entry if it is already open.
// Large files are loaded lazily through vfs.Source rather than read in
// full, per the piece buffer's lazy-chunk-loading contract.
func (s *Session) Open(path string) (*Entry, error) {
	s.mu.RLock()
	for _, e := range s.entries {
		if e.Path == path {
			s.mu.RUnlock()
			return e, nil
		}
	}
	s.mu.RUnlock()

	src, err := s.fs.OpenSource(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	buf, err := buffer.NewBufferFromSource(src)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return s.addEntry(buf, path), nil
}

func (s *Session) addEntry(buf *buffer.Buffer, path string) *Entry {
	markers := marker.New()
	log := eventlog.New(MaxUndoGroups)
	view := editorstate.NewView(buf, markers, log, nil)
	entry := &Entry{
		ID:          buf.ID(),
		Path:        path,
		View:        view,
		Decorations: decoration.NewRegistry(markers),
	}

	s.mu.Lock()
	s.entries[entry.ID] = entry
	s.order = append(s.order, entry.ID)
	s.activeID = entry.ID
	s.mu.Unlock()
	return entry
}

// Save writes entry's current text back to its backing file.
func (s *Session) Save(id buffer.BufferID) error {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("buffer %q not open", id)
	}
	if e.IsScratch() {
		return fmt.Errorf("buffer %q has no file path", id)
	}
	text, err := e.View.Buffer.Text()
	if err != nil {
		return fmt.Errorf("save %s: %w", e.Path, err)
	}
	return s.fs.WriteFile(e.Path, []byte(text), 0o644)
}

// SaveAs writes entry's current text to path and rebinds the entry to it.
func (s *Session) SaveAs(id buffer.BufferID, path string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if ok {
		e.Path = path
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("buffer %q not open", id)
	}
	text, err := e.View.Buffer.Text()
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return s.fs.WriteFile(path, []byte(text), 0o644)
}

// Close removes id from the session. If id was active, the most recently
// opened remaining buffer becomes active.
func (s *Session) Close(id buffer.BufferID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("buffer %q not open", id)
	}
	delete(s.entries, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
		if n := len(s.order); n > 0 {
			s.activeID = s.order[n-1]
		}
	}
	return nil
}

// Active returns the active entry, or nil if the session has none open.
func (s *Session) Active() *Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[s.activeID]
}

// SetActive switches the active buffer to id.
func (s *Session) SetActive(id buffer.BufferID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("buffer %q not open", id)
	}
	s.activeID = id
	return nil
}

// Get returns the entry for id, if open.
func (s *Session) Get(id buffer.BufferID) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// All returns every open entry, ordered by open time.
func (s *Session) All() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out
}

// HasDirty reports whether any open buffer has unsaved edits.
func (s *Session) HasDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.Modified() {
			return true
		}
	}
	return false
}

// Paths returns the file paths of every open non-scratch buffer, sorted.
func (s *Session) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !e.IsScratch() {
			paths = append(paths, e.Path)
		}
	}
	sort.Strings(paths)
	return paths
}

// exists reports whether path exists on the session's file system; used by
// callers deciding between Open and OpenScratch.
func (s *Session) exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
