// Package app wires the editor's core components (internal/editorstate,
// internal/config, internal/eventlog) together and, through the adapters in
// this file, exposes them to the Lua plugin host's ops surface
// (internal/plugin/ops) without internal/plugin/ops needing to import any
// of them directly.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/tidwall/match"

	"github.com/fresh-editor/fresh/internal/buffer"
	"github.com/fresh-editor/fresh/internal/config"
	"github.com/fresh-editor/fresh/internal/config/layer"
	"github.com/fresh-editor/fresh/internal/cursor"
	"github.com/fresh-editor/fresh/internal/editorstate"
	"github.com/fresh-editor/fresh/internal/event"
	"github.com/fresh-editor/fresh/internal/event/topic"
	"github.com/fresh-editor/fresh/internal/eventlog"
	"github.com/fresh-editor/fresh/internal/plugin/ops"
)

// Compile-time interface checks.
var (
	_ ops.BufferProvider = (*BufferProviderAdapter)(nil)
	_ ops.CursorProvider = (*CursorProviderAdapter)(nil)
	_ ops.ConfigProvider = (*ConfigProviderAdapter)(nil)
	_ ops.EventProvider  = (*EventBus)(nil)
)

// BufferProviderAdapter adapts one editorstate.View's buffer to
// ops.BufferProvider. Every mutation goes through the view's eventlog.Log
// so plugin-driven edits remain undoable alongside user edits.
type BufferProviderAdapter struct {
	view *editorstate.View
	path string
}

// NewBufferProviderAdapter adapts view's buffer for plugin use. path is the
// file path reported to plugins (empty for an unsaved buffer).
func NewBufferProviderAdapter(view *editorstate.View, path string) *BufferProviderAdapter {
	return &BufferProviderAdapter{view: view, path: path}
}

func (a *BufferProviderAdapter) Text() string {
	text, _ := a.view.Buffer.Text()
	return text
}

func (a *BufferProviderAdapter) TextRange(start, end int) (string, error) {
	return a.view.Buffer.Read(buffer.ByteOffset(start), buffer.ByteOffset(end))
}

func (a *BufferProviderAdapter) Line(lineNum int) (string, error) {
	lineStart, err := a.view.Buffer.ByteOfLine(int64(lineNum - 1))
	if err != nil {
		return "", err
	}
	lineEnd, err := a.view.Buffer.ByteOfLine(int64(lineNum))
	if err != nil {
		lineEnd = a.view.Buffer.Len()
	} else if lineEnd > lineStart {
		lineEnd--
	}
	return a.view.Buffer.Read(lineStart, lineEnd)
}

func (a *BufferProviderAdapter) LineCount() int {
	return int(a.view.Buffer.LineCount())
}

func (a *BufferProviderAdapter) Len() int {
	return int(a.view.Buffer.Len())
}

func (a *BufferProviderAdapter) Insert(offset int, text string) (int, error) {
	ev := &eventlog.Insert{Pos: buffer.ByteOffset(offset), Text: text}
	if err := a.view.Log.Append(ev, a.view.Buffer, a.view.Markers, a.view.Cursors); err != nil {
		return 0, err
	}
	// ev.insertedN isn't exported; the buffer normalizes line endings on
	// insert, so len(text) is only exact when text has no bare "\r" or
	// "\r\n" sequences needing normalization, which plugin-authored text
	// normally doesn't.
	return offset + len(text), nil
}

func (a *BufferProviderAdapter) Delete(start, end int) error {
	ev := eventlog.NewDelete(buffer.ByteOffset(start), buffer.ByteOffset(end))
	return a.view.Log.Append(ev, a.view.Buffer, a.view.Markers, a.view.Cursors)
}

func (a *BufferProviderAdapter) Replace(start, end int, text string) (int, error) {
	bulk := eventlog.NewBulkEdit("plugin replace",
		eventlog.NewDelete(buffer.ByteOffset(start), buffer.ByteOffset(end)),
		&eventlog.Insert{Pos: buffer.ByteOffset(start), Text: text},
	)
	if err := a.view.Log.Append(bulk, a.view.Buffer, a.view.Markers, a.view.Cursors); err != nil {
		return 0, err
	}
	return start + len(text), nil
}

func (a *BufferProviderAdapter) Undo() bool {
	return a.view.Log.Undo(a.view.Buffer, a.view.Markers, a.view.Cursors) == nil
}

func (a *BufferProviderAdapter) Redo() bool {
	return a.view.Log.Redo(a.view.Buffer, a.view.Markers, a.view.Cursors) == nil
}

func (a *BufferProviderAdapter) Path() string {
	return a.path
}

// Modified reports whether any edit has been applied since the view was
// created. There is no separate dirty flag; an empty undo stack is exactly
// the unmodified state.
func (a *BufferProviderAdapter) Modified() bool {
	return a.view.Log.CanUndo()
}

// CursorProviderAdapter adapts one editorstate.View's cursor set to
// ops.CursorProvider.
type CursorProviderAdapter struct {
	view *editorstate.View
}

// NewCursorProviderAdapter adapts view's cursor set for plugin use.
func NewCursorProviderAdapter(view *editorstate.View) *CursorProviderAdapter {
	return &CursorProviderAdapter{view: view}
}

func (a *CursorProviderAdapter) Get() int {
	return int(a.view.Cursors.Primary().Selection.Head)
}

func (a *CursorProviderAdapter) GetAll() []int {
	entries := a.view.Cursors.All()
	offsets := make([]int, len(entries))
	for i, e := range entries {
		offsets[i] = int(e.Selection.Head)
	}
	return offsets
}

func (a *CursorProviderAdapter) Set(offset int) error {
	primary := a.view.Cursors.Primary()
	a.view.Cursors.Move(primary.ID, cursor.NewCursorSelection(buffer.ByteOffset(offset)))
	return nil
}

func (a *CursorProviderAdapter) Add(offset int) error {
	a.view.Cursors.Add(cursor.NewCursorSelection(buffer.ByteOffset(offset)))
	return nil
}

// Clear removes every cursor but the primary one.
func (a *CursorProviderAdapter) Clear() {
	primary := a.view.Cursors.Primary()
	for _, e := range a.view.Cursors.All() {
		if e.ID != primary.ID {
			a.view.Cursors.Remove(e.ID)
		}
	}
}

func (a *CursorProviderAdapter) Selection() (start, end int) {
	sel := a.view.Cursors.Primary().Selection
	if sel.IsEmpty() {
		return -1, -1
	}
	return int(sel.Start()), int(sel.End())
}

func (a *CursorProviderAdapter) SetSelection(start, end int) error {
	primary := a.view.Cursors.Primary()
	a.view.Cursors.Move(primary.ID, cursor.NewRangeSelection(buffer.Range{
		Start: buffer.ByteOffset(start),
		End:   buffer.ByteOffset(end),
	}))
	return nil
}

func (a *CursorProviderAdapter) Count() int {
	return a.view.Cursors.Count()
}

func (a *CursorProviderAdapter) Line() int {
	line, _, err := a.view.Buffer.LineOf(a.view.Cursors.Primary().Selection.Head)
	if err != nil {
		return 1
	}
	return int(line) + 1
}

func (a *CursorProviderAdapter) Column() int {
	offset := a.view.Cursors.Primary().Selection.Head
	line, _, err := a.view.Buffer.LineOf(offset)
	if err != nil {
		return 1
	}
	lineStart, err := a.view.Buffer.ByteOfLine(line)
	if err != nil {
		return 1
	}
	return int(offset-lineStart) + 1
}

// ConfigProviderAdapter adapts a *config.Config to ops.ConfigProvider,
// adding the watch/notify machinery the session layer has no native
// concept of: every Set that changes a value is diffed against the
// previous merged view and matching watchers are notified.
type ConfigProviderAdapter struct {
	mu      sync.Mutex
	cfg     *config.Config
	watches map[string]configWatch
	nextID  uint64
}

type configWatch struct {
	pattern string
	handler func(key string, oldValue, newValue any)
}

// NewConfigProviderAdapter wraps cfg for plugin use.
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		cfg:     cfg,
		watches: make(map[string]configWatch),
	}
}

func (a *ConfigProviderAdapter) Get(key string) (any, bool) {
	return a.cfg.Get(key)
}

func (a *ConfigProviderAdapter) Set(key string, value any) error {
	old, _ := a.cfg.Get(key)
	if err := a.cfg.Set(key, value); err != nil {
		return err
	}
	a.notify(key, old, value)
	return nil
}

func (a *ConfigProviderAdapter) notify(key string, oldValue, newValue any) {
	a.mu.Lock()
	watches := make([]configWatch, 0, len(a.watches))
	for _, w := range a.watches {
		if match.Match(key, w.pattern) {
			watches = append(watches, w)
		}
	}
	a.mu.Unlock()
	for _, w := range watches {
		w.handler(key, oldValue, newValue)
	}
}

func (a *ConfigProviderAdapter) Watch(pattern string, handler func(key string, oldValue, newValue any)) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := fmt.Sprintf("cfgwatch-%d", atomic.AddUint64(&a.nextID, 1))
	a.watches[id] = configWatch{pattern: pattern, handler: handler}
	return id
}

func (a *ConfigProviderAdapter) Unwatch(id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.watches[id]; !ok {
		return false
	}
	delete(a.watches, id)
	return true
}

// Keys returns every configured key (from the merged, flattened layer
// view) matching pattern.
func (a *ConfigProviderAdapter) Keys(pattern string) []string {
	flat := layer.FlattenMap(a.cfg.Merged())
	keys := make([]string, 0, len(flat))
	for k := range flat {
		if match.Match(k, pattern) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// EventBus adapts internal/event's hierarchical pub/sub bus to
// ops.EventProvider. Unlike internal/eventlog (the undo/redo log of buffer
// mutations), EventBus carries plugin-hook notifications: buffer saved,
// cursor moved, config changed, and so on, none of which are themselves
// undoable state. Every eventType string is parsed as an event/topic.Topic,
// so plugin subscriptions get the bus's existing dot-segmented wildcard
// matching ("buffer.*", "cursor.moved") for free instead of the exact- or
// star-only matching a hand-rolled map would give.
//
// Subscribe and Emit are safe to call from any goroutine, but per
// ops.EventProvider's contract a handler registered by a plugin must only
// touch that plugin's Lua state from the goroutine that owns it; callers
// wiring a Host's Subscribe into a per-plugin dispatch queue are
// responsible for that marshaling, not EventBus itself.
type EventBus struct {
	mu     sync.Mutex
	bus    event.Bus
	pub    *event.Publisher
	subs   map[string]event.Subscription
	source string
}

// NewEventBus wraps bus, publishing under source (e.g. "plugin", "core").
func NewEventBus(bus event.Bus, source string) *EventBus {
	return &EventBus{
		bus:    bus,
		pub:    event.NewPublisher(bus, source),
		subs:   make(map[string]event.Subscription),
		source: source,
	}
}

func (b *EventBus) Subscribe(eventType string, handler func(data map[string]any)) string {
	sub, err := event.SubscribePayload(event.NewSubscriber(b.bus), topic.FromString(eventType),
		func(_ context.Context, payload map[string]any) error {
			handler(payload)
			return nil
		})
	if err != nil {
		return ""
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub.ID()] = sub
	return sub.ID()
}

func (b *EventBus) Unsubscribe(id string) bool {
	b.mu.Lock()
	sub, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
	}
	b.mu.Unlock()
	if !ok {
		return false
	}
	return b.bus.Unsubscribe(sub) == nil
}

func (b *EventBus) Emit(eventType string, data map[string]any) {
	_ = b.pub.PublishTyped(context.Background(), topic.FromString(eventType), data)
}
