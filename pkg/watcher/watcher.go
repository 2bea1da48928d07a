// Package watcher reports changes to TypeScript sources below a project
// root. It uses fsnotify and falls back to polling when native watches are
// unavailable or disabled.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/tsc-err-dirs/pkg/debug"
)

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// EnvForcePoll forces polling mode when set to a truthy value.
const EnvForcePoll = "TSC_ERR_DIRS_FORCE_POLL"

// DefaultSkipDirs are never descended into.
var DefaultSkipDirs = []string{"node_modules", ".git"}

// Common errors.
var (
	ErrPermission     = errors.New("permission denied")
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrNotDirectory   = errors.New("watch root is not a directory")
)

// MatchTypeScript accepts .ts and .tsx files, the sources tsc reports on.
func MatchTypeScript(path string) bool {
	switch filepath.Ext(path) {
	case ".ts", ".tsx":
		return true
	}
	return false
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounceDuration sets the debounce duration.
func WithDebounceDuration(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDuration = d
	}
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.pollInterval = d
		}
	}
}

// WithOnChange sets the callback invoked with the last changed path once a
// burst of changes settles.
func WithOnChange(fn func(path string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithOnError sets the callback invoked on errors.
func WithOnError(fn func(error)) WatcherOption {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) WatcherOption {
	return func(w *Watcher) {
		w.forcePoll = force
	}
}

// WithMatch replaces the file filter (MatchTypeScript by default).
func WithMatch(fn func(path string) bool) WatcherOption {
	return func(w *Watcher) {
		w.match = fn
	}
}

// WithSkipDirs replaces the directory names that are not watched.
func WithSkipDirs(names ...string) WatcherOption {
	return func(w *Watcher) {
		w.skipDirs = names
	}
}

type fileStamp struct {
	mtime time.Time
	size  int64
}

// Watcher monitors a directory tree for changes to matching files.
type Watcher struct {
	root             string
	debounceDuration time.Duration
	pollInterval     time.Duration
	onChange         func(string)
	onError          func(error)
	match            func(string) bool
	skipDirs         []string
	forcePoll        bool

	fsWatcher   *fsnotify.Watcher
	debouncer   *Debouncer
	useFallback bool
	snapshot    map[string]fileStamp
	lastChanged string

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
	changeCh chan struct{}
}

// NewWatcher creates a watcher for the directory tree at root.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:             absRoot,
		debounceDuration: DefaultDebounceDuration,
		pollInterval:     DefaultPollInterval,
		onChange:         func(string) {},
		onError:          func(error) {},
		match:            MatchTypeScript,
		skipDirs:         DefaultSkipDirs,
		changeCh:         make(chan struct{}, 1),
	}

	for _, opt := range opts {
		opt(w)
	}

	w.debouncer = NewDebouncer(w.debounceDuration)

	return w, nil
}

// Start begins watching. Directories created later are picked up as they
// appear.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}

	info, err := os.Stat(w.root)
	if err != nil {
		if os.IsPermission(err) {
			return ErrPermission
		}
		return err
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.useFallback = w.forcePoll || envBool(EnvForcePoll)
	w.lastChanged = ""

	if !w.useFallback {
		if fsw, err := fsnotify.NewWatcher(); err == nil {
			if err := w.addTree(fsw, w.root); err != nil {
				debug.Log("watcher: fsnotify setup failed, polling instead: %v", err)
				fsw.Close()
				w.useFallback = true
			} else {
				w.fsWatcher = fsw
				go w.watchFsnotify()
			}
		} else {
			w.useFallback = true
		}
	}

	if w.useFallback {
		w.snapshot = w.scan()
		go w.watchPolling()
	}

	w.started = true
	debug.Log("watcher: watching %s (polling=%v)", w.root, w.useFallback)
	return nil
}

// Stop stops watching. The Changed channel stays open so a receiver blocked
// on it is not woken with a zero value.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	if w.cancel != nil {
		w.cancel()
	}

	if w.fsWatcher != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
	}

	w.debouncer.Cancel()
	w.started = false
}

// IsPolling returns true if the watcher is using polling mode.
func (w *Watcher) IsPolling() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.useFallback
}

// IsStarted returns true if the watcher is running.
func (w *Watcher) IsStarted() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.started
}

// Changed returns a channel that receives once per settled burst of changes.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changeCh
}

// LastChanged returns the most recent changed path.
func (w *Watcher) LastChanged() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastChanged
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// PollInterval returns the polling interval used when polling mode is active.
func (w *Watcher) PollInterval() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.pollInterval
}

func envBool(name string) bool {
	v := strings.TrimSpace(os.Getenv(name))
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func (w *Watcher) skip(name string) bool {
	return slices.Contains(w.skipDirs, name)
}

// addTree registers dir and every directory below it. fsnotify watches are
// not recursive.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			debug.Log("watcher: skipping %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.skip(d.Name()) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

// watchFsnotify monitors using fsnotify events.
func (w *Watcher) watchFsnotify() {
	// Capture channel references to avoid racing Stop() setting fsWatcher to nil.
	w.mu.RLock()
	fsw := w.fsWatcher
	if fsw == nil {
		w.mu.RUnlock()
		return
	}
	events := fsw.Events
	errs := fsw.Errors
	w.mu.RUnlock()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(fsw, event)

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.skip(filepath.Base(event.Name)) {
				if err := w.addTree(fsw, event.Name); err != nil {
					w.onError(err)
				}
			}
			return
		}
	}
	if !w.match(event.Name) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
		w.trigger(event.Name)
	}
}

// scan records the stamp of every matching file under root.
func (w *Watcher) scan() map[string]fileStamp {
	out := make(map[string]fileStamp)
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != w.root && w.skip(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.match(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		out[path] = fileStamp{mtime: info.ModTime(), size: info.Size()}
		return nil
	})
	return out
}

// diffSnapshots returns one changed path (added, modified or removed), or "".
func diffSnapshots(prev, next map[string]fileStamp) string {
	var changed []string
	for p, s := range next {
		if old, ok := prev[p]; !ok || !old.mtime.Equal(s.mtime) || old.size != s.size {
			changed = append(changed, p)
		}
	}
	for p := range prev {
		if _, ok := next[p]; !ok {
			changed = append(changed, p)
		}
	}
	if len(changed) == 0 {
		return ""
	}
	slices.Sort(changed)
	return changed[0]
}

// watchPolling monitors using periodic directory scans.
func (w *Watcher) watchPolling() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return

		case <-ticker.C:
			if _, err := os.Stat(w.root); err != nil {
				if os.IsPermission(err) {
					w.onError(ErrPermission)
				} else {
					w.onError(err)
				}
				continue
			}
			next := w.scan()
			w.mu.Lock()
			changed := diffSnapshots(w.snapshot, next)
			w.snapshot = next
			w.mu.Unlock()

			if changed != "" {
				w.trigger(changed)
			}
		}
	}
}

func (w *Watcher) trigger(path string) {
	w.mu.Lock()
	w.lastChanged = path
	w.mu.Unlock()
	w.debouncer.Trigger(w.notifyChange)
}

// notifyChange invokes the onChange callback and signals the change channel.
func (w *Watcher) notifyChange() {
	w.mu.RLock()
	started := w.started
	path := w.lastChanged
	w.mu.RUnlock()

	// Best effort: a callback may still slip through right after Stop().
	if !started {
		return
	}

	w.onChange(path)

	select {
	case w.changeCh <- struct{}{}:
	default:
	}
}
