// Package watch reloads a mesh file whenever it changes on disk.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 150 * time.Millisecond

// LoadFunc turns a path into a mesh. mesh.LoadOBJFile satisfies it once
// its options are bound.
type LoadFunc func(path string) (*mesh.Mesh, []formats.Diagnostic, error)

// Reload is delivered after each settled change of the watched file.
type Reload struct {
	Path        string
	Mesh        *mesh.Mesh
	Diagnostics []formats.Diagnostic
	Err         error
}

// Watcher watches a single file and reloads it on change.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	path     string
	load     LoadFunc
	debounce time.Duration

	reloads   chan Reload
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts watching path. The parent directory is watched rather than
// the file so saves that replace the file by rename are still seen.
func New(path string, load LoadFunc) (*Watcher, error) {
	return NewWithDebounce(path, load, DefaultDebounce)
}

// NewWithDebounce is New with an explicit settle time.
func NewWithDebounce(path string, load LoadFunc, debounce time.Duration) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsnotify: fsWatch,
		path:     abs,
		load:     load,
		debounce: debounce,
		reloads:  make(chan Reload, 1),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.start()

	logger.Debug("watching mesh", zap.String("path", abs))
	return w, nil
}

// Reloads delivers the latest reload. Only the newest unread result is kept.
func (w *Watcher) Reloads() <-chan Reload {
	return w.reloads
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()

	var settle <-chan time.Time
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if w.matches(e) {
				settle = time.After(w.debounce)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			logger.Warn("watch error", zap.String("path", w.path), zap.Error(err))

		case <-settle:
			settle = nil
			w.publish(w.reload())

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) matches(e fsnotify.Event) bool {
	if filepath.Clean(e.Name) != w.path {
		return false
	}
	return e.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() Reload {
	m, diags, err := w.load(w.path)
	if err != nil {
		logger.Warn("reload failed", zap.String("path", w.path), zap.Error(err))
	} else {
		logger.Info("mesh reloaded",
			zap.String("path", w.path),
			zap.Int("vertices", m.VertexCount()),
			zap.Int("diagnostics", len(diags)),
		)
	}
	return Reload{Path: w.path, Mesh: m, Diagnostics: diags, Err: err}
}

// publish replaces any unread reload with r.
func (w *Watcher) publish(r Reload) {
	for {
		select {
		case w.reloads <- r:
			return
		default:
		}
		select {
		case <-w.reloads:
		default:
		}
	}
}
