// Package watcher reports saves of a single script file. A burst of
// filesystem events for the file is coalesced into one Save.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/redraft/internal/log"
)

// DefaultDebounce is how long the file must stay quiet before a Save is sent.
const DefaultDebounce = 200 * time.Millisecond

// Save describes one settled change to the watched file.
type Save struct {
	Path string
	// Seq counts saves seen by this watcher, starting at 1.
	Seq int
	// Ops is the union of every operation in the burst.
	Ops fsnotify.Op
}

// Config holds watcher options.
type Config struct {
	Path     string
	Debounce time.Duration
}

// DefaultConfig returns defaults for watching path.
func DefaultConfig(path string) Config {
	return Config{Path: path, Debounce: DefaultDebounce}
}

// Watcher monitors one file until its context ends or Close is called.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	debounce time.Duration
	saves    chan Save
	done     chan struct{}
	exited   chan struct{}
	once     sync.Once
}

// Watch starts watching cfg.Path. The parent directory is watched rather
// than the file so editors that save by renaming a temp file are seen.
func Watch(ctx context.Context, cfg Config) (*Watcher, error) {
	path := filepath.Clean(cfg.Path)
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     path,
		debounce: debounce,
		saves:    make(chan Save, 1),
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	log.Debug(log.CatScript, "Watching script", "path", path, "debounce", debounce)

	go w.run(ctx)
	return w, nil
}

// Saves delivers settled saves. It is closed once the watcher stops.
func (w *Watcher) Saves() <-chan Save {
	return w.saves
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	<-w.exited
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.exited)
	defer close(w.saves)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending fsnotify.Op
		seq     int
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pending |= event.Op
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			seq++
			save := Save{Path: w.path, Seq: seq, Ops: pending}
			pending = 0
			select {
			case w.saves <- save:
			default:
				// The previous save is still unread; it already triggers a rerun.
				log.Debug(log.CatScript, "Save coalesced", "path", w.path, "seq", seq)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatScript, "Script watcher error", err, "path", w.path)

		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}
