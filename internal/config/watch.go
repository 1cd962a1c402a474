package config

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher holds the current Config and swaps it atomically whenever the
// backing policy file changes on disk; the new values are seen by the
// next call to Current.
type Watcher struct {
	policyPath string
	current    atomic.Pointer[Config]
	fsWatcher  *fsnotify.Watcher
	closeOnce  sync.Once
}

// NewWatcher loads policyPath once and starts watching it for changes.
// If policyPath is empty, no filesystem watch is started and Current
// always returns the initial, static configuration.
func NewWatcher(policyPath string) (*Watcher, error) {
	cfg, err := Load(policyPath)
	if err != nil {
		return nil, err
	}

	w := &Watcher{policyPath: policyPath}
	w.current.Store(cfg)

	if policyPath == "" {
		return w, nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(policyPath); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w.fsWatcher = fsw

	go w.loop()
	return w, nil
}

// Current returns the most recently loaded Config. The returned pointer
// is never mutated in place; a change produces a brand new Config that
// replaces it.
func (w *Watcher) Current() *Config {
	return w.current.Load()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.policyPath)
			if err != nil {
				log.Printf("[config] reload of %s failed, keeping previous config: %v", w.policyPath, err)
				continue
			}
			w.current.Store(cfg)
			log.Printf("[config] reloaded policy from %s", w.policyPath)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[config] watch error: %v", err)
		}
	}
}

// Close stops the filesystem watch, if one was started.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.fsWatcher != nil {
			err = w.fsWatcher.Close()
		}
	})
	return err
}
