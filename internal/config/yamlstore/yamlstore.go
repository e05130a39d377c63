// Package yamlstore implements config.Observable backed by a flat YAML file.
//
// The file format is flat key-value pairs where dotted keys (e.g.
// "overview.back_button_visible") are literal strings, not nested paths.
// yaml.Marshal on map[string]string produces alphabetical key ordering,
// making the output deterministic and diff-friendly.
//
// Writes made by this process notify subscribers directly. Writes made by
// other processes are picked up by Watch, which follows the file with
// fsnotify. Values set with SetInMemory are layered over the file and
// survive every later write and reload.
package yamlstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	"overview-sync/internal/config"
)

// YAMLStore implements config.Observable using a YAML file on disk.
type YAMLStore struct {
	path string

	mu        sync.RWMutex
	data      map[string]string // file contents with overrides applied
	overrides map[string]string
	subs      map[string][]func()

	// notifyMu serializes subscriber callbacks.
	notifyMu sync.Mutex
}

// New creates a YAMLStore that reads from and writes to path.
// If the file exists it is loaded; if it does not exist the store
// starts empty and the file is created on the first Set call.
func New(path string) (*YAMLStore, error) {
	s := &YAMLStore{
		path:      path,
		overrides: make(map[string]string),
		subs:      make(map[string][]func()),
	}

	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	s.data = data
	return s, nil
}

// Path returns the backing file path.
func (s *YAMLStore) Path() string { return s.path }

// Get returns the value for key and whether it was found.
func (s *YAMLStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Set writes key=value and persists to disk. An in-memory override for
// key keeps shadowing the written value.
func (s *YAMLStore) Set(key, value string) error {
	return s.withLock(func(data map[string]string) {
		data[key] = value
	})
}

// SetInMemory writes key=value to the in-memory store without persisting.
// The value shadows the file's value for key from then on.
func (s *YAMLStore) SetInMemory(key, value string) {
	s.mu.Lock()
	old := s.snapshotLocked()
	s.overrides[key] = value
	s.data[key] = value
	changed := diff(old, s.data)
	s.mu.Unlock()
	s.notify(changed)
}

// Unset removes key and persists to disk.
func (s *YAMLStore) Unset(key string) error {
	return s.withLock(func(data map[string]string) {
		delete(data, key)
	})
}

// All returns a copy of all key-value pairs.
func (s *YAMLStore) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to run after key changes. fn runs on the
// goroutine that made the change (the Watch goroutine for other writers)
// and must not write to the store.
func (s *YAMLStore) Subscribe(key string, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[key] = append(s.subs[key], fn)
}

// Watch follows the backing file until ctx is done, reloading it and
// notifying subscribers whenever another writer changes it. The parent
// directory is watched so atomic rename writes are seen.
func (s *YAMLStore) Watch(ctx context.Context, log zerolog.Logger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	target := filepath.Clean(s.path)
	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
					continue
				}
				if err := s.Reload(); err != nil {
					log.Warn().Err(err).Str("path", s.path).Msg("reloading settings file")
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Str("path", s.path).Msg("settings watcher error")
			}
		}
	}()
	return nil
}

// Reload re-reads the backing file and notifies subscribers of keys
// whose values differ from what the store held.
func (s *YAMLStore) Reload() error {
	fresh, err := readFile(s.path)
	if err != nil {
		return err
	}
	s.replaceData(fresh)
	return nil
}

// lockPath returns the path to the lock file used for flock-based coordination.
func (s *YAMLStore) lockPath() string {
	return s.path + ".lock"
}

// withLock acquires an exclusive file lock, re-reads the config from disk
// (picking up writes from other processes), calls fn to mutate a copy of
// the data, atomically writes it back to disk and then notifies
// subscribers of every key that changed.
func (s *YAMLStore) withLock(fn func(data map[string]string)) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("opening config lock: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		return fmt.Errorf("acquiring config lock: %w", err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	// Re-read from disk to pick up changes from other processes.
	fresh, err := readFile(s.path)
	if err != nil {
		return err
	}

	fn(fresh)

	raw, err := yaml.Marshal(fresh)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := atomicWrite(s.path, raw); err != nil {
		return err
	}

	s.replaceData(fresh)
	return nil
}

// replaceData installs file contents read from disk, reapplies the
// in-memory overrides and notifies subscribers of keys whose visible
// value changed. fresh is not retained.
func (s *YAMLStore) replaceData(fresh map[string]string) {
	s.mu.Lock()
	merged := make(map[string]string, len(fresh)+len(s.overrides))
	for k, v := range fresh {
		merged[k] = v
	}
	for k, v := range s.overrides {
		merged[k] = v
	}
	changed := diff(s.data, merged)
	s.data = merged
	s.mu.Unlock()
	s.notify(changed)
}

func (s *YAMLStore) snapshotLocked() map[string]string {
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func (s *YAMLStore) notify(keys []string) {
	if len(keys) == 0 {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	for _, key := range keys {
		s.mu.RLock()
		fns := append([]func(){}, s.subs[key]...)
		s.mu.RUnlock()
		for _, fn := range fns {
			fn()
		}
	}
}

// diff returns the keys whose presence or value differs between a and b.
func diff(a, b map[string]string) []string {
	var keys []string
	for k, av := range a {
		if bv, ok := b[k]; !ok || bv != av {
			keys = append(keys, k)
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

// readFile loads the flat map from path. A missing or empty file yields
// an empty map.
func readFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if len(raw) == 0 {
		return make(map[string]string), nil
	}

	fresh := make(map[string]string)
	if err := yaml.Unmarshal(raw, &fresh); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if fresh == nil {
		fresh = make(map[string]string)
	}
	return fresh, nil
}

// atomicWrite writes data to a file atomically via a temporary file and rename.
func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return err
	}
	return nil
}

// Compile-time check that YAMLStore implements config.Observable.
var _ config.Observable = (*YAMLStore)(nil)
