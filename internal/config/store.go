package config

// Store provides key-value access to the settings file.
// Keys are flat strings (dotted keys like "overview.back_button_visible"
// are literal strings, not nested paths).
type Store interface {
	// Get returns the value for key and whether it was found.
	Get(key string) (string, bool)

	// Set writes key=value to the store and persists to disk.
	Set(key, value string) error

	// SetInMemory writes key=value to the in-memory store without persisting.
	// Use this for runtime overrides (defaults, env vars) that should not be
	// written back to the settings file.
	SetInMemory(key, value string)

	// Unset removes key from the store and persists to disk.
	Unset(key string) error

	// All returns a copy of all key-value pairs.
	All() map[string]string
}

// Observable is a Store that reports changes to individual keys.
type Observable interface {
	Store

	// Subscribe registers fn to be called after the value of key changes,
	// whether through this process or by another writer of the backing
	// file. fn receives no value; it should re-read the key with Get.
	// Callbacks for one store are never run concurrently. A change made
	// through Set, SetInMemory or Unset runs them synchronously on the
	// calling goroutine before the call returns; changes by other writers
	// run them on the store's watch goroutine. fn must not write to the
	// store: the write would wait on the callback that issued it.
	Subscribe(key string, fn func())
}
