package database

import (
	"sort"
	"sync"
)

var (
	backendsMu sync.RWMutex
	backends   = map[string]Backend{}
)

// Register makes a backend available under name. It panics if name is empty,
// b is nil or name is already registered.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()

	if name == "" {
		panic("database: Register called with an empty name")
	}
	if b == nil {
		panic("database: Register backend is nil")
	}
	if _, dup := backends[name]; dup {
		panic("database: Register called twice for driver " + name)
	}
	backends[name] = b
}

// Drivers returns the sorted names of the registered backends.
func Drivers() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()

	b, ok := backends[name]
	if !ok {
		return nil, &Error{Kind: ErrUnsupportedAdapter, Message: "no backend registered for driver " + name}
	}
	return b, nil
}
