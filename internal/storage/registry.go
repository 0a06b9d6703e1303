package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownBackend is wrapped by New and EnsureDatabase for unregistered kinds.
var ErrUnknownBackend = errors.New("unsupported storage.kind")

// Factory opens a Repository for the given connection parameters.
type Factory func(ctx context.Context, p Params) (Repository, error)

// DatabaseBootstrapper creates the database named by Params if it is absent.
type DatabaseBootstrapper func(ctx context.Context, p Params) error

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}

	bootMu     sync.RWMutex
	bootstraps = map[string]DatabaseBootstrapper{}
)

// Register registers (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[kind] = f
}

// RegisterBootstrap registers (or replaces) the database bootstrapper for
// kind. Backends call it from init.
func RegisterBootstrap(kind string, fn DatabaseBootstrapper) {
	bootMu.Lock()
	defer bootMu.Unlock()
	bootstraps[kind] = fn
}

// New opens a Repository using the factory registered for p.Kind.
func New(ctx context.Context, p Params) (Repository, error) {
	factoryMu.RLock()
	f, ok := factories[p.Kind]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w=%s", ErrUnknownBackend, p.Kind)
	}
	return f(ctx, p)
}

// EnsureDatabase creates the target database when the backend reports it
// missing. Backends without a bootstrapper are assumed to need none.
func EnsureDatabase(ctx context.Context, p Params) error {
	bootMu.RLock()
	fn, ok := bootstraps[p.Kind]
	bootMu.RUnlock()
	if !ok {
		factoryMu.RLock()
		_, known := factories[p.Kind]
		factoryMu.RUnlock()
		if !known {
			return fmt.Errorf("%w=%s", ErrUnknownBackend, p.Kind)
		}
		return nil
	}
	return fn(ctx, p)
}

// ListKinds returns the registered backend kinds, sorted.
func ListKinds() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
