// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"fmt"
	"slices"
	"sync"
)

// Registry of engines by name (e.g., "lame", "lame-gomp3").
type Registry struct {
	engines map[string]Engine

	mtx *sync.Mutex
}

// Default is the registry engines add themselves to from init.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		engines: make(map[string]Engine),
		mtx:     &sync.Mutex{},
	}
}

func (r *Registry) Register(name string, e Engine) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.engines[name] = e
}

func (r *Registry) Get(name string) (Engine, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	e, ok := r.engines[name]
	return e, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Open creates a session on the named engine and configures it. The session
// is closed again when configuration fails.
func (r *Registry) Open(name string, p Params, maxBlock int) (*Session, error) {
	e, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("codec: unknown engine %q (have %v)", name, r.Names())
	}

	s, err := NewSession(e, maxBlock)
	if err != nil {
		return nil, err
	}
	if err := s.Configure(p); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Register adds e to Default.
func Register(name string, e Engine) { Default.Register(name, e) }
