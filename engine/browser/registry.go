package browser

import "sync"

// Registry indexes live windows by identity and by native index. It does not
// own the windows.
type Registry struct {
	mu    sync.RWMutex
	byID  map[Identity]*Window
	order []*Window
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[Identity]*Window)}
}

// Register adds w. Registering the same window twice is a no-op.
func (r *Registry) Register(w *Window) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[w.id]; ok {
		return
	}
	r.byID[w.id] = w
	r.order = append(r.order, w)
}

func (r *Registry) Unregister(w *Window) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byID[w.id] != w {
		return
	}
	delete(r.byID, w.id)
	for i, k := range r.order {
		if k == w {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// FindByIdentity returns nil for 0 or an unknown identity.
func (r *Registry) FindByIdentity(id Identity) *Window {
	if id == 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// FindByIndex returns the window currently bound to the native index, nil for 0.
func (r *Registry) FindByIndex(index int) *Window {
	if index == 0 {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.order {
		if w.index == index {
			return w
		}
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Windows returns a snapshot in registration order.
func (r *Registry) Windows() []*Window {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Window, len(r.order))
	copy(out, r.order)
	return out
}
