package browser

import (
	"log/slog"
	"time"

	"github.com/hubastard/webgrove/engine/core"
	"github.com/hubastard/webgrove/engine/profiler"
	"github.com/hubastard/webgrove/engine/scene"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// CreateTimeout bounds how long a creation request may stay unanswered
	// before it is reported and may be re-sent. Zero waits forever.
	CreateTimeout time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Logger defaults to core.Logger().
	Logger *slog.Logger
}

// Manager is the host session for browser windows. It owns the registry, the
// callback inbox and the optional native engine, and routes native
// notifications to windows on the host thread.
type Manager struct {
	native   NativeEngine
	surfaces SurfaceFactory
	registry *Registry
	inbox    *Inbox
	active   *Window
	nextID   Identity

	timeout time.Duration
	clock   func() time.Time
	log     *slog.Logger

	// OnBrowserEvent runs after the window's page state has been updated.
	OnBrowserEvent func(w *Window, ev BrowserEvent)
	// OnCreateTimeout runs once per expired creation request.
	OnCreateTimeout func(w *Window)
	// OnActiveChanged runs when the active window changes, with nil when it is cleared.
	OnActiveChanged func(w *Window)
}

// NewManager returns a Manager that builds textures and surfaces with
// surfaces. The native engine is attached later with SetNative.
func NewManager(surfaces SurfaceFactory, opts ManagerOptions) *Manager {
	if surfaces == nil {
		panic("browser: NewManager with nil SurfaceFactory")
	}
	m := &Manager{
		surfaces: surfaces,
		registry: NewRegistry(),
		inbox:    NewInbox(),
		timeout:  opts.CreateTimeout,
		clock:    opts.Clock,
		log:      opts.Logger,
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	return m
}

func (m *Manager) logger() *slog.Logger {
	if m.log != nil {
		return m.log
	}
	return core.Logger()
}

func (m *Manager) now() time.Time { return m.clock() }

// SetNative attaches the native engine. nil detaches it; windows then treat
// every native operation as a no-op.
func (m *Manager) SetNative(n NativeEngine) { m.native = n }
func (m *Manager) Native() NativeEngine     { return m.native }

// Inbox is where the native engine posts its callbacks.
func (m *Manager) Inbox() *Inbox            { return m.inbox }
func (m *Manager) Registry() *Registry      { return m.registry }
func (m *Manager) Windows() []*Window       { return m.registry.Windows() }
func (m *Manager) Surfaces() SurfaceFactory { return m.surfaces }

// NewWindow builds an inert window under parent and registers it.
func (m *Manager) NewWindow(parent *scene.Node, opts WindowOptions) *Window {
	m.nextID++
	w := newWindow(m, m.nextID, parent, opts)
	m.registry.Register(w)
	m.logger().Debug("window registered", "window", uint64(w.id))
	return w
}

// WindowForNode returns the live window whose subtree contains n.
func (m *Manager) WindowForNode(n *scene.Node) *Window {
	for a := n; a != nil; a = a.Parent() {
		if w, ok := a.Owner.(*Window); ok {
			if m.registry.FindByIdentity(w.id) == w {
				return w
			}
			return nil
		}
	}
	return nil
}

// Dispatch drains the inbox and applies each notification to its window. It
// returns the number of notifications applied.
func (m *Manager) Dispatch() int {
	applied := 0
	for _, ev := range m.inbox.Drain() {
		if m.dispatch(ev) {
			applied++
		}
	}
	return applied
}

func (m *Manager) dispatch(ev Event) bool {
	log := m.logger()
	switch e := ev.(type) {
	case WindowCreated:
		w := m.registry.FindByIdentity(e.Identity)
		if w == nil {
			m.closeOrphan(e.Index, "window gone")
			return false
		}
		if w.surplus > 0 && (w.index != 0 || !w.pending) {
			// Answer to a request that was re-sent after it timed out.
			w.surplus--
			if e.Index != w.index {
				m.closeOrphan(e.Index, "surplus creation")
			}
			return false
		}
		w.WasCreated(e.Index, e.Width, e.Height, e.Format)
		return true

	case WindowResized:
		w := m.route(e.Identity, e.Index)
		if w == nil || w.index == 0 {
			log.Debug("dropping resize for closed window", "window", uint64(e.Identity), "index", e.Index)
			return false
		}
		w.WasResized(e.Width, e.Height)
		return true

	case BrowserEvent:
		w := m.route(e.Identity, e.Index)
		if w == nil || w.index == 0 {
			log.Debug("dropping browser event for closed window", "window", uint64(e.Identity), "index", e.Index, "kind", e.Kind)
			return false
		}
		w.applyBrowserEvent(e)
		if m.OnBrowserEvent != nil {
			m.OnBrowserEvent(w, e)
		}
		return true
	}
	return false
}

// closeOrphan closes a native window that no host window owns.
func (m *Manager) closeOrphan(index int, reason string) {
	if index == 0 || m.native == nil || m.registry.FindByIndex(index) != nil {
		return
	}
	m.logger().Info("closing orphaned native window", "index", index, "reason", reason)
	m.native.CloseWindow(index)
}

// route prefers the identity and falls back to the native index.
func (m *Manager) route(id Identity, index int) *Window {
	if w := m.registry.FindByIdentity(id); w != nil {
		return w
	}
	return m.registry.FindByIndex(index)
}

// Update runs one host frame: dispatch callbacks, expire stale creation
// requests, then tick every window in registration order.
func (m *Manager) Update(dt float64) {
	defer profiler.Start("browser.Update")()

	m.Dispatch()
	windows := m.registry.Windows()
	if m.timeout > 0 {
		m.expirePending(windows)
	}
	for _, w := range windows {
		w.Tick(dt)
	}
}

func (m *Manager) expirePending(windows []*Window) {
	now := m.now()
	for _, w := range windows {
		if !w.pending || w.expired || w.index != 0 {
			continue
		}
		if now.Sub(w.requestedAt) < m.timeout {
			continue
		}
		w.expired = true
		w.logger().Warn("native window creation timed out", "after", m.timeout)
		if m.OnCreateTimeout != nil {
			m.OnCreateTimeout(w)
		}
	}
}

// Destroy tears w down: it stops routing to it, closes the native window and
// releases its texture and surface. Destroying twice is a no-op.
func (m *Manager) Destroy(w *Window, mode ReleaseMode) {
	m.registry.Unregister(w)
	w.Close()
	w.DestroyLocalResources(mode)
	w.node.Detach()
	if m.active == w {
		m.SetActive(nil)
	}
}

// Shutdown destroys every window immediately.
func (m *Manager) Shutdown() {
	windows := m.registry.Windows()
	for _, w := range windows {
		m.Destroy(w, ReleaseImmediate)
	}
	m.logger().Info("browser windows shut down", "count", len(windows))
}

// Active returns the window that last became created or shown.
func (m *Manager) Active() *Window { return m.active }

func (m *Manager) SetActive(w *Window) {
	if m.active == w {
		return
	}
	m.active = w
	if m.OnActiveChanged != nil {
		m.OnActiveChanged(w)
	}
}
