// Package intercept owns exclusive raw-input delivery: per-class
// session state, RAWINPUT payload parsing, and the Windows
// message-loop backend that feeds the redirection engine.
package intercept

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mseat/internal/device"
	"mseat/internal/route"
)

// Handler consumes parsed raw events. Calls arrive serialized on the
// backend's dispatch thread, one event at a time.
type Handler interface {
	HandlePointer(route.PointerEvent)
	HandleKey(route.KeyEvent)
}

// Backend is the OS raw-input facility. The Windows implementation
// runs a message-only window on a locked OS thread; tests substitute a
// fake.
type Backend interface {
	// Run starts the dispatch loop and returns once it is ready to
	// register devices, or with the startup error.
	Run() error
	// Close tears the loop down. Idempotent.
	Close()
	SetHandler(Handler)
	// Register requests exclusive raw delivery for a device class.
	Register(class device.Class) error
	// Unregister restores default OS delivery for the class.
	Unregister(class device.Class) error
	// StartFocusPoll schedules fn on the dispatch loop at the given
	// interval, interleaved between raw events, never concurrent with
	// them.
	StartFocusPoll(interval time.Duration, fn func()) error
	StopFocusPoll()
}

// Manager is the per-class intercept session state machine
// (Inactive -> Active). Registration refusal leaves the class
// Inactive and is reported, not retried. Disable is best effort
// against the OS and always transitions to Inactive locally.
type Manager struct {
	mu        sync.Mutex
	backend   Backend
	active    map[device.Class]bool
	onDisable func(device.Class)
	log       *logrus.Entry
}

// NewManager wires the state machine to a backend. onDisable runs
// after a class transitions to Inactive so the owner can clear that
// class's assignment and focus state.
func NewManager(backend Backend, onDisable func(device.Class)) *Manager {
	return &Manager{
		backend:   backend,
		active:    make(map[device.Class]bool),
		onDisable: onDisable,
		log:       logrus.WithField("component", "intercept"),
	}
}

// Enable activates exclusive raw delivery for the class. Re-entrant
// while Active: no-op success, observable state unchanged.
func (m *Manager) Enable(class device.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active[class] {
		m.log.WithField("class", class.String()).Debug("enable while active, no-op")
		return nil
	}

	if err := m.backend.Register(class); err != nil {
		return fmt.Errorf("raw input registration for %s devices refused: %w", class, err)
	}

	m.active[class] = true
	m.log.WithField("class", class.String()).Info("intercept session active")
	return nil
}

// Disable deactivates the class. Always succeeds locally; the OS
// unregistration is best effort. A class already Inactive is a no-op.
func (m *Manager) Disable(class device.Class) {
	m.mu.Lock()
	if !m.active[class] {
		m.mu.Unlock()
		return
	}
	m.active[class] = false
	if err := m.backend.Unregister(class); err != nil {
		m.log.WithError(err).WithField("class", class.String()).Warn("raw input unregistration failed")
	}
	m.mu.Unlock()

	if m.onDisable != nil {
		m.onDisable(class)
	}
	m.log.WithField("class", class.String()).Info("intercept session inactive")
}

// Active reports whether the class session is active.
func (m *Manager) Active(class device.Class) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active[class]
}

// DisableAll disables every active class. Must run on process
// termination: a skipped disable leaves devices in exclusive capture
// until another registration or a reboot.
func (m *Manager) DisableAll() {
	for _, class := range []device.Class{device.Pointing, device.Typing} {
		m.Disable(class)
	}
}
