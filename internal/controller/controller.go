// Package controller owns the router's runtime state: assignment
// tables, focus records, intercept sessions and the region snapshot.
// It is the explicit context object handed to the dispatch callback
// and the control surface the UI layer drives.
package controller

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mseat/internal/device"
	"mseat/internal/display"
	"mseat/internal/intercept"
	"mseat/internal/route"
)

// OSInput bundles the OS primitives the engine needs.
type OSInput interface {
	route.Cursor
	route.Synth
	route.Foreground
}

// Options wires the controller to its collaborators. Tests substitute
// fakes for all of them.
type Options struct {
	Backend intercept.Backend
	Input   OSInput

	ListDevices      func(device.Class) ([]device.Device, error)
	EnumerateRegions func() ([]display.Region, error)
	RegionFromWindow func(uintptr) (display.RegionID, bool)

	// FocusPollInterval is how often the foreground window is sampled
	// while typing redirection is active. Defaults to 350ms, well
	// under the threshold a user would notice.
	FocusPollInterval time.Duration
}

// Status is a point-in-time snapshot for the control API.
type Status struct {
	PointingActive      bool                           `json:"pointing_active"`
	TypingActive        bool                           `json:"typing_active"`
	PointingAssignments map[device.ID]display.RegionID `json:"pointing_assignments"`
	TypingAssignments   map[device.ID]display.RegionID `json:"typing_assignments"`
	Regions             []display.Region               `json:"regions"`
}

// Controller is the top-level coordinator.
type Controller struct {
	opts Options

	pointing *route.Table
	typing   *route.Table
	tracker  *route.Tracker
	engine   *route.Engine
	sessions *intercept.Manager

	mu      sync.Mutex // guards the region snapshot
	regions []display.Region
	bounds  map[display.RegionID]display.Rect

	log *logrus.Entry
}

// New builds a controller and binds it as the backend's event handler.
func New(opts Options) (*Controller, error) {
	if opts.Backend == nil || opts.Input == nil {
		return nil, fmt.Errorf("controller requires a backend and input primitives")
	}
	if opts.FocusPollInterval <= 0 {
		opts.FocusPollInterval = 350 * time.Millisecond
	}

	c := &Controller{
		opts:     opts,
		pointing: route.NewTable(),
		typing:   route.NewTable(),
		tracker:  route.NewTracker(),
		bounds:   make(map[display.RegionID]display.Rect),
		log:      logrus.WithField("component", "controller"),
	}
	c.engine = route.NewEngine(c.pointing, c.typing, c.tracker, opts.Input, opts.Input, opts.Input, c)
	c.sessions = intercept.NewManager(opts.Backend, c.onClassDisabled)
	opts.Backend.SetHandler(c)
	return c, nil
}

// Start runs the backend dispatch loop and takes the initial region
// snapshot. A failed enumeration degrades to an empty catalog.
func (c *Controller) Start() error {
	if err := c.opts.Backend.Run(); err != nil {
		return fmt.Errorf("starting raw input backend: %w", err)
	}
	if err := c.RefreshRegions(); err != nil {
		c.log.WithError(err).Warn("initial region enumeration failed")
	}
	return nil
}

// Stop disables every active class and shuts the backend down. Runs as
// the process exit hook; skipping it leaves devices captured for the
// OS session.
func (c *Controller) Stop() {
	c.sessions.DisableAll()
	c.opts.Backend.Close()
}

// ListPointingDevices enumerates attached pointing devices. Failures
// degrade to an empty list, never an error to the caller.
func (c *Controller) ListPointingDevices() []device.Device {
	return c.listDevices(device.Pointing)
}

// ListTypingDevices enumerates attached typing devices.
func (c *Controller) ListTypingDevices() []device.Device {
	return c.listDevices(device.Typing)
}

func (c *Controller) listDevices(class device.Class) []device.Device {
	if c.opts.ListDevices == nil {
		return nil
	}
	devices, err := c.opts.ListDevices(class)
	if err != nil {
		c.log.WithError(err).WithField("class", class.String()).Warn("device enumeration failed")
		return nil
	}
	return devices
}

// Regions returns the current region snapshot.
func (c *Controller) Regions() []display.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]display.Region, len(c.regions))
	copy(out, c.regions)
	return out
}

// RefreshRegions re-enumerates displays. Region ids are not
// reconciled across refreshes; the UI re-assigns devices afterwards.
func (c *Controller) RefreshRegions() error {
	if c.opts.EnumerateRegions == nil {
		return nil
	}
	regions, err := c.opts.EnumerateRegions()
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = regions
	c.bounds = make(map[display.RegionID]display.Rect, len(regions))
	for _, r := range regions {
		c.bounds[r.ID] = r.Bounds
	}
	c.log.WithField("regions", len(regions)).Info("region catalog refreshed")
	return nil
}

// Bounds resolves a region id to its rectangle (route.Regions).
func (c *Controller) Bounds(id display.RegionID) (display.Rect, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bounds[id]
	return b, ok
}

// RegionOf resolves the region containing a window (route.Regions).
func (c *Controller) RegionOf(w route.Window) (display.RegionID, bool) {
	if c.opts.RegionFromWindow == nil {
		return 0, false
	}
	return c.opts.RegionFromWindow(uintptr(w))
}

// Assign sets or clears (region zero) a device's region for its class.
// Always succeeds; an identity no events reference stays inert.
func (c *Controller) Assign(class device.Class, dev device.ID, region display.RegionID) {
	c.table(class).Assign(dev, region)
	c.log.WithFields(logrus.Fields{
		"class":  class.String(),
		"device": dev,
		"region": region,
	}).Info("assignment updated")
}

// Lookup returns a device's assigned region for its class.
func (c *Controller) Lookup(class device.Class, dev device.ID) (display.RegionID, bool) {
	return c.table(class).Lookup(dev)
}

func (c *Controller) table(class device.Class) *route.Table {
	if class == device.Typing {
		return c.typing
	}
	return c.pointing
}

// Enable activates redirection for a class. For typing it also takes
// one synchronous foreground sample and starts the focus poll.
// Re-entrant while active: no-op success, no state change.
func (c *Controller) Enable(class device.Class) error {
	already := c.sessions.Active(class)
	if err := c.sessions.Enable(class); err != nil {
		return err
	}
	if class == device.Typing && !already {
		c.engine.RecordForegroundNow()
		if err := c.opts.Backend.StartFocusPoll(c.opts.FocusPollInterval, c.engine.RecordForegroundNow); err != nil {
			c.log.WithError(err).Warn("focus poll start failed, records update on enable only")
		}
	}
	return nil
}

// Disable deactivates redirection for a class and clears its state.
func (c *Controller) Disable(class device.Class) {
	c.sessions.Disable(class)
}

// IsActive reports whether a class session is active.
func (c *Controller) IsActive(class device.Class) bool {
	return c.sessions.Active(class)
}

// RecordForegroundNow samples the foreground window into the focus
// records. The UI may call this explicitly; the poll does it anyway.
func (c *Controller) RecordForegroundNow() {
	c.engine.RecordForegroundNow()
}

// onClassDisabled clears per-class state after a session transition to
// Inactive.
func (c *Controller) onClassDisabled(class device.Class) {
	switch class {
	case device.Pointing:
		c.engine.ClearPointing()
	case device.Typing:
		c.opts.Backend.StopFocusPoll()
		c.engine.ClearTyping()
	}
}

// HandlePointer feeds one raw pointing event into the engine
// (intercept.Handler). Events for an inactive class are dropped:
// disable takes effect before any later event is processed.
func (c *Controller) HandlePointer(ev route.PointerEvent) {
	if !c.sessions.Active(device.Pointing) {
		return
	}
	c.engine.HandlePointer(ev)
}

// HandleKey feeds one raw typing event into the engine.
func (c *Controller) HandleKey(ev route.KeyEvent) {
	if !c.sessions.Active(device.Typing) {
		return
	}
	c.engine.HandleKey(ev)
}

// Status snapshots the controller for the control API.
func (c *Controller) Status() Status {
	return Status{
		PointingActive:      c.sessions.Active(device.Pointing),
		TypingActive:        c.sessions.Active(device.Typing),
		PointingAssignments: c.pointing.Snapshot(),
		TypingAssignments:   c.typing.Snapshot(),
		Regions:             c.Regions(),
	}
}
