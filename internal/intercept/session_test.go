package intercept

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mseat/internal/device"
)

type fakeBackend struct {
	registered   map[device.Class]int
	unregistered map[device.Class]int
	registerErr  error
	polling      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		registered:   make(map[device.Class]int),
		unregistered: make(map[device.Class]int),
	}
}

func (f *fakeBackend) Run() error           { return nil }
func (f *fakeBackend) Close()               {}
func (f *fakeBackend) SetHandler(_ Handler) {}

func (f *fakeBackend) Register(class device.Class) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered[class]++
	return nil
}

func (f *fakeBackend) Unregister(class device.Class) error {
	f.unregistered[class]++
	return nil
}

func (f *fakeBackend) StartFocusPoll(_ time.Duration, _ func()) error {
	f.polling = true
	return nil
}

func (f *fakeBackend) StopFocusPoll() { f.polling = false }

func TestManagerEnableActivates(t *testing.T) {
	be := newFakeBackend()
	m := NewManager(be, nil)

	require.NoError(t, m.Enable(device.Pointing))
	assert.True(t, m.Active(device.Pointing))
	assert.False(t, m.Active(device.Typing))
	assert.Equal(t, 1, be.registered[device.Pointing])
}

func TestManagerEnableIdempotent(t *testing.T) {
	be := newFakeBackend()
	m := NewManager(be, nil)

	require.NoError(t, m.Enable(device.Pointing))
	require.NoError(t, m.Enable(device.Pointing))

	assert.True(t, m.Active(device.Pointing))
	assert.Equal(t, 1, be.registered[device.Pointing], "second enable must not re-register")
}

func TestManagerEnableRefusedStaysInactive(t *testing.T) {
	be := newFakeBackend()
	be.registerErr = errors.New("access denied")
	m := NewManager(be, nil)

	err := m.Enable(device.Typing)
	assert.Error(t, err)
	assert.False(t, m.Active(device.Typing))

	// No automatic retry happened; a manual re-attempt works once the
	// refusal clears.
	be.registerErr = nil
	require.NoError(t, m.Enable(device.Typing))
	assert.True(t, m.Active(device.Typing))
}

func TestManagerDisableClearsClassState(t *testing.T) {
	be := newFakeBackend()
	var cleared []device.Class
	m := NewManager(be, func(c device.Class) { cleared = append(cleared, c) })

	require.NoError(t, m.Enable(device.Pointing))
	m.Disable(device.Pointing)

	assert.False(t, m.Active(device.Pointing))
	assert.Equal(t, 1, be.unregistered[device.Pointing])
	assert.Equal(t, []device.Class{device.Pointing}, cleared)
}

func TestManagerDisableInactiveIsNoOp(t *testing.T) {
	be := newFakeBackend()
	fired := 0
	m := NewManager(be, func(device.Class) { fired++ })

	m.Disable(device.Pointing)

	assert.Zero(t, be.unregistered[device.Pointing])
	assert.Zero(t, fired)
}

func TestManagerDisableThenReEnable(t *testing.T) {
	be := newFakeBackend()
	m := NewManager(be, nil)

	require.NoError(t, m.Enable(device.Typing))
	m.Disable(device.Typing)
	require.NoError(t, m.Enable(device.Typing))

	assert.True(t, m.Active(device.Typing))
	assert.Equal(t, 2, be.registered[device.Typing])
}

func TestManagerDisableAll(t *testing.T) {
	be := newFakeBackend()
	var cleared []device.Class
	m := NewManager(be, func(c device.Class) { cleared = append(cleared, c) })

	require.NoError(t, m.Enable(device.Pointing))
	require.NoError(t, m.Enable(device.Typing))

	m.DisableAll()

	assert.False(t, m.Active(device.Pointing))
	assert.False(t, m.Active(device.Typing))
	assert.Len(t, cleared, 2)
}
