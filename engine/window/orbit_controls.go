package window

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-scene/engine/camera"
)

// OrbitControls maps the arrow keys, WASD and the scroll wheel onto an orbit camera and
// writes every new eye placement back through apply, usually into a lookAt node.
type OrbitControls struct {
	orbit  camera.Orbit
	apply  func(camera.LookAt) error
	logger *zap.Logger
}

// NewOrbitControls creates the controls. A nil logger discards apply errors.
//
// Parameters:
//   - o: the orbit camera to move
//   - apply: receives the LookAt after every handled input
//   - logger: logger for apply errors
//
// Returns:
//   - *OrbitControls: the controls
func NewOrbitControls(o camera.Orbit, apply func(camera.LookAt) error, logger *zap.Logger) *OrbitControls {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrbitControls{orbit: o, apply: apply, logger: logger}
}

// Attach registers the key and scroll callbacks on w.
func (c *OrbitControls) Attach(w Window) {
	w.SetKeyDownCallback(func(key uint32) { c.KeyDown(key) })
	w.SetScrollCallback(c.Scroll)
}

// KeyDown steps the orbit for a bound key.
//
// Parameters:
//   - key: the key code
//
// Returns:
//   - bool: true if the key is bound
func (c *OrbitControls) KeyDown(key uint32) bool {
	switch key {
	case KeyLeft, KeyA:
		c.orbit.OrbitLeft()
	case KeyRight, KeyD:
		c.orbit.OrbitRight()
	case KeyUp, KeyW:
		c.orbit.OrbitUp()
	case KeyDown, KeyS:
		c.orbit.OrbitDown()
	default:
		return false
	}
	c.push()
	return true
}

// Scroll zooms towards the target for positive delta.
func (c *OrbitControls) Scroll(delta float32) {
	c.orbit.Zoom(delta)
	c.push()
}

func (c *OrbitControls) push() {
	if c.apply == nil {
		return
	}
	if err := c.apply(c.orbit.LookAt()); err != nil {
		c.logger.Warn("orbit controls: apply failed", zap.Error(err))
	}
}
