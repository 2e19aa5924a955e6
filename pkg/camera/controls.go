package camera

// Controls turns pointer and key input into orbit changes. Window callbacks
// feed it raw events; the frame loop reads Orbit once per frame.
type Controls struct {
	Orbit OrbitState
	// Home is restored by Reset.
	Home OrbitState

	// RotateSpeed is radians per pixel of drag, ZoomSpeed distance per scroll step.
	RotateSpeed float64
	ZoomSpeed   float64

	dragging     bool
	lastX, lastY float64
}

// NewControls starts at home.
func NewControls(home OrbitState, rotateSpeed, zoomSpeed float64) *Controls {
	return &Controls{
		Orbit:       home,
		Home:        home,
		RotateSpeed: rotateSpeed,
		ZoomSpeed:   zoomSpeed,
	}
}

// BeginDrag starts rotating from the cursor position x, y.
func (c *Controls) BeginDrag(x, y float64) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// EndDrag stops rotating.
func (c *Controls) EndDrag() { c.dragging = false }

// Dragging reports whether a drag is in progress.
func (c *Controls) Dragging() bool { return c.dragging }

// MoveCursor rotates the orbit by the distance moved since the last event
// while dragging. Moving right orbits the camera to the right; moving down
// raises it.
func (c *Controls) MoveCursor(x, y float64) {
	if !c.dragging {
		return
	}
	dx, dy := x-c.lastX, y-c.lastY
	c.lastX, c.lastY = x, y
	c.Orbit.Rotate(dx*c.RotateSpeed, -dy*c.RotateSpeed)
}

// Scroll zooms in for positive offsets.
func (c *Controls) Scroll(yOffset float64) {
	c.Orbit.Zoom(-yOffset * c.ZoomSpeed)
}

// Reset returns to the home orbit.
func (c *Controls) Reset() {
	c.Orbit = c.Home
	c.dragging = false
}
