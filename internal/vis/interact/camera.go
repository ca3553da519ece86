// Package interact handles user interactions like pan and zoom.
package interact

import (
	"gioui.org/io/pointer"
)

const (
	minZoom = 0.1
	maxZoom = 10
)

// Camera maps world coordinates (pixels at zoom 1) to the screen.
type Camera struct {
	OffsetX float32 // pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // 1.0 = 100%

	dragging bool
	lastX    float32
	lastY    float32
	fitted   bool
}

// NewCamera creates a new camera with default settings.
func NewCamera() *Camera {
	c := &Camera{}
	c.Reset()
	return c
}

// Reset restores the default view; the next FitOnce call refits.
func (c *Camera) Reset() {
	c.OffsetX = 20
	c.OffsetY = 20
	c.Zoom = 1.0
	c.fitted = false
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent pans on secondary/tertiary drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary)
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.OffsetX += ev.Position.X - c.lastX
			c.OffsetY += ev.Position.Y - c.lastY
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/1.1, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(1.1, ev.Position.X, ev.Position.Y)
		}
	}
}

// ZoomBy zooms by a factor, keeping the world point under the screen point
// fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	newX, newY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newX
	c.OffsetY += centerY - newY
}

// FitBounds adjusts the camera so the world rectangle fills the screen
// minus margin, centered.
func (c *Camera) FitBounds(minX, minY, maxX, maxY float64, screenWidth, screenHeight, margin float32) {
	worldW := maxX - minX
	worldH := maxY - minY
	if worldW <= 0 || worldH <= 0 {
		return
	}

	zoomX := (screenWidth - 2*margin) / float32(worldW)
	zoomY := (screenHeight - 2*margin) / float32(worldH)
	c.Zoom = clampZoom(min(zoomX, zoomY))

	centerX := float32(minX+maxX) / 2
	centerY := float32(minY+maxY) / 2
	c.OffsetX = screenWidth/2 - centerX*c.Zoom
	c.OffsetY = screenHeight/2 - centerY*c.Zoom
}

// FitOnce fits the bounds on the first call after construction or Reset.
func (c *Camera) FitOnce(minX, minY, maxX, maxY float64, screenWidth, screenHeight, margin float32) {
	if c.fitted || screenWidth <= 0 || screenHeight <= 0 {
		return
	}
	c.FitBounds(minX, minY, maxX, maxY, screenWidth, screenHeight, margin)
	c.fitted = true
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(z, maxZoom))
}
