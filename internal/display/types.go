// Package display provides the catalog of display regions (monitors)
// and cursor confinement over one region.
package display

// RegionID is the opaque display identity for the session. On Windows
// this is the HMONITOR handle. A fresh enumeration after a topology
// change may hand the same physical display a new id; ids are not
// reconciled across enumerations.
type RegionID uintptr

// Rect is a rectangle in absolute virtual-desktop coordinates.
// Coordinates can be negative (a secondary monitor left of primary).
type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

// Width returns the rectangle width.
func (r Rect) Width() int32 { return r.Right - r.Left }

// Height returns the rectangle height.
func (r Rect) Height() int32 { return r.Bottom - r.Top }

// Contains reports whether (x, y) lies inside the rectangle. Right and
// Bottom are exclusive.
func (r Rect) Contains(x, y int32) bool {
	return x >= r.Left && x < r.Right && y >= r.Top && y < r.Bottom
}

// ClampPoint clamps (x, y) into [Left, Right-1] x [Top, Bottom-1].
// Degenerate rectangles leave the point untouched.
func (r Rect) ClampPoint(x, y int32) (int32, int32) {
	if r.Width() <= 0 || r.Height() <= 0 {
		return x, y
	}
	if x < r.Left {
		x = r.Left
	}
	if x > r.Right-1 {
		x = r.Right - 1
	}
	if y < r.Top {
		y = r.Top
	}
	if y > r.Bottom-1 {
		y = r.Bottom - 1
	}
	return x, y
}

// Region describes one display region. Immutable for the session once
// enumerated.
type Region struct {
	ID       RegionID `json:"id"`
	Bounds   Rect     `json:"bounds"`
	WorkArea Rect     `json:"work_area"`
	Primary  bool     `json:"primary"`
	Label    string   `json:"label"`
}
