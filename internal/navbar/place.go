package navbar

// Margin keeps the overlay this many pixels away from the viewport edges.
const Margin = 8

// Rect is an axis-aligned box in viewport pixels.
type Rect struct {
	X, Y, W, H float64
}

// Size is a width and height in pixels.
type Size struct {
	W, H float64
}

// Point is a position in viewport pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Place positions a menu of the given size under its anchor button,
// left-aligned, then clamps it into the viewport. A menu larger than the
// viewport is pinned to the top-left margin. Clients call it again on
// resize and scroll while the menu is open.
func Place(anchor Rect, menu, viewport Size) Point {
	return Point{
		X: clamp(anchor.X, Margin, viewport.W-menu.W-Margin),
		Y: clamp(anchor.Y+anchor.H, Margin, viewport.H-menu.H-Margin),
	}
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
