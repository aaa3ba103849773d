package model

// Position is a top-left screen coordinate.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a width/height pair in screen units.
type Size struct {
	Width  int `json:"width" yaml:"width" validate:"gt=0"`
	Height int `json:"height" yaml:"height" validate:"gt=0"`
}

// Bounds is a persisted window placement.
type Bounds struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// NewBounds joins a position and a size.
func NewBounds(position Position, size Size) Bounds {
	return Bounds{X: position.X, Y: position.Y, Width: size.Width, Height: size.Height}
}

// Position returns the top-left corner.
func (bounds Bounds) Position() Position {
	return Position{X: bounds.X, Y: bounds.Y}
}

// Size returns the extent.
func (bounds Bounds) Size() Size {
	return Size{Width: bounds.Width, Height: bounds.Height}
}

// Rect describes a display area in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside the rectangle.
// The right and bottom edges are exclusive.
func (rect Rect) Contains(position Position) bool {
	return position.X >= rect.X &&
		position.Y >= rect.Y &&
		position.X < rect.X+rect.Width &&
		position.Y < rect.Y+rect.Height
}
