package valueobjects

import (
	"encoding/json"
	"math"

	pkgerrors "flowbuilder/pkg/errors"
)

// Position is a point on the canvas
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position, rejecting NaN and infinite coordinates
func NewPosition(x, y float64) (Position, error) {
	if !isFinite(x) || !isFinite(y) {
		return Position{}, pkgerrors.ErrInvalidNodePosition.
			WithDetail("x", x).
			WithDetail("y", y)
	}
	return Position{x: x, y: y}, nil
}

// X returns the horizontal coordinate
func (p Position) X() float64 { return p.x }

// Y returns the vertical coordinate
func (p Position) Y() float64 { return p.y }

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	return p.x == other.x && p.y == other.y
}

type positionJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON implements json.Marshaler
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(positionJSON{X: p.x, Y: p.y})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Position) UnmarshalJSON(data []byte) error {
	var raw positionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pos, err := NewPosition(raw.X, raw.Y)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
