package engine

import "encoding/json"

// CarType identifies one of the fixed car configurations. Regular types are
// cosmetic variants a player picks when joining; Race is reserved for the
// racetrack and is never selectable directly.
type CarType string

const (
	RegularGreen CarType = "REGULAR_GREEN"
	RegularBlue  CarType = "REGULAR_BLUE"
	RegularRed   CarType = "REGULAR_RED"
	Race         CarType = "RACE"
)

// carSpeeds maps each car type to its fixed speed.
var carSpeeds = map[CarType]int{
	RegularGreen: 450,
	RegularBlue:  300,
	RegularRed:   300,
	Race:         700,
}

// Car is a player's locomotion modifier: an immutable speed/type pair plus a
// mutable active flag. Each car is owned exclusively by one player.
type Car struct {
	speed  int
	typ    CarType
	active bool
}

// NewCar builds a car of the given type. Unknown types fall back to the
// green regular car.
func NewCar(typ CarType) *Car {
	speed, ok := carSpeeds[typ]
	if !ok {
		typ = RegularGreen
		speed = carSpeeds[RegularGreen]
	}
	return &Car{speed: speed, typ: typ}
}

// Speed returns the car's fixed speed.
func (c *Car) Speed() int { return c.speed }

// Type returns the car's fixed type.
func (c *Car) Type() CarType { return c.typ }

// Active reports whether the player is currently driving this car.
func (c *Car) Active() bool { return c.active }

// SetActive marks the car as driven or parked.
func (c *Car) SetActive(active bool) { c.active = active }

// MarshalJSON exposes the car's fields to transports. The receiver is a
// value so copied snapshots serialize the same way live cars do.
func (c Car) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Speed  int     `json:"speed"`
		Type   CarType `json:"type"`
		Active bool    `json:"active"`
	}{c.speed, c.typ, c.active})
}
