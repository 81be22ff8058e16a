package engine

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Player is one connected user: a generated identity, a client-reported
// location, and ownership of a regular car and a race car. Which car is
// "current" is decided solely by the racing flag. A player lives from
// session join to session end.
type Player struct {
	id       string
	userName string

	// Location is the latest client-reported position. Written only under
	// the owning town's lock.
	Location UserLocation

	activeConversationArea *ConversationArea
	isRacing               bool
	regularCar             *Car
	raceCar                *Car
}

// NewPlayer creates a player with a fresh unique ID and the requested regular
// car type. Unknown or empty car types default to green.
func NewPlayer(userName string, carType CarType) *Player {
	regular := carType
	switch regular {
	case RegularBlue, RegularRed:
	default:
		regular = RegularGreen
	}
	return &Player{
		id:         uuid.NewString(),
		userName:   userName,
		Location:   UserLocation{Rotation: Front},
		regularCar: NewCar(regular),
		raceCar:    NewCar(Race),
	}
}

// ID returns the player's unique identifier.
func (p *Player) ID() string { return p.id }

// UserName returns the player's display name. It is not unique within a town.
func (p *Player) UserName() string { return p.userName }

// Car returns the currently selected car: the race car while racing, the
// regular car otherwise.
func (p *Player) Car() *Car {
	if p.isRacing {
		return p.raceCar
	}
	return p.regularCar
}

// IsDriving reports whether the currently selected car is active.
func (p *Player) IsDriving() bool { return p.Car().Active() }

// SetDriving marks the currently selected car active or parked.
func (p *Player) SetDriving(driving bool) { p.Car().SetActive(driving) }

// IsRacing reports whether the player has an ongoing race.
func (p *Player) IsRacing() bool { return p.isRacing }

// SetRacing switches the current-car selection between race and regular. The
// non-current car keeps its own active flag; it just stops mattering.
func (p *Player) SetRacing(racing bool) { p.isRacing = racing }

// Speed returns the player's effective movement speed: race-car speed while
// racing, the current car's speed while driving, walking speed otherwise.
func (p *Player) Speed() int {
	if p.isRacing {
		return p.raceCar.Speed()
	}
	if p.IsDriving() {
		return p.Car().Speed()
	}
	return PlayerWalkingSpeed
}

// ActiveConversationArea returns the area the player currently belongs to,
// or nil if they are not in one.
func (p *Player) ActiveConversationArea() *ConversationArea {
	return p.activeConversationArea
}

// IsWithin reports whether the player's location falls strictly inside the
// area's bounding box. The interval is open on both axes: a point exactly on
// an edge is outside, so two areas sharing an edge never both claim it.
func (p *Player) IsWithin(area *ConversationArea) bool {
	box := area.BoundingBox
	return p.Location.X > box.X-box.Width/2 &&
		p.Location.X < box.X+box.Width/2 &&
		p.Location.Y > box.Y-box.Height/2 &&
		p.Location.Y < box.Y+box.Height/2
}

// MarshalJSON exposes the player to transports. Callers hold the town lock;
// anything serialized outside it goes through View instead.
func (p *Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.View())
}

// PlayerView is a point-in-time copy of a player's observable state, safe to
// read and serialize without the town lock. Its JSON shape matches Player's.
type PlayerView struct {
	ID       string       `json:"id"`
	UserName string       `json:"userName"`
	Location UserLocation `json:"location"`
	IsRacing bool         `json:"isRacing"`
	Car      Car          `json:"car"`
}

// View snapshots the player. Callers hold the town lock.
func (p *Player) View() PlayerView {
	return PlayerView{
		ID:       p.id,
		UserName: p.userName,
		Location: p.Location,
		IsRacing: p.isRacing,
		Car:      *p.Car(),
	}
}
