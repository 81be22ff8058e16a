package engine

// Direction is the way a player's avatar is facing.
type Direction string

const (
	Front Direction = "front"
	Back  Direction = "back"
	Left  Direction = "left"
	Right Direction = "right"
)

// PlayerWalkingSpeed is the movement speed of a player who is on foot.
const PlayerWalkingSpeed = 175

// UserLocation is a client-reported position in the town map. The server
// trusts it as-is; only conversation-area membership is derived from it.
// ConversationLabel, when set, names the area the client believes it is in
// and takes precedence over geometric containment.
type UserLocation struct {
	X                 float64   `json:"x"`
	Y                 float64   `json:"y"`
	Rotation          Direction `json:"rotation"`
	Moving            bool      `json:"moving"`
	ConversationLabel string    `json:"conversationLabel,omitempty"`
}

// BoundingBox is a rectangle centered on (X, Y).
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
