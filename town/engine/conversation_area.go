package engine

// Reserved conversation area seeded into every town at construction. It hosts
// the race leaderboard discussion and has a placeholder bounding box, so
// geometric membership never resolves to it.
const (
	RacetrackLeaderboardLabel = "Racetrack Leaderboard"
	RacetrackLeaderboardTopic = "View and discuss race times!"
)

// ConversationArea is a labeled rectangular zone. Players whose location
// resolves to the area are grouped together; OccupantsByID lists them in the
// order they entered. The JSON shape is the wire representation observed by
// listeners and must not change.
type ConversationArea struct {
	Label         string      `json:"label"`
	Topic         string      `json:"topic"`
	BoundingBox   BoundingBox `json:"boundingBox"`
	OccupantsByID []string    `json:"occupantsByID"`
}

// newRacetrackLeaderboardArea returns the reserved area every town starts with.
func newRacetrackLeaderboardArea() *ConversationArea {
	return &ConversationArea{
		Label:         RacetrackLeaderboardLabel,
		Topic:         RacetrackLeaderboardTopic,
		OccupantsByID: []string{},
	}
}

// addOccupant appends a player to the occupant list. Callers hold the town lock.
func (ca *ConversationArea) addOccupant(playerID string) {
	ca.OccupantsByID = append(ca.OccupantsByID, playerID)
}

// removeOccupant drops a player from the occupant list, preserving order.
func (ca *ConversationArea) removeOccupant(playerID string) {
	for i, id := range ca.OccupantsByID {
		if id == playerID {
			ca.OccupantsByID = append(ca.OccupantsByID[:i], ca.OccupantsByID[i+1:]...)
			return
		}
	}
}

// copy returns a snapshot safe to serialize outside the town lock.
func (ca *ConversationArea) copy() *ConversationArea {
	occupants := make([]string, len(ca.OccupantsByID))
	copy(occupants, ca.OccupantsByID)
	return &ConversationArea{
		Label:         ca.Label,
		Topic:         ca.Topic,
		BoundingBox:   ca.BoundingBox,
		OccupantsByID: occupants,
	}
}
