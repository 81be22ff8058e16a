package engine

import "context"

// TownListener is an observer of one town's state changes. Callbacks are
// invoked synchronously, in registration order, under the town lock, and
// happen-after the mutation they report. Implementations must not call back
// into the controller and must not block; a slow consumer buffers or drops
// on its own side of the boundary.
type TownListener interface {
	// OnPlayerJoined is called when a new player joins the town.
	OnPlayerJoined(player *Player)
	// OnPlayerMoved is called after a player's location has been updated.
	OnPlayerMoved(player *Player)
	// OnPlayerDisconnected is called when a player's session is destroyed.
	OnPlayerDisconnected(player *Player)
	// OnTownDestroyed is called when the town is shutting down. Listeners
	// should release their resources; no further callbacks follow.
	OnTownDestroyed()
	// OnConversationAreaUpdated is called when an area's occupant list or
	// definition changed.
	OnConversationAreaUpdated(area *ConversationArea)
	// OnPlayerEnteredCar is called when a player starts driving.
	OnPlayerEnteredCar(player *Player)
	// OnPlayerExitedCar is called when a player stops driving.
	OnPlayerExitedCar(player *Player)
	// OnRaceStarted is called when a player starts a race.
	OnRaceStarted(player *Player)
	// OnRaceFinished is called when a player crosses the finish line, even
	// if no ongoing race matched and the scoreboard is unchanged.
	OnRaceFinished(player *Player)
}

// VideoTokenProvider is the external video-call collaborator. It is called
// once per join, outside the town lock; a failure aborts the join.
type VideoTokenProvider interface {
	GetTokenForTown(ctx context.Context, townID, playerID string) (string, error)
}
