package service

import "townservice/town/engine"

// TownCreateRequest asks for a new town.
type TownCreateRequest struct {
	FriendlyName     string `json:"friendlyName"`
	IsPubliclyListed bool   `json:"isPubliclyListed"`
}

// TownCreateResponse carries the new town's ID and its update password. The
// password is returned only here; the caller must keep it to update or
// delete the town later.
type TownCreateResponse struct {
	TownID             string `json:"townID"`
	TownUpdatePassword string `json:"townUpdatePassword"`
}

// TownSummary is one entry in the public town listing.
type TownSummary struct {
	TownID           string `json:"townID"`
	FriendlyName     string `json:"friendlyName"`
	CurrentOccupancy int    `json:"currentOccupancy"`
	MaximumOccupancy int    `json:"maximumOccupancy"`
}

// TownUpdateRequest renames or relists an existing town. Nil fields are left
// unchanged.
type TownUpdateRequest struct {
	TownUpdatePassword string  `json:"townUpdatePassword"`
	FriendlyName       *string `json:"friendlyName,omitempty"`
	IsPubliclyListed   *bool   `json:"isPubliclyListed,omitempty"`
}

// TownJoinRequest asks to join a town as a named player with an optional
// regular car type.
type TownJoinRequest struct {
	UserName string         `json:"userName"`
	CarType  engine.CarType `json:"carType,omitempty"`
}

// TownJoinResponse carries everything a client needs after joining: its
// identity, the session and video tokens, and a snapshot of the town's
// current roster.
type TownJoinResponse struct {
	PlayerID         string              `json:"playerID"`
	SessionToken     string              `json:"sessionToken"`
	VideoToken       string              `json:"videoToken"`
	CurrentPlayers   []engine.PlayerView `json:"currentPlayers"`
	FriendlyName     string              `json:"friendlyName"`
	IsPubliclyListed bool                `json:"isPubliclyListed"`
}

// ConversationAreaRequest creates a conversation area on behalf of a joined
// player, identified by their session token.
type ConversationAreaRequest struct {
	SessionToken string                  `json:"sessionToken"`
	Area         engine.ConversationArea `json:"conversationArea"`
}
