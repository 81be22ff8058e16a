package service

import (
	"context"

	"townservice/town/engine"
)

// TownService defines all town-related operations exposed to transports.
type TownService interface {
	// Town lifecycle
	CreateTown(ctx context.Context, req TownCreateRequest) (*TownCreateResponse, error)
	ListTowns(ctx context.Context) ([]TownSummary, error)
	UpdateTown(ctx context.Context, townID string, req TownUpdateRequest) error
	DeleteTown(ctx context.Context, townID, password string) error

	// Joining
	JoinTown(ctx context.Context, townID string, req TownJoinRequest) (*TownJoinResponse, error)

	// Conversation areas
	CreateConversationArea(ctx context.Context, townID string, req ConversationAreaRequest) error
	TownConversationAreas(ctx context.Context, townID string) ([]*engine.ConversationArea, error)

	// Racing
	TownRaceTrack(ctx context.Context, townID string) (*engine.RaceTrack, error)
}
