package service

import (
	"context"
	"errors"
	"fmt"

	"townservice/town/engine"
	"townservice/town/registry"
)

var (
	ErrInvalidUserName           = errors.New("user name must not be empty")
	ErrInvalidSessionToken       = errors.New("invalid session token")
	ErrInvalidConversationArea   = errors.New("conversation area must have a label and a topic")
	ErrDuplicateConversationArea = errors.New("conversation area label already in use")
)

// townServiceImpl implements the TownService interface over a registry.Store.
type townServiceImpl struct {
	towns *registry.Store
}

// NewTownService creates a town service backed by the given store.
func NewTownService(towns *registry.Store) TownService {
	return &townServiceImpl{towns: towns}
}

// CreateTown creates a town and returns its ID and update password.
func (s *townServiceImpl) CreateTown(ctx context.Context, req TownCreateRequest) (*TownCreateResponse, error) {
	town, err := s.towns.CreateTown(req.FriendlyName, req.IsPubliclyListed)
	if err != nil {
		return nil, err
	}
	return &TownCreateResponse{
		TownID:             town.ID(),
		TownUpdatePassword: town.UpdatePassword(),
	}, nil
}

// ListTowns returns summaries of all publicly listed towns.
func (s *townServiceImpl) ListTowns(ctx context.Context) ([]TownSummary, error) {
	towns := s.towns.ListPublicTowns()
	summaries := make([]TownSummary, 0, len(towns))
	for _, town := range towns {
		summaries = append(summaries, TownSummary{
			TownID:           town.ID(),
			FriendlyName:     town.FriendlyName(),
			CurrentOccupancy: town.Occupancy(),
			MaximumOccupancy: town.Capacity(),
		})
	}
	return summaries, nil
}

// UpdateTown renames or relists a town, gated by its update password.
func (s *townServiceImpl) UpdateTown(ctx context.Context, townID string, req TownUpdateRequest) error {
	return s.towns.UpdateTown(townID, req.TownUpdatePassword, req.FriendlyName, req.IsPubliclyListed)
}

// DeleteTown tears a town down, gated by its update password.
func (s *townServiceImpl) DeleteTown(ctx context.Context, townID, password string) error {
	return s.towns.DeleteTown(townID, password)
}

// JoinTown adds a new player to the town and returns their session and video
// tokens along with the current roster. The roster includes the new player.
func (s *townServiceImpl) JoinTown(ctx context.Context, townID string, req TownJoinRequest) (*TownJoinResponse, error) {
	if req.UserName == "" {
		return nil, ErrInvalidUserName
	}

	town, err := s.towns.GetTown(townID)
	if err != nil {
		return nil, err
	}

	player := engine.NewPlayer(req.UserName, req.CarType)
	session, err := town.AddPlayer(ctx, player)
	if err != nil {
		return nil, fmt.Errorf("failed to join town %s: %w", townID, err)
	}

	return &TownJoinResponse{
		PlayerID:         player.ID(),
		SessionToken:     session.SessionToken(),
		VideoToken:       session.VideoToken(),
		CurrentPlayers:   town.Players(),
		FriendlyName:     town.FriendlyName(),
		IsPubliclyListed: town.IsPubliclyListed(),
	}, nil
}

// CreateConversationArea adds a conversation area to the town on behalf of a
// joined player. The session token must belong to a live session in the town.
func (s *townServiceImpl) CreateConversationArea(ctx context.Context, townID string, req ConversationAreaRequest) error {
	town, err := s.towns.GetTown(townID)
	if err != nil {
		return err
	}
	if town.SessionByToken(req.SessionToken) == nil {
		return ErrInvalidSessionToken
	}
	if req.Area.Label == "" || req.Area.Topic == "" {
		return ErrInvalidConversationArea
	}

	area := req.Area
	if !town.AddConversationArea(&area) {
		return ErrDuplicateConversationArea
	}
	return nil
}

// TownConversationAreas returns a snapshot of the town's conversation areas.
func (s *townServiceImpl) TownConversationAreas(ctx context.Context, townID string) ([]*engine.ConversationArea, error) {
	town, err := s.towns.GetTown(townID)
	if err != nil {
		return nil, err
	}
	return town.ConversationAreas(), nil
}

// TownRaceTrack returns a snapshot of the town's race track.
func (s *townServiceImpl) TownRaceTrack(ctx context.Context, townID string) (*engine.RaceTrack, error) {
	town, err := s.towns.GetTown(townID)
	if err != nil {
		return nil, err
	}
	raceTrack := town.RaceTrack()
	return &raceTrack, nil
}
