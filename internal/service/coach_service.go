package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrClientNotFound        = errors.New("client user not found")
	ErrClientNotRole         = errors.New("user found but is not a client")
	ErrClientAlreadyAssigned = errors.New("client is already assigned to a coach")
	ErrClientNotManaged      = errors.New("client is not managed by this coach")
)

type CoachService interface {
	AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	// EnsureManaged returns ErrClientNotManaged unless clientID is on the coach's roster.
	EnsureManaged(ctx context.Context, coachID, clientID primitive.ObjectID) error
}

type coachService struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewCoachService(userRepo repository.UserRepository, logger *zap.Logger) CoachService {
	return &coachService{userRepo: userRepo, logger: logger}
}

// AddClientByEmail finds a client by email and puts them on the coach's roster.
func (s *coachService) AddClientByEmail(ctx context.Context, coachID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	clientEmail = strings.ToLower(strings.TrimSpace(clientEmail))
	if coachID.IsZero() || clientEmail == "" {
		return nil, invalid("coach ID and client email are required")
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	if client.CoachID != nil && !client.CoachID.IsZero() {
		if *client.CoachID == coachID {
			return client, nil
		}
		return nil, ErrClientAlreadyAssigned
	}

	if err := s.userRepo.AddClientIDToCoach(ctx, coachID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForClient(ctx, client.ID, coachID); err != nil {
		// roster and client record now disagree; surface it loudly
		s.logger.Error("coach_assignment_incomplete",
			zap.String("coach_id", coachID.Hex()),
			zap.String("client_id", client.ID.Hex()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("client_added_to_roster",
		zap.String("coach_id", coachID.Hex()),
		zap.String("client_id", client.ID.Hex()),
	)
	client.CoachID = &coachID
	return client, nil
}

func (s *coachService) GetManagedClients(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID.IsZero() {
		return nil, invalid("coach ID is required")
	}
	clients, err := s.userRepo.GetClientsByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domain.User{}
	}
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

func (s *coachService) EnsureManaged(ctx context.Context, coachID, clientID primitive.ObjectID) error {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}
	if client.CoachID == nil || *client.CoachID != coachID {
		return ErrClientNotManaged
	}
	return nil
}
