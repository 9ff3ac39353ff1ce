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
	ErrProgramNotFound     = errors.New("program not found")
	ErrProgramAccessDenied = errors.New("access denied to this program")
	ErrInvalidPhase        = errors.New("phase is outside the program's phase range")
)

type CreateProgramInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	PhaseCount  int    `validate:"omitempty,min=1,max=52"`
	Activate    bool
}

type ProgramService interface {
	// CreateProgram creates a program for userID. createdBy differs from userID
	// when a coach builds it for a client.
	CreateProgram(ctx context.Context, userID, createdBy primitive.ObjectID, in CreateProgramInput) (*domain.Program, error)
	ListPrograms(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error)
	// ActivateProgram activates the program and deactivates every other program of its user.
	ActivateProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Program, error)
	SetPhase(ctx context.Context, userID, programID primitive.ObjectID, phase int) (*domain.Program, error)
}

type programService struct {
	programs  repository.ProgramRepository
	nutrition NutritionService
	logger    *zap.Logger
}

func NewProgramService(programs repository.ProgramRepository, nutrition NutritionService, logger *zap.Logger) ProgramService {
	return &programService{
		programs:  programs,
		nutrition: nutrition,
		logger:    logger,
	}
}

func (s *programService) CreateProgram(ctx context.Context, userID, createdBy primitive.ObjectID, in CreateProgramInput) (*domain.Program, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.PhaseCount == 0 {
		in.PhaseCount = 1
	}

	program := &domain.Program{
		UserID:       userID,
		Name:         in.Name,
		Description:  in.Description,
		CurrentPhase: 1,
		PhaseCount:   in.PhaseCount,
	}
	if createdBy != userID {
		program.CoachID = &createdBy
	}

	id, err := s.programs.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = id

	if in.Activate {
		return s.ActivateProgram(ctx, userID, id)
	}
	return program, nil
}

func (s *programService) ListPrograms(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	programs, err := s.programs.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if programs == nil {
		programs = []domain.Program{}
	}
	return programs, nil
}

func (s *programService) ActivateProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.owned(ctx, userID, programID)
	if err != nil {
		return nil, err
	}

	if err := s.programs.DeactivateOtherProgramsForUser(ctx, userID, programID); err != nil {
		return nil, err
	}
	if !program.Active {
		program.Active = true
		if err := s.programs.Update(ctx, program); err != nil {
			return nil, err
		}
	}
	s.nutrition.InvalidateTargets(ctx, userID)

	s.logger.Info("program_activated", zap.String("user_id", userID.Hex()), zap.String("program_id", programID.Hex()))
	return program, nil
}

func (s *programService) SetPhase(ctx context.Context, userID, programID primitive.ObjectID, phase int) (*domain.Program, error) {
	program, err := s.owned(ctx, userID, programID)
	if err != nil {
		return nil, err
	}
	if !program.ValidPhase(phase) {
		return nil, ErrInvalidPhase
	}
	if program.CurrentPhase == phase {
		return program, nil
	}

	program.CurrentPhase = phase
	if err := s.programs.Update(ctx, program); err != nil {
		return nil, err
	}
	s.nutrition.InvalidateTargets(ctx, userID)
	return program, nil
}

func (s *programService) owned(ctx context.Context, userID, programID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	if program.UserID != userID {
		return nil, ErrProgramAccessDenied
	}
	return program, nil
}
