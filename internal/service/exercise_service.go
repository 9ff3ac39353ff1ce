package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrExerciseNotFound = errors.New("exercise not found")
)

const (
	defaultMatchLimit = 5
	maxMatchLimit     = 25
)

type CreateExerciseInput struct {
	Name        string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
	MuscleGroup string `validate:"max=100"`
	Equipment   string `validate:"max=100"`
	Difficulty  string `validate:"omitempty,oneof=Novice Medium Advanced"`
	VideoURL    string `validate:"omitempty,url"`
}

type ExerciseService interface {
	CreateExercise(ctx context.Context, coachID primitive.ObjectID, in CreateExerciseInput) (*domain.Exercise, error)
	GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error)
	GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	GetAllExercises(ctx context.Context) ([]domain.Exercise, error)
	// MatchExercises ranks library exercises by trigram similarity to query.
	MatchExercises(ctx context.Context, query string, limit int) ([]domain.ExerciseMatch, error)
}

// exerciseService implements the ExerciseService interface.
type exerciseService struct {
	exerciseRepo repository.ExerciseRepository
}

// NewExerciseService creates a new instance of exerciseService.
func NewExerciseService(exerciseRepo repository.ExerciseRepository) ExerciseService {
	return &exerciseService{
		exerciseRepo: exerciseRepo,
	}
}

// CreateExercise adds an exercise to a coach's library.
func (s *exerciseService) CreateExercise(ctx context.Context, coachID primitive.ObjectID, in CreateExerciseInput) (*domain.Exercise, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		CoachID:     coachID,
		Name:        in.Name,
		Description: in.Description,
		MuscleGroup: in.MuscleGroup,
		Equipment:   in.Equipment,
		Difficulty:  in.Difficulty,
		VideoURL:    in.VideoURL,
	}

	exerciseID, err := s.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = exerciseID
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	return exercise, nil
}

// GetExercisesByCoach retrieves all exercises created by a coach.
func (s *exerciseService) GetExercisesByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.GetByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

func (s *exerciseService) GetAllExercises(ctx context.Context) ([]domain.Exercise, error) {
	exercises, err := s.exerciseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return exercises, nil
}

func (s *exerciseService) MatchExercises(ctx context.Context, query string, limit int) ([]domain.ExerciseMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalid("query is required")
	}
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	if limit > maxMatchLimit {
		limit = maxMatchLimit
	}

	library, err := s.exerciseRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return RankExercises(query, library, limit), nil
}
