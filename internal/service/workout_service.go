package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrWorkoutNotFound         = errors.New("workout not found")
	ErrWorkoutAccessDenied     = errors.New("access denied to this workout")
	ErrWorkoutAlreadyCompleted = errors.New("workout is already completed")
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

type SetInput struct {
	ExerciseID   *primitive.ObjectID
	ExerciseName string   `validate:"required_without=ExerciseID,max=200"`
	SetNumber    int      `validate:"omitempty,min=1"`
	Weight       *float64 `validate:"omitempty,min=0,max=2000"`
	Reps         int      `validate:"min=0,max=1000"`
}

type StartWorkoutInput struct {
	Name      string `validate:"required,max=200"`
	ProgramID *primitive.ObjectID
	StartedAt *time.Time
	Notes     string `validate:"max=2000"`
}

type CompleteWorkoutInput struct {
	CompletedAt     *time.Time
	DurationMinutes *int `validate:"omitempty,min=0,max=1440"`
}

type QuickLogInput struct {
	Name            string `validate:"required,max=200"`
	ProgramID       *primitive.ObjectID
	DurationMinutes int `validate:"min=0,max=1440"`
	CompletedAt     *time.Time
	Notes           string     `validate:"max=2000"`
	Sets            []SetInput `validate:"max=200,dive"`
}

// WorkoutOutcome is returned when a workout becomes completed. Milestone is
// nil when the credit check failed; the workout is recorded regardless. Sets
// is nil when the stored sets could not be read back.
type WorkoutOutcome struct {
	Workout   *domain.WorkoutLog
	Sets      []domain.SetLog
	Milestone *MilestoneResult
}

type WorkoutDetails struct {
	Workout *domain.WorkoutLog
	Sets    []domain.SetLog
}

type WorkoutService interface {
	StartWorkout(ctx context.Context, userID primitive.ObjectID, in StartWorkoutInput) (*domain.WorkoutLog, error)
	AddSets(ctx context.Context, userID, workoutID primitive.ObjectID, sets []SetInput) ([]domain.SetLog, error)
	CompleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, in CompleteWorkoutInput) (*WorkoutOutcome, error)
	// QuickLog records an already finished workout with its sets in one call.
	QuickLog(ctx context.Context, userID primitive.ObjectID, in QuickLogInput) (*WorkoutOutcome, error)
	History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error)
	GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutDetails, error)
}

type workoutService struct {
	workouts   repository.WorkoutLogRepository
	programs   repository.ProgramRepository
	exercises  repository.ExerciseRepository
	milestones MilestoneService
	metrics    *metrics.Registry
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkoutService(
	workouts repository.WorkoutLogRepository,
	programs repository.ProgramRepository,
	exercises repository.ExerciseRepository,
	milestones MilestoneService,
	reg *metrics.Registry,
	logger *zap.Logger,
) WorkoutService {
	return &workoutService{
		workouts:   workouts,
		programs:   programs,
		exercises:  exercises,
		milestones: milestones,
		metrics:    reg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *workoutService) StartWorkout(ctx context.Context, userID primitive.ObjectID, in StartWorkoutInput) (*domain.WorkoutLog, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkProgram(ctx, userID, in.ProgramID); err != nil {
		return nil, err
	}

	startedAt := s.now().UTC()
	if in.StartedAt != nil {
		startedAt = in.StartedAt.UTC()
	}
	workout := &domain.WorkoutLog{
		UserID:    userID,
		ProgramID: in.ProgramID,
		Name:      in.Name,
		Status:    domain.WorkoutInProgress,
		StartedAt: startedAt,
		Notes:     in.Notes,
	}
	id, err := s.workouts.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id
	return workout, nil
}

func (s *workoutService) AddSets(ctx context.Context, userID, workoutID primitive.ObjectID, sets []SetInput) ([]domain.SetLog, error) {
	if len(sets) == 0 {
		return nil, invalid("at least one set is required")
	}
	for i := range sets {
		if err := validateStruct(sets[i]); err != nil {
			return nil, err
		}
	}

	workout, err := s.owned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsCompleted() {
		return nil, ErrWorkoutAlreadyCompleted
	}

	existing, err := s.workouts.GetSets(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	built, err := s.buildSets(ctx, userID, sets, len(existing))
	if err != nil {
		return nil, err
	}
	if err := s.insertSets(ctx, workout.ID, built); err != nil {
		return nil, err
	}
	return built, nil
}

func (s *workoutService) CompleteWorkout(ctx context.Context, userID, workoutID primitive.ObjectID, in CompleteWorkoutInput) (*WorkoutOutcome, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	workout, err := s.owned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	if workout.IsCompleted() {
		return nil, ErrWorkoutAlreadyCompleted
	}

	completedAt := s.now().UTC()
	if in.CompletedAt != nil {
		completedAt = in.CompletedAt.UTC()
	}
	if completedAt.Before(workout.StartedAt) {
		return nil, invalid("completedAt is before startedAt")
	}
	duration := int(completedAt.Sub(workout.StartedAt).Minutes())
	if in.DurationMinutes != nil {
		duration = *in.DurationMinutes
	}

	if err := s.workouts.MarkCompleted(ctx, workoutID, completedAt, duration); err != nil {
		switch {
		case errors.Is(err, repository.ErrUpdateFailed):
			return nil, ErrWorkoutAlreadyCompleted
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	workout.Status = domain.WorkoutCompleted
	workout.CompletedAt = &completedAt
	workout.DurationMinutes = duration

	sets, err := s.workouts.GetSets(ctx, workoutID)
	if err != nil {
		s.logger.Warn("workout_sets_load_failed", zap.String("workout_id", workoutID.Hex()), zap.Error(err))
		sets = nil
	} else if sets == nil {
		sets = []domain.SetLog{}
	}

	return &WorkoutOutcome{
		Workout:   workout,
		Sets:      sets,
		Milestone: s.checkMilestones(ctx, userID),
	}, nil
}

func (s *workoutService) QuickLog(ctx context.Context, userID primitive.ObjectID, in QuickLogInput) (*WorkoutOutcome, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.checkProgram(ctx, userID, in.ProgramID); err != nil {
		return nil, err
	}

	// Exercise lookups can fail; resolve them before anything is written.
	sets, err := s.buildSets(ctx, userID, in.Sets, 0)
	if err != nil {
		return nil, err
	}

	completedAt := s.now().UTC()
	if in.CompletedAt != nil {
		completedAt = in.CompletedAt.UTC()
	}
	workout := &domain.WorkoutLog{
		UserID:    userID,
		ProgramID: in.ProgramID,
		Name:      in.Name,
		Status:    domain.WorkoutInProgress,
		StartedAt: completedAt.Add(-time.Duration(in.DurationMinutes) * time.Minute),
		Notes:     in.Notes,
	}
	id, err := s.workouts.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = id

	// Sets go in before completion so a failed insert never leaves a
	// completed workout counted without its volume.
	if err := s.insertSets(ctx, id, sets); err != nil {
		s.discard(ctx, id)
		return nil, err
	}
	if err := s.workouts.MarkCompleted(ctx, id, completedAt, in.DurationMinutes); err != nil {
		s.discard(ctx, id)
		return nil, err
	}
	workout.Status = domain.WorkoutCompleted
	workout.CompletedAt = &completedAt
	workout.DurationMinutes = in.DurationMinutes

	s.logger.Info("workout_quick_logged",
		zap.String("user_id", userID.Hex()),
		zap.String("workout_id", id.Hex()),
		zap.Int("sets", len(sets)),
	)

	return &WorkoutOutcome{
		Workout:   workout,
		Sets:      sets,
		Milestone: s.checkMilestones(ctx, userID),
	}, nil
}

func (s *workoutService) History(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	workouts, err := s.workouts.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []domain.WorkoutLog{}
	}
	return workouts, nil
}

func (s *workoutService) GetWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*WorkoutDetails, error) {
	workout, err := s.owned(ctx, userID, workoutID)
	if err != nil {
		return nil, err
	}
	sets, err := s.workouts.GetSets(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	if sets == nil {
		sets = []domain.SetLog{}
	}
	return &WorkoutDetails{Workout: workout, Sets: sets}, nil
}

// checkMilestones runs the credit engine. Failure is logged and counted,
// never returned: the workout is already recorded.
func (s *workoutService) checkMilestones(ctx context.Context, userID primitive.ObjectID) *MilestoneResult {
	result, err := s.milestones.CheckAndAward(ctx, userID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.MilestoneFailures.Inc()
		}
		s.logger.Error("milestone_check_failed", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil
	}
	return result
}

// buildSets numbers the sets and links them to the exercise library. The
// workout ID is stamped later by insertSets.
func (s *workoutService) buildSets(ctx context.Context, userID primitive.ObjectID, in []SetInput, offset int) ([]domain.SetLog, error) {
	if len(in) == 0 {
		return []domain.SetLog{}, nil
	}

	sets := make([]domain.SetLog, len(in))
	for i, si := range in {
		number := si.SetNumber
		if number == 0 {
			number = offset + i + 1
		}
		sets[i] = domain.SetLog{
			UserID:       userID,
			ExerciseID:   si.ExerciseID,
			ExerciseName: strings.TrimSpace(si.ExerciseName),
			SetNumber:    number,
			Weight:       si.Weight,
			Reps:         si.Reps,
		}
	}
	if err := s.linkExercises(ctx, sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (s *workoutService) insertSets(ctx context.Context, workoutID primitive.ObjectID, sets []domain.SetLog) error {
	for i := range sets {
		sets[i].WorkoutLogID = workoutID
	}
	return s.workouts.AddSets(ctx, sets)
}

// discard removes a quick-logged workout whose later writes failed.
func (s *workoutService) discard(ctx context.Context, workoutID primitive.ObjectID) {
	if err := s.workouts.Delete(ctx, workoutID); err != nil {
		s.logger.Error("workout_discard_failed", zap.String("workout_id", workoutID.Hex()), zap.Error(err))
	}
}

// linkExercises fills names of sets given by exerciseId and attaches the
// closest library exercise to sets given by name only.
func (s *workoutService) linkExercises(ctx context.Context, sets []domain.SetLog) error {
	var library []domain.Exercise
	loaded := false
	for i := range sets {
		set := &sets[i]
		if set.ExerciseID != nil {
			if set.ExerciseName != "" {
				continue
			}
			ex, err := s.exercises.GetByID(ctx, *set.ExerciseID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrExerciseNotFound
				}
				return err
			}
			set.ExerciseName = ex.Name
			continue
		}

		if !loaded {
			loaded = true
			var err error
			if library, err = s.exercises.GetAll(ctx); err != nil {
				// matching is best effort
				s.logger.Warn("exercise_library_load_failed", zap.Error(err))
			}
		}
		if ex, score, ok := BestMatch(set.ExerciseName, library); ok {
			id := ex.ID
			set.ExerciseID = &id
			s.logger.Debug("exercise_matched",
				zap.String("name", set.ExerciseName),
				zap.String("exercise", ex.Name),
				zap.Float64("score", score),
			)
		}
	}
	return nil
}

func (s *workoutService) owned(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.WorkoutLog, error) {
	workout, err := s.workouts.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrWorkoutAccessDenied
	}
	return workout, nil
}

func (s *workoutService) checkProgram(ctx context.Context, userID primitive.ObjectID, programID *primitive.ObjectID) error {
	if programID == nil {
		return nil
	}
	program, err := s.programs.GetByID(ctx, *programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProgramNotFound
		}
		return err
	}
	if program.UserID != userID {
		return ErrProgramAccessDenied
	}
	return nil
}
