package repository

import (
	"baisics/coach-api/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error
	GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error
}

// ProgramRepository defines the interface for interacting with training programs.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error)
	// GetActiveByUserID returns ErrNotFound when the user has no active program.
	GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error)
	Update(ctx context.Context, program *domain.Program) error
	DeactivateOtherProgramsForUser(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error
}

// NutritionPlanRepository defines the interface for nutrition plan data.
type NutritionPlanRepository interface {
	Create(ctx context.Context, plan *domain.NutritionPlan) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.NutritionPlan, error)
	// FindEffective returns the plan in scope whose window covers at, preferring
	// the latest EffectiveDate. Returns ErrNotFound when none applies.
	FindEffective(ctx context.Context, scope domain.PlanScope, at time.Time) (*domain.NutritionPlan, error)
}

// WorkoutLogRepository defines the interface for logged workouts and their sets.
type WorkoutLogRepository interface {
	Create(ctx context.Context, workout *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.WorkoutLog, error)
	// MarkCompleted flips an in-progress workout to completed. Returns
	// ErrUpdateFailed when the workout is already completed.
	MarkCompleted(ctx context.Context, id primitive.ObjectID, completedAt time.Time, durationMinutes int) error
	AddSets(ctx context.Context, sets []domain.SetLog) error
	// Delete removes a workout together with its sets.
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetSets(ctx context.Context, workoutID primitive.ObjectID) ([]domain.SetLog, error)
	// Totals counts completed workouts and sums weight × reps over their weighted sets.
	Totals(ctx context.Context, userID primitive.ObjectID) (domain.TrainingTotals, error)
}

// MilestoneRepository defines the interface for milestone credits.
type MilestoneRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.MilestoneAchievement, error)
	// Award inserts the achievement unless (UserID, Type) already exists.
	// It reports whether this call wrote the row.
	Award(ctx context.Context, achievement *domain.MilestoneAchievement) (bool, error)
}

// FoodLogRepository defines the interface for food log entries.
type FoodLogRepository interface {
	Create(ctx context.Context, entry *domain.FoodLogEntry) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.FoodLogEntry, error)
	// GetByUserAndDateRange returns entries with from <= Date <= to (YYYY-MM-DD strings).
	GetByUserAndDateRange(ctx context.Context, userID primitive.ObjectID, from, to string) ([]domain.FoodLogEntry, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.Exercise, error)
	GetAll(ctx context.Context) ([]domain.Exercise, error)
}

// BodyStatRepository defines the interface for body measurements and progress photos.
type BodyStatRepository interface {
	Create(ctx context.Context, stat *domain.BodyStat) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.BodyStat, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.BodyStat, error)
	CreatePhoto(ctx context.Context, photo *domain.ProgressPhoto) (primitive.ObjectID, error)
	GetPhotosByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ProgressPhoto, error)
}

// Repositories bundles every repository a storage backend provides.
type Repositories struct {
	Users          UserRepository
	Programs       ProgramRepository
	NutritionPlans NutritionPlanRepository
	WorkoutLogs    WorkoutLogRepository
	Milestones     MilestoneRepository
	FoodLogs       FoodLogRepository
	Exercises      ExerciseRepository
	BodyStats      BodyStatRepository
}
