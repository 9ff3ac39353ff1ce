package gormrepo

import (
	"baisics/coach-api/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rows keep ObjectIDs as 24-char hex strings so both backends hand out the
// same identifiers to the API layer.

type userRow struct {
	ID           string  `gorm:"primaryKey;size:24"`
	Name         string  `gorm:"not null"`
	Email        string  `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"index;size:16;not null"`
	CoachID      *string `gorm:"index;size:24"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

type programRow struct {
	ID           string  `gorm:"primaryKey;size:24"`
	UserID       string  `gorm:"index:idx_programs_user_active;size:24;not null"`
	CoachID      *string `gorm:"index;size:24"`
	Name         string  `gorm:"not null"`
	Description  string
	Active       bool `gorm:"index:idx_programs_user_active;not null;default:false"`
	CurrentPhase int  `gorm:"not null;default:1"`
	PhaseCount   int  `gorm:"not null;default:1"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (programRow) TableName() string { return "programs" }

type nutritionPlanRow struct {
	ID            string    `gorm:"primaryKey;size:24"`
	UserID        string    `gorm:"index:idx_plans_user_effective;size:24;not null"`
	ProgramID     *string   `gorm:"index:idx_plans_program_phase;size:24"`
	Phase         *int      `gorm:"index:idx_plans_program_phase"`
	DailyCalories int       `gorm:"not null"`
	ProteinGrams  int       `gorm:"not null"`
	CarbGrams     int       `gorm:"not null"`
	FatGrams      int       `gorm:"not null"`
	EffectiveDate time.Time `gorm:"index:idx_plans_user_effective;not null"`
	EndDate       *time.Time
	CreatedBy     string `gorm:"size:24"`
	CreatedAt     time.Time
}

func (nutritionPlanRow) TableName() string { return "nutrition_plans" }

type workoutLogRow struct {
	ID              string    `gorm:"primaryKey;size:24"`
	UserID          string    `gorm:"index:idx_workouts_user_status;size:24;not null"`
	ProgramID       *string   `gorm:"size:24"`
	Name            string    `gorm:"not null"`
	Status          string    `gorm:"index:idx_workouts_user_status;size:16;not null"`
	StartedAt       time.Time `gorm:"index"`
	CompletedAt     *time.Time
	DurationMinutes int
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (workoutLogRow) TableName() string { return "workout_logs" }

type setLogRow struct {
	ID           string  `gorm:"primaryKey;size:24"`
	WorkoutLogID string  `gorm:"index;size:24;not null"`
	UserID       string  `gorm:"index;size:24;not null"`
	ExerciseID   *string `gorm:"size:24"`
	ExerciseName string  `gorm:"not null"`
	SetNumber    int
	Weight       *float64
	Reps         int
	CreatedAt    time.Time
}

func (setLogRow) TableName() string { return "set_logs" }

type milestoneRow struct {
	ID            string `gorm:"primaryKey;size:24"`
	UserID        string `gorm:"uniqueIndex:idx_milestones_user_type;size:24;not null"`
	Type          string `gorm:"uniqueIndex:idx_milestones_user_type;size:32;not null"`
	EarnedAt      time.Time
	TotalWorkouts int64
	TotalVolume   float64
}

func (milestoneRow) TableName() string { return "milestone_achievements" }

type foodLogRow struct {
	ID           string `gorm:"primaryKey;size:24"`
	UserID       string `gorm:"index:idx_food_logs_user_date;size:24;not null"`
	Date         string `gorm:"index:idx_food_logs_user_date;size:10;not null"`
	MealType     string `gorm:"size:16"`
	Name         string `gorm:"not null"`
	Calories     int
	ProteinGrams float64
	CarbGrams    float64
	FatGrams     float64
	LoggedAt     time.Time
}

func (foodLogRow) TableName() string { return "food_logs" }

type exerciseRow struct {
	ID          string `gorm:"primaryKey;size:24"`
	CoachID     string `gorm:"index;size:24;not null"`
	Name        string `gorm:"index;not null"`
	Description string
	MuscleGroup string
	Equipment   string
	Difficulty  string
	VideoURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (exerciseRow) TableName() string { return "exercises" }

type bodyStatRow struct {
	ID         string `gorm:"primaryKey;size:24"`
	UserID     string `gorm:"index;size:24;not null"`
	RecordedAt time.Time
	WeightKg   *float64
	BodyFatPct *float64
	WaistCm    *float64
	Notes      string
	CreatedAt  time.Time
}

func (bodyStatRow) TableName() string { return "body_stats" }

type progressPhotoRow struct {
	ID          string  `gorm:"primaryKey;size:24"`
	UserID      string  `gorm:"index;size:24;not null"`
	BodyStatID  *string `gorm:"size:24"`
	S3ObjectKey string  `gorm:"uniqueIndex;not null"`
	FileName    string
	ContentType string `gorm:"size:64"`
	Size        int64
	UploadedAt  time.Time
}

func (progressPhotoRow) TableName() string { return "progress_photos" }

// allModels is the AutoMigrate set.
var allModels = []interface{}{
	&userRow{},
	&programRow{},
	&nutritionPlanRow{},
	&workoutLogRow{},
	&setLogRow{},
	&milestoneRow{},
	&foodLogRow{},
	&exerciseRow{},
	&bodyStatRow{},
	&progressPhotoRow{},
}

func fromHex(s string) primitive.ObjectID {
	id, _ := primitive.ObjectIDFromHex(s)
	return id
}

func optHex(id *primitive.ObjectID) *string {
	if id == nil {
		return nil
	}
	s := id.Hex()
	return &s
}

func optFromHex(s *string) *primitive.ObjectID {
	if s == nil {
		return nil
	}
	id := fromHex(*s)
	return &id
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (r *userRow) toDomain() domain.User {
	return domain.User{
		ID:           fromHex(r.ID),
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		CoachID:      optFromHex(r.CoachID),
	}
}

func (r *programRow) toDomain() domain.Program {
	return domain.Program{
		ID:           fromHex(r.ID),
		UserID:       fromHex(r.UserID),
		CoachID:      optFromHex(r.CoachID),
		Name:         r.Name,
		Description:  r.Description,
		Active:       r.Active,
		CurrentPhase: r.CurrentPhase,
		PhaseCount:   r.PhaseCount,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func programToRow(p *domain.Program) programRow {
	return programRow{
		ID:           p.ID.Hex(),
		UserID:       p.UserID.Hex(),
		CoachID:      optHex(p.CoachID),
		Name:         p.Name,
		Description:  p.Description,
		Active:       p.Active,
		CurrentPhase: p.CurrentPhase,
		PhaseCount:   p.PhaseCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (r *nutritionPlanRow) toDomain() domain.NutritionPlan {
	return domain.NutritionPlan{
		MacroTargets: domain.MacroTargets{
			DailyCalories: r.DailyCalories,
			ProteinGrams:  r.ProteinGrams,
			CarbGrams:     r.CarbGrams,
			FatGrams:      r.FatGrams,
		},
		ID:            fromHex(r.ID),
		UserID:        fromHex(r.UserID),
		ProgramID:     optFromHex(r.ProgramID),
		Phase:         r.Phase,
		EffectiveDate: r.EffectiveDate.UTC(),
		EndDate:       utcPtr(r.EndDate),
		CreatedBy:     fromHex(r.CreatedBy),
		CreatedAt:     r.CreatedAt.UTC(),
	}
}

func (r *workoutLogRow) toDomain() domain.WorkoutLog {
	return domain.WorkoutLog{
		ID:              fromHex(r.ID),
		UserID:          fromHex(r.UserID),
		ProgramID:       optFromHex(r.ProgramID),
		Name:            r.Name,
		Status:          domain.WorkoutStatus(r.Status),
		StartedAt:       r.StartedAt.UTC(),
		CompletedAt:     utcPtr(r.CompletedAt),
		DurationMinutes: r.DurationMinutes,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func (r *setLogRow) toDomain() domain.SetLog {
	return domain.SetLog{
		ID:           fromHex(r.ID),
		WorkoutLogID: fromHex(r.WorkoutLogID),
		UserID:       fromHex(r.UserID),
		ExerciseID:   optFromHex(r.ExerciseID),
		ExerciseName: r.ExerciseName,
		SetNumber:    r.SetNumber,
		Weight:       r.Weight,
		Reps:         r.Reps,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

func (r *milestoneRow) toDomain() domain.MilestoneAchievement {
	return domain.MilestoneAchievement{
		ID:            fromHex(r.ID),
		UserID:        fromHex(r.UserID),
		Type:          domain.MilestoneType(r.Type),
		EarnedAt:      r.EarnedAt.UTC(),
		TotalWorkouts: r.TotalWorkouts,
		TotalVolume:   r.TotalVolume,
	}
}

func (r *foodLogRow) toDomain() domain.FoodLogEntry {
	return domain.FoodLogEntry{
		ID:           fromHex(r.ID),
		UserID:       fromHex(r.UserID),
		Date:         r.Date,
		MealType:     domain.MealType(r.MealType),
		Name:         r.Name,
		Calories:     r.Calories,
		ProteinGrams: r.ProteinGrams,
		CarbGrams:    r.CarbGrams,
		FatGrams:     r.FatGrams,
		LoggedAt:     r.LoggedAt.UTC(),
	}
}

func (r *exerciseRow) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:          fromHex(r.ID),
		CoachID:     fromHex(r.CoachID),
		Name:        r.Name,
		Description: r.Description,
		MuscleGroup: r.MuscleGroup,
		Equipment:   r.Equipment,
		Difficulty:  r.Difficulty,
		VideoURL:    r.VideoURL,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *bodyStatRow) toDomain() domain.BodyStat {
	return domain.BodyStat{
		ID:         fromHex(r.ID),
		UserID:     fromHex(r.UserID),
		RecordedAt: r.RecordedAt.UTC(),
		WeightKg:   r.WeightKg,
		BodyFatPct: r.BodyFatPct,
		WaistCm:    r.WaistCm,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

func (r *progressPhotoRow) toDomain() domain.ProgressPhoto {
	return domain.ProgressPhoto{
		ID:          fromHex(r.ID),
		UserID:      fromHex(r.UserID),
		BodyStatID:  optFromHex(r.BodyStatID),
		S3ObjectKey: r.S3ObjectKey,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		Size:        r.Size,
		UploadedAt:  r.UploadedAt.UTC(),
	}
}
