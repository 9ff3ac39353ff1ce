package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrFoodEntryNotFound = errors.New("food log entry not found")
	ErrInvalidDate       = errors.New("date must be formatted YYYY-MM-DD")
)

// ComplianceWindowDays is the length of the weekly compliance window.
const ComplianceWindowDays = 7

type LogFoodInput struct {
	Date         string          `validate:"omitempty,datetime=2006-01-02"`
	MealType     domain.MealType `validate:"required,oneof=breakfast lunch dinner snack"`
	Name         string          `validate:"required,max=200"`
	Calories     int             `validate:"min=0,max=20000"`
	ProteinGrams float64         `validate:"min=0,max=2000"`
	CarbGrams    float64         `validate:"min=0,max=2000"`
	FatGrams     float64         `validate:"min=0,max=2000"`
}

type ComplianceDay struct {
	Date           string `json:"date"`
	Calories       int    `json:"calories"`
	TargetCalories int    `json:"targetCalories"`
	Compliant      bool   `json:"compliant"`
}

type WeeklyCompliance struct {
	Days          []ComplianceDay `json:"days"`
	DaysLogged    int             `json:"daysLogged"`
	DaysCompliant int             `json:"daysCompliant"`
	Percentage    int             `json:"percentage"`
}

type DailySummary struct {
	Date                   string              `json:"date"`
	Totals                 domain.MacroTotals  `json:"totals"`
	Targets                domain.MacroTargets `json:"targets"`
	WeeklyCompliance       WeeklyCompliance    `json:"weeklyCompliance"`
	Source                 domain.TargetSource `json:"source"`
	IsDefault              bool                `json:"isDefault"`
	HasPersonalizedTargets bool                `json:"hasPersonalizedTargets"`
}

type FoodLogService interface {
	LogFood(ctx context.Context, userID primitive.ObjectID, in LogFoodInput) (*domain.FoodLogEntry, error)
	GetDay(ctx context.Context, userID primitive.ObjectID, day time.Time) ([]domain.FoodLogEntry, error)
	DeleteEntry(ctx context.Context, userID, entryID primitive.ObjectID) error
	DailySummary(ctx context.Context, userID primitive.ObjectID, day time.Time) (*DailySummary, error)
}

type foodLogService struct {
	entries      repository.FoodLogRepository
	nutrition    NutritionService
	tolerancePct float64
	logger       *zap.Logger
	now          func() time.Time
}

func NewFoodLogService(entries repository.FoodLogRepository, nutrition NutritionService, tolerancePct float64, logger *zap.Logger) FoodLogService {
	return &foodLogService{
		entries:      entries,
		nutrition:    nutrition,
		tolerancePct: tolerancePct,
		logger:       logger,
		now:          time.Now,
	}
}

// ParseDay parses a YYYY-MM-DD query value as a UTC day. An empty value means
// today.
func ParseDay(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	day, err := time.ParseInLocation(domain.DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return day, nil
}

func (s *foodLogService) LogFood(ctx context.Context, userID primitive.ObjectID, in LogFoodInput) (*domain.FoodLogEntry, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	day, err := ParseDay(in.Date, now)
	if err != nil {
		return nil, err
	}

	entry := &domain.FoodLogEntry{
		UserID:       userID,
		Date:         day.Format(domain.DateLayout),
		MealType:     in.MealType,
		Name:         in.Name,
		Calories:     in.Calories,
		ProteinGrams: in.ProteinGrams,
		CarbGrams:    in.CarbGrams,
		FatGrams:     in.FatGrams,
		LoggedAt:     now,
	}
	id, err := s.entries.Create(ctx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id
	return entry, nil
}

func (s *foodLogService) GetDay(ctx context.Context, userID primitive.ObjectID, day time.Time) ([]domain.FoodLogEntry, error) {
	date := day.UTC().Format(domain.DateLayout)
	entries, err := s.entries.GetByUserAndDateRange(ctx, userID, date, date)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.FoodLogEntry{}
	}
	return entries, nil
}

func (s *foodLogService) DeleteEntry(ctx context.Context, userID, entryID primitive.ObjectID) error {
	if err := s.entries.Delete(ctx, entryID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrFoodEntryNotFound
		}
		return err
	}
	return nil
}

// DailySummary totals the day's entries against the targets in force on that
// day, and scores the 7 days ending on it.
func (s *foodLogService) DailySummary(ctx context.Context, userID primitive.ObjectID, day time.Time) (*DailySummary, error) {
	day = day.UTC()
	first := day.AddDate(0, 0, -(ComplianceWindowDays - 1))
	date := day.Format(domain.DateLayout)

	entries, err := s.entries.GetByUserAndDateRange(ctx, userID, first.Format(domain.DateLayout), date)
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]*domain.MacroTotals, ComplianceWindowDays)
	for _, e := range entries {
		t, ok := byDay[e.Date]
		if !ok {
			t = &domain.MacroTotals{}
			byDay[e.Date] = t
		}
		t.Add(e)
	}

	targets := s.nutrition.TargetsForDay(ctx, userID, day)
	summary := &DailySummary{
		Date:                   date,
		Targets:                targets.Plan,
		Source:                 targets.Source,
		IsDefault:              targets.IsDefault,
		HasPersonalizedTargets: !targets.IsDefault,
	}
	if t, ok := byDay[date]; ok {
		summary.Totals = *t
	}

	weekly := WeeklyCompliance{Days: make([]ComplianceDay, 0, ComplianceWindowDays)}
	for d := first; !d.After(day); d = d.AddDate(0, 0, 1) {
		key := d.Format(domain.DateLayout)
		dayTargets := targets
		if key != date {
			dayTargets = s.nutrition.TargetsForDay(ctx, userID, d)
		}
		entry := ComplianceDay{Date: key, TargetCalories: dayTargets.Plan.DailyCalories}
		if t, ok := byDay[key]; ok {
			entry.Calories = t.Calories
			entry.Compliant = withinTolerance(t.Calories, dayTargets.Plan.DailyCalories, s.tolerancePct)
			weekly.DaysLogged++
			if entry.Compliant {
				weekly.DaysCompliant++
			}
		}
		weekly.Days = append(weekly.Days, entry)
	}
	weekly.Percentage = int(math.Round(float64(weekly.DaysCompliant) / ComplianceWindowDays * 100))
	summary.WeeklyCompliance = weekly

	return summary, nil
}

func withinTolerance(actual, target int, tolerancePct float64) bool {
	if target <= 0 {
		return false
	}
	diff := math.Abs(float64(actual - target))
	return diff <= float64(target)*tolerancePct/100
}
