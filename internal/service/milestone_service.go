package service

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/metrics"
	"baisics/coach-api/internal/repository"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MilestoneResult is the outcome of one credit check. Milestone is the
// highest type credited by this call, nil when nothing new was earned.
type MilestoneResult struct {
	Unlocked      bool                   `json:"unlocked"`
	Milestone     *domain.MilestoneType  `json:"milestone"`
	TotalWorkouts int64                  `json:"totalWorkouts"`
	TotalVolume   float64                `json:"totalVolume"`
	Credited      []domain.MilestoneType `json:"credited"`
}

// NextMilestone is the closest milestone not yet earned.
type NextMilestone struct {
	domain.Milestone
	Remaining int64 `json:"remaining"`
}

type MilestoneProgress struct {
	TotalWorkouts int64                         `json:"totalWorkouts"`
	TotalVolume   float64                       `json:"totalVolume"`
	Earned        []domain.MilestoneAchievement `json:"earned"`
	Next          *NextMilestone                `json:"next"`
}

type MilestoneService interface {
	// CheckAndAward recomputes the user's totals from stored workouts and
	// credits every threshold reached but not yet credited.
	CheckAndAward(ctx context.Context, userID primitive.ObjectID) (*MilestoneResult, error)
	GetProgress(ctx context.Context, userID primitive.ObjectID) (*MilestoneProgress, error)
}

type milestoneService struct {
	workouts   repository.WorkoutLogRepository
	milestones repository.MilestoneRepository
	metrics    *metrics.Registry
	logger     *zap.Logger
	now        func() time.Time
}

func NewMilestoneService(
	workouts repository.WorkoutLogRepository,
	milestones repository.MilestoneRepository,
	reg *metrics.Registry,
	logger *zap.Logger,
) MilestoneService {
	return &milestoneService{
		workouts:   workouts,
		milestones: milestones,
		metrics:    reg,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *milestoneService) CheckAndAward(ctx context.Context, userID primitive.ObjectID) (*MilestoneResult, error) {
	totals, err := s.workouts.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("compute training totals: %w", err)
	}
	earned, err := s.milestones.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load milestones: %w", err)
	}

	credited := make(map[domain.MilestoneType]bool, len(earned))
	for _, a := range earned {
		credited[a.Type] = true
	}

	result := &MilestoneResult{
		TotalWorkouts: totals.TotalWorkouts,
		TotalVolume:   totals.TotalVolume,
		Credited:      []domain.MilestoneType{},
	}
	earnedAt := s.now().UTC()

	// table is ascending, so the last insert is the highest
	for _, m := range domain.Milestones {
		if int64(m.Threshold) > totals.TotalWorkouts {
			break
		}
		if credited[m.Type] {
			continue
		}

		inserted, err := s.milestones.Award(ctx, &domain.MilestoneAchievement{
			UserID:        userID,
			Type:          m.Type,
			EarnedAt:      earnedAt,
			TotalWorkouts: totals.TotalWorkouts,
			TotalVolume:   totals.TotalVolume,
		})
		if err != nil {
			return nil, fmt.Errorf("award %s: %w", m.Type, err)
		}
		if !inserted {
			// a concurrent check got there first
			continue
		}

		t := m.Type
		result.Milestone = &t
		result.Credited = append(result.Credited, t)
		if s.metrics != nil {
			s.metrics.MilestonesAwarded.WithLabelValues(string(t)).Inc()
		}
		s.logger.Info("milestone_awarded",
			zap.String("user_id", userID.Hex()),
			zap.String("type", string(t)),
			zap.Int64("total_workouts", totals.TotalWorkouts),
		)
	}
	result.Unlocked = result.Milestone != nil
	return result, nil
}

func (s *milestoneService) GetProgress(ctx context.Context, userID primitive.ObjectID) (*MilestoneProgress, error) {
	totals, err := s.workouts.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.milestones.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if earned == nil {
		earned = []domain.MilestoneAchievement{}
	}

	progress := &MilestoneProgress{
		TotalWorkouts: totals.TotalWorkouts,
		TotalVolume:   totals.TotalVolume,
		Earned:        earned,
	}
	for _, m := range domain.Milestones {
		if int64(m.Threshold) > totals.TotalWorkouts {
			progress.Next = &NextMilestone{Milestone: m, Remaining: int64(m.Threshold) - totals.TotalWorkouts}
			break
		}
	}
	return progress, nil
}
