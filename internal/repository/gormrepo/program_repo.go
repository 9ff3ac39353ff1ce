package gormrepo

import (
	"baisics/coach-api/internal/domain"
	"baisics/coach-api/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/gorm"
)

type programRepository struct {
	db *gorm.DB
}

func NewProgramRepository(db *gorm.DB) repository.ProgramRepository {
	return &programRepository{db: db}
}

func (r *programRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.UserID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires userId and name")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now

	row := programToRow(program)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return primitive.NilObjectID, err
	}
	return program.ID, nil
}

func (r *programRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	var row programRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.Hex()).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	program := row.toDomain()
	return &program, nil
}

func (r *programRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	var rows []programRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID.Hex()).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	programs := make([]domain.Program, 0, len(rows))
	for i := range rows {
		programs = append(programs, rows[i].toDomain())
	}
	return programs, nil
}

// GetActiveByUserID prefers the most recently updated active program.
func (r *programRepository) GetActiveByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.Program, error) {
	var row programRow
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID.Hex(), true).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	program := row.toDomain()
	return &program, nil
}

func (r *programRepository) Update(ctx context.Context, program *domain.Program) error {
	if program.ID == primitive.NilObjectID {
		return errors.New("program ID is required for update")
	}
	program.UpdatedAt = time.Now().UTC()

	result := r.db.WithContext(ctx).Model(&programRow{}).
		Where("id = ?", program.ID.Hex()).
		Updates(map[string]interface{}{
			"name":          program.Name,
			"description":   program.Description,
			"active":        program.Active,
			"current_phase": program.CurrentPhase,
			"phase_count":   program.PhaseCount,
			"updated_at":    program.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *programRepository) DeactivateOtherProgramsForUser(ctx context.Context, userID, excludeProgramID primitive.ObjectID) error {
	return r.db.WithContext(ctx).Model(&programRow{}).
		Where("user_id = ? AND active = ? AND id <> ?", userID.Hex(), true, excludeProgramID.Hex()).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_at": time.Now().UTC(),
		}).Error
}
