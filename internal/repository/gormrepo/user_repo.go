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

// userRepository keeps the coach roster as a coach_id column on client rows;
// ClientIDs is filled from it on read.
type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	row := userRow{
		ID:           user.ID.Hex(),
		Name:         user.Name,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CoachID:      optHex(user.CoachID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isDuplicate(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.first(ctx, "id = ?", id.Hex())
}

func (r *userRepository) first(ctx context.Context, query string, arg interface{}) (*domain.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Where(query, arg).First(&row).Error; err != nil {
		return nil, notFound(err)
	}
	user := row.toDomain()
	if user.IsCoach() {
		var ids []string
		err := r.db.WithContext(ctx).Model(&userRow{}).
			Where("coach_id = ?", row.ID).
			Order("created_at").
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			user.ClientIDs = append(user.ClientIDs, fromHex(id))
		}
	}
	return &user, nil
}

// AddClientIDToCoach puts the client on the coach's roster.
func (r *userRepository) AddClientIDToCoach(ctx context.Context, coachID, clientID primitive.ObjectID) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ? AND role = ?", coachID.Hex(), string(domain.RoleCoach)).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return repository.ErrNotFound
	}
	return r.setCoach(ctx, clientID, coachID)
}

func (r *userRepository) GetClientsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if _, err := r.GetByID(ctx, coachID); err != nil {
		return nil, err
	}
	var rows []userRow
	err := r.db.WithContext(ctx).
		Where("coach_id = ?", coachID.Hex()).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	clients := make([]domain.User, 0, len(rows))
	for i := range rows {
		clients = append(clients, rows[i].toDomain())
	}
	return clients, nil
}

func (r *userRepository) SetCoachForClient(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	return r.setCoach(ctx, clientID, coachID)
}

func (r *userRepository) setCoach(ctx context.Context, clientID, coachID primitive.ObjectID) error {
	result := r.db.WithContext(ctx).Model(&userRow{}).
		Where("id = ? AND role = ?", clientID.Hex(), string(domain.RoleClient)).
		Updates(map[string]interface{}{
			"coach_id":   coachID.Hex(),
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
