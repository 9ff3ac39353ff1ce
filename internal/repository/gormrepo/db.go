// Package gormrepo implements the repository interfaces on a relational
// database through gorm. PostgreSQL is used in production, SQLite in tests
// and single-node installs.
package gormrepo

import (
	"baisics/coach-api/internal/repository"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Open connects with the dialector matching driver and migrates the schema.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormLog := gormlogger.New(
		zap.NewStdLog(logger.Named("gorm")),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table and index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels...)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewRepositories wires every gorm-backed repository against db.
func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Users:          NewUserRepository(db),
		Programs:       NewProgramRepository(db),
		NutritionPlans: NewNutritionPlanRepository(db),
		WorkoutLogs:    NewWorkoutLogRepository(db),
		Milestones:     NewMilestoneRepository(db),
		FoodLogs:       NewFoodLogRepository(db),
		Exercises:      NewExerciseRepository(db),
		BodyStats:      NewBodyStatRepository(db),
	}
}

// notFound maps gorm's missing-row error to the repository sentinel.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	return err
}

// isDuplicate reports a unique constraint violation. gorm translates it when
// TranslateError is on; the string checks cover drivers that don't.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLSTATE 23505")
}
