package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-api/internal/domain/user"
	"user-crud-api/pkg/logger"
)

// UserRepo is the GORM-backed user store. It runs unchanged on PostgreSQL
// and SQLite.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"` // Assigned by the database
	Name  string `gorm:"size:100;not null"`        // User's full name (required)
	Email string `gorm:"size:254"`                 // Contact address, may be empty
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m UserSchema) toDomain() user.User {
	return user.User{
		ID:    m.ID,
		Name:  m.Name,
		Email: m.Email,
	}
}

// Migrate creates or updates the users table.
func (r *UserRepo) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Create inserts a new user and returns the ID assigned by the database.
// Any ID set on u is ignored.
func (r *UserRepo) Create(ctx context.Context, u *user.User) (int64, error) {
	if u == nil {
		return 0, errors.New("user cannot be nil")
	}

	model := UserSchema{
		Name:  u.Name,
		Email: u.Email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err))
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.Int64("id", model.ID))
	return model.ID, nil
}

// List returns all users ordered by ID.
func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		logger.WithContext(ctx, r.log).Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]user.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, nil
}

// GetByID retrieves a user by ID. It returns (nil, nil) when no row matches.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found in db", zap.Int64("id", id))
			return nil, nil
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// Update replaces every field of the row matching u.ID. It never inserts;
// false means no row had that ID.
func (r *UserRepo) Update(ctx context.Context, u *user.User) (bool, error) {
	if u == nil {
		return false, errors.New("user cannot be nil")
	}

	// Select forces zero values (an emptied email) to be written too.
	result := r.db.WithContext(ctx).
		Model(&UserSchema{}).
		Where("id = ?", u.ID).
		Select("name", "email").
		Updates(UserSchema{Name: u.Name, Email: u.Email})
	if result.Error != nil {
		logger.WithContext(ctx, r.log).Error("failed to update user in db", zap.Error(result.Error), zap.Int64("id", u.ID))
		return false, fmt.Errorf("failed to update user: %w", result.Error)
	}

	updated := result.RowsAffected > 0
	logger.WithContext(ctx, r.log).Info("user update in db", zap.Int64("id", u.ID), zap.Bool("updated", updated))
	return updated, nil
}

// Delete removes the row with the given ID. False means no row had that ID.
func (r *UserRepo) Delete(ctx context.Context, id int64) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&UserSchema{}, id)
	if result.Error != nil {
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(result.Error), zap.Int64("id", id))
		return false, fmt.Errorf("failed to delete user: %w", result.Error)
	}

	deleted := result.RowsAffected > 0
	logger.WithContext(ctx, r.log).Info("user delete in db", zap.Int64("id", id), zap.Bool("deleted", deleted))
	return deleted, nil
}
