package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-crud-api/internal/domain/user"
	pkgerrors "user-crud-api/pkg/errors"
	"user-crud-api/pkg/logger"
)

// Repository defines the persistence collaborator for users.
// Absence is never an error: GetByID returns (nil, nil) on a miss and
// Update/Delete report false when no row matched.
type Repository interface {
	Create(ctx context.Context, u *domain.User) (int64, error)   // Create a new user, returns the assigned ID
	List(ctx context.Context) ([]domain.User, error)             // List every user in storage order
	GetByID(ctx context.Context, id int64) (*domain.User, error) // Retrieve user by ID
	Update(ctx context.Context, u *domain.User) (bool, error)    // Replace all fields of an existing user
	Delete(ctx context.Context, id int64) (bool, error)          // Delete user by ID
}

// Service implements Usecase on top of a Repository. It validates input,
// logs, and forwards to storage; storage faults come back wrapped in
// pkgerrors.InternalError with the cause preserved.
type Service struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new user Service.
func New(r Repository, log *zap.Logger) *Service {
	return &Service{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError
// with a human-readable message.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return pkgerrors.NewValidationError("", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email", e.Field()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}
	return pkgerrors.NewValidationError("", strings.Join(messages, ", "))
}

func validateID(id int64) error {
	if id <= 0 {
		return pkgerrors.NewValidationError("ID", "must be a positive integer")
	}
	return nil
}

// Add stores a new user and returns the ID assigned by storage.
func (s *Service) Add(ctx context.Context, in AddUserRequest) (*AddUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("adding user", zap.String("name", in.Name))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	id, err := s.repo.Create(ctx, &domain.User{
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to add user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to add user", err)
	}

	log.Info("user added", zap.Int64("id", id))
	return &AddUserResponse{ID: id}, nil
}

// GetAll returns every user. An empty store yields an empty, non-nil slice.
func (s *Service) GetAll(ctx context.Context) ([]User, error) {
	log := logger.WithContext(ctx, s.log)

	domainUsers, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(&du)
	}

	log.Debug("listed users", zap.Int("count", len(users)))
	return users, nil
}

// GetByID returns the user with the given ID. A miss yields a
// pkgerrors.NotFoundError, storage faults an InternalError.
func (s *Service) GetByID(ctx context.Context, in GetUserRequest) (*User, error) {
	log := logger.WithContext(ctx, s.log)

	if err := validateID(in.ID); err != nil {
		log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}
	if u == nil {
		log.Debug("user not found", zap.Int64("id", in.ID))
		return nil, pkgerrors.NewNotFoundError("user", "user not found")
	}

	dto := toDTO(u)
	return &dto, nil
}

// Update replaces all fields of the user matched by ID. Updated is false
// when no such user exists; storage is left unchanged in that case.
func (s *Service) Update(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("updating user", zap.Int64("id", in.ID), zap.String("name", in.Name))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	updated, err := s.repo.Update(ctx, &domain.User{
		ID:    in.ID,
		Name:  in.Name,
		Email: in.Email,
	})
	if err != nil {
		log.Error("failed to update user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to update user", err)
	}
	if !updated {
		log.Info("update target not found", zap.Int64("id", in.ID))
	}

	return &UpdateUserResponse{Updated: updated}, nil
}

// Delete removes the user with the given ID. Deleted is false when no such
// user exists, so repeating a delete is harmless.
func (s *Service) Delete(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if err := validateID(in.ID); err != nil {
		log.Warn("delete user validation failed", zap.Int64("id", in.ID), zap.Error(err))
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		log.Error("failed to delete user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to delete user", err)
	}
	if !deleted {
		log.Info("delete target not found", zap.Int64("id", in.ID))
	}

	return &DeleteUserResponse{Deleted: deleted}, nil
}

func toDTO(u *domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
