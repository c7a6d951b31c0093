package user

import "context"

// Usecase defines the user service operations exposed to transports.
type Usecase interface {
	Add(ctx context.Context, in AddUserRequest) (*AddUserResponse, error)
	GetAll(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, in GetUserRequest) (*User, error)
	Update(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error)
	Delete(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error)
}
