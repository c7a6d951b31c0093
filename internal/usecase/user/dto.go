package user

// AddUserRequest represents the request payload for creating a new user.
// The ID is always assigned by storage.
type AddUserRequest struct {
	Name  string `validate:"required,max=100"`
	Email string `validate:"omitempty,email,max=254"`
}

// AddUserResponse carries the storage-assigned ID of the new user.
type AddUserResponse struct {
	ID int64
}

// UpdateUserRequest replaces every field of the user matched by ID.
type UpdateUserRequest struct {
	ID    int64  `validate:"required,gt=0"`
	Name  string `validate:"required,max=100"`
	Email string `validate:"omitempty,email,max=254"`
}

// UpdateUserResponse reports whether a user with the requested ID existed.
type UpdateUserResponse struct {
	Updated bool
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID int64
}

// DeleteUserResponse reports whether a user with the requested ID existed.
type DeleteUserResponse struct {
	Deleted bool
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}
