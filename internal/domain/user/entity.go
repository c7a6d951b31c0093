package user

// User represents a user entity in the system.
type User struct {
	ID    int64  `json:"id"`    // ID is assigned by storage on creation
	Name  string `json:"name"`  // Name is the full name of the user
	Email string `json:"email"` // Email is the contact address of the user, may be empty
}
