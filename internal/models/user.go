package models

// User represents a registered participant.
// Users are immutable once registered; IDs are never reused.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Name is the display name of the user.
	Name string

	// Email is the user's contact address. Optional.
	Email string

	// CreatedAt is the Unix timestamp when the user was registered.
	CreatedAt int64
}
