package services

import "fmt"

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// StoreError reports a failed persistence operation. Message is safe to show
// to clients; Err holds the underlying cause.
type StoreError struct {
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Client-facing messages.
const (
	MsgUsernameRequired    = "Username is required"
	MsgDescriptionRequired = "Description is required"
	MsgDurationRequired    = "Duration is required"
	MsgDurationInvalid     = "Duration must be a number"
	MsgUserNotFound        = "User not found"
	MsgSaveUser            = "Error saving user"
	MsgFetchUsers          = "Error fetching users"
	MsgSaveExercise        = "Error saving exercise"
	MsgFetchLog            = "Error fetching exercise log"
)
