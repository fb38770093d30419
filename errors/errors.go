package errors

import "fmt"

var (
	// ErrNotFound reports a record that does not exist for the caller.
	ErrNotFound = fmt.Errorf("not found")

	// ErrNotFoundOrUnauthorized merges "does not exist" and "not yours".
	// Callers must not be able to tell which one happened, otherwise a
	// probe would reveal which message ids exist for other users.
	ErrNotFoundOrUnauthorized = fmt.Errorf("not found or unauthorized")

	ErrAlreadyFriends    = fmt.Errorf("friend already added")
	ErrSelfFriend        = fmt.Errorf("cannot add yourself as a friend")
	ErrInvalidRecipient  = fmt.Errorf("recipient is not a valid user")
	ErrImageNotOwned     = fmt.Errorf("image does not belong to the sender")
	ErrNotAnImageMessage = fmt.Errorf("message is not an image message")
	ErrMessageExpired    = fmt.Errorf("message has expired")

	ErrEmptyLocator       = fmt.Errorf("storage locator is empty")
	ErrStorageUnavailable = fmt.Errorf("blob storage unavailable")

	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrHandleTaken        = fmt.Errorf("handle already taken")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet requirements")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)
