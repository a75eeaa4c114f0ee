package commands

import "errors"

var (
	// ErrUnknownCommand is returned by Parse for a verb not in the table.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrQuit is returned by Exec when the actor asked to leave.
	ErrQuit = errors.New("quit")
)

// UserError represents an error that should be displayed to the user.
// These are not system failures - just invalid input or usage.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a user-facing error.
func NewUserError(msg string) *UserError {
	return &UserError{Message: msg}
}

const msgNotLoggedIn = "You must login or signup first."

func unknownCommand() *UserError {
	return &UserError{
		Message: "Unknown command. Type 'help' for available commands.",
		Err:     ErrUnknownCommand,
	}
}
