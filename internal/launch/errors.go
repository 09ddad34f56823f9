package launch

import "errors"

var (
	// ErrUnknownServer matches every *UnknownServerError via errors.Is.
	ErrUnknownServer = errors.New("unknown server")

	ErrInvalidEntry    = errors.New("invalid registry entry")
	ErrDuplicateServer = errors.New("duplicate server identifier")
)

// UnknownServerError is returned by Resolve when no entry matches.
// ID holds the requested identifier exactly as given.
type UnknownServerError struct {
	ID string
}

func (e *UnknownServerError) Error() string {
	return "Unknown server: " + e.ID
}

func (e *UnknownServerError) Is(target error) bool {
	return target == ErrUnknownServer
}
