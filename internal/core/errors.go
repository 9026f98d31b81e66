package core

// Error codes for domain errors.
const (
	ErrCodeInvalidName     = "invalid_name"
	ErrCodeAlreadyExists   = "already_exists"
	ErrCodeNotFound        = "not_found"
	ErrCodeUnknownRoomType = "unknown_room_type"
	ErrCodeNoActiveGame    = "no_active_game"
	ErrCodeBadAction       = "bad_action"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
