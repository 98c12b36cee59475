package bcn

import "errors"

// ErrorCode classifies codec API failures.
type ErrorCode uint32

const (
	// Success is returned by ErrorCodeOf for a nil error.
	Success ErrorCode = 0

	// ErrBadParam indicates an invalid argument (nil buffer, bad dimensions).
	ErrBadParam ErrorCode = 1

	// ErrBadFormat indicates an unknown or unsupported block format.
	ErrBadFormat ErrorCode = 2

	// ErrBadQuality indicates an out-of-range encoder quality preset.
	ErrBadQuality ErrorCode = 3

	// ErrBadFlags indicates an invalid flag combination.
	ErrBadFlags ErrorCode = 4

	// ErrBadContext indicates misuse of a Context (busy, needs reset).
	ErrBadContext ErrorCode = 5

	// ErrSizeMismatch indicates a buffer whose length does not match the
	// size implied by the declared dimensions and format.
	ErrSizeMismatch ErrorCode = 6
)

// ErrorString returns a stable name for an error code, or "" for unknown codes.
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "BCN_SUCCESS"
	case ErrBadParam:
		return "BCN_ERR_BAD_PARAM"
	case ErrBadFormat:
		return "BCN_ERR_BAD_FORMAT"
	case ErrBadQuality:
		return "BCN_ERR_BAD_QUALITY"
	case ErrBadFlags:
		return "BCN_ERR_BAD_FLAGS"
	case ErrBadContext:
		return "BCN_ERR_BAD_CONTEXT"
	case ErrSizeMismatch:
		return "BCN_ERR_SIZE_MISMATCH"
	default:
		return ""
	}
}

// Error is a typed error carrying an ErrorCode.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg != "" {
		return e.Msg
	}
	if s := ErrorString(e.Code); s != "" {
		return "bcn: " + s
	}
	return "bcn: error"
}

// ErrorCodeOf returns the error code for err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}
