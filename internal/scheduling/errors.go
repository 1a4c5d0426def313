package scheduling

import (
	"errors"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidWindow = errors.New("start time must be before end time")
	ErrPastDate      = errors.New("date is in the past")
	ErrInvalidDate   = errors.New("search date is in the past")
	ErrDuplicateSlot = errors.New("slot with the same date and window already exists")

	// ErrNoMatchingSlot is returned by the slot store, the coordinator
	// reports it to callers as ErrSlotUnavailable.
	ErrNoMatchingSlot  = errors.New("no matching slot")
	ErrSlotUnavailable = errors.New("no open slot covers the requested window")

	ErrSlotNotFound        = errors.New("slot not found")
	ErrInterviewNotFound   = errors.New("interview not found")
	ErrInterviewerNotFound = errors.New("interviewer not found")

	ErrForbidden        = errors.New("not allowed for this user")
	ErrAlreadyFinalized = errors.New("interview is already completed or cancelled")

	// ErrInvalidTransition rejects a status change the interview state
	// machine does not allow, such as Completed -> Cancelled.
	ErrInvalidTransition = errors.New("invalid interview status transition")

	// ErrRetryable marks transient persistence or lock failures.
	ErrRetryable = errors.New("temporary failure, retry the request")

	// ErrInconsistentState is raised when a closed slot could not be
	// reopened after a failed booking.
	ErrInconsistentState = errors.New("slot left closed without an interview")
)

// Wire codes returned by Code.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidWindow     = "invalid_window"
	CodePastDate          = "past_date"
	CodeInvalidDate       = "invalid_date"
	CodeDuplicateSlot     = "duplicate_slot"
	CodeSlotUnavailable   = "slot_unavailable"
	CodeNotFound          = "not_found"
	CodeForbidden         = "forbidden"
	CodeAlreadyFinalized  = "already_finalized"
	CodeRetryable         = "retryable"
	CodeInconsistentState = "inconsistent_state"
	CodeInternal          = "internal_error"
)

// Code maps an error to its stable wire code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInconsistentState):
		return CodeInconsistentState
	case errors.Is(err, ErrInvalidWindow):
		return CodeInvalidWindow
	case errors.Is(err, ErrPastDate):
		return CodePastDate
	case errors.Is(err, ErrInvalidDate):
		return CodeInvalidDate
	case errors.Is(err, ErrDuplicateSlot):
		return CodeDuplicateSlot
	case errors.Is(err, ErrSlotUnavailable), errors.Is(err, ErrNoMatchingSlot):
		return CodeSlotUnavailable
	case errors.Is(err, ErrSlotNotFound),
		errors.Is(err, ErrInterviewNotFound),
		errors.Is(err, ErrInterviewerNotFound):
		return CodeNotFound
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAlreadyFinalized):
		return CodeAlreadyFinalized
	case errors.Is(err, ErrRetryable):
		return CodeRetryable
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidRequest
	default:
		return CodeInternal
	}
}
