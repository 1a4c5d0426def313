package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// SlotRepository persists availability windows. ReserveSlot and ReleaseSlot
// must read and flip IsOpen as one atomic step.
type SlotRepository interface {
	GetSlotByID(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error)

	// ListOpenSlots returns open slots ordered by (date, start time). A nil
	// date means every date.
	ListOpenSlots(ctx context.Context, interviewerID uuid.UUID, date *Date) ([]AvailabilitySlot, error)

	// ListOpenSlotsByInterviewer is the bulk variant used by search.
	ListOpenSlotsByInterviewer(ctx context.Context, interviewerIDs []uuid.UUID, date *Date) (map[uuid.UUID][]AvailabilitySlot, error)

	// InsertSlot fails with ErrDuplicateSlot when the interviewer already
	// has a slot with the same date and window, open or closed.
	InsertSlot(ctx context.Context, slot AvailabilitySlot) (*AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error

	// ReserveSlot closes one open slot covering window. When slotID is set
	// only that slot is considered. Fails with ErrNoMatchingSlot.
	ReserveSlot(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error)

	// ReleaseSlot reopens the closed slot with slotID when set. Without an
	// id it reopens one closed slot whose window equals window and that no
	// Scheduled interview references. Fails with ErrNoMatchingSlot.
	ReleaseSlot(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error)
}

type InterviewRepository interface {
	// CreateInterview keeps in.ID when it is set.
	CreateInterview(ctx context.Context, in Interview) (*Interview, error)
	GetInterviewByID(ctx context.Context, id uuid.UUID) (*Interview, error)

	// UpdateInterviewStatus only applies when the stored status equals from,
	// otherwise it returns ErrInterviewNotFound. A from -> to pair the state
	// machine forbids fails with ErrInvalidTransition.
	UpdateInterviewStatus(ctx context.Context, id uuid.UUID, from, to InterviewStatus) (*Interview, error)

	ListInterviewsByInterviewer(ctx context.Context, interviewerID uuid.UUID) ([]Interview, error)
	ListInterviewDetails(ctx context.Context) ([]InterviewDetail, error)

	// FindElapsedScheduled returns Scheduled interviews that ended before
	// the given day and wall clock.
	FindElapsedScheduled(ctx context.Context, day Date, at TimeOfDay) ([]Interview, error)
}

// InterviewerDirectory exposes the onboarding side's interviewer profiles.
type InterviewerDirectory interface {
	ListInterviewers(ctx context.Context) ([]InterviewerProfile, error)
	GetInterviewer(ctx context.Context, id uuid.UUID) (*InterviewerProfile, error)
}

type EventRecorder interface {
	InsertEvent(ctx context.Context, ev EventLog) error
}

// Repository is everything a single storage backend provides.
type Repository interface {
	SlotRepository
	InterviewRepository
	InterviewerDirectory
	EventRecorder
}
