package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SlotStore owns interviewer availability. Opening and closing slots for
// bookings goes through the Coordinator, which calls reserve and release.
type SlotStore struct {
	repo SlotRepository
	log  *zap.Logger
}

func NewSlotStore(repo SlotRepository, log *zap.Logger) *SlotStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SlotStore{
		repo: repo,
		log:  log.Named("slots"),
	}
}

// ListOpenSlots returns open slots ordered by date then start time. A nil
// date lists every day.
func (s *SlotStore) ListOpenSlots(ctx context.Context, interviewerID uuid.UUID, date *Date) ([]AvailabilitySlot, error) {
	slots, err := s.repo.ListOpenSlots(ctx, interviewerID, date)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	if slots == nil {
		slots = []AvailabilitySlot{}
	}
	return slots, nil
}

func (s *SlotStore) GetSlot(ctx context.Context, id uuid.UUID) (*AvailabilitySlot, error) {
	slot, err := s.repo.GetSlotByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

// CreateSlot publishes a new open window for an interviewer.
func (s *SlotStore) CreateSlot(ctx context.Context, interviewerID uuid.UUID, date Date, start, end TimeOfDay) (*AvailabilitySlot, error) {
	if interviewerID == uuid.Nil || date.IsZero() {
		return nil, fmt.Errorf("%w: interviewer and date are required", ErrInvalidInput)
	}
	window := Window{Start: start, End: end}
	if !window.Valid() {
		return nil, ErrInvalidWindow
	}

	created, err := s.repo.InsertSlot(ctx, AvailabilitySlot{
		InterviewerID: interviewerID,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		IsOpen:        true,
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSlot) {
			return nil, err
		}
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.log.Debug("slot created",
		zap.Stringer("slot_id", created.ID),
		zap.Stringer("interviewer_id", interviewerID),
		zap.Stringer("date", date),
		zap.Stringer("window", window),
	)
	return created, nil
}

// DeleteSlot removes a slot whatever its state. An interview booked against
// a deleted slot is left untouched.
func (s *SlotStore) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteSlot(ctx, id); err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			return err
		}
		return fmt.Errorf("delete slot: %w", err)
	}
	s.log.Debug("slot deleted", zap.Stringer("slot_id", id))
	return nil
}

func (s *SlotStore) reserve(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	slot, err := s.repo.ReserveSlot(ctx, interviewerID, date, window, slotID)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSlot) {
			return nil, err
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}
	return slot, nil
}

func (s *SlotStore) release(ctx context.Context, interviewerID uuid.UUID, date Date, window Window, slotID *uuid.UUID) (*AvailabilitySlot, error) {
	slot, err := s.repo.ReleaseSlot(ctx, interviewerID, date, window, slotID)
	if err != nil {
		if errors.Is(err, ErrNoMatchingSlot) {
			return nil, err
		}
		return nil, fmt.Errorf("release slot: %w", err)
	}
	return slot, nil
}
